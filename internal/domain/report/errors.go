package report

import "errors"

// ErrNoData reports that no judgments exist to build a report from.
var ErrNoData = errors.New("no judgment data for report")
