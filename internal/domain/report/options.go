package report

import "github.com/Base-InfoFi/Backend/pkg/logger"

// Option configures a Generator.
type Option func(*Generator)

// WithLogger overrides the generator's logger.
func WithLogger(log logger.Logger) Option {
	return func(g *Generator) {
		if log != nil {
			g.log = log
		}
	}
}
