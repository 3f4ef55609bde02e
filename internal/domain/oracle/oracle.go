// Package oracle defines the contract with the external content classifier.
//
// The oracle is an OpenAI-compatible chat-completions service. It is asked
// for strict JSON but answers with free text, so this package owns the
// strict-parse-then-validate step and the fail-closed fallback: a response
// that cannot be parsed into the expected shape is never allowed to become
// a rewarded outcome.
package oracle

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/Base-InfoFi/Backend/internal/domain/model"
)

// Sampling temperatures per pipeline.
const (
	// TemperatureDeterministic is used when scoring individual posts for
	// reward/slash; identical input must produce identical output.
	TemperatureDeterministic = 0.0
	// TemperatureBatch is used by the batch topic pipeline; some variance
	// is tolerated there.
	TemperatureBatch = 0.3
	// TemperatureNarrative is used for free-form report generation.
	TemperatureNarrative = 0.7
)

// Request carries one content item to the oracle.
type Request struct {
	ProjectName string
	Context     string
	Content     string
	Temperature float64
}

// Verdict is the oracle's validated scoring output.
type Verdict struct {
	InformationScore int
	RelevanceScore   int
	InsightScore     int
	SpamLikelihood   float64
	Label            model.Label
	Reasons          []string

	// Raw is the unmodified oracle response text, kept for auditability.
	Raw string
	// Fallback marks a fail-closed verdict produced in place of a
	// malformed or unavailable oracle response.
	Fallback bool
}

// Client evaluates content and produces validated verdicts.
//
// Evaluate resolves malformed oracle output into a fallback Verdict rather
// than an error; only transport-level failures (connection, timeout) are
// returned as errors, and callers are expected to resolve those into
// FallbackUnavailable themselves. No retries happen at this layer.
type Client interface {
	Evaluate(ctx context.Context, req Request) (Verdict, error)

	// Complete performs a raw completion for narrative generation.
	Complete(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error)
}

// FallbackParse returns the conservative verdict substituted for oracle
// output that failed strict parsing. Minimum scores, maximum spam
// likelihood, SHITPOSTING: under the scoring policy this always slashes
// and never rewards.
func FallbackParse(raw string) Verdict {
	return fallback(raw, "oracle output parse error")
}

// FallbackUnavailable returns the conservative verdict substituted when the
// oracle could not be reached or timed out.
func FallbackUnavailable() Verdict {
	return fallback("", "oracle unavailable")
}

func fallback(raw, reason string) Verdict {
	return Verdict{
		InformationScore: model.MinSubScore,
		RelevanceScore:   model.MinSubScore,
		InsightScore:     model.MinSubScore,
		SpamLikelihood:   1,
		Label:            model.LabelShitposting,
		Reasons:          []string{reason},
		Raw:              raw,
		Fallback:         true,
	}
}

// wireVerdict mirrors the JSON shape the oracle is instructed to emit.
// Pointer fields distinguish absent from zero: an absent field makes the
// whole response malformed instead of silently defaulting.
type wireVerdict struct {
	InformationScore *int     `json:"information_score"`
	RelevanceScore   *int     `json:"relevance_score"`
	InsightScore     *int     `json:"insight_score"`
	SpamLikelihood   *float64 `json:"spam_likelihood"`
	FinalLabel       *string  `json:"final_label"`
	Reasons          []string `json:"reasons"`
}

// ParseVerdict strictly parses raw oracle output into a Verdict. The text
// may wrap the JSON object in markdown fences or prose; the first balanced
// top-level object is extracted before decoding. Any missing field,
// out-of-range score, or unknown label yields ErrMalformedOutput.
func ParseVerdict(raw string) (Verdict, error) {
	jsonStr, ok := extractObject(raw)
	if !ok {
		return Verdict{}, ErrMalformedOutput
	}

	var w wireVerdict
	dec := json.NewDecoder(strings.NewReader(jsonStr))
	if err := dec.Decode(&w); err != nil {
		return Verdict{}, ErrMalformedOutput
	}

	if w.InformationScore == nil || w.RelevanceScore == nil ||
		w.InsightScore == nil || w.SpamLikelihood == nil ||
		w.FinalLabel == nil || w.Reasons == nil {
		return Verdict{}, ErrMalformedOutput
	}
	for _, s := range []int{*w.InformationScore, *w.RelevanceScore, *w.InsightScore} {
		if s < model.MinSubScore || s > model.MaxSubScore {
			return Verdict{}, ErrMalformedOutput
		}
	}
	if *w.SpamLikelihood < 0 || *w.SpamLikelihood > 1 {
		return Verdict{}, ErrMalformedOutput
	}
	label, ok := model.NormalizeLabel(*w.FinalLabel)
	if !ok {
		return Verdict{}, ErrMalformedOutput
	}

	return Verdict{
		InformationScore: *w.InformationScore,
		RelevanceScore:   *w.RelevanceScore,
		InsightScore:     *w.InsightScore,
		SpamLikelihood:   *w.SpamLikelihood,
		Label:            label,
		Reasons:          w.Reasons,
		Raw:              raw,
	}, nil
}

// extractObject returns the substring from the first '{' to the last '}'.
// The oracle sometimes wraps its JSON in markdown fences despite being told
// not to; this mirrors the tolerance of the original batch pipeline.
func extractObject(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}
