// Package report builds narrative project reports from stored judgments.
// Statistics are computed locally; the prose section is produced by the
// oracle at the narrative temperature.
package report

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Base-InfoFi/Backend/internal/domain/model"
	"github.com/Base-InfoFi/Backend/internal/domain/oracle"
	"github.com/Base-InfoFi/Backend/pkg/logger"
)

const (
	// maxJudgments bounds the evidence window to the most recent judgments.
	maxJudgments = 100
	// maxReasons bounds how many distinct judge reasons feed the prompt.
	maxReasons = 20
	// narrativeMaxTokens caps the generated report length.
	narrativeMaxTokens = 1500
)

// Stats summarizes a set of judgments.
type Stats struct {
	Total           int     `json:"total"`
	GoodCount       int     `json:"goodCount"`
	ShitpostCount   int     `json:"shitpostCount"`
	BorderlineCount int     `json:"borderlineCount"`
	AvgInformation  float64 `json:"avgInformation"`
	AvgInsight      float64 `json:"avgInsight"`
	TotalReward     int     `json:"totalReward"`
	TotalSlash      int     `json:"totalSlash"`
}

// Report is a generated project report.
type Report struct {
	ProjectID   string `json:"projectId"`
	ProjectSlug string `json:"projectSlug"`
	Stats       Stats  `json:"stats"`
	Narrative   string `json:"narrative"`
}

// Summarize folds judgments into aggregate statistics. Averages are rounded
// to one decimal place.
func Summarize(judgments []model.Judgment) Stats {
	stats := Stats{Total: len(judgments)}
	if stats.Total == 0 {
		return stats
	}

	var infoSum, insightSum int
	for _, j := range judgments {
		switch j.Label {
		case model.LabelGood:
			stats.GoodCount++
		case model.LabelShitposting:
			stats.ShitpostCount++
		default:
			stats.BorderlineCount++
		}
		infoSum += j.InformationScore
		insightSum += j.InsightScore
		stats.TotalReward += j.Reward
		stats.TotalSlash += j.Slash
	}

	stats.AvgInformation = round1(float64(infoSum) / float64(stats.Total))
	stats.AvgInsight = round1(float64(insightSum) / float64(stats.Total))
	return stats
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// uniqueReasons collects distinct judge reasons in first-seen order, capped
// at maxReasons.
func uniqueReasons(judgments []model.Judgment) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, maxReasons)
	for _, j := range judgments {
		for _, reason := range j.Reasons {
			reason = strings.TrimSpace(reason)
			if reason == "" {
				continue
			}
			if _, ok := seen[reason]; ok {
				continue
			}
			seen[reason] = struct{}{}
			out = append(out, reason)
			if len(out) == maxReasons {
				return out
			}
		}
	}
	return out
}

// Generator turns a project's judgment history into a report.
type Generator struct {
	client oracle.Client
	log    logger.Logger
}

// NewGenerator creates a report generator over the given oracle client.
func NewGenerator(client oracle.Client, opts ...Option) *Generator {
	g := &Generator{
		client: client,
		log:    logger.Named("report"),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Generate computes statistics and asks the oracle for a markdown narrative.
// Judgments beyond the evidence window are ignored; they are expected newest
// first.
func (g *Generator) Generate(ctx context.Context, project model.Project, judgments []model.Judgment) (Report, error) {
	if len(judgments) == 0 {
		return Report{}, ErrNoData
	}
	if len(judgments) > maxJudgments {
		judgments = judgments[:maxJudgments]
	}

	stats := Summarize(judgments)
	reasons := uniqueReasons(judgments)

	narrative, err := g.client.Complete(ctx,
		narrativeSystemPrompt, narrativeUserPrompt(project, stats, reasons),
		oracle.TemperatureNarrative, narrativeMaxTokens)
	if err != nil {
		return Report{}, fmt.Errorf("narrative completion: %w", err)
	}

	g.log.Info(ctx, "report generated",
		logger.String("project", project.Slug),
		logger.Int("judgments", stats.Total),
	)

	return Report{
		ProjectID:   project.ID,
		ProjectSlug: project.Slug,
		Stats:       stats,
		Narrative:   strings.TrimSpace(narrative),
	}, nil
}

const narrativeSystemPrompt = `You are a Web3 data analyst. You write concise markdown reports about the quality of community discussion around a project, based on aggregated moderation statistics.`

func narrativeUserPrompt(project model.Project, stats Stats, reasons []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project: %s\n", project.Name)
	if project.ContextSummary != "" {
		fmt.Fprintf(&b, "Context: %s\n", project.ContextSummary)
	}
	fmt.Fprintf(&b, "Posts analyzed: %d\n", stats.Total)
	b.WriteString("Statistics:\n")
	fmt.Fprintf(&b, "- good: %d\n", stats.GoodCount)
	fmt.Fprintf(&b, "- shitposting: %d\n", stats.ShitpostCount)
	fmt.Fprintf(&b, "- borderline: %d\n", stats.BorderlineCount)
	fmt.Fprintf(&b, "- average information score: %.1f/10\n", stats.AvgInformation)
	fmt.Fprintf(&b, "- average insight score: %.1f/10\n", stats.AvgInsight)
	fmt.Fprintf(&b, "- points rewarded: %d, points slashed: %d\n", stats.TotalReward, stats.TotalSlash)

	if len(reasons) > 0 {
		sorted := make([]string, len(reasons))
		copy(sorted, reasons)
		sort.Strings(sorted)
		fmt.Fprintf(&b, "Common judge reasons: %s\n", strings.Join(sorted, ", "))
	}

	b.WriteString(`
Write a markdown report with these sections:

1. **Summary**: the overall mood and information quality of the discussion.
2. **Main topics**: what people are mostly talking about, inferred from the judge reasons.
3. **Risk and spam analysis**: if the spam share is high, characterize it and comment on trustworthiness.
4. **Conclusion**: whether this project deserves attention or caution.
`)
	return b.String()
}
