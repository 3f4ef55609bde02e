// Package policy maps oracle verdicts to reward and slash points.
//
// The mapping is a pure function with no I/O and no state: identical
// verdicts always produce identical actions, which is what makes the
// ledger reproducible under test.
package policy

import (
	"math"

	"github.com/Base-InfoFi/Backend/internal/domain/model"
	"github.com/Base-InfoFi/Backend/internal/domain/oracle"
)

// Policy tuning constants on the canonical 1-10 scale.
const (
	maxSlash             = 10
	baseReward           = 5
	borderlineSpamCutoff = 0.5
)

// Action is the reward/slash outcome of one judgment. Both fields are
// non-negative.
type Action struct {
	Reward int
	Slash  int
}

// Calculate derives the action for a verdict.
//
//   - SHITPOSTING slashes in proportion to severity: spam likelihood plus
//     the information deficit, saturating at 1. Never rewards.
//   - BORDERLINE grants a small reward band (roughly 0-5) and a single
//     warning slash point when spam likelihood crosses the cutoff.
//   - GOOD scales a base reward of 5 by (1 + (avg-5)/5) and floors the
//     result at 1, so a good post always earns something. Never slashes.
func Calculate(v oracle.Verdict) Action {
	switch v.Label {
	case model.LabelShitposting:
		deficit := float64(model.MaxSubScore-v.InformationScore) / float64(model.MaxSubScore)
		severity := math.Min(1, v.SpamLikelihood+deficit)
		return Action{
			Reward: 0,
			Slash:  int(math.Round(maxSlash * severity)),
		}

	case model.LabelBorderline:
		base := mean(v.InformationScore, v.RelevanceScore, v.InsightScore)
		reward := int(math.Round(base / 2))
		if reward < 0 {
			reward = 0
		}
		slash := 0
		if v.SpamLikelihood > borderlineSpamCutoff {
			slash = 1
		}
		return Action{Reward: reward, Slash: slash}

	default: // GOOD
		avg := mean(v.InformationScore, v.RelevanceScore, v.InsightScore)
		multiplier := 1 + (avg-5)/5
		reward := int(math.Round(baseReward * multiplier))
		if reward < 1 {
			reward = 1
		}
		return Action{Reward: reward, Slash: 0}
	}
}

func mean(a, b, c int) float64 {
	return float64(a+b+c) / 3
}
