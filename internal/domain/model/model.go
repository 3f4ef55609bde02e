// Package model contains domain entities passed between layers.
package model

import (
	"strings"
	"time"
)

// Sub-score bounds for the canonical 1-10 scale.
const (
	MinSubScore = 1
	MaxSubScore = 10
)

// Label classifies a judged content item.
type Label string

// Final labels produced by the oracle.
const (
	LabelGood        Label = "GOOD"
	LabelShitposting Label = "SHITPOSTING"
	LabelBorderline  Label = "BORDERLINE"
)

// NormalizeLabel maps a case-insensitive oracle label to its canonical form.
// The second return is false for anything outside the known set.
func NormalizeLabel(s string) (Label, bool) {
	switch Label(strings.ToUpper(strings.TrimSpace(s))) {
	case LabelGood:
		return LabelGood, true
	case LabelShitposting:
		return LabelShitposting, true
	case LabelBorderline:
		return LabelBorderline, true
	default:
		return "", false
	}
}

// Project is a tracked subject referenced by content and ledger entries.
// ContextSummary grounds the oracle's evaluation.
type Project struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	ContextSummary string    `json:"contextSummary,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Identity is a participant keyed by wallet address and/or handle.
// Wallet is the stable key when present; handle is the fallback.
type Identity struct {
	ID          string    `json:"id"`
	Wallet      string    `json:"wallet,omitempty"`
	Handle      string    `json:"handle,omitempty"`
	DisplayName string    `json:"displayName,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ContentItem is one unit of user-generated text. Immutable once created.
type ContentItem struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"projectId"`
	AuthorID   string    `json:"authorId"`
	Source     string    `json:"source"`
	SourceID   string    `json:"sourceId,omitempty"`
	URL        string    `json:"url,omitempty"`
	RawContent string    `json:"rawContent"`
	Tags       []string  `json:"tags,omitempty"`
	PostedAt   time.Time `json:"postedAt"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Judgment is the outcome of evaluating exactly one ContentItem.
// At most one Judgment exists per item; created once, immutable thereafter.
type Judgment struct {
	ID               string    `json:"id"`
	ContentID        string    `json:"contentId"`
	InformationScore int       `json:"informationScore"`
	RelevanceScore   int       `json:"relevanceScore"`
	InsightScore     int       `json:"insightScore"`
	SpamLikelihood   float64   `json:"spamLikelihood"`
	Label            Label     `json:"finalLabel"`
	Reward           int       `json:"rewardPoints"`
	Slash            int       `json:"slashPoints"`
	Reasons          []string  `json:"reasons"`
	Model            string    `json:"model,omitempty"`
	RawResponse      string    `json:"rawResponse,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// NetDelta is the signed ledger delta this judgment carries.
func (j Judgment) NetDelta() int {
	return j.Reward - j.Slash
}

// LedgerEntry is the running reputation aggregate for a (user, project) pair.
// TotalReward, TotalSlash and NetScore are three independently incremented
// counters; every application moves all three in one atomic unit.
type LedgerEntry struct {
	UserID      string    `json:"userId"`
	ProjectID   string    `json:"projectId"`
	TotalReward int       `json:"totalReward"`
	TotalSlash  int       `json:"totalSlash"`
	NetScore    int       `json:"netScore"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
