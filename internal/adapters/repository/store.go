// Package repository defines the persistence contract for the reputation
// engine and its in-memory implementation.
package repository

import (
	"context"
	"time"

	"github.com/Base-InfoFi/Backend/internal/domain/leaderboard"
	"github.com/Base-InfoFi/Backend/internal/domain/model"
)

// ContentFilter selects unjudged content for batch evaluation.
type ContentFilter struct {
	// Query matches case-insensitively against raw content and tags.
	Query string
	// Limit caps the number of returned items.
	Limit int
}

// JudgedPostFilter scopes aggregation reads.
type JudgedPostFilter struct {
	// Since bounds content posting time when Bounded is true.
	Since   time.Time
	Bounded bool
	// ProjectID restricts to one project when non-empty.
	ProjectID string
}

// Stats summarizes store contents for monitoring.
type Stats struct {
	Projects      int `json:"projects"`
	Identities    int `json:"identities"`
	ContentItems  int `json:"contentItems"`
	Judgments     int `json:"judgments"`
	LedgerEntries int `json:"ledgerEntries"`
}

// Store provides read/write access to the persistent state.
//
// Everything except the ledger is append-only or upsert-by-unique-key.
// ApplyJudgment is the one read-modify-write path: implementations must
// persist the judgment and move all three ledger counters as a single
// atomic unit, and must reject a second judgment for the same content.
type Store interface {
	// CreateProject inserts a project. Returns ErrDuplicate when the slug
	// is already taken.
	CreateProject(ctx context.Context, p model.Project) (model.Project, error)

	// ProjectBySlug returns ErrNotFound for unknown slugs.
	ProjectBySlug(ctx context.Context, slug string) (model.Project, error)

	// ProjectByID returns ErrNotFound for unknown ids.
	ProjectByID(ctx context.Context, id string) (model.Project, error)

	// ListProjects returns all projects, newest first.
	ListProjects(ctx context.Context) ([]model.Project, error)

	// UpdateProjectContext replaces a project's grounding context summary.
	// Returns ErrNotFound for unknown ids.
	UpdateProjectContext(ctx context.Context, id, contextSummary string) (model.Project, error)

	// ResolveIdentity finds or creates the identity for a wallet and/or
	// handle. Wallet is the stable key; when an identity known only by
	// wallet arrives with a handle (or vice versa) the missing key is
	// backfilled. Returns ErrInvalidIdentity when both keys are empty.
	ResolveIdentity(ctx context.Context, wallet, handle string) (model.Identity, error)

	// IdentityByID returns ErrNotFound for unknown ids.
	IdentityByID(ctx context.Context, id string) (model.Identity, error)

	// InsertContent persists one immutable content item.
	InsertContent(ctx context.Context, item model.ContentItem) (model.ContentItem, error)

	// ContentByID returns ErrNotFound for unknown ids.
	ContentByID(ctx context.Context, id string) (model.ContentItem, error)

	// ListUnjudged returns matching content items without a judgment,
	// newest first. A query that matches nothing returns an empty slice.
	ListUnjudged(ctx context.Context, f ContentFilter) ([]model.ContentItem, error)

	// ApplyJudgment persists the judgment and applies its
	// (reward, slash, net) deltas to the (user, project) ledger entry as
	// one atomic unit. Returns ErrAlreadyJudged when the content already
	// has a judgment.
	ApplyJudgment(ctx context.Context, j model.Judgment, userID, projectID string) (model.Judgment, model.LedgerEntry, error)

	// JudgmentByContent returns ErrNotFound when the item is unjudged.
	JudgmentByContent(ctx context.Context, contentID string) (model.Judgment, error)

	// JudgmentsByProject returns judgments for a project, newest first,
	// capped at limit. Used by the report generator.
	JudgmentsByProject(ctx context.Context, projectID string, limit int) ([]model.Judgment, error)

	// JudgedPosts returns judgment/content/owner joins for aggregation.
	JudgedPosts(ctx context.Context, f JudgedPostFilter) ([]leaderboard.JudgedPost, error)

	// LedgerSnapshots returns ledger entries joined with display keys,
	// optionally scoped to one project and/or one user.
	LedgerSnapshots(ctx context.Context, projectID, userID string) ([]leaderboard.LedgerSnapshot, error)

	// Ledger returns the entry for a (user, project) pair, or ErrNotFound.
	Ledger(ctx context.Context, userID, projectID string) (model.LedgerEntry, error)

	// Counts reports store sizes for monitoring.
	Counts(ctx context.Context) (Stats, error)
}
