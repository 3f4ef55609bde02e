package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Base-InfoFi/Backend/internal/domain/leaderboard"
	"github.com/Base-InfoFi/Backend/internal/domain/model"
	"github.com/Base-InfoFi/Backend/pkg/metrics"
)

// pairKey identifies one (user, project) ledger entry.
type pairKey struct {
	userID    string
	projectID string
}

// MemStore is the in-memory Store implementation. A single mutex guards
// all state: ApplyJudgment's judgment insert and ledger increments happen
// under one lock hold, which is what makes them observably atomic to
// concurrent readers.
type MemStore struct {
	mu  sync.RWMutex
	now func() time.Time

	projects   map[string]model.Project // by id
	slugs      map[string]string        // slug -> project id
	identities map[string]model.Identity
	wallets    map[string]string // wallet -> identity id
	handles    map[string]string // handle -> identity id
	contents   map[string]model.ContentItem
	judgments  map[string]model.Judgment // by content id
	ledgers    map[pairKey]model.LedgerEntry
}

// NewMemStore creates an empty in-memory store.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		now:        time.Now,
		projects:   make(map[string]model.Project),
		slugs:      make(map[string]string),
		identities: make(map[string]model.Identity),
		wallets:    make(map[string]string),
		handles:    make(map[string]string),
		contents:   make(map[string]model.ContentItem),
		judgments:  make(map[string]model.Judgment),
		ledgers:    make(map[pairKey]model.LedgerEntry),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CreateProject inserts a project, enforcing slug uniqueness.
func (s *MemStore) CreateProject(ctx context.Context, p model.Project) (model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.slugs[p.Slug]; exists {
		return model.Project{}, ErrDuplicate
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	s.projects[p.ID] = p
	s.slugs[p.Slug] = p.ID
	return p, nil
}

// ProjectBySlug looks a project up by its unique slug.
func (s *MemStore) ProjectBySlug(ctx context.Context, slug string) (model.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.slugs[slug]
	if !ok {
		return model.Project{}, ErrNotFound
	}
	return s.projects[id], nil
}

// ProjectByID looks a project up by id.
func (s *MemStore) ProjectByID(ctx context.Context, id string) (model.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return model.Project{}, ErrNotFound
	}
	return p, nil
}

// ListProjects returns all projects, newest first.
func (s *MemStore) ListProjects(ctx context.Context) ([]model.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Slug < out[j].Slug
	})
	return out, nil
}

// UpdateProjectContext replaces a project's grounding context summary.
func (s *MemStore) UpdateProjectContext(ctx context.Context, id, contextSummary string) (model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok {
		return model.Project{}, ErrNotFound
	}
	p.ContextSummary = contextSummary
	s.projects[id] = p
	return p, nil
}

// ResolveIdentity finds or creates an identity. Wallet takes precedence as
// the stable key; the missing key is backfilled on subsequent sightings.
func (s *MemStore) ResolveIdentity(ctx context.Context, wallet, handle string) (model.Identity, error) {
	if wallet == "" && handle == "" {
		return model.Identity{}, ErrInvalidIdentity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if wallet != "" {
		if id, ok := s.wallets[wallet]; ok {
			ident := s.identities[id]
			if handle != "" && ident.Handle == "" {
				ident.Handle = handle
				s.handles[handle] = id
				s.identities[id] = ident
			}
			return ident, nil
		}
		// A handle-only identity seen before may now reveal its wallet.
		if handle != "" {
			if id, ok := s.handles[handle]; ok {
				ident := s.identities[id]
				if ident.Wallet == "" {
					ident.Wallet = wallet
					s.wallets[wallet] = id
					s.identities[id] = ident
					return ident, nil
				}
			}
		}
		ident := model.Identity{
			ID:          uuid.NewString(),
			Wallet:      wallet,
			Handle:      handle,
			DisplayName: handle,
			CreatedAt:   s.now(),
		}
		s.identities[ident.ID] = ident
		s.wallets[wallet] = ident.ID
		if handle != "" {
			s.handles[handle] = ident.ID
		}
		return ident, nil
	}

	if id, ok := s.handles[handle]; ok {
		return s.identities[id], nil
	}
	ident := model.Identity{
		ID:          uuid.NewString(),
		Handle:      handle,
		DisplayName: handle,
		CreatedAt:   s.now(),
	}
	s.identities[ident.ID] = ident
	s.handles[handle] = ident.ID
	return ident, nil
}

// IdentityByID looks an identity up by id.
func (s *MemStore) IdentityByID(ctx context.Context, id string) (model.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ident, ok := s.identities[id]
	if !ok {
		return model.Identity{}, ErrNotFound
	}
	return ident, nil
}

// InsertContent persists one immutable content item.
func (s *MemStore) InsertContent(ctx context.Context, item model.ContentItem) (model.ContentItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[item.ProjectID]; !ok {
		return model.ContentItem{}, ErrNotFound
	}
	if _, ok := s.identities[item.AuthorID]; !ok {
		return model.ContentItem{}, ErrNotFound
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := s.now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	if item.PostedAt.IsZero() {
		item.PostedAt = item.CreatedAt
	}
	s.contents[item.ID] = item
	return item, nil
}

// ContentByID looks a content item up by id.
func (s *MemStore) ContentByID(ctx context.Context, id string) (model.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.contents[id]
	if !ok {
		return model.ContentItem{}, ErrNotFound
	}
	return item, nil
}

// ListUnjudged returns matching unjudged content, newest first.
func (s *MemStore) ListUnjudged(ctx context.Context, f ContentFilter) ([]model.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]model.ContentItem, 0)
	for id, item := range s.contents {
		if _, judged := s.judgments[id]; judged {
			continue
		}
		if !matchesQuery(item, query) {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func matchesQuery(item model.ContentItem, query string) bool {
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(item.RawContent), query) {
		return true
	}
	for _, tag := range item.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// ApplyJudgment persists the judgment and moves all three ledger counters
// under a single lock hold.
func (s *MemStore) ApplyJudgment(ctx context.Context, j model.Judgment, userID, projectID string) (model.Judgment, model.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contents[j.ContentID]; !ok {
		return model.Judgment{}, model.LedgerEntry{}, ErrNotFound
	}
	if _, exists := s.judgments[j.ContentID]; exists {
		return model.Judgment{}, model.LedgerEntry{}, ErrAlreadyJudged
	}

	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	now := s.now()
	if j.CreatedAt.IsZero() {
		j.CreatedAt = now
	}
	s.judgments[j.ContentID] = j

	key := pairKey{userID: userID, projectID: projectID}
	entry, ok := s.ledgers[key]
	if !ok {
		entry = model.LedgerEntry{UserID: userID, ProjectID: projectID}
	}
	entry.TotalReward += j.Reward
	entry.TotalSlash += j.Slash
	entry.NetScore += j.Reward - j.Slash
	entry.UpdatedAt = now
	s.ledgers[key] = entry

	metrics.RecordLedgerUpdate()
	metrics.UpdateLedgerEntries(len(s.ledgers))

	return j, entry, nil
}

// JudgmentByContent returns the judgment for a content item.
func (s *MemStore) JudgmentByContent(ctx context.Context, contentID string) (model.Judgment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.judgments[contentID]
	if !ok {
		return model.Judgment{}, ErrNotFound
	}
	return j, nil
}

// JudgmentsByProject returns a project's judgments, newest first.
func (s *MemStore) JudgmentsByProject(ctx context.Context, projectID string, limit int) ([]model.Judgment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Judgment, 0)
	for contentID, j := range s.judgments {
		item, ok := s.contents[contentID]
		if !ok || item.ProjectID != projectID {
			continue
		}
		out = append(out, j)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// JudgedPosts joins judgments with content and owners for aggregation.
func (s *MemStore) JudgedPosts(ctx context.Context, f JudgedPostFilter) ([]leaderboard.JudgedPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]leaderboard.JudgedPost, 0, len(s.judgments))
	for contentID, j := range s.judgments {
		item, ok := s.contents[contentID]
		if !ok {
			continue
		}
		if f.ProjectID != "" && item.ProjectID != f.ProjectID {
			continue
		}
		if f.Bounded && item.PostedAt.Before(f.Since) {
			continue
		}
		project := s.projects[item.ProjectID]
		author := s.identities[item.AuthorID]
		out = append(out, leaderboard.JudgedPost{
			ContentID:   contentID,
			ProjectID:   item.ProjectID,
			ProjectSlug: project.Slug,
			ProjectName: project.Name,
			UserID:      item.AuthorID,
			Handle:      author.Handle,
			Label:       j.Label,
			Reward:      j.Reward,
			Slash:       j.Slash,
			PostedAt:    item.PostedAt,
		})
	}
	return out, nil
}

// LedgerSnapshots returns ledger entries joined with display keys.
func (s *MemStore) LedgerSnapshots(ctx context.Context, projectID, userID string) ([]leaderboard.LedgerSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]leaderboard.LedgerSnapshot, 0, len(s.ledgers))
	for key, entry := range s.ledgers {
		if projectID != "" && key.projectID != projectID {
			continue
		}
		if userID != "" && key.userID != userID {
			continue
		}
		project := s.projects[key.projectID]
		author := s.identities[key.userID]
		out = append(out, leaderboard.LedgerSnapshot{
			UserID:      key.userID,
			Handle:      author.Handle,
			ProjectID:   key.projectID,
			ProjectSlug: project.Slug,
			TotalReward: entry.TotalReward,
			TotalSlash:  entry.TotalSlash,
			NetScore:    entry.NetScore,
		})
	}
	return out, nil
}

// Ledger returns the entry for one (user, project) pair.
func (s *MemStore) Ledger(ctx context.Context, userID, projectID string) (model.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.ledgers[pairKey{userID: userID, projectID: projectID}]
	if !ok {
		return model.LedgerEntry{}, ErrNotFound
	}
	return entry, nil
}

// Counts reports store sizes.
func (s *MemStore) Counts(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Stats{
		Projects:      len(s.projects),
		Identities:    len(s.identities),
		ContentItems:  len(s.contents),
		Judgments:     len(s.judgments),
		LedgerEntries: len(s.ledgers),
	}, nil
}
