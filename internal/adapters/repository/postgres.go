package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Base-InfoFi/Backend/internal/domain/leaderboard"
	"github.com/Base-InfoFi/Backend/internal/domain/model"
	"github.com/Base-InfoFi/Backend/pkg/metrics"
)

const pgUniqueViolation = "23505"

// PostgresStore is the pgx-backed Store implementation. ApplyJudgment runs
// the judgment insert and the ledger upsert in one transaction.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// CreateProject inserts a project, enforcing slug uniqueness.
func (s *PostgresStore) CreateProject(ctx context.Context, p model.Project) (model.Project, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO projects (id, name, slug, context_summary)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		p.ID, p.Name, p.Slug, p.ContextSummary,
	).Scan(&p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Project{}, ErrDuplicate
		}
		return model.Project{}, fmt.Errorf("insert project: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) scanProject(row pgx.Row) (model.Project, error) {
	var p model.Project
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.ContextSummary, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Project{}, ErrNotFound
	}
	if err != nil {
		return model.Project{}, fmt.Errorf("scan project: %w", err)
	}
	return p, nil
}

// ProjectBySlug looks a project up by its unique slug.
func (s *PostgresStore) ProjectBySlug(ctx context.Context, slug string) (model.Project, error) {
	return s.scanProject(s.pool.QueryRow(ctx, `
		SELECT id, name, slug, context_summary, created_at
		FROM projects WHERE slug = $1`, slug))
}

// ProjectByID looks a project up by id.
func (s *PostgresStore) ProjectByID(ctx context.Context, id string) (model.Project, error) {
	return s.scanProject(s.pool.QueryRow(ctx, `
		SELECT id, name, slug, context_summary, created_at
		FROM projects WHERE id = $1`, id))
}

// ListProjects returns all projects, newest first.
func (s *PostgresStore) ListProjects(ctx context.Context) ([]model.Project, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, slug, context_summary, created_at
		FROM projects ORDER BY created_at DESC, slug ASC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := make([]model.Project, 0)
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.ContextSummary, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateProjectContext replaces a project's grounding context summary.
func (s *PostgresStore) UpdateProjectContext(ctx context.Context, id, contextSummary string) (model.Project, error) {
	return s.scanProject(s.pool.QueryRow(ctx, `
		UPDATE projects SET context_summary = $2
		WHERE id = $1
		RETURNING id, name, slug, context_summary, created_at`,
		id, contextSummary))
}

// ResolveIdentity finds or creates an identity, wallet taking precedence and
// the missing key backfilled when a later sighting reveals it.
func (s *PostgresStore) ResolveIdentity(ctx context.Context, wallet, handle string) (model.Identity, error) {
	if wallet == "" && handle == "" {
		return model.Identity{}, ErrInvalidIdentity
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return model.Identity{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	scan := func(row pgx.Row) (model.Identity, error) {
		var ident model.Identity
		err := row.Scan(&ident.ID, &ident.Wallet, &ident.Handle, &ident.DisplayName, &ident.CreatedAt)
		return ident, err
	}

	if wallet != "" {
		ident, err := scan(tx.QueryRow(ctx, `
			SELECT id, COALESCE(wallet, ''), COALESCE(handle, ''), display_name, created_at
			FROM identities WHERE wallet = $1`, wallet))
		switch {
		case err == nil:
			if handle != "" && ident.Handle == "" {
				if _, err := tx.Exec(ctx,
					"UPDATE identities SET handle = $1 WHERE id = $2", handle, ident.ID); err != nil {
					return model.Identity{}, fmt.Errorf("backfill handle: %w", err)
				}
				ident.Handle = handle
			}
			return ident, tx.Commit(ctx)
		case !errors.Is(err, pgx.ErrNoRows):
			return model.Identity{}, fmt.Errorf("lookup wallet: %w", err)
		}
	}

	if handle != "" {
		ident, err := scan(tx.QueryRow(ctx, `
			SELECT id, COALESCE(wallet, ''), COALESCE(handle, ''), display_name, created_at
			FROM identities WHERE handle = $1`, handle))
		switch {
		case err == nil:
			if wallet != "" && ident.Wallet == "" {
				if _, err := tx.Exec(ctx,
					"UPDATE identities SET wallet = $1 WHERE id = $2", wallet, ident.ID); err != nil {
					return model.Identity{}, fmt.Errorf("backfill wallet: %w", err)
				}
				ident.Wallet = wallet
			}
			return ident, tx.Commit(ctx)
		case !errors.Is(err, pgx.ErrNoRows):
			return model.Identity{}, fmt.Errorf("lookup handle: %w", err)
		}
	}

	ident := model.Identity{
		ID:          uuid.NewString(),
		Wallet:      wallet,
		Handle:      handle,
		DisplayName: handle,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO identities (id, wallet, handle, display_name)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4)
		RETURNING created_at`,
		ident.ID, ident.Wallet, ident.Handle, ident.DisplayName,
	).Scan(&ident.CreatedAt)
	if err != nil {
		return model.Identity{}, fmt.Errorf("insert identity: %w", err)
	}
	return ident, tx.Commit(ctx)
}

// IdentityByID looks an identity up by id.
func (s *PostgresStore) IdentityByID(ctx context.Context, id string) (model.Identity, error) {
	var ident model.Identity
	err := s.pool.QueryRow(ctx, `
		SELECT id, COALESCE(wallet, ''), COALESCE(handle, ''), display_name, created_at
		FROM identities WHERE id = $1`, id,
	).Scan(&ident.ID, &ident.Wallet, &ident.Handle, &ident.DisplayName, &ident.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Identity{}, ErrNotFound
	}
	if err != nil {
		return model.Identity{}, fmt.Errorf("scan identity: %w", err)
	}
	return ident, nil
}

// InsertContent persists one immutable content item.
func (s *PostgresStore) InsertContent(ctx context.Context, item model.ContentItem) (model.ContentItem, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}
	if item.PostedAt.IsZero() {
		item.PostedAt = time.Now().UTC()
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO content_items (id, project_id, author_id, source, source_id, url, raw_content, tags, posted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING posted_at, created_at`,
		item.ID, item.ProjectID, item.AuthorID, item.Source, item.SourceID,
		item.URL, item.RawContent, item.Tags, item.PostedAt,
	).Scan(&item.PostedAt, &item.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return model.ContentItem{}, ErrNotFound
		}
		return model.ContentItem{}, fmt.Errorf("insert content: %w", err)
	}
	return item, nil
}

const contentColumns = `id, project_id, author_id, source, source_id, url, raw_content, tags, posted_at, created_at`

func scanContent(row pgx.Row) (model.ContentItem, error) {
	var item model.ContentItem
	err := row.Scan(&item.ID, &item.ProjectID, &item.AuthorID, &item.Source, &item.SourceID,
		&item.URL, &item.RawContent, &item.Tags, &item.PostedAt, &item.CreatedAt)
	return item, err
}

// ContentByID looks a content item up by id.
func (s *PostgresStore) ContentByID(ctx context.Context, id string) (model.ContentItem, error) {
	item, err := scanContent(s.pool.QueryRow(ctx,
		`SELECT `+contentColumns+` FROM content_items WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ContentItem{}, ErrNotFound
	}
	if err != nil {
		return model.ContentItem{}, fmt.Errorf("scan content: %w", err)
	}
	return item, nil
}

// ListUnjudged returns matching unjudged content, newest first.
// escapeLike neutralizes LIKE metacharacters so a query string matches
// literally, the same way the memory store's substring match does.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func (s *PostgresStore) ListUnjudged(ctx context.Context, f ContentFilter) ([]model.ContentItem, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 1000
	}
	pattern := "%" + escapeLike(f.Query) + "%"

	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.project_id, c.author_id, c.source, c.source_id, c.url,
		       c.raw_content, c.tags, c.posted_at, c.created_at
		FROM content_items c
		LEFT JOIN judgments j ON j.content_id = c.id
		WHERE j.id IS NULL
		  AND ($1 = '' OR c.raw_content ILIKE $2
		       OR EXISTS (SELECT 1 FROM unnest(c.tags) t WHERE t ILIKE $2))
		ORDER BY c.created_at DESC, c.id ASC
		LIMIT $3`,
		f.Query, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("list unjudged: %w", err)
	}
	defer rows.Close()

	out := make([]model.ContentItem, 0)
	for rows.Next() {
		item, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// ApplyJudgment persists the judgment and moves all three ledger counters in
// one transaction. The unique index on judgments.content_id is the at-most
// once backstop for concurrent writers.
func (s *PostgresStore) ApplyJudgment(ctx context.Context, j model.Judgment, userID, projectID string) (model.Judgment, model.LedgerEntry, error) {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	if j.Reasons == nil {
		j.Reasons = []string{}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return model.Judgment{}, model.LedgerEntry{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO judgments (id, content_id, information_score, relevance_score, insight_score,
		                       spam_likelihood, label, reward, slash, reasons, model, raw_response)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at`,
		j.ID, j.ContentID, j.InformationScore, j.RelevanceScore, j.InsightScore,
		j.SpamLikelihood, string(j.Label), j.Reward, j.Slash, j.Reasons, j.Model, j.RawResponse,
	).Scan(&j.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Judgment{}, model.LedgerEntry{}, ErrAlreadyJudged
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return model.Judgment{}, model.LedgerEntry{}, ErrNotFound
		}
		return model.Judgment{}, model.LedgerEntry{}, fmt.Errorf("insert judgment: %w", err)
	}

	entry := model.LedgerEntry{UserID: userID, ProjectID: projectID}
	err = tx.QueryRow(ctx, `
		INSERT INTO ledger_entries (user_id, project_id, total_reward, total_slash, net_score, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id, project_id) DO UPDATE SET
			total_reward = ledger_entries.total_reward + EXCLUDED.total_reward,
			total_slash = ledger_entries.total_slash + EXCLUDED.total_slash,
			net_score = ledger_entries.net_score + EXCLUDED.net_score,
			updated_at = NOW()
		RETURNING total_reward, total_slash, net_score, updated_at`,
		userID, projectID, j.Reward, j.Slash, j.Reward-j.Slash,
	).Scan(&entry.TotalReward, &entry.TotalSlash, &entry.NetScore, &entry.UpdatedAt)
	if err != nil {
		return model.Judgment{}, model.LedgerEntry{}, fmt.Errorf("upsert ledger: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Judgment{}, model.LedgerEntry{}, fmt.Errorf("commit: %w", err)
	}

	metrics.RecordLedgerUpdate()
	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM ledger_entries").Scan(&total); err == nil {
		metrics.UpdateLedgerEntries(total)
	}

	return j, entry, nil
}

const judgmentColumns = `id, content_id, information_score, relevance_score, insight_score,
	spam_likelihood, label, reward, slash, reasons, model, raw_response, created_at`

func scanJudgment(row pgx.Row) (model.Judgment, error) {
	var j model.Judgment
	var label string
	err := row.Scan(&j.ID, &j.ContentID, &j.InformationScore, &j.RelevanceScore, &j.InsightScore,
		&j.SpamLikelihood, &label, &j.Reward, &j.Slash, &j.Reasons, &j.Model, &j.RawResponse, &j.CreatedAt)
	j.Label = model.Label(label)
	return j, err
}

// JudgmentByContent returns the judgment for a content item.
func (s *PostgresStore) JudgmentByContent(ctx context.Context, contentID string) (model.Judgment, error) {
	j, err := scanJudgment(s.pool.QueryRow(ctx,
		`SELECT `+judgmentColumns+` FROM judgments WHERE content_id = $1`, contentID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Judgment{}, ErrNotFound
	}
	if err != nil {
		return model.Judgment{}, fmt.Errorf("scan judgment: %w", err)
	}
	return j, nil
}

// JudgmentsByProject returns a project's judgments, newest first.
func (s *PostgresStore) JudgmentsByProject(ctx context.Context, projectID string, limit int) ([]model.Judgment, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx, `
		SELECT j.id, j.content_id, j.information_score, j.relevance_score, j.insight_score,
		       j.spam_likelihood, j.label, j.reward, j.slash, j.reasons, j.model, j.raw_response, j.created_at
		FROM judgments j
		JOIN content_items c ON c.id = j.content_id
		WHERE c.project_id = $1
		ORDER BY j.created_at DESC, j.id ASC
		LIMIT $2`,
		projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("list judgments: %w", err)
	}
	defer rows.Close()

	out := make([]model.Judgment, 0)
	for rows.Next() {
		j, err := scanJudgment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan judgment: %w", err)
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// JudgedPosts joins judgments with content and owners for aggregation.
func (s *PostgresStore) JudgedPosts(ctx context.Context, f JudgedPostFilter) ([]leaderboard.JudgedPost, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.project_id, p.slug, p.name, c.author_id, COALESCE(i.handle, ''),
		       j.label, j.reward, j.slash, c.posted_at
		FROM judgments j
		JOIN content_items c ON c.id = j.content_id
		JOIN projects p ON p.id = c.project_id
		JOIN identities i ON i.id = c.author_id
		WHERE ($1 = '' OR c.project_id::text = $1)
		  AND (NOT $2 OR c.posted_at >= $3)`,
		f.ProjectID, f.Bounded, f.Since)
	if err != nil {
		return nil, fmt.Errorf("list judged posts: %w", err)
	}
	defer rows.Close()

	out := make([]leaderboard.JudgedPost, 0)
	for rows.Next() {
		var post leaderboard.JudgedPost
		var label string
		err := rows.Scan(&post.ContentID, &post.ProjectID, &post.ProjectSlug, &post.ProjectName,
			&post.UserID, &post.Handle, &label, &post.Reward, &post.Slash, &post.PostedAt)
		if err != nil {
			return nil, fmt.Errorf("scan judged post: %w", err)
		}
		post.Label = model.Label(label)
		out = append(out, post)
	}
	return out, rows.Err()
}

// LedgerSnapshots returns ledger entries joined with display keys.
func (s *PostgresStore) LedgerSnapshots(ctx context.Context, projectID, userID string) ([]leaderboard.LedgerSnapshot, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT l.user_id, COALESCE(i.handle, ''), l.project_id, p.slug,
		       l.total_reward, l.total_slash, l.net_score
		FROM ledger_entries l
		JOIN projects p ON p.id = l.project_id
		JOIN identities i ON i.id = l.user_id
		WHERE ($1 = '' OR l.project_id::text = $1)
		  AND ($2 = '' OR l.user_id::text = $2)`,
		projectID, userID)
	if err != nil {
		return nil, fmt.Errorf("list ledger snapshots: %w", err)
	}
	defer rows.Close()

	out := make([]leaderboard.LedgerSnapshot, 0)
	for rows.Next() {
		var snap leaderboard.LedgerSnapshot
		err := rows.Scan(&snap.UserID, &snap.Handle, &snap.ProjectID, &snap.ProjectSlug,
			&snap.TotalReward, &snap.TotalSlash, &snap.NetScore)
		if err != nil {
			return nil, fmt.Errorf("scan ledger snapshot: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// Ledger returns the entry for one (user, project) pair.
func (s *PostgresStore) Ledger(ctx context.Context, userID, projectID string) (model.LedgerEntry, error) {
	var entry model.LedgerEntry
	err := s.pool.QueryRow(ctx, `
		SELECT user_id, project_id, total_reward, total_slash, net_score, updated_at
		FROM ledger_entries WHERE user_id = $1 AND project_id = $2`,
		userID, projectID,
	).Scan(&entry.UserID, &entry.ProjectID, &entry.TotalReward, &entry.TotalSlash, &entry.NetScore, &entry.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.LedgerEntry{}, ErrNotFound
	}
	if err != nil {
		return model.LedgerEntry{}, fmt.Errorf("scan ledger: %w", err)
	}
	return entry, nil
}

// Counts reports store sizes.
func (s *PostgresStore) Counts(ctx context.Context) (Stats, error) {
	var stats Stats
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM projects),
			(SELECT COUNT(*) FROM identities),
			(SELECT COUNT(*) FROM content_items),
			(SELECT COUNT(*) FROM judgments),
			(SELECT COUNT(*) FROM ledger_entries)`,
	).Scan(&stats.Projects, &stats.Identities, &stats.ContentItems, &stats.Judgments, &stats.LedgerEntries)
	if err != nil {
		return Stats{}, fmt.Errorf("count rows: %w", err)
	}
	return stats, nil
}
