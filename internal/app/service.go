// Package service implements the reputation pipeline behind the HTTP API:
// content intake, oracle evaluation, reward policy, ledger updates, and
// leaderboard reads.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	taskqueue "github.com/Base-InfoFi/Backend/internal/adapters/mq/queue"
	workerpool "github.com/Base-InfoFi/Backend/internal/adapters/mq/worker"
	"github.com/Base-InfoFi/Backend/internal/adapters/repository"
	"github.com/Base-InfoFi/Backend/internal/domain/dedupe"
	"github.com/Base-InfoFi/Backend/internal/domain/leaderboard"
	"github.com/Base-InfoFi/Backend/internal/domain/model"
	"github.com/Base-InfoFi/Backend/internal/domain/oracle"
	"github.com/Base-InfoFi/Backend/internal/domain/policy"
	"github.com/Base-InfoFi/Backend/internal/domain/report"
	"github.com/Base-InfoFi/Backend/pkg/logger"
	"github.com/Base-InfoFi/Backend/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize      = 10000
	defaultClaimCacheSize = 50000
	defaultBatchMaxItems  = 10
	defaultBatchDelay     = 500 * time.Millisecond
	defaultBatchBudget    = 5 * time.Minute
	defaultBoardLimit     = 100
)

// evaluatorAdapter exposes the service evaluation pipeline to the worker
// pool without widening the worker contract.
type evaluatorAdapter struct {
	svc *Service
}

func (a *evaluatorAdapter) Evaluate(ctx context.Context, contentID string) error {
	_, err := a.svc.EvaluateContent(ctx, contentID)
	if errors.Is(err, ErrInFlight) {
		// Another path is already scoring this item; the queue task is done.
		return nil
	}
	return err
}

// Service implements the API dependencies for the reputation system.
type Service struct {
	mu sync.RWMutex

	store     repository.Store
	client    oracle.Client
	claimer   dedupe.Claimer
	taskQueue taskqueue.Queue
	pool      *workerpool.Pool
	reporter  *report.Generator

	modelName           string
	workerCount         int
	queueSize           int
	claimCacheSize      int
	batchMaxItems       int
	batchDelay          time.Duration
	batchBudget         time.Duration
	maxLeaderboardLimit int

	started bool

	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:         runtime.NumCPU() * 2,
		queueSize:           defaultQueueSize,
		claimCacheSize:      defaultClaimCacheSize,
		batchMaxItems:       defaultBatchMaxItems,
		batchDelay:          defaultBatchDelay,
		batchBudget:         defaultBatchBudget,
		maxLeaderboardLimit: defaultBoardLimit,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	if s.client == nil {
		return fmt.Errorf("oracle client is required")
	}
	if s.store == nil {
		s.store = repository.NewMemStore()
		s.logger.Info(ctx, "using in-memory store")
	}

	s.claimer = dedupe.NewInMemoryClaimer(
		dedupe.WithMaxClaims(s.claimCacheSize),
	)
	s.taskQueue = taskqueue.NewInMemoryQueue(
		taskqueue.WithCapacity(s.queueSize),
	)
	s.reporter = report.NewGenerator(s.client)

	s.pool = workerpool.NewPool(s.workerCount, s.taskQueue, &evaluatorAdapter{svc: s})
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "reputation service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int("claim_cache_size", s.claimCacheSize),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping reputation service...")

	if s.pool != nil {
		_ = s.pool.Shutdown(ctx)
	}

	s.started = false
	s.logger.Info(ctx, "reputation service stopped")
}

// SubmitRequest carries one incoming content item.
type SubmitRequest struct {
	ProjectSlug string    `json:"projectSlug"`
	Wallet      string    `json:"wallet,omitempty"`
	Handle      string    `json:"handle,omitempty"`
	Source      string    `json:"source,omitempty"`
	SourceID    string    `json:"sourceId,omitempty"`
	URL         string    `json:"url,omitempty"`
	Content     string    `json:"content"`
	Tags        []string  `json:"tags,omitempty"`
	PostedAt    time.Time `json:"postedAt,omitempty"`
}

func (r SubmitRequest) validate() error {
	if strings.TrimSpace(r.ProjectSlug) == "" {
		return fmt.Errorf("%w: projectSlug is required", ErrInvalidInput)
	}
	if strings.TrimSpace(r.Content) == "" {
		return fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	if strings.TrimSpace(r.Wallet) == "" && strings.TrimSpace(r.Handle) == "" {
		return fmt.Errorf("%w: wallet or handle is required", ErrInvalidInput)
	}
	return nil
}

// Evaluation is the full outcome of scoring one content item.
type Evaluation struct {
	Content  model.ContentItem `json:"content"`
	Judgment model.Judgment    `json:"judgment"`
	Ledger   model.LedgerEntry `json:"ledger"`
}

// intake resolves the project and author and persists the content item.
func (s *Service) intake(ctx context.Context, req SubmitRequest) (model.ContentItem, error) {
	if err := req.validate(); err != nil {
		metrics.RecordClientInputError()
		return model.ContentItem{}, err
	}

	project, err := s.store.ProjectBySlug(ctx, req.ProjectSlug)
	if err != nil {
		return model.ContentItem{}, fmt.Errorf("resolve project %q: %w", req.ProjectSlug, err)
	}

	author, err := s.store.ResolveIdentity(ctx, strings.TrimSpace(req.Wallet), strings.TrimSpace(req.Handle))
	if err != nil {
		return model.ContentItem{}, fmt.Errorf("resolve author: %w", err)
	}

	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = "manual"
	}

	item, err := s.store.InsertContent(ctx, model.ContentItem{
		ProjectID:  project.ID,
		AuthorID:   author.ID,
		Source:     source,
		SourceID:   req.SourceID,
		URL:        req.URL,
		RawContent: req.Content,
		Tags:       req.Tags,
		PostedAt:   req.PostedAt,
	})
	if err != nil {
		return model.ContentItem{}, fmt.Errorf("insert content: %w", err)
	}
	return item, nil
}

// Submit ingests one content item and scores it synchronously.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (Evaluation, error) {
	if !s.isStarted() {
		return Evaluation{}, ErrNotStarted
	}

	item, err := s.intake(ctx, req)
	if err != nil {
		return Evaluation{}, err
	}

	return s.evaluate(ctx, item.ID, oracle.TemperatureDeterministic)
}

// SubmitAsync ingests one content item and queues it for evaluation.
func (s *Service) SubmitAsync(ctx context.Context, req SubmitRequest) (model.ContentItem, error) {
	if !s.isStarted() {
		return model.ContentItem{}, ErrNotStarted
	}

	item, err := s.intake(ctx, req)
	if err != nil {
		return model.ContentItem{}, err
	}

	if !s.taskQueue.Enqueue(ctx, taskqueue.Task{ContentID: item.ID}) {
		return model.ContentItem{}, fmt.Errorf("%w: content %s accepted but not queued", ErrQueueFull, item.ID)
	}
	return item, nil
}

// EvaluateContent scores one stored content item at the deterministic
// temperature. Re-evaluating an already judged item returns the stored
// judgment unchanged.
func (s *Service) EvaluateContent(ctx context.Context, contentID string) (Evaluation, error) {
	if !s.isStarted() {
		return Evaluation{}, ErrNotStarted
	}
	return s.evaluate(ctx, contentID, oracle.TemperatureDeterministic)
}

// evaluate runs the full pipeline for one content item: claim, oracle call,
// policy, atomic judgment and ledger write. The claim guard ensures at most
// one oracle call per item even under concurrent submission; the store's
// unique judgment constraint is the backstop.
func (s *Service) evaluate(ctx context.Context, contentID string, temperature float64) (Evaluation, error) {
	item, err := s.store.ContentByID(ctx, contentID)
	if err != nil {
		return Evaluation{}, fmt.Errorf("load content %s: %w", contentID, err)
	}

	if ev, ok, err := s.storedEvaluation(ctx, item); err != nil {
		return Evaluation{}, err
	} else if ok {
		return ev, nil
	}

	if !s.claimer.TryClaim(ctx, contentID) {
		return Evaluation{}, fmt.Errorf("%w: content %s", ErrInFlight, contentID)
	}
	defer s.claimer.Release(ctx, contentID)

	// A competing evaluation may have finished while we waited for the claim.
	if ev, ok, err := s.storedEvaluation(ctx, item); err != nil {
		return Evaluation{}, err
	} else if ok {
		return ev, nil
	}

	project, err := s.store.ProjectByID(ctx, item.ProjectID)
	if err != nil {
		return Evaluation{}, fmt.Errorf("load project %s: %w", item.ProjectID, err)
	}

	start := time.Now()
	verdict, err := s.client.Evaluate(ctx, oracle.Request{
		ProjectName: project.Name,
		Context:     project.ContextSummary,
		Content:     item.RawContent,
		Temperature: temperature,
	})
	switch {
	case err != nil:
		metrics.RecordOracleFallback("unavailable")
		s.logger.Warn(ctx, "oracle unavailable; applying fail-closed verdict",
			logger.String("content_id", contentID),
			logger.Error(err),
		)
		verdict = oracle.FallbackUnavailable()
	case verdict.Fallback:
		metrics.RecordOracleFallback("parse")
	}

	action := policy.Calculate(verdict)

	judgment := model.Judgment{
		ContentID:        item.ID,
		InformationScore: verdict.InformationScore,
		RelevanceScore:   verdict.RelevanceScore,
		InsightScore:     verdict.InsightScore,
		SpamLikelihood:   verdict.SpamLikelihood,
		Label:            verdict.Label,
		Reward:           action.Reward,
		Slash:            action.Slash,
		Reasons:          verdict.Reasons,
		Model:            s.modelName,
		RawResponse:      verdict.Raw,
	}

	stored, entry, err := s.store.ApplyJudgment(ctx, judgment, item.AuthorID, item.ProjectID)
	if errors.Is(err, repository.ErrAlreadyJudged) {
		// Lost the race to a concurrent writer; the stored judgment wins.
		if ev, ok, lookupErr := s.storedEvaluation(ctx, item); lookupErr == nil && ok {
			return ev, nil
		}
		return Evaluation{}, fmt.Errorf("apply judgment: %w", err)
	}
	if err != nil {
		metrics.RecordLedgerError()
		return Evaluation{}, fmt.Errorf("apply judgment: %w", err)
	}

	metrics.RecordEvaluation(string(stored.Label))
	metrics.RecordEvaluationLatency(float64(time.Since(start).Milliseconds()))
	metrics.RecordPoints(stored.Reward, stored.Slash)

	s.logger.Info(ctx, "content evaluated",
		logger.String("content_id", item.ID),
		logger.String("project", project.Slug),
		logger.String("label", string(stored.Label)),
		logger.Int("reward", stored.Reward),
		logger.Int("slash", stored.Slash),
	)

	return Evaluation{Content: item, Judgment: stored, Ledger: entry}, nil
}

// storedEvaluation returns the already persisted outcome for an item, if any.
func (s *Service) storedEvaluation(ctx context.Context, item model.ContentItem) (Evaluation, bool, error) {
	judgment, err := s.store.JudgmentByContent(ctx, item.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return Evaluation{}, false, nil
	}
	if err != nil {
		return Evaluation{}, false, fmt.Errorf("load judgment: %w", err)
	}

	entry, err := s.store.Ledger(ctx, item.AuthorID, item.ProjectID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return Evaluation{}, false, fmt.Errorf("load ledger: %w", err)
	}
	return Evaluation{Content: item, Judgment: judgment, Ledger: entry}, true, nil
}

// BatchResult summarizes one batch run.
type BatchResult struct {
	Scanned int           `json:"scanned"`
	Scored  int           `json:"scored"`
	Skipped int           `json:"skipped"`
	Elapsed time.Duration `json:"-"`
}

// RunBatch evaluates up to maxItems unjudged content items matching query,
// sequentially with a fixed delay between oracle calls and a wall-clock
// budget. Items that fail stay unjudged and are picked up by a later run.
func (s *Service) RunBatch(ctx context.Context, query string, maxItems int) (BatchResult, error) {
	if !s.isStarted() {
		return BatchResult{}, ErrNotStarted
	}

	if maxItems <= 0 || maxItems > s.batchMaxItems {
		maxItems = s.batchMaxItems
	}

	items, err := s.store.ListUnjudged(ctx, repository.ContentFilter{Query: query, Limit: maxItems})
	if err != nil {
		return BatchResult{}, fmt.Errorf("list unjudged: %w", err)
	}

	metrics.RecordBatchRun()
	start := time.Now()
	deadline := start.Add(s.batchBudget)
	result := BatchResult{Scanned: len(items)}

	for i, item := range items {
		if ctx.Err() != nil {
			result.Skipped = len(items) - i
			break
		}
		if time.Now().After(deadline) {
			s.logger.Warn(ctx, "batch budget exhausted",
				logger.Int("scored", result.Scored),
				logger.Int("remaining", len(items)-i),
			)
			result.Skipped += len(items) - i
			break
		}

		if _, err := s.evaluate(ctx, item.ID, oracle.TemperatureBatch); err != nil {
			result.Skipped++
			metrics.RecordBatchItemSkipped()
			s.logger.Warn(ctx, "batch item failed",
				logger.String("content_id", item.ID),
				logger.Error(err),
			)
		} else {
			result.Scored++
			metrics.RecordBatchItemScored()
		}

		if i < len(items)-1 && s.batchDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(s.batchDelay):
			}
		}
	}

	result.Elapsed = time.Since(start)
	s.logger.Info(ctx, "batch run finished",
		logger.Int("scanned", result.Scanned),
		logger.Int("scored", result.Scored),
		logger.Int("skipped", result.Skipped),
		logger.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

// CreateProject registers a project. An empty slug is derived from the name.
func (s *Service) CreateProject(ctx context.Context, p model.Project) (model.Project, error) {
	if !s.isStarted() {
		return model.Project{}, ErrNotStarted
	}

	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		metrics.RecordClientInputError()
		return model.Project{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
	if p.Slug == "" {
		metrics.RecordClientInputError()
		return model.Project{}, fmt.Errorf("%w: cannot derive slug from name", ErrInvalidInput)
	}

	return s.store.CreateProject(ctx, p)
}

// ListProjects returns all registered projects.
func (s *Service) ListProjects(ctx context.Context) ([]model.Project, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}
	return s.store.ListProjects(ctx)
}

// ProjectBySlug returns one project.
func (s *Service) ProjectBySlug(ctx context.Context, slug string) (model.Project, error) {
	if !s.isStarted() {
		return model.Project{}, ErrNotStarted
	}
	return s.store.ProjectBySlug(ctx, slug)
}

// Content returns a content item and its judgment when one exists.
func (s *Service) Content(ctx context.Context, id string) (model.ContentItem, *model.Judgment, error) {
	if !s.isStarted() {
		return model.ContentItem{}, nil, ErrNotStarted
	}

	item, err := s.store.ContentByID(ctx, id)
	if err != nil {
		return model.ContentItem{}, nil, err
	}

	judgment, err := s.store.JudgmentByContent(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return item, nil, nil
	}
	if err != nil {
		return model.ContentItem{}, nil, err
	}
	return item, &judgment, nil
}

// ListUnjudged returns unjudged content matching query, newest first.
func (s *Service) ListUnjudged(ctx context.Context, query string, limit int) ([]model.ContentItem, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}
	return s.store.ListUnjudged(ctx, repository.ContentFilter{Query: query, Limit: limit})
}

// ProjectLeaderboard ranks projects by share of positive net score within
// the given time range.
func (s *Service) ProjectLeaderboard(ctx context.Context, rng leaderboard.TimeRange, limit int) ([]leaderboard.ProjectRow, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}

	filter := repository.JudgedPostFilter{}
	if since, bounded := rng.Since(time.Now().UTC()); bounded {
		filter.Since = since
		filter.Bounded = true
	}

	posts, err := s.store.JudgedPosts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("load judged posts: %w", err)
	}

	rows := leaderboard.RankProjects(posts)
	return capRows(rows, limit, s.maxLeaderboardLimit), nil
}

// UserLeaderboard ranks a project's contributors by net score. The net
// score always covers the full ledger history; the windowed counts cover
// only the requested range.
func (s *Service) UserLeaderboard(ctx context.Context, projectSlug string, rng leaderboard.TimeRange, limit int) ([]leaderboard.UserRow, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}

	project, err := s.store.ProjectBySlug(ctx, projectSlug)
	if err != nil {
		return nil, fmt.Errorf("resolve project %q: %w", projectSlug, err)
	}

	snapshots, err := s.store.LedgerSnapshots(ctx, project.ID, "")
	if err != nil {
		return nil, fmt.Errorf("load ledger snapshots: %w", err)
	}

	filter := repository.JudgedPostFilter{ProjectID: project.ID}
	if since, bounded := rng.Since(time.Now().UTC()); bounded {
		filter.Since = since
		filter.Bounded = true
	}
	posts, err := s.store.JudgedPosts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("load judged posts: %w", err)
	}

	rows := leaderboard.RankUsers(snapshots, posts)
	return capRows(rows, limit, s.maxLeaderboardLimit), nil
}

func capRows[T any](rows []T, limit, max int) []T {
	if limit <= 0 || limit > max {
		limit = max
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// Ledger returns the reputation entry for one contributor within a project.
func (s *Service) Ledger(ctx context.Context, projectSlug, userID string) (model.LedgerEntry, error) {
	if !s.isStarted() {
		return model.LedgerEntry{}, ErrNotStarted
	}

	project, err := s.store.ProjectBySlug(ctx, projectSlug)
	if err != nil {
		return model.LedgerEntry{}, fmt.Errorf("resolve project %q: %w", projectSlug, err)
	}
	return s.store.Ledger(ctx, userID, project.ID)
}

// Report generates a narrative report over a project's judgment history.
func (s *Service) Report(ctx context.Context, projectSlug string) (report.Report, error) {
	if !s.isStarted() {
		return report.Report{}, ErrNotStarted
	}

	project, err := s.store.ProjectBySlug(ctx, projectSlug)
	if err != nil {
		return report.Report{}, fmt.Errorf("resolve project %q: %w", projectSlug, err)
	}

	judgments, err := s.store.JudgmentsByProject(ctx, project.ID, 100)
	if err != nil {
		return report.Report{}, fmt.Errorf("load judgments: %w", err)
	}

	return s.reporter.Generate(ctx, project, judgments)
}

// GenerateProjectInfo asks the oracle for a deep-analysis briefing of a
// project and persists it as the project's context summary, replacing any
// manually entered one.
func (s *Service) GenerateProjectInfo(ctx context.Context, projectSlug string) (model.Project, error) {
	if !s.isStarted() {
		return model.Project{}, ErrNotStarted
	}

	project, err := s.store.ProjectBySlug(ctx, projectSlug)
	if err != nil {
		return model.Project{}, fmt.Errorf("resolve project %q: %w", projectSlug, err)
	}

	info, err := s.client.Complete(ctx,
		projectInfoSystemPrompt, projectInfoUserPrompt(project),
		oracle.TemperatureNarrative, projectInfoMaxTokens)
	if err != nil {
		return model.Project{}, fmt.Errorf("project info completion: %w", err)
	}
	info = strings.TrimSpace(info)
	if info == "" {
		return model.Project{}, fmt.Errorf("project info completion: empty response")
	}

	updated, err := s.store.UpdateProjectContext(ctx, project.ID, info)
	if err != nil {
		return model.Project{}, fmt.Errorf("update project context: %w", err)
	}

	s.logger.Info(ctx, "project info generated",
		logger.String("project", updated.Slug),
		logger.Int("chars", len(info)),
	)
	return updated, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
	}

	if s.started {
		stats["queueLength"] = s.taskQueue.Len(ctx)
		stats["claimsInFlight"] = s.claimer.Size()

		if counts, err := s.store.Counts(ctx); err == nil {
			stats["projects"] = counts.Projects
			stats["identities"] = counts.Identities
			stats["contentItems"] = counts.ContentItems
			stats["judgments"] = counts.Judgments
			stats["ledgerEntries"] = counts.LedgerEntries
		}
	}

	return stats
}

func (s *Service) isStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Slugify derives a URL-safe slug from a project name.
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// projectInfoMaxTokens caps the generated briefing length.
const projectInfoMaxTokens = 2000

const projectInfoSystemPrompt = `You are a Web3 research analyst. You write factual markdown briefings about blockchain and crypto projects, used as grounding context by a content moderation system.`

func projectInfoUserPrompt(project model.Project) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project: %s\n", project.Name)
	if project.ContextSummary != "" {
		fmt.Fprintf(&b, "Existing notes: %s\n", project.ContextSummary)
	}
	b.WriteString(`
Write a markdown briefing with these sections:

1. **Project overview**: what the project is and the problem it addresses.
2. **Core technology and architecture**: how it works at a high level.
3. **Tokenomics**: token utility, supply, and distribution.
4. **Current status and outlook**: adoption, activity, and near-term direction.

Keep it factual. Where something is unknown, say so instead of speculating.
`)
	return b.String()
}
