package runstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mfsol/pkg/cache"
)

// RunCache is a typed cache-aside wrapper over the generic Cache interface,
// with JSON marshal/unmarshal and pattern-based invalidation. The Run
// Coordinator's status(run_id) and list_recent(limit) reads are the hot
// path a polling dashboard or gateway would hit, so they go through this
// layer instead of the store directly.
type RunCache struct {
	cache      cache.Cache
	defaultTTL time.Duration
}

// cachedRun is the JSON wire shape stored under a run's cache key.
type cachedRun struct {
	Run         *Run         `json:"run"`
	Assignments []Assignment `json:"assignments,omitempty"`
}

// cachedList is the JSON wire shape stored under a list-query cache key.
type cachedList struct {
	Runs  []*Run `json:"runs"`
	Total int64  `json:"total"`
}

// NewRunCache returns a RunCache backed by c. defaultTTL<=0 falls back to
// 30 seconds. Entries are also invalidated by CachingRunStore on every
// write, including the processing transition.
func NewRunCache(c cache.Cache, defaultTTL time.Duration) *RunCache {
	if defaultTTL <= 0 {
		defaultTTL = 30 * time.Second
	}
	return &RunCache{cache: c, defaultTTL: defaultTTL}
}

func runKey(runID string) string { return fmt.Sprintf("run:%s", runID) }

func listKey(opts ListOptions) string {
	return fmt.Sprintf("runlist:%s:%s:%d:%d", opts.Filter.ProblemKind, opts.Filter.Status, opts.Limit, opts.Offset)
}

// GetRun returns a cached run snapshot, or ok=false on a cache miss or
// decode failure (a corrupted entry is treated as a miss, not an error).
func (rc *RunCache) GetRun(ctx context.Context, runID string) (*Run, []Assignment, bool) {
	data, err := rc.cache.Get(ctx, runKey(runID))
	if err != nil {
		return nil, nil, false
	}
	var entry cachedRun
	if err := json.Unmarshal(data, &entry); err != nil {
		_ = rc.cache.Delete(ctx, runKey(runID))
		return nil, nil, false
	}
	return entry.Run, entry.Assignments, true
}

// SetRun caches a run snapshot under its own key.
func (rc *RunCache) SetRun(ctx context.Context, run *Run, assignments []Assignment) error {
	data, err := json.Marshal(cachedRun{Run: run, Assignments: assignments})
	if err != nil {
		return err
	}
	return rc.cache.Set(ctx, runKey(run.RunID), data, rc.defaultTTL)
}

// InvalidateRun drops the cached snapshot for one run, used after every
// write that advances its status.
func (rc *RunCache) InvalidateRun(ctx context.Context, runID string) error {
	return rc.cache.Delete(ctx, runKey(runID))
}

// GetList returns a cached recency listing for the given options.
func (rc *RunCache) GetList(ctx context.Context, opts ListOptions) ([]*Run, int64, bool) {
	data, err := rc.cache.Get(ctx, listKey(opts))
	if err != nil {
		return nil, 0, false
	}
	var entry cachedList
	if err := json.Unmarshal(data, &entry); err != nil {
		_ = rc.cache.Delete(ctx, listKey(opts))
		return nil, 0, false
	}
	return entry.Runs, entry.Total, true
}

// SetList caches a recency listing.
func (rc *RunCache) SetList(ctx context.Context, opts ListOptions, runs []*Run, total int64) error {
	data, err := json.Marshal(cachedList{Runs: runs, Total: total})
	if err != nil {
		return err
	}
	return rc.cache.Set(ctx, listKey(opts), data, rc.defaultTTL)
}

// InvalidateLists drops every cached listing. Submitting or completing a
// run can change any (kind, status) listing's membership, so a write
// invalidates the whole list namespace rather than trying to enumerate
// which filtered views it affects.
func (rc *RunCache) InvalidateLists(ctx context.Context) error {
	_, err := rc.cache.DeleteByPattern(ctx, "runlist:*")
	return err
}

// CachingRunStore decorates a RunStore with cache-aside reads for GetByID
// and List, invalidating on every write. It implements the same RunStore
// interface so callers (the Run Coordinator) are unaware of the cache.
type CachingRunStore struct {
	inner RunStore
	cache *RunCache
}

// NewCachingRunStore wraps inner with cache-aside reads through rc.
func NewCachingRunStore(inner RunStore, rc *RunCache) *CachingRunStore {
	return &CachingRunStore{inner: inner, cache: rc}
}

func (s *CachingRunStore) Create(ctx context.Context, run *Run) error {
	if err := s.inner.Create(ctx, run); err != nil {
		return err
	}
	_ = s.cache.InvalidateLists(ctx)
	return nil
}

func (s *CachingRunStore) MarkProcessing(ctx context.Context, runID string) error {
	if err := s.inner.MarkProcessing(ctx, runID); err != nil {
		return err
	}
	_ = s.cache.InvalidateRun(ctx, runID)
	_ = s.cache.InvalidateLists(ctx)
	return nil
}

func (s *CachingRunStore) CompleteTerminal(ctx context.Context, runID string, status Status, objectiveValue, mipGap *float64, logs string, assignments []Assignment) error {
	if err := s.inner.CompleteTerminal(ctx, runID, status, objectiveValue, mipGap, logs, assignments); err != nil {
		return err
	}
	_ = s.cache.InvalidateRun(ctx, runID)
	_ = s.cache.InvalidateLists(ctx)
	return nil
}

func (s *CachingRunStore) GetByID(ctx context.Context, runID string) (*Run, []Assignment, error) {
	if run, assignments, ok := s.cache.GetRun(ctx, runID); ok {
		return run, assignments, nil
	}
	run, assignments, err := s.inner.GetByID(ctx, runID)
	if err != nil {
		return nil, nil, err
	}
	_ = s.cache.SetRun(ctx, run, assignments)
	return run, assignments, nil
}

func (s *CachingRunStore) List(ctx context.Context, opts ListOptions) ([]*Run, int64, error) {
	if runs, total, ok := s.cache.GetList(ctx, opts); ok {
		return runs, total, nil
	}
	runs, total, err := s.inner.List(ctx, opts)
	if err != nil {
		return nil, 0, err
	}
	_ = s.cache.SetList(ctx, opts, runs, total)
	return runs, total, nil
}

var _ RunStore = (*CachingRunStore)(nil)
