package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/cache"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/domain"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/port"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/paginate"
)

// Cache names used as metric labels.
const (
	CacheFollowSet    = "follow_set"
	CacheFollowStatus = "follow_status"
	CacheLikesPreview = "likes_preview"
	CacheComments     = "comments"
	CacheUserPreview  = "user_preview"
)

// FollowSet is the viewer's set of followed user ids at a point in time.
type FollowSet struct {
	OwnerID  int64     `json:"ownerId"`
	Members  []int64   `json:"members"`
	LoadedAt time.Time `json:"loadedAt"`
}

// Has reports whether userID is followed.
func (s FollowSet) Has(userID int64) bool {
	_, ok := slices.BinarySearch(s.Members, userID)
	return ok
}

// FollowSetCache holds the complete set of users the viewer follows. At most
// one load per owner runs at a time; loads started before a reset, an
// invalidation or a local patch never overwrite the set.
type FollowSetCache struct {
	api      port.SocialAPI
	sessions *SessionStore
	maxAge   time.Duration
	now      func() time.Time
	logger   *zap.Logger
	metrics  port.CacheMetrics

	group singleflight.Group

	mu         sync.Mutex
	ownerID    int64
	members    map[int64]struct{}
	loadedAt   time.Time
	generation uint64
}

// NewFollowSetCache constructs an empty follow set.
func NewFollowSetCache(api port.SocialAPI, sessions *SessionStore, maxAge time.Duration) *FollowSetCache {
	return &FollowSetCache{
		api:      api,
		sessions: sessions,
		maxAge:   maxAge,
		now:      time.Now,
		logger:   zap.NewNop(),
		members:  make(map[int64]struct{}),
	}
}

// WithLogger attaches a structured logger.
func (f *FollowSetCache) WithLogger(logger *zap.Logger) *FollowSetCache {
	if logger != nil {
		f.logger = logger
	}
	return f
}

// WithNow overrides the clock, primarily for deterministic testing.
func (f *FollowSetCache) WithNow(now func() time.Time) *FollowSetCache {
	if now != nil {
		f.now = now
	}
	return f
}

// WithMetrics wires cache counters.
func (f *FollowSetCache) WithMetrics(metrics port.CacheMetrics) *FollowSetCache {
	f.metrics = metrics
	return f
}

// Ensure returns the viewer's follow set, loading every page of the following
// listing when the set is missing, stale, owned by someone else or force is set.
func (f *FollowSetCache) Ensure(ctx context.Context, force bool) (FollowSet, error) {
	me := f.sessions.IdentityID()
	if me == 0 {
		f.mu.Lock()
		held := f.ownerID != 0 || !f.loadedAt.IsZero()
		f.mu.Unlock()
		if held {
			f.Reset()
		}
		return FollowSet{Members: []int64{}}, nil
	}

	f.mu.Lock()
	if !force && f.freshLocked(me) {
		snapshot := f.snapshotLocked()
		f.mu.Unlock()
		f.count(func(m port.CacheMetrics) { m.IncHit(CacheFollowSet) })
		return snapshot, nil
	}
	generation := f.generation
	f.mu.Unlock()
	f.count(func(m port.CacheMetrics) { m.IncMiss(CacheFollowSet) })

	key := fmt.Sprintf("%d:%d", me, generation)
	ch := f.group.DoChan(key, func() (any, error) {
		return f.load(context.WithoutCancel(ctx), me, generation)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return FollowSet{}, res.Err
		}
		return res.Val.(FollowSet), nil
	case <-ctx.Done():
		return FollowSet{}, ctx.Err()
	}
}

// Snapshot returns the set as currently held, without loading.
func (f *FollowSetCache) Snapshot() FollowSet {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

// Mark patches the set after a follow or unfollow by the viewer. Patches for
// a set that is not loaded or owned by someone else are ignored.
func (f *FollowSetCache) Mark(targetID int64, following bool) {
	me := f.sessions.IdentityID()
	if me == 0 || targetID <= 0 {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.generation++
	if f.ownerID != me || f.loadedAt.IsZero() {
		return
	}
	if following {
		f.members[targetID] = struct{}{}
	} else {
		delete(f.members, targetID)
	}
	f.loadedAt = f.now()
}

// Reset discards the set and its owner.
func (f *FollowSetCache) Reset() {
	f.mu.Lock()
	f.ownerID = 0
	f.members = make(map[int64]struct{})
	f.loadedAt = time.Time{}
	f.generation++
	f.mu.Unlock()
	f.count(func(m port.CacheMetrics) { m.IncInvalidation(CacheFollowSet) })
}

// Invalidate keeps the owner but forces the next Ensure to reload.
func (f *FollowSetCache) Invalidate() {
	f.mu.Lock()
	f.members = make(map[int64]struct{})
	f.loadedAt = time.Time{}
	f.generation++
	f.mu.Unlock()
	f.count(func(m port.CacheMetrics) { m.IncInvalidation(CacheFollowSet) })
}

func (f *FollowSetCache) load(ctx context.Context, me int64, generation uint64) (FollowSet, error) {
	listing, err := paginate.CollectAll(ctx, func(ctx context.Context, page int) (paginate.Page[domain.UserSummary], error) {
		return f.api.FollowingPage(ctx, me, page, paginate.PageSize)
	})
	if err != nil {
		return FollowSet{}, fmt.Errorf("load follow set: %w", err)
	}
	if listing.Truncated {
		f.logger.Warn("follow set truncated at page ceiling",
			zap.Int64("owner_id", me),
			zap.Int("collected", len(listing.Items)),
		)
	}

	members := make(map[int64]struct{}, len(listing.Items))
	for _, u := range listing.Items {
		if u.ID > 0 {
			members[u.ID] = struct{}{}
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sessions.IdentityID() != me {
		f.logger.Debug("discarded follow set of previous identity", zap.Int64("owner_id", me))
		f.count(func(m port.CacheMetrics) { m.IncStaleDiscard(CacheFollowSet) })
		return FollowSet{Members: []int64{}}, nil
	}
	if f.generation != generation {
		// Superseded loads still answer their callers but are not kept.
		f.logger.Debug("discarded superseded follow set load", zap.Int64("owner_id", me))
		f.count(func(m port.CacheMetrics) { m.IncStaleDiscard(CacheFollowSet) })
		return FollowSet{OwnerID: me, Members: sortedIDs(members)}, nil
	}
	f.ownerID = me
	f.members = members
	f.loadedAt = f.now()
	return f.snapshotLocked(), nil
}

func (f *FollowSetCache) freshLocked(me int64) bool {
	return f.ownerID == me && !f.loadedAt.IsZero() && f.now().Sub(f.loadedAt) < f.maxAge
}

func (f *FollowSetCache) snapshotLocked() FollowSet {
	return FollowSet{OwnerID: f.ownerID, Members: sortedIDs(f.members), LoadedAt: f.loadedAt}
}

func sortedIDs(set map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (f *FollowSetCache) count(fn func(port.CacheMetrics)) {
	if f.metrics != nil {
		fn(f.metrics)
	}
}

// ErrSelfFollow rejects following oneself.
var ErrSelfFollow = errors.New("cannot follow yourself")

// FollowStateListener observes every follow-state change of the viewer.
type FollowStateListener func(targetID int64, followed bool)

// FollowService owns follow status lookups, follow toggles and the follow listings.
type FollowService struct {
	api      port.SocialAPI
	sessions *SessionStore
	set      *FollowSetCache
	status   *cache.Guarded[int64, bool]
	logger   *zap.Logger

	mu        sync.RWMutex
	listeners []FollowStateListener
}

// NewFollowService wires the follow status cache and the viewer's follow set.
func NewFollowService(api port.SocialAPI, sessions *SessionStore, set *FollowSetCache, status *cache.Guarded[int64, bool]) *FollowService {
	return &FollowService{
		api:      api,
		sessions: sessions,
		set:      set,
		status:   status,
		logger:   zap.NewNop(),
	}
}

// WithLogger attaches a structured logger.
func (s *FollowService) WithLogger(logger *zap.Logger) *FollowService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// OnFollowState registers a listener for follow-state changes.
func (s *FollowService) OnFollowState(listener FollowStateListener) {
	if listener == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, listener)
	s.mu.Unlock()
}

// Status reports whether the viewer follows targetID. Read failures are
// returned, never reported as "not followed".
func (s *FollowService) Status(ctx context.Context, targetID int64) (bool, error) {
	if targetID <= 0 {
		return false, ErrInvalidID
	}
	if s.sessions.IdentityID() == 0 {
		return false, ErrNotAuthenticated
	}
	return s.status.Fetch(ctx, targetID, func(ctx context.Context) (bool, error) {
		return s.api.FollowStatus(ctx, targetID)
	})
}

// SetFollow asks the backend to follow or unfollow targetID and returns the
// state it reports.
func (s *FollowService) SetFollow(ctx context.Context, targetID int64, follow bool) (bool, error) {
	if targetID <= 0 {
		return false, ErrInvalidID
	}
	me := s.sessions.IdentityID()
	if me == 0 {
		return false, ErrNotAuthenticated
	}
	if me == targetID {
		return false, ErrSelfFollow
	}
	followed, err := s.api.SetFollow(ctx, targetID, follow)
	if err != nil {
		return false, fmt.Errorf("set follow %d: %w", targetID, err)
	}
	return followed, nil
}

// ApplyFollowState is the single routine every surface goes through after a
// follow change: status cache, follow set and listeners agree afterwards.
func (s *FollowService) ApplyFollowState(targetID int64, followed bool) {
	s.status.Put(targetID, followed)
	s.set.Mark(targetID, followed)

	s.mu.RLock()
	listeners := append([]FollowStateListener(nil), s.listeners...)
	s.mu.RUnlock()
	for _, listener := range listeners {
		listener(targetID, followed)
	}
}

// Following collects every user userID follows.
func (s *FollowService) Following(ctx context.Context, userID int64) (paginate.Listing[domain.UserSummary], error) {
	if userID <= 0 {
		return paginate.Listing[domain.UserSummary]{}, ErrInvalidID
	}
	return paginate.CollectAll(ctx, func(ctx context.Context, page int) (paginate.Page[domain.UserSummary], error) {
		return s.api.FollowingPage(ctx, userID, page, paginate.PageSize)
	})
}

// Followers collects every user following userID.
func (s *FollowService) Followers(ctx context.Context, userID int64) (paginate.Listing[domain.UserSummary], error) {
	if userID <= 0 {
		return paginate.Listing[domain.UserSummary]{}, ErrInvalidID
	}
	return paginate.CollectAll(ctx, func(ctx context.Context, page int) (paginate.Page[domain.UserSummary], error) {
		return s.api.FollowersPage(ctx, userID, page, paginate.PageSize)
	})
}

// Counts reads follower and following totals with single-row page requests.
func (s *FollowService) Counts(ctx context.Context, userID int64) (domain.FollowCounts, error) {
	if userID <= 0 {
		return domain.FollowCounts{}, ErrInvalidID
	}

	counts := domain.FollowCounts{UserID: userID}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := s.api.FollowersPage(gctx, userID, 1, 1)
		if err != nil {
			return fmt.Errorf("followers count: %w", err)
		}
		counts.Followers = page.Total
		return nil
	})
	g.Go(func() error {
		page, err := s.api.FollowingPage(gctx, userID, 1, 1)
		if err != nil {
			return fmt.Errorf("following count: %w", err)
		}
		counts.Following = page.Total
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.FollowCounts{}, err
	}
	return counts, nil
}
