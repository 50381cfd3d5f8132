package ratelimit

import (
	"sync"
	"time"

	"auction-engine/internal/config"
	"auction-engine/utils"
)

// Class partitions quotas by operation kind.
type Class string

const (
	ClassBid         Class = "bid"
	ClassRapidBid    Class = "rapid_bid"
	ClassRewardClaim Class = "reward_claim"
)

// Window is one fixed counting window for an (identifier, class) pair.
// Losing a window only relaxes throttling, so the store may evict freely.
type Window struct {
	Count          int
	ResetAt        time.Time
	ViolationCount int
}

// Store holds rate-limit windows. Injected so the process-wide state has an
// explicit lifecycle instead of living in package-level maps.
type Store interface {
	// Get returns the window for key, or a zero window if absent.
	Get(key string) Window
	// Put stores the window for key.
	Put(key string, w Window)
}

// MemoryStore is a concurrency-safe in-memory Store.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]Window
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]Window)}
}

func (s *MemoryStore) Get(key string) Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.windows[key]
}

func (s *MemoryStore) Put(key string, w Window) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.windows[key] = w
}

// Escalator receives identifiers whose violation count crossed the threshold.
// The referral is advisory and must never block the bid path.
type Escalator interface {
	EscalateIdentifier(identifier string)
}

type quota struct {
	limit  int
	window time.Duration
}

// Limiter enforces fixed-window quotas per (identifier, class).
type Limiter struct {
	store              Store
	quotas             map[Class]quota
	violationThreshold int
	escalator          Escalator
	now                func() time.Time
}

// NewLimiter creates a Limiter with quotas from cfg. escalator may be nil.
func NewLimiter(store Store, cfg config.RateLimitConfig, escalator Escalator) *Limiter {
	return &Limiter{
		store: store,
		quotas: map[Class]quota{
			ClassBid:         {cfg.BidLimit, cfg.BidWindow},
			ClassRapidBid:    {cfg.RapidBidLimit, cfg.RapidBidWindow},
			ClassRewardClaim: {cfg.RewardClaimLimit, cfg.RewardClaimWindow},
		},
		violationThreshold: cfg.ViolationThreshold,
		escalator:          escalator,
		now:                time.Now,
	}
}

// Allow records one request for (identifier, class) and reports whether it is
// within quota. Returning false means the caller must reject with a
// rate-limit error; Allow itself never fails.
func (l *Limiter) Allow(identifier string, class Class) bool {
	q, ok := l.quotas[class]
	if !ok {
		return true
	}

	key := identifier + ":" + string(class)
	now := l.now()

	w := l.store.Get(key)
	if w.ResetAt.IsZero() || !now.Before(w.ResetAt) {
		// New window; violations carry across the window lineage.
		w = Window{ResetAt: now.Add(q.window), ViolationCount: w.ViolationCount}
	}

	w.Count++
	if w.Count > q.limit {
		w.ViolationCount++
		l.store.Put(key, w)

		if w.ViolationCount > l.violationThreshold && l.escalator != nil {
			utils.Warn("rate limit violations escalated", map[string]any{
				"identifier": identifier,
				"class":      string(class),
				"violations": w.ViolationCount,
			})
			l.escalator.EscalateIdentifier(identifier)
		}
		return false
	}

	l.store.Put(key, w)
	return true
}

// RetryAfter returns how long until the current window for (identifier,
// class) resets. Used as the back-off hint on rejections.
func (l *Limiter) RetryAfter(identifier string, class Class) time.Duration {
	w := l.store.Get(identifier + ":" + string(class))
	if w.ResetAt.IsZero() {
		return 0
	}
	d := w.ResetAt.Sub(l.now())
	if d < 0 {
		return 0
	}
	return d
}
