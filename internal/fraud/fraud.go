package fraud

import (
	"sync"
	"time"

	"auction-engine/internal/config"
	"auction-engine/utils"
)

// Record tracks behavioral counters for one (user, auction) pair. Flags are
// sticky: once set they stay set until an external moderation action clears
// the record. Counters are advisory signal, never financial truth.
type Record struct {
	LastSecondBidCount int
	RapidBidCount      int
	BurstCount         int
	Flagged            bool
}

// Store holds suspicious-activity records keyed by userID+auctionID, plus the
// per-user recent bid timestamps the rapid-fire heuristic needs.
type Store interface {
	Get(key string) Record
	Put(key string, r Record)
	// AppendBidTime records a bid timestamp for the user and returns how many
	// of that user's bids across all auctions fall within the window ending
	// at ts.
	AppendBidTime(userID string, ts time.Time, window time.Duration) int
}

// MemoryStore is a concurrency-safe in-memory Store.
type MemoryStore struct {
	mu       sync.Mutex
	records  map[string]Record
	bidTimes map[string][]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:  make(map[string]Record),
		bidTimes: make(map[string][]time.Time),
	}
}

func (s *MemoryStore) Get(key string) Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[key]
}

func (s *MemoryStore) Put(key string, r Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = r
}

func (s *MemoryStore) AppendBidTime(userID string, ts time.Time, window time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := ts.Add(-window)
	kept := s.bidTimes[userID][:0]
	for _, t := range s.bidTimes[userID] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	kept = append(kept, ts)
	s.bidTimes[userID] = kept
	return len(kept)
}

// Detector applies the two behavioral heuristics: last-second bidding on a
// single auction, and rapid-fire bidding across all auctions.
type Detector struct {
	store Store
	cfg   config.FraudConfig
}

func NewDetector(store Store, cfg config.FraudConfig) *Detector {
	return &Detector{store: store, cfg: cfg}
}

func recordKey(userID, auctionID string) string {
	return userID + ":" + auctionID
}

// IsSuspicious updates the counters for (userID, auctionID) with the given
// bid and reports whether the pair is flagged. A flagged pair rejects every
// subsequent bid from that user on that auction.
func (d *Detector) IsSuspicious(userID, auctionID string, bidAt, endsAt time.Time) bool {
	key := recordKey(userID, auctionID)
	rec := d.store.Get(key)

	if rec.Flagged {
		return true
	}

	if endsAt.Sub(bidAt) < d.cfg.LastSecondWindow {
		rec.LastSecondBidCount++
		if rec.LastSecondBidCount >= d.cfg.LastSecondThreshold {
			rec.Flagged = true
		}
	}

	recent := d.store.AppendBidTime(userID, bidAt, d.cfg.RapidFireWindow)
	if recent > d.cfg.RapidFireThreshold {
		rec.RapidBidCount++
		rec.Flagged = true
	} else if recent == d.cfg.RapidFireThreshold {
		// Stricter counter: repeated near-limit bursts flag even though no
		// single burst crossed the rapid-fire threshold.
		rec.BurstCount++
		if rec.BurstCount >= d.cfg.BurstThreshold {
			rec.Flagged = true
		}
	}

	if rec.Flagged {
		utils.Warn("suspicious bidding activity flagged", map[string]any{
			"user_id":          userID,
			"auction_id":       auctionID,
			"last_second_bids": rec.LastSecondBidCount,
			"rapid_bids":       rec.RapidBidCount,
		})
	}

	d.store.Put(key, rec)
	return rec.Flagged
}

// EscalateIdentifier receives rate-limiter referrals. The referral is logged
// for downstream review; it does not flag any (user, auction) pair by itself.
func (d *Detector) EscalateIdentifier(identifier string) {
	utils.Warn("identifier referred by rate limiter", map[string]any{
		"identifier": identifier,
	})
}
