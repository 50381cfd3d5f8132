package auction

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"auction-engine/internal/auctionerrors"
	"auction-engine/internal/broadcast"
	"auction-engine/internal/config"
	"auction-engine/internal/models"
	"auction-engine/internal/ratelimit"
	"auction-engine/internal/repository"
	"auction-engine/utils"
)

// RateLimiter is the quota check consulted before any human bid.
type RateLimiter interface {
	Allow(identifier string, class ratelimit.Class) bool
	RetryAfter(identifier string, class ratelimit.Class) time.Duration
}

// FraudChecker is the behavioral check consulted before any human bid.
type FraudChecker interface {
	IsSuspicious(userID, auctionID string, bidAt, endsAt time.Time) bool
}

// BalanceReader exposes the connects balance for the solvency pre-check.
type BalanceReader interface {
	Balance(userID string) int64
}

// Publisher receives the events produced by accepted bids.
type Publisher interface {
	Publish(ev broadcast.Event)
}

// PlaceBidInput carries one bid submission.
type PlaceBidInput struct {
	AuctionID         string
	UserID            string
	Amount            int64
	DeviceFingerprint string
	IPAddress         string

	// set only for engine-synthesized proxy bids
	isProxy        bool
	maxProxyAmount int64
}

// Service orchestrates bid acceptance: abuse checks, increment validation,
// anti-sniping extension, the CAS commit, proxy reactions and broadcasting.
type Service struct {
	store     repository.AuctionStore
	limiter   RateLimiter
	detector  FraudChecker
	balances  BalanceReader
	publisher Publisher
	cfg       config.BiddingConfig

	recent *recentBids
	now    func() time.Time
}

// NewService creates a Service instance. balances may be nil when the
// solvency pre-check is disabled.
func NewService(store repository.AuctionStore, limiter RateLimiter, detector FraudChecker, balances BalanceReader, publisher Publisher, cfg config.BiddingConfig) *Service {
	return &Service{
		store:     store,
		limiter:   limiter,
		detector:  detector,
		balances:  balances,
		publisher: publisher,
		cfg:       cfg,
		recent:    newRecentBids(cfg.DuplicateWindow),
		now:       time.Now,
	}
}

// PlaceBid validates and commits a user's bid on an auction, returning the
// accepted bid. Rejections carry the data the client needs to self-correct.
func (s *Service) PlaceBid(ctx context.Context, in PlaceBidInput) (models.Bid, error) {
	if in.AuctionID == "" || in.UserID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - missing auctionID or userID", auctionerrors.ErrInvalidBid)
	}
	if in.Amount <= 0 {
		return models.Bid{}, fmt.Errorf("service: %w - non-positive bid amount", auctionerrors.ErrInvalidBid)
	}
	return s.placeBid(ctx, in, 0)
}

// placeBid runs the full acceptance pipeline. depth counts proxy-cascade
// re-entries.
func (s *Service) placeBid(ctx context.Context, in PlaceBidInput, depth int) (models.Bid, error) {
	if !in.isProxy {
		if !s.limiter.Allow(in.DeviceFingerprint, ratelimit.ClassBid) ||
			!s.limiter.Allow(in.DeviceFingerprint, ratelimit.ClassRapidBid) {
			retryAfter := s.limiter.RetryAfter(in.DeviceFingerprint, ratelimit.ClassRapidBid)
			return models.Bid{}, fmt.Errorf("service: place bid on %s: %w",
				in.AuctionID, auctionerrors.Reject(auctionerrors.ErrRateLimited).WithRetryAfter(retryAfter))
		}
	}

	// A duplicate submission inside the coalescing window returns the
	// already-accepted bid instead of being applied twice.
	if prior, ok := s.recent.lookup(in); ok {
		return prior, nil
	}

	var (
		accepted   models.Bid
		item       models.AuctionItem
		endChanged bool
	)

	attempts := 0
	for {
		var err error
		item, accepted, endChanged, err = s.tryCommit(ctx, in)
		if err == nil {
			break
		}
		if errors.Is(err, auctionerrors.ErrConflict) {
			attempts++
			if attempts <= s.cfg.CASRetries {
				continue
			}
			return models.Bid{}, fmt.Errorf("service: place bid on %s after %d attempts: %w",
				in.AuctionID, attempts, auctionerrors.ErrConflict)
		}
		return models.Bid{}, err
	}

	s.recent.remember(in, accepted)

	s.publisher.Publish(broadcast.Event{
		Type:      broadcast.EventNewBid,
		AuctionID: in.AuctionID,
		Bid:       &accepted,
	})
	if endChanged {
		s.publisher.Publish(broadcast.Event{
			Type:      broadcast.EventAuctionUpdate,
			AuctionID: in.AuctionID,
			Update: &broadcast.AuctionUpdatePayload{
				CurrentBid: item.CurrentBid,
				EndTime:    item.EndTime,
			},
		})
	}

	s.reactToBid(ctx, item, accepted, depth)

	return accepted, nil
}

// tryCommit performs one read-validate-CAS round for the bid.
func (s *Service) tryCommit(ctx context.Context, in PlaceBidInput) (models.AuctionItem, models.Bid, bool, error) {
	now := s.now().UTC()

	item, err := s.store.GetAuction(in.AuctionID)
	if err != nil {
		return models.AuctionItem{}, models.Bid{}, false, fmt.Errorf("service: load auction: %w", err)
	}
	if item.Ended(now) {
		return models.AuctionItem{}, models.Bid{}, false, fmt.Errorf("service: place bid on %s: %w",
			in.AuctionID, auctionerrors.ErrAuctionEnded)
	}

	if !in.isProxy && s.detector.IsSuspicious(in.UserID, in.AuctionID, now, item.EndTime) {
		return models.AuctionItem{}, models.Bid{}, false, fmt.Errorf("service: place bid on %s by %s: %w",
			in.AuctionID, in.UserID, auctionerrors.ErrSuspiciousActivity)
	}

	required := RequiredMinimum(item.CurrentBid)
	if in.Amount < required {
		return models.AuctionItem{}, models.Bid{}, false, fmt.Errorf("service: place bid on %s: %w",
			in.AuctionID, auctionerrors.Reject(auctionerrors.ErrInvalidBidAmount).WithMinimum(item.CurrentBid, required))
	}

	if s.cfg.RequireSolvency && s.balances != nil && !in.isProxy {
		if balance := s.balances.Balance(in.UserID); balance < in.Amount {
			return models.AuctionItem{}, models.Bid{}, false, fmt.Errorf("service: place bid on %s by %s: %w",
				in.AuctionID, in.UserID, auctionerrors.Reject(auctionerrors.ErrInsufficientConnects).WithBalance(balance))
		}
	}

	// Anti-sniping: a bid landing inside the snipe window pushes the end
	// time out, atomically with the bid itself.
	newEnd := item.EndTime
	if item.EndTime.Sub(now) < s.cfg.SnipeWindow {
		newEnd = now.Add(s.cfg.SnipeExtension)
	}

	bid := models.Bid{
		BidID:             utils.GenerateID(),
		AuctionID:         in.AuctionID,
		UserID:            in.UserID,
		Amount:            in.Amount,
		IsProxy:           in.isProxy,
		MaxProxyAmount:    in.maxProxyAmount,
		DeviceFingerprint: in.DeviceFingerprint,
		IPAddress:         in.IPAddress,
		CreatedAt:         now,
	}

	commitCtx, cancel := context.WithTimeout(ctx, s.cfg.PersistTimeout)
	defer cancel()

	updated, err := s.store.CompareAndSwapAuction(commitCtx, in.AuctionID, item.CurrentBid, item.EndTime, newEnd, bid)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			// Outcome is ambiguous; the caller must re-query rather than
			// blindly resubmit.
			return models.AuctionItem{}, models.Bid{}, false, fmt.Errorf("service: commit bid on %s: %w",
				in.AuctionID, auctionerrors.ErrTimeout)
		}
		return models.AuctionItem{}, models.Bid{}, false, fmt.Errorf("service: commit bid on %s: %w", in.AuctionID, err)
	}

	return updated, bid, !newEnd.Equal(item.EndTime), nil
}

// GetAuction returns the authoritative state of an auction. This is the read
// path reconnecting realtime clients use.
func (s *Service) GetAuction(auctionID string) (models.AuctionItem, error) {
	if auctionID == "" {
		return models.AuctionItem{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidBid)
	}
	item, err := s.store.GetAuction(auctionID)
	if err != nil {
		return models.AuctionItem{}, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}
	return item, nil
}

// GetBidsForAuction returns all accepted bids for an auction in accept order.
func (s *Service) GetBidsForAuction(auctionID string) ([]models.Bid, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidBid)
	}
	bids, err := s.store.GetBidsByAuction(auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %s: %w", auctionID, err)
	}
	return bids, nil
}

// GetWinningBid returns the highest accepted bid for an auction.
func (s *Service) GetWinningBid(auctionID string) (models.Bid, error) {
	if auctionID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidBid)
	}
	bid, err := s.store.GetWinningBid(auctionID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to get winning bid for auction %s: %w", auctionID, err)
	}
	return bid, nil
}

// recentBids coalesces duplicate submissions: an identical (auction, user,
// amount, fingerprint) tuple inside the window maps back to the bid already
// accepted for it.
type recentBids struct {
	mu      sync.Mutex
	window  time.Duration
	entries map[string]recentEntry
}

type recentEntry struct {
	bid models.Bid
	at  time.Time
}

func newRecentBids(window time.Duration) *recentBids {
	return &recentBids{window: window, entries: make(map[string]recentEntry)}
}

func duplicateKey(in PlaceBidInput) string {
	return fmt.Sprintf("%s|%s|%d|%s", in.AuctionID, in.UserID, in.Amount, in.DeviceFingerprint)
}

func (r *recentBids) lookup(in PlaceBidInput) (models.Bid, bool) {
	if r.window <= 0 || in.isProxy {
		return models.Bid{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[duplicateKey(in)]
	if !ok || time.Since(e.at) > r.window {
		return models.Bid{}, false
	}
	return e.bid, true
}

func (r *recentBids) remember(in PlaceBidInput, bid models.Bid) {
	if r.window <= 0 || in.isProxy {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	// Lazy pruning keeps the map bounded without a background sweeper.
	for k, e := range r.entries {
		if time.Since(e.at) > r.window {
			delete(r.entries, k)
		}
	}
	r.entries[duplicateKey(in)] = recentEntry{bid: bid, at: time.Now()}
}
