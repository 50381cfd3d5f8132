package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

// AuctionStore defines the persistence collaborator for the bidding engine.
// The contract the engine relies on is the conditional update: a bid and any
// end-time extension commit together, or not at all.
type AuctionStore interface {
	AddAuction(item model.AuctionItem) error
	GetAuction(auctionID string) (model.AuctionItem, error)
	// CompareAndSwapAuction verifies the auction still carries expectedBid
	// and expectedEnd, then in the same atomic step sets currentBid to
	// bid.Amount, moves endTime to newEnd, and appends the bid row. A lost
	// race returns ErrConflict and changes nothing.
	CompareAndSwapAuction(ctx context.Context, auctionID string, expectedBid int64, expectedEnd, newEnd time.Time, bid model.Bid) (model.AuctionItem, error)
	// CloseAuction marks the auction inactive and returns its final state.
	CloseAuction(auctionID string) (model.AuctionItem, error)
	// ExpiredAuctions returns active auctions whose end time is at or before now.
	ExpiredAuctions(now time.Time) []model.AuctionItem
	GetBidsByAuction(auctionID string) ([]model.Bid, error)
	GetWinningBid(auctionID string) (model.Bid, error)
	UpsertProxyOrder(order model.ProxyBidOrder) error
	ActiveProxyOrders(auctionID string) []model.ProxyBidOrder
	DeactivateProxyOrder(auctionID, userID string) error
}

// MemoryStore is a concurrency-safe in-memory implementation of AuctionStore.
// Each auction carries its own lock so auctions never contend with each
// other; the outer lock only guards the maps.
type MemoryStore struct {
	mu       sync.RWMutex
	auctions map[string]*auctionRecord
	orders   map[string]map[string]model.ProxyBidOrder // auctionID -> userID -> order
}

type auctionRecord struct {
	mu   sync.Mutex
	item model.AuctionItem
	bids []model.Bid
}

// NewMemoryStore creates a new in-memory store instance.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		auctions: make(map[string]*auctionRecord),
		orders:   make(map[string]map[string]model.ProxyBidOrder),
	}
}

func (s *MemoryStore) record(auctionID string) (*auctionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.auctions[auctionID]
	if !ok {
		return nil, fmt.Errorf("auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return rec, nil
}

// AddAuction registers a new auction with its starting state.
func (s *MemoryStore) AddAuction(item model.AuctionItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.auctions[item.AuctionID]; ok {
		return fmt.Errorf("auction %s already exists", item.AuctionID)
	}
	s.auctions[item.AuctionID] = &auctionRecord{item: item}
	return nil
}

// GetAuction returns the current authoritative state of an auction.
func (s *MemoryStore) GetAuction(auctionID string) (model.AuctionItem, error) {
	rec, err := s.record(auctionID)
	if err != nil {
		return model.AuctionItem{}, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.item, nil
}

// CompareAndSwapAuction implements the conditional update described on the
// AuctionStore interface.
func (s *MemoryStore) CompareAndSwapAuction(ctx context.Context, auctionID string, expectedBid int64, expectedEnd, newEnd time.Time, bid model.Bid) (model.AuctionItem, error) {
	rec, err := s.record(auctionID)
	if err != nil {
		return model.AuctionItem{}, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return model.AuctionItem{}, fmt.Errorf("cas auction %s: %w", auctionID, err)
	}

	if rec.item.CurrentBid != expectedBid || !rec.item.EndTime.Equal(expectedEnd) {
		return model.AuctionItem{}, fmt.Errorf("cas auction %s: expected bid %d, have %d: %w",
			auctionID, expectedBid, rec.item.CurrentBid, auctionerrors.ErrConflict)
	}

	rec.item.CurrentBid = bid.Amount
	rec.item.EndTime = newEnd
	rec.bids = append(rec.bids, bid)
	return rec.item, nil
}

// CloseAuction marks an auction inactive. Closing an already closed auction
// is a no-op.
func (s *MemoryStore) CloseAuction(auctionID string) (model.AuctionItem, error) {
	rec, err := s.record(auctionID)
	if err != nil {
		return model.AuctionItem{}, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.item.IsActive = false
	return rec.item, nil
}

// ExpiredAuctions returns the active auctions whose end time has passed.
func (s *MemoryStore) ExpiredAuctions(now time.Time) []model.AuctionItem {
	s.mu.RLock()
	recs := make([]*auctionRecord, 0, len(s.auctions))
	for _, rec := range s.auctions {
		recs = append(recs, rec)
	}
	s.mu.RUnlock()

	var expired []model.AuctionItem
	for _, rec := range recs {
		rec.mu.Lock()
		if rec.item.IsActive && !now.Before(rec.item.EndTime) {
			expired = append(expired, rec.item)
		}
		rec.mu.Unlock()
	}
	return expired
}

// GetBidsByAuction returns all accepted bids for an auction in accept order.
func (s *MemoryStore) GetBidsByAuction(auctionID string) ([]model.Bid, error) {
	rec, err := s.record(auctionID)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]model.Bid(nil), rec.bids...), nil
}

// GetWinningBid returns the highest accepted bid for an auction. Amounts are
// strictly increasing per auction, so the latest bid wins.
func (s *MemoryStore) GetWinningBid(auctionID string) (model.Bid, error) {
	rec, err := s.record(auctionID)
	if err != nil {
		return model.Bid{}, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.bids) == 0 {
		return model.Bid{}, fmt.Errorf("winning bid for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}
	return rec.bids[len(rec.bids)-1], nil
}

// UpsertProxyOrder creates or replaces the active order for (auction, user).
func (s *MemoryStore) UpsertProxyOrder(order model.ProxyBidOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.auctions[order.AuctionID]; !ok {
		return fmt.Errorf("proxy order for auction %s: %w", order.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	byUser, ok := s.orders[order.AuctionID]
	if !ok {
		byUser = make(map[string]model.ProxyBidOrder)
		s.orders[order.AuctionID] = byUser
	}
	byUser[order.UserID] = order
	return nil
}

// ActiveProxyOrders returns the active orders for an auction, oldest first.
func (s *MemoryStore) ActiveProxyOrders(auctionID string) []model.ProxyBidOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var active []model.ProxyBidOrder
	for _, order := range s.orders[auctionID] {
		if order.IsActive {
			active = append(active, order)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].CreatedAt.Before(active[j].CreatedAt)
	})
	return active
}

// DeactivateProxyOrder retires the active order for (auction, user).
func (s *MemoryStore) DeactivateProxyOrder(auctionID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[auctionID][userID]
	if !ok {
		return nil
	}
	order.IsActive = false
	s.orders[auctionID][userID] = order
	return nil
}
