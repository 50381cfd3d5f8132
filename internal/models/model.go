package models

import "time"

// User represents a participant in the auction
type User struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// AuctionItem is the authoritative per-auction record. CurrentBid only ever
// moves up; EndTime only ever moves forward (anti-sniping extension).
type AuctionItem struct {
	AuctionID  string    `json:"auction_id"`
	Title      string    `json:"title"`
	MinimumBid int64     `json:"minimum_bid"`
	CurrentBid int64     `json:"current_bid"`
	EndTime    time.Time `json:"end_time"`
	IsActive   bool      `json:"is_active"`
}

// Ended reports whether the auction can no longer accept bids.
func (a AuctionItem) Ended(now time.Time) bool {
	return !a.IsActive || !now.Before(a.EndTime)
}

// Bid represents an accepted bid on an auction. Bids are immutable; per
// auction they form an append-only sequence with strictly increasing amounts.
type Bid struct {
	BidID             string    `json:"bid_id"`
	AuctionID         string    `json:"auction_id"`
	UserID            string    `json:"user_id"`
	Amount            int64     `json:"amount"`
	IsProxy           bool      `json:"is_proxy"`
	MaxProxyAmount    int64     `json:"max_proxy_amount,omitempty"`
	DeviceFingerprint string    `json:"device_fingerprint"`
	IPAddress         string    `json:"ip_address"`
	CreatedAt         time.Time `json:"created_at"`
}

// ProxyBidOrder is a standing maximum-bid order. At most one active order
// exists per (auction, user); a replacement deactivates the prior one.
type ProxyBidOrder struct {
	AuctionID string    `json:"auction_id"`
	UserID    string    `json:"user_id"`
	MaxAmount int64     `json:"max_amount"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// ConnectsAccount holds a user's virtual-currency balance. Mutated only
// through ledger transactions; the balance never goes negative.
type ConnectsAccount struct {
	UserID  string `json:"user_id"`
	Balance int64  `json:"balance"`
}

// ConnectsTransaction is one append-only ledger entry. The sum of a user's
// deltas always equals the account balance.
type ConnectsTransaction struct {
	TransactionID string    `json:"transaction_id"`
	UserID        string    `json:"user_id"`
	Delta         int64     `json:"delta"`
	Reason        string    `json:"reason"`
	CreatedAt     time.Time `json:"created_at"`
}
