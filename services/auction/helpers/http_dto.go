package helpers

import "time"

// Request/Response DTOs
type PlaceBidRequest struct {
	UserID            string `json:"user_id" binding:"required"`
	Amount            int64  `json:"amount" binding:"required,gt=0"`
	DeviceFingerprint string `json:"device_fingerprint" binding:"required"`
}

type ProxyBidRequest struct {
	UserID            string `json:"user_id" binding:"required"`
	MaxAmount         int64  `json:"max_amount" binding:"required,gt=0"`
	DeviceFingerprint string `json:"device_fingerprint" binding:"required"`
}

type CreditRequest struct {
	Amount int64  `json:"amount" binding:"required,gt=0"`
	Reason string `json:"reason" binding:"required"`
}

type BidResponse struct {
	BidID     string `json:"bid_id"`
	AuctionID string `json:"auction_id"`
	UserID    string `json:"user_id"`
	Amount    int64  `json:"amount"`
	IsProxy   bool   `json:"is_proxy"`
	CreatedAt string `json:"created_at"`
}

type AuctionResponse struct {
	AuctionID  string `json:"auction_id"`
	Title      string `json:"title"`
	CurrentBid int64  `json:"current_bid"`
	MinimumBid int64  `json:"minimum_bid"`
	EndTime    string `json:"end_time"`
	IsActive   bool   `json:"is_active"`
	// NextMinimumBid is what a bid must be to be accepted right now.
	NextMinimumBid int64 `json:"next_minimum_bid"`
}

type ProxyBidResponse struct {
	AuctionID string `json:"auction_id"`
	UserID    string `json:"user_id"`
	MaxAmount int64  `json:"max_amount"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

type ConnectsResponse struct {
	UserID       string                `json:"user_id"`
	Balance      int64                 `json:"balance"`
	Transactions []TransactionResponse `json:"transactions"`
}

type TransactionResponse struct {
	TransactionID string `json:"transaction_id"`
	Delta         int64  `json:"delta"`
	Reason        string `json:"reason"`
	CreatedAt     string `json:"created_at"`
}

// RejectionDetail is attached to bid-rejection responses so the client can
// self-correct without another round trip.
type RejectionDetail struct {
	CurrentBid   int64  `json:"current_bid,omitempty"`
	MinimumBid   int64  `json:"minimum_bid,omitempty"`
	Balance      int64  `json:"balance,omitempty"`
	RetryAfterMS int64  `json:"retry_after_ms,omitempty"`
	Kind         string `json:"kind"`
}

// FormatTime renders timestamps the way every response does.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
