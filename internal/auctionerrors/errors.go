package auctionerrors

import (
	"errors"
	"fmt"
	"time"
)

// Store-level errors
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrNoBids          = errors.New("no bids found for auction")
	ErrConflict        = errors.New("concurrent bid conflict")
)

// Bid acceptance errors
var (
	ErrInvalidBid           = errors.New("invalid bid")
	ErrInvalidBidAmount     = errors.New("bid amount below required minimum")
	ErrAuctionEnded         = errors.New("auction has ended")
	ErrRateLimited          = errors.New("rate limit exceeded")
	ErrSuspiciousActivity   = errors.New("suspicious bidding activity")
	ErrInsufficientConnects = errors.New("insufficient connects balance")
	ErrTimeout              = errors.New("bid processing timed out")
)

// Ledger errors
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("amount must be positive")
)

// Rejection carries the structured data a client needs to self-correct
// without another round trip. It unwraps to one of the sentinel errors above
// so errors.Is keeps working through wrapping.
type Rejection struct {
	Kind       error
	CurrentBid int64
	MinimumBid int64
	Balance    int64
	RetryAfter time.Duration
}

func (r *Rejection) Error() string {
	switch {
	case r.MinimumBid > 0:
		return fmt.Sprintf("%v (minimum acceptable bid: %d)", r.Kind, r.MinimumBid)
	case r.RetryAfter > 0:
		return fmt.Sprintf("%v (retry after %s)", r.Kind, r.RetryAfter)
	default:
		return r.Kind.Error()
	}
}

func (r *Rejection) Unwrap() error { return r.Kind }

// Reject builds a Rejection for the given sentinel kind.
func Reject(kind error) *Rejection { return &Rejection{Kind: kind} }

// WithMinimum attaches the current bid and the minimum acceptable next bid.
func (r *Rejection) WithMinimum(current, minimum int64) *Rejection {
	r.CurrentBid = current
	r.MinimumBid = minimum
	return r
}

// WithBalance attaches the bidder's current connects balance.
func (r *Rejection) WithBalance(balance int64) *Rejection {
	r.Balance = balance
	return r
}

// WithRetryAfter attaches a back-off hint.
func (r *Rejection) WithRetryAfter(d time.Duration) *Rejection {
	r.RetryAfter = d
	return r
}
