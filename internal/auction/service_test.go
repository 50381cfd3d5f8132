package auction

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"auction-engine/internal/auctionerrors"
	"auction-engine/internal/broadcast"
	"auction-engine/internal/config"
	model "auction-engine/internal/models"
	"auction-engine/internal/ratelimit"
	"auction-engine/internal/repository"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Test doubles for the engine's collaborators.

type fakeLimiter struct {
	deny bool
}

func (f *fakeLimiter) Allow(string, ratelimit.Class) bool { return !f.deny }

func (f *fakeLimiter) RetryAfter(string, ratelimit.Class) time.Duration { return 5 * time.Second }

type fakeDetector struct {
	suspicious bool
}

func (f *fakeDetector) IsSuspicious(string, string, time.Time, time.Time) bool {
	return f.suspicious
}

type fakeBalances struct {
	balances map[string]int64
}

func (f *fakeBalances) Balance(userID string) int64 { return f.balances[userID] }

type capturePublisher struct {
	mu     sync.Mutex
	events []broadcast.Event
}

func (p *capturePublisher) Publish(ev broadcast.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *capturePublisher) all() []broadcast.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]broadcast.Event(nil), p.events...)
}

func testBiddingConfig() config.BiddingConfig {
	return config.BiddingConfig{
		SnipeWindow:     30 * time.Second,
		SnipeExtension:  120 * time.Second,
		CASRetries:      3,
		PersistTimeout:  2 * time.Second,
		RequireSolvency: false,
		MaxProxyDepth:   50,
		DuplicateWindow: 10 * time.Second,
	}
}

type testEnv struct {
	store     *repository.MemoryStore
	limiter   *fakeLimiter
	detector  *fakeDetector
	balances  *fakeBalances
	publisher *capturePublisher
	svc       *Service
}

func newTestEnv(t *testing.T, cfg config.BiddingConfig) *testEnv {
	t.Helper()
	env := &testEnv{
		store:     repository.NewMemoryStore(),
		limiter:   &fakeLimiter{},
		detector:  &fakeDetector{},
		balances:  &fakeBalances{balances: make(map[string]int64)},
		publisher: &capturePublisher{},
	}
	env.svc = NewService(env.store, env.limiter, env.detector, env.balances, env.publisher, cfg)
	return env
}

func seedAuction(t *testing.T, env *testEnv, auctionID string, currentBid int64, endTime time.Time) {
	t.Helper()
	require.NoError(t, env.store.AddAuction(model.AuctionItem{
		AuctionID:  auctionID,
		Title:      auctionID,
		MinimumBid: currentBid,
		CurrentBid: currentBid,
		EndTime:    endTime,
		IsActive:   true,
	}))
}

func bidInput(auctionID, userID string, amount int64) PlaceBidInput {
	return PlaceBidInput{
		AuctionID:         auctionID,
		UserID:            userID,
		Amount:            amount,
		DeviceFingerprint: "fp-" + userID,
		IPAddress:         "203.0.113.1",
	}
}

// Tests PlaceBid
func TestService_PlaceBid(t *testing.T) {
	t.Parallel()

	end := time.Now().UTC().Add(time.Hour)

	tests := []struct {
		name          string
		setup         func(t *testing.T, env *testEnv)
		input         PlaceBidInput
		expectedError error
	}{
		{
			name: "valid_first_bid",
			setup: func(t *testing.T, env *testEnv) {
				seedAuction(t, env, "auction1", 90, end)
			},
			input: bidInput("auction1", "user1", 95),
		},
		{
			name:          "empty_auctionID",
			setup:         func(t *testing.T, env *testEnv) {},
			input:         bidInput("", "user1", 95),
			expectedError: auctionerrors.ErrInvalidBid,
		},
		{
			name:          "empty_userID",
			setup:         func(t *testing.T, env *testEnv) {},
			input:         bidInput("auction1", "", 95),
			expectedError: auctionerrors.ErrInvalidBid,
		},
		{
			name:          "non_positive_amount",
			setup:         func(t *testing.T, env *testEnv) {},
			input:         bidInput("auction1", "user1", 0),
			expectedError: auctionerrors.ErrInvalidBid,
		},
		{
			name:          "auction_not_found",
			setup:         func(t *testing.T, env *testEnv) {},
			input:         bidInput("auctionX", "user1", 95),
			expectedError: auctionerrors.ErrAuctionNotFound,
		},
		{
			name: "auction_past_end_time",
			setup: func(t *testing.T, env *testEnv) {
				seedAuction(t, env, "auction1", 90, time.Now().UTC().Add(-time.Minute))
			},
			input:         bidInput("auction1", "user1", 95),
			expectedError: auctionerrors.ErrAuctionEnded,
		},
		{
			name: "auction_deactivated",
			setup: func(t *testing.T, env *testEnv) {
				seedAuction(t, env, "auction1", 90, end)
				_, err := env.store.CloseAuction("auction1")
				require.NoError(t, err)
			},
			input:         bidInput("auction1", "user1", 95),
			expectedError: auctionerrors.ErrAuctionEnded,
		},
		{
			name: "amount_below_required_minimum",
			setup: func(t *testing.T, env *testEnv) {
				seedAuction(t, env, "auction1", 90, end)
			},
			input:         bidInput("auction1", "user1", 94),
			expectedError: auctionerrors.ErrInvalidBidAmount,
		},
		{
			name: "rate_limited",
			setup: func(t *testing.T, env *testEnv) {
				seedAuction(t, env, "auction1", 90, end)
				env.limiter.deny = true
			},
			input:         bidInput("auction1", "user1", 95),
			expectedError: auctionerrors.ErrRateLimited,
		},
		{
			name: "suspicious_activity",
			setup: func(t *testing.T, env *testEnv) {
				seedAuction(t, env, "auction1", 90, end)
				env.detector.suspicious = true
			},
			input:         bidInput("auction1", "user1", 95),
			expectedError: auctionerrors.ErrSuspiciousActivity,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t, testBiddingConfig())
			tc.setup(t, env)

			bid, err := env.svc.PlaceBid(context.Background(), tc.input)

			if tc.expectedError != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
				return
			}

			require.NoError(t, err)
			require.NotEmpty(t, bid.BidID)
			_, parseErr := uuid.Parse(bid.BidID)
			require.NoError(t, parseErr, "BidID should be a valid UUID")
			require.Equal(t, tc.input.AuctionID, bid.AuctionID)
			require.Equal(t, tc.input.UserID, bid.UserID)
			require.Equal(t, tc.input.Amount, bid.Amount)
			require.False(t, bid.IsProxy)

			item, err := env.svc.GetAuction(tc.input.AuctionID)
			require.NoError(t, err)
			require.Equal(t, tc.input.Amount, item.CurrentBid)
		})
	}
}

// Increment scenario: current bid 90 needs at least 95; 94 is rejected with
// the minimum attached, 95 is accepted and becomes the new current bid.
func TestService_PlaceBid_IncrementBoundary(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, testBiddingConfig())
	end := time.Now().UTC().Add(time.Hour)
	seedAuction(t, env, "auction1", 90, end)

	_, err := env.svc.PlaceBid(context.Background(), bidInput("auction1", "user1", 94))
	require.ErrorIs(t, err, auctionerrors.ErrInvalidBidAmount)

	var rej *auctionerrors.Rejection
	require.True(t, errors.As(err, &rej))
	require.Equal(t, int64(90), rej.CurrentBid)
	require.Equal(t, int64(95), rej.MinimumBid)

	bid, err := env.svc.PlaceBid(context.Background(), bidInput("auction1", "user1", 95))
	require.NoError(t, err)
	require.Equal(t, int64(95), bid.Amount)

	item, err := env.svc.GetAuction("auction1")
	require.NoError(t, err)
	require.Equal(t, int64(95), item.CurrentBid)
}

func TestService_PlaceBid_SolvencyCheck(t *testing.T) {
	t.Parallel()

	cfg := testBiddingConfig()
	cfg.RequireSolvency = true
	env := newTestEnv(t, cfg)
	seedAuction(t, env, "auction1", 90, time.Now().UTC().Add(time.Hour))

	env.balances.balances["user1"] = 50
	_, err := env.svc.PlaceBid(context.Background(), bidInput("auction1", "user1", 95))
	require.ErrorIs(t, err, auctionerrors.ErrInsufficientConnects)

	var rej *auctionerrors.Rejection
	require.True(t, errors.As(err, &rej))
	require.Equal(t, int64(50), rej.Balance)

	env.balances.balances["user1"] = 95
	_, err = env.svc.PlaceBid(context.Background(), bidInput("auction1", "user1", 95))
	require.NoError(t, err)
}

// Anti-sniping: a bid inside the snipe window pushes the end time to
// now+extension; a bid outside it leaves the end time alone.
func TestService_PlaceBid_AntiSniping(t *testing.T) {
	t.Parallel()

	t.Run("bid_inside_window_extends", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, testBiddingConfig())
		now := time.Now().UTC()
		env.svc.now = func() time.Time { return now }

		seedAuction(t, env, "auction1", 90, now.Add(10*time.Second))

		_, err := env.svc.PlaceBid(context.Background(), bidInput("auction1", "user1", 95))
		require.NoError(t, err)

		item, err := env.svc.GetAuction("auction1")
		require.NoError(t, err)
		require.Equal(t, now.Add(120*time.Second), item.EndTime)

		// The extension is announced alongside the bid.
		events := env.publisher.all()
		require.Len(t, events, 2)
		require.Equal(t, broadcast.EventNewBid, events[0].Type)
		require.Equal(t, broadcast.EventAuctionUpdate, events[1].Type)
		require.Equal(t, now.Add(120*time.Second), events[1].Update.EndTime)
	})

	t.Run("bid_outside_window_no_change", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, testBiddingConfig())
		now := time.Now().UTC()
		env.svc.now = func() time.Time { return now }

		end := now.Add(10 * time.Minute)
		seedAuction(t, env, "auction1", 90, end)

		_, err := env.svc.PlaceBid(context.Background(), bidInput("auction1", "user1", 95))
		require.NoError(t, err)

		item, err := env.svc.GetAuction("auction1")
		require.NoError(t, err)
		require.Equal(t, end, item.EndTime)

		// No extension, no auction_update.
		events := env.publisher.all()
		require.Len(t, events, 1)
		require.Equal(t, broadcast.EventNewBid, events[0].Type)
	})
}

// A duplicate submission inside the coalescing window returns the original
// bid instead of being applied twice.
func TestService_PlaceBid_DuplicateCoalesced(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, testBiddingConfig())
	seedAuction(t, env, "auction1", 90, time.Now().UTC().Add(time.Hour))

	in := bidInput("auction1", "user1", 95)

	first, err := env.svc.PlaceBid(context.Background(), in)
	require.NoError(t, err)

	second, err := env.svc.PlaceBid(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, first.BidID, second.BidID)

	bids, err := env.svc.GetBidsForAuction("auction1")
	require.NoError(t, err)
	require.Len(t, bids, 1)
}

// A lost CAS race is retried against the fresh state; exhausting the retries
// surfaces Conflict.
func TestService_PlaceBid_ConflictRetry(t *testing.T) {
	t.Parallel()

	end := time.Now().UTC().Add(time.Hour)
	open := model.AuctionItem{AuctionID: "auction1", CurrentBid: 90, EndTime: end, IsActive: true}

	t.Run("retry_succeeds_after_lost_race", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStore := repository.NewMockAuctionStore(ctrl)
		publisher := &capturePublisher{}
		svc := NewService(mockStore, &fakeLimiter{}, &fakeDetector{}, nil, publisher, testBiddingConfig())

		raced := open
		raced.CurrentBid = 100
		won := raced
		won.CurrentBid = 110

		gomock.InOrder(
			// First attempt reads 90 but another bid got there first.
			mockStore.EXPECT().GetAuction("auction1").Return(open, nil),
			mockStore.EXPECT().CompareAndSwapAuction(gomock.Any(), "auction1", int64(90), end, end, gomock.Any()).
				Return(model.AuctionItem{}, auctionerrors.ErrConflict),
			// Retry re-reads 100 and lands 110.
			mockStore.EXPECT().GetAuction("auction1").Return(raced, nil),
			mockStore.EXPECT().CompareAndSwapAuction(gomock.Any(), "auction1", int64(100), end, end, gomock.Any()).
				Return(won, nil),
			mockStore.EXPECT().ActiveProxyOrders("auction1").Return(nil),
		)

		bid, err := svc.PlaceBid(context.Background(), bidInput("auction1", "user1", 110))
		require.NoError(t, err)
		require.Equal(t, int64(110), bid.Amount)
	})

	t.Run("retries_exhausted_returns_conflict", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStore := repository.NewMockAuctionStore(ctrl)
		cfg := testBiddingConfig()
		cfg.CASRetries = 2
		svc := NewService(mockStore, &fakeLimiter{}, &fakeDetector{}, nil, &capturePublisher{}, cfg)

		mockStore.EXPECT().GetAuction("auction1").Return(open, nil).Times(3)
		mockStore.EXPECT().CompareAndSwapAuction(gomock.Any(), "auction1", int64(90), end, end, gomock.Any()).
			Return(model.AuctionItem{}, auctionerrors.ErrConflict).Times(3)

		_, err := svc.PlaceBid(context.Background(), bidInput("auction1", "user1", 95))
		require.ErrorIs(t, err, auctionerrors.ErrConflict)
	})

	t.Run("persist_deadline_returns_timeout", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStore := repository.NewMockAuctionStore(ctrl)
		svc := NewService(mockStore, &fakeLimiter{}, &fakeDetector{}, nil, &capturePublisher{}, testBiddingConfig())

		mockStore.EXPECT().GetAuction("auction1").Return(open, nil)
		mockStore.EXPECT().CompareAndSwapAuction(gomock.Any(), "auction1", int64(90), end, end, gomock.Any()).
			Return(model.AuctionItem{}, fmt.Errorf("cas auction auction1: %w", context.DeadlineExceeded))

		_, err := svc.PlaceBid(context.Background(), bidInput("auction1", "user1", 95))
		require.ErrorIs(t, err, auctionerrors.ErrTimeout)
	})
}

// No lost updates: under concurrent bidding the accepted amounts are strictly
// increasing, each step honors the increment law, and the final current bid
// is the highest accepted amount.
func TestService_ConcurrentBidding(t *testing.T) {
	t.Parallel()

	cfg := testBiddingConfig()
	cfg.CASRetries = 10
	env := newTestEnv(t, cfg)
	seedAuction(t, env, "auction1", 90, time.Now().UTC().Add(time.Hour))

	const bidders = 40

	var wg sync.WaitGroup
	var mu sync.Mutex
	var acceptedAmounts []int64

	for i := 0; i < bidders; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			userID := fmt.Sprintf("user-%d", i)
			for attempt := 0; attempt < 20; attempt++ {
				item, err := env.svc.GetAuction("auction1")
				require.NoError(t, err)

				amount := RequiredMinimum(item.CurrentBid)
				bid, err := env.svc.PlaceBid(context.Background(), bidInput("auction1", userID, amount))
				if err == nil {
					mu.Lock()
					acceptedAmounts = append(acceptedAmounts, bid.Amount)
					mu.Unlock()
					return
				}
				// Losing a race is expected; anything else is a bug.
				if !errors.Is(err, auctionerrors.ErrConflict) && !errors.Is(err, auctionerrors.ErrInvalidBidAmount) {
					require.NoError(t, err)
				}
			}
		}()
	}
	wg.Wait()

	bids, err := env.svc.GetBidsForAuction("auction1")
	require.NoError(t, err)
	require.NotEmpty(t, bids)

	prev := int64(90)
	for _, b := range bids {
		require.GreaterOrEqual(t, b.Amount, prev+Increment(prev), "increment law violated at amount %d", b.Amount)
		prev = b.Amount
	}

	item, err := env.svc.GetAuction("auction1")
	require.NoError(t, err)

	sort.Slice(acceptedAmounts, func(i, j int) bool { return acceptedAmounts[i] < acceptedAmounts[j] })
	require.Equal(t, len(bids), len(acceptedAmounts))
	require.Equal(t, acceptedAmounts[len(acceptedAmounts)-1], item.CurrentBid)
}
