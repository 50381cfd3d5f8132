package auction

import (
	"context"
	"fmt"
	"time"

	"auction-engine/internal/auctionerrors"
	"auction-engine/internal/broadcast"
	"auction-engine/internal/models"
	"auction-engine/internal/ratelimit"
	"auction-engine/utils"
)

// SetProxyBid creates or replaces the user's standing maximum-bid order on an
// auction. The engine bids on the user's behalf, one increment at a time, up
// to maxAmount whenever a competing bid is accepted.
func (s *Service) SetProxyBid(ctx context.Context, auctionID, userID string, maxAmount int64, deviceFingerprint, ipAddress string) (models.ProxyBidOrder, error) {
	if auctionID == "" || userID == "" {
		return models.ProxyBidOrder{}, fmt.Errorf("service: %w - missing auctionID or userID", auctionerrors.ErrInvalidBid)
	}
	if maxAmount <= 0 {
		return models.ProxyBidOrder{}, fmt.Errorf("service: %w - non-positive proxy maximum", auctionerrors.ErrInvalidBid)
	}

	if !s.limiter.Allow(deviceFingerprint, ratelimit.ClassBid) {
		retryAfter := s.limiter.RetryAfter(deviceFingerprint, ratelimit.ClassBid)
		return models.ProxyBidOrder{}, fmt.Errorf("service: set proxy bid on %s: %w",
			auctionID, auctionerrors.Reject(auctionerrors.ErrRateLimited).WithRetryAfter(retryAfter))
	}

	now := s.now().UTC()
	item, err := s.store.GetAuction(auctionID)
	if err != nil {
		return models.ProxyBidOrder{}, fmt.Errorf("service: set proxy bid: %w", err)
	}
	if item.Ended(now) {
		return models.ProxyBidOrder{}, fmt.Errorf("service: set proxy bid on %s: %w",
			auctionID, auctionerrors.ErrAuctionEnded)
	}

	order := models.ProxyBidOrder{
		AuctionID: auctionID,
		UserID:    userID,
		MaxAmount: maxAmount,
		IsActive:  true,
		CreatedAt: now,
	}
	if err := s.store.UpsertProxyOrder(order); err != nil {
		return models.ProxyBidOrder{}, fmt.Errorf("service: set proxy bid: %w", err)
	}
	return order, nil
}

// reactToBid checks the standing proxy orders on an auction after a bid is
// accepted and counter-bids on behalf of the strongest eligible order. The
// synthesized bid re-enters placeBid, so one reaction per accepted bid is
// enough for a full cascade. Each step strictly raises the current bid and
// orders are capped by maxAmount, so cascades terminate; depth is bounded
// anyway to contain policy bugs.
func (s *Service) reactToBid(ctx context.Context, item models.AuctionItem, accepted models.Bid, depth int) {
	if depth >= s.cfg.MaxProxyDepth {
		utils.Warn("proxy cascade depth limit reached", map[string]any{
			"auction_id": item.AuctionID,
			"depth":      depth,
		})
		return
	}

	required := RequiredMinimum(item.CurrentBid)

	var best *models.ProxyBidOrder
	for _, order := range s.store.ActiveProxyOrders(item.AuctionID) {
		if order.UserID == accepted.UserID {
			continue
		}
		if order.MaxAmount < required {
			// A counter would exceed the order's ceiling; retire it.
			if err := s.store.DeactivateProxyOrder(order.AuctionID, order.UserID); err != nil {
				utils.Error("failed to deactivate exhausted proxy order", map[string]any{
					"auction_id": order.AuctionID,
					"user_id":    order.UserID,
					"error":      err.Error(),
				})
			}
			continue
		}
		// Highest ceiling wins; ActiveProxyOrders is oldest-first, so a
		// strictly-greater comparison keeps the earliest order on ties.
		if best == nil || order.MaxAmount > best.MaxAmount {
			o := order
			best = &o
		}
	}
	if best == nil {
		return
	}

	_, err := s.placeBid(ctx, PlaceBidInput{
		AuctionID:      item.AuctionID,
		UserID:         best.UserID,
		Amount:         required,
		isProxy:        true,
		maxProxyAmount: best.MaxAmount,
	}, depth+1)
	if err != nil {
		// Best effort: a lost race means someone else already raised the
		// bid and their commit will trigger its own reaction.
		utils.Warn("proxy counter-bid not placed", map[string]any{
			"auction_id": item.AuctionID,
			"user_id":    best.UserID,
			"amount":     required,
			"error":      err.Error(),
		})
	}
}

// CloseExpired marks every auction whose end time has passed as closed,
// retires its proxy orders and broadcasts the outcome. Returns the auctions
// closed in this sweep.
func (s *Service) CloseExpired(now time.Time) []models.AuctionItem {
	var closed []models.AuctionItem
	for _, item := range s.store.ExpiredAuctions(now) {
		final, err := s.store.CloseAuction(item.AuctionID)
		if err != nil {
			utils.Error("failed to close expired auction", map[string]any{
				"auction_id": item.AuctionID,
				"error":      err.Error(),
			})
			continue
		}

		for _, order := range s.store.ActiveProxyOrders(item.AuctionID) {
			if err := s.store.DeactivateProxyOrder(order.AuctionID, order.UserID); err != nil {
				utils.Error("failed to deactivate proxy order on close", map[string]any{
					"auction_id": order.AuctionID,
					"user_id":    order.UserID,
					"error":      err.Error(),
				})
			}
		}

		ev := broadcast.Event{
			Type:      broadcast.EventAuctionEnded,
			AuctionID: final.AuctionID,
		}
		if winning, err := s.store.GetWinningBid(final.AuctionID); err == nil {
			ev.WinningBid = &winning
		}
		s.publisher.Publish(ev)

		utils.Info("auction closed", map[string]any{
			"auction_id":  final.AuctionID,
			"current_bid": final.CurrentBid,
		})
		closed = append(closed, final)
	}
	return closed
}
