package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"auction-engine/internal/auction"
	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"
	"auction-engine/services/auction/helpers"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
)

type AuctionServiceInterface interface {
	PlaceBid(ctx context.Context, in auction.PlaceBidInput) (model.Bid, error)
	SetProxyBid(ctx context.Context, auctionID, userID string, maxAmount int64, deviceFingerprint, ipAddress string) (model.ProxyBidOrder, error)
	GetAuction(auctionID string) (model.AuctionItem, error)
	GetBidsForAuction(auctionID string) ([]model.Bid, error)
	GetWinningBid(auctionID string) (model.Bid, error)
}

type LedgerInterface interface {
	Credit(userID string, amount int64, reason string) (model.ConnectsTransaction, error)
	Balance(userID string) int64
	History(userID string) []model.ConnectsTransaction
}

type AuctionHandler struct {
	service AuctionServiceInterface
	ledger  LedgerInterface
}

func NewAuctionHandler(service AuctionServiceInterface, ledger LedgerInterface) *AuctionHandler {
	return &AuctionHandler{service: service, ledger: ledger}
}

// PlaceBidHandler handles POST /auctions/:auction_id/bids
func (h *AuctionHandler) PlaceBidHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	bid, err := h.service.PlaceBid(c.Request.Context(), auction.PlaceBidInput{
		AuctionID:         auctionID,
		UserID:            req.UserID,
		Amount:            req.Amount,
		DeviceFingerprint: req.DeviceFingerprint,
		IPAddress:         c.ClientIP(),
	})
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		helpers.JSONRejection(c, status, err, message)
		utils.Error("PlaceBidHandler: failed to place bid", map[string]any{
			"handler":    "PlaceBidHandler",
			"auction_id": auctionID,
			"user_id":    req.UserID,
			"error":      err.Error(),
		})
		return
	}

	resp := helpers.BidResponse{
		BidID:     bid.BidID,
		AuctionID: bid.AuctionID,
		UserID:    bid.UserID,
		Amount:    bid.Amount,
		IsProxy:   bid.IsProxy,
		CreatedAt: helpers.FormatTime(bid.CreatedAt),
	}

	utils.JSONResponse(c, http.StatusCreated, resp, "bid placed successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid placed successfully", map[string]any{
		"bid_id":     bid.BidID,
		"auction_id": bid.AuctionID,
		"user_id":    req.UserID,
		"amount":     bid.Amount,
	})
}

// SetProxyBidHandler handles POST /auctions/:auction_id/proxy-bids
func (h *AuctionHandler) SetProxyBidHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	var req helpers.ProxyBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "SetProxyBidHandler", err)
		return
	}

	order, err := h.service.SetProxyBid(c.Request.Context(), auctionID, req.UserID, req.MaxAmount, req.DeviceFingerprint, c.ClientIP())
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		helpers.JSONRejection(c, status, err, message)
		utils.Error("SetProxyBidHandler: failed to set proxy bid", map[string]any{
			"handler":    "SetProxyBidHandler",
			"auction_id": auctionID,
			"user_id":    req.UserID,
			"error":      err.Error(),
		})
		return
	}

	resp := helpers.ProxyBidResponse{
		AuctionID: order.AuctionID,
		UserID:    order.UserID,
		MaxAmount: order.MaxAmount,
		IsActive:  order.IsActive,
		CreatedAt: helpers.FormatTime(order.CreatedAt),
	}

	utils.JSONResponse(c, http.StatusCreated, resp, "proxy bid order set successfully")
	helpers.LogSuccess("SetProxyBidHandler", "proxy bid order set successfully", map[string]any{
		"auction_id": order.AuctionID,
		"user_id":    order.UserID,
		"max_amount": order.MaxAmount,
	})
}

// GetAuctionHandler handles GET /auctions/:auction_id
func (h *AuctionHandler) GetAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	item, err := h.service.GetAuction(auctionID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetAuctionHandler: error retrieving auction", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}

	resp := helpers.AuctionResponse{
		AuctionID:      item.AuctionID,
		Title:          item.Title,
		CurrentBid:     item.CurrentBid,
		MinimumBid:     item.MinimumBid,
		EndTime:        helpers.FormatTime(item.EndTime),
		IsActive:       item.IsActive,
		NextMinimumBid: auction.RequiredMinimum(item.CurrentBid),
	}

	utils.JSONResponse(c, http.StatusOK, resp, "auction retrieved successfully")
}

// GetBidsByAuctionHandler handles GET /auctions/:auction_id/bids
func (h *AuctionHandler) GetBidsByAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	bids, err := h.service.GetBidsForAuction(auctionID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetBidsByAuctionHandler: error retrieving bids", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}

	if bids == nil {
		bids = []model.Bid{}
	}

	utils.JSONResponse(c, http.StatusOK, bids, "bids retrieved successfully")
	helpers.LogSuccess("GetBidsByAuctionHandler", "bids retrieved successfully", map[string]any{
		"auction_id": auctionID,
		"count":      len(bids),
	})
}

// GetWinningBidHandler handles GET /auctions/:auction_id/winning
func (h *AuctionHandler) GetWinningBidHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	bid, err := h.service.GetWinningBid(auctionID)
	if err != nil {
		if errors.Is(err, auctionerrors.ErrNoBids) {
			utils.JSONError(c, http.StatusNotFound, err, "no winning bid found")
			utils.Info("GetWinningBidHandler: no winning bid found", map[string]any{"auction_id": auctionID})
			return
		}
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetWinningBidHandler: winning bid error", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}

	resp := helpers.BidResponse{
		BidID:     bid.BidID,
		AuctionID: bid.AuctionID,
		UserID:    bid.UserID,
		Amount:    bid.Amount,
		IsProxy:   bid.IsProxy,
		CreatedAt: helpers.FormatTime(bid.CreatedAt),
	}

	utils.JSONResponse(c, http.StatusOK, resp, "winning bid retrieved successfully")
}

// GetConnectsHandler handles GET /users/:user_id/connects
func (h *AuctionHandler) GetConnectsHandler(c *gin.Context) {
	userID := c.Param("user_id")

	history := h.ledger.History(userID)
	txns := make([]helpers.TransactionResponse, 0, len(history))
	for _, txn := range history {
		txns = append(txns, helpers.TransactionResponse{
			TransactionID: txn.TransactionID,
			Delta:         txn.Delta,
			Reason:        txn.Reason,
			CreatedAt:     helpers.FormatTime(txn.CreatedAt),
		})
	}

	resp := helpers.ConnectsResponse{
		UserID:       userID,
		Balance:      h.ledger.Balance(userID),
		Transactions: txns,
	}

	utils.JSONResponse(c, http.StatusOK, resp, "connects retrieved successfully")
}

// CreditConnectsHandler handles POST /users/:user_id/connects/credits
func (h *AuctionHandler) CreditConnectsHandler(c *gin.Context) {
	userID := c.Param("user_id")

	var req helpers.CreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreditConnectsHandler", err)
		return
	}

	txn, err := h.ledger.Credit(userID, req.Amount, req.Reason)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("CreditConnectsHandler: failed to credit connects", map[string]any{
			"user_id": userID,
			"amount":  req.Amount,
			"error":   err.Error(),
		})
		return
	}

	resp := helpers.TransactionResponse{
		TransactionID: txn.TransactionID,
		Delta:         txn.Delta,
		Reason:        txn.Reason,
		CreatedAt:     helpers.FormatTime(txn.CreatedAt),
	}

	utils.JSONResponse(c, http.StatusCreated, resp, "connects credited successfully")
	helpers.LogSuccess("CreditConnectsHandler", "connects credited successfully", map[string]any{
		"user_id": userID,
		"amount":  req.Amount,
	})
}
