package server

import (
	"auction-engine/internal/auction"
	"auction-engine/internal/broadcast"
	"auction-engine/internal/ledger"
	handler "auction-engine/services/auction/handler"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(svc *auction.Service, lgr *ledger.Ledger, broadcaster *broadcast.Broadcaster) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	auctionHandler := handler.NewAuctionHandler(svc, lgr)

	auctions := router.Group("/auctions")
	{
		auctions.POST("/:auction_id/bids", auctionHandler.PlaceBidHandler)
		auctions.POST("/:auction_id/proxy-bids", auctionHandler.SetProxyBidHandler)
		auctions.GET("/:auction_id", auctionHandler.GetAuctionHandler)
		auctions.GET("/:auction_id/bids", auctionHandler.GetBidsByAuctionHandler)
		auctions.GET("/:auction_id/winning", auctionHandler.GetWinningBidHandler)
	}

	users := router.Group("/users")
	{
		users.GET("/:user_id/connects", auctionHandler.GetConnectsHandler)
		users.POST("/:user_id/connects/credits", auctionHandler.CreditConnectsHandler)
	}

	router.GET("/ws", WebsocketHandler(broadcaster))

	return router
}
