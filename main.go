package main

import (
	"fmt"
	"os"
	"time"

	"auction-engine/internal/auction"
	"auction-engine/internal/broadcast"
	"auction-engine/internal/config"
	"auction-engine/internal/fraud"
	"auction-engine/internal/ledger"
	model "auction-engine/internal/models"
	"auction-engine/internal/ratelimit"
	"auction-engine/internal/repository"
	"auction-engine/internal/server"
)

func main() {

	cfg, err := config.Load(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	store := repository.NewMemoryStore()
	connects := ledger.NewLedger()
	broadcaster := broadcast.NewBroadcaster()

	detector := fraud.NewDetector(fraud.NewMemoryStore(), cfg.Fraud)
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), cfg.RateLimit, detector)

	svc := auction.NewService(store, limiter, detector, connects, broadcaster, cfg.Bidding)

	closer := auction.NewCloser(svc, time.Second)
	closer.Start()
	defer closer.Stop()

	prepopulateAuctions(store)

	router := server.SetupRouter(svc, connects, broadcaster)

	port := getPort(cfg)
	fmt.Printf("Starting auction server on %s...\n", port)
	if err := router.Run(port); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

// prepopulateAuctions adds sample auctions to the in-memory store
func prepopulateAuctions(store *repository.MemoryStore) {
	endTime := time.Now().UTC().Add(time.Hour)
	items := []model.AuctionItem{
		{AuctionID: "auction1", Title: "title1", MinimumBid: 50, CurrentBid: 50, EndTime: endTime, IsActive: true},
		{AuctionID: "auction2", Title: "title2", MinimumBid: 200, CurrentBid: 200, EndTime: endTime, IsActive: true},
		{AuctionID: "auction3", Title: "title3", MinimumBid: 150, CurrentBid: 150, EndTime: endTime, IsActive: true},
	}

	for _, item := range items {
		if err := store.AddAuction(item); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to prepopulate auction %s: %v\n", item.AuctionID, err)
		}
	}
}

// getPort returns the server port from env, config, or defaults to ":8080"
func getPort(cfg config.Config) string {
	if p := os.Getenv("PORT"); p != "" {
		return fmt.Sprintf(":%s", p)
	}
	if cfg.Server.Port != "" {
		return cfg.Server.Port
	}
	return ":8080"
}
