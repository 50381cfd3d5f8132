package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"auction-engine/internal/auction"
	"auction-engine/internal/broadcast"
	"auction-engine/internal/config"
	"auction-engine/internal/fraud"
	"auction-engine/internal/ledger"
	model "auction-engine/internal/models"
	"auction-engine/internal/ratelimit"
	"auction-engine/internal/repository"
	"auction-engine/internal/server"

	"github.com/gin-gonic/gin"
)

// TestEnv holds the wired components behind a test router so tests can
// reach past the HTTP surface when they need to.
type TestEnv struct {
	Router      *gin.Engine
	Store       *repository.MemoryStore
	Ledger      *ledger.Ledger
	Broadcaster *broadcast.Broadcaster
	Service     *auction.Service
	Config      config.Config
}

// SetupTestEnv initializes the full stack with in-memory components and
// seeds the store with the given auctions.
func SetupTestEnv(items ...model.AuctionItem) *TestEnv {
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	store := repository.NewMemoryStore()
	connects := ledger.NewLedger()
	broadcaster := broadcast.NewBroadcaster()
	detector := fraud.NewDetector(fraud.NewMemoryStore(), cfg.Fraud)
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), cfg.RateLimit, detector)
	svc := auction.NewService(store, limiter, detector, connects, broadcaster, cfg.Bidding)

	for _, item := range items {
		store.AddAuction(item)
	}

	return &TestEnv{
		Router:      server.SetupRouter(svc, connects, broadcaster),
		Store:       store,
		Ledger:      connects,
		Broadcaster: broadcaster,
		Service:     svc,
		Config:      cfg,
	}
}

// ExecuteRequest executes an HTTP request and returns the response recorder.
func ExecuteRequest(t *testing.T, router *gin.Engine, method, url string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		if err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}

	return resp, w
}
