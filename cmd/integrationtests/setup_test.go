package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	auction "philabid/internal/auctionService"
	bidding "philabid/internal/biddingService"
	"philabid/internal/repository/repotest"
	"philabid/internal/server"

	"github.com/gin-gonic/gin"
)

// testClock is a settable time source shared by the service and its ledger
type testClock struct {
	now atomic.Int64
}

func (c *testClock) Set(t time.Time) { c.now.Store(t.UnixNano()) }
func (c *testClock) Now() time.Time { return time.Unix(0, c.now.Load()).UTC() }

// SetupTestRouter initializes the router over a freshly migrated SQLite store.
func SetupTestRouter(t *testing.T, now time.Time) (*gin.Engine, *testClock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := &testClock{}
	clock.Set(now)

	repo, migrator := repotest.NewWithMigrator(t)
	ledger := bidding.NewBidLedger(repo, bidding.WithClock(clock.Now))
	service := auction.NewAuctionService(repo, ledger, auction.WithClock(clock.Now))
	return server.SetupRouter(service, migrator), clock
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()
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
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}
	return resp, w
}

// data returns the object payload of a response envelope
func data(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	d, ok := resp["data"].(map[string]any)
	if !ok {
		t.Fatalf("response has no object data: %v", resp)
	}
	return d
}
