package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	bidding "auction-service/internal/biddingService"
	"auction-service/internal/identity"
	moderation "auction-service/internal/moderationService"
	model "auction-service/internal/models"
	"auction-service/internal/repository"
	"auction-service/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("integration-secret")

// TestApp is the full router wired over an in-memory repository.
type TestApp struct {
	Router *gin.Engine
	Repo   *repository.MemoryRepo
}

// SetupTestApp initializes the router with in-memory repository for integration testing.
func SetupTestApp(t *testing.T) *TestApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	verifier, err := identity.NewVerifier(testSecret, "")
	require.NoError(t, err)

	repo := repository.NewMemoryRepo()
	router := server.SetupRouter(server.Dependencies{
		Bidding:    bidding.NewBiddingService(repo),
		Moderation: moderation.NewModerationService(repo),
		Verifier:   verifier,
	})
	return &TestApp{Router: router, Repo: repo}
}

// Token signs a bearer token for the given user
func Token(t *testing.T, userID string, admin bool) string {
	t.Helper()
	tok, err := identity.Sign(testSecret, "", model.Identity{UserID: userID, IsAdmin: admin}, time.Hour)
	require.NoError(t, err)
	return tok
}

// ExecuteRequestAndParse executes an HTTP request on the app router and parses the response envelope
func (a *TestApp) ExecuteRequestAndParse(t *testing.T, method, url, token string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		var err error
		reqBody, err = json.Marshal(v)
		require.NoError(t, err, "failed to marshal body")
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	a.Router.ServeHTTP(w, req)

	var resp map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "failed to unmarshal response")
	}
	return resp, w
}

// CreateAuction creates an auction over the API and returns its id
func (a *TestApp) CreateAuction(t *testing.T, token, startingPrice string, start, end time.Time) string {
	t.Helper()
	resp, w := a.ExecuteRequestAndParse(t, "POST", "/auctions", token, map[string]any{
		"title":          "Vintage camera",
		"description":    "35mm rangefinder",
		"starting_price": startingPrice,
		"start_time":     start.Format(time.RFC3339Nano),
		"end_time":       end.Format(time.RFC3339Nano),
	})
	require.Equal(t, 201, w.Code, w.Body.String())
	return resp["data"].(map[string]any)["id"].(string)
}

// PlaceBid posts a bid and returns the parsed envelope
func (a *TestApp) PlaceBid(t *testing.T, token, auctionID string, amount any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()
	return a.ExecuteRequestAndParse(t, "POST", "/bids", token, map[string]any{
		"auction_id": auctionID,
		"amount":     amount,
	})
}
