package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openvault-labs/yieldrouter/internal/types"
)

func testServer() (*WebServer, *StatusStore) {
	status := NewStatusStore(types.EngineParameters{MinRiskScore: 40})
	return NewWebServer(":0", status), status
}

func TestHandleHealth(t *testing.T) {
	ws, _ := testServer()

	rec := httptest.NewRecorder()
	ws.router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestHandleGetParameters(t *testing.T) {
	ws, _ := testServer()

	rec := httptest.NewRecorder()
	ws.router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/parameters", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var params types.EngineParameters
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &params))
	assert.InDelta(t, 40, params.MinRiskScore, 0.001)
}

func TestHandleGetLatestDecision(t *testing.T) {
	ws, status := testServer()

	// Before any cycle: 404.
	rec := httptest.NewRecorder()
	ws.router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/decision/latest", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	status.PublishCycle("cycle-1", nil, types.RebalanceDecision{
		ShouldRebalance: false,
		Reason:          "cooldown active",
		DecidedAt:       time.Now(),
	})

	rec = httptest.NewRecorder()
	ws.router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/decision/latest", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		CycleID  string                  `json:"cycle_id"`
		Decision types.RebalanceDecision `json:"decision"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "cycle-1", body.CycleID)
	assert.Equal(t, "cooldown active", body.Decision.Reason)
}

func TestHandleGetOpportunities(t *testing.T) {
	ws, status := testServer()

	status.PublishCycle("cycle-1", []types.Opportunity{
		{Protocol: "aave-v3", Chain: "arbitrum", APY: 0.05, RiskScore: 98, RiskAdjustedAPY: 0.049},
	}, types.RebalanceDecision{})

	rec := httptest.NewRecorder()
	ws.router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/opportunities", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var opps []types.Opportunity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opps))
	require.Len(t, opps, 1)
	assert.Equal(t, "aave-v3", opps[0].Protocol)
}

func TestCORSHeadersOnAPIRoutes(t *testing.T) {
	ws, _ := testServer()

	rec := httptest.NewRecorder()
	ws.router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/parameters", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
