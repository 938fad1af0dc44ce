//go:build e2e

package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/smart-picks/internal/broadcast"
	"github.com/yourusername/smart-picks/internal/health"
	"github.com/yourusername/smart-picks/internal/logger"
	"github.com/yourusername/smart-picks/internal/metrics"
	"github.com/yourusername/smart-picks/internal/models"
)

const skipE2E = "Skipping E2E test in short mode"

// TestRefreshCycleEndToEnd runs a cycle against the simulated source and reads
// the result back over the stream and the picks API.
func TestRefreshCycleEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip(skipE2E)
	}

	cfg := simulatedConfig(t)
	cfg.Markets[0].Threshold = 0.3

	a, err := New(context.Background(), cfg, logger.NewDiscardLogger())
	require.NoError(t, err)
	defer a.Close()

	metrics.InitRegistry()
	server := health.NewServer(health.Config{
		ServiceName:      "smart-picks",
		Logger:           a.Logger,
		Picks:            a.Service,
		MetricsHandler:   metrics.Handler(),
		WebSocketHandler: a.Hub,
	})
	srv := httptest.NewServer(server.Handler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/picks?market=btts", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return a.Hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	result, err := a.Service.RunCycle(context.Background(), models.MarketBTTS)
	require.NoError(t, err)
	require.NotEmpty(t, result.Picks, "a low threshold selects picks from the simulated slate")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var pushed broadcast.PicksMessage
	require.NoError(t, json.Unmarshal(data, &pushed))
	assert.Equal(t, result.CycleID, pushed.CycleID)
	assert.Len(t, pushed.Picks, len(result.Picks))

	resp, err := http.Get(srv.URL + "/api/picks?market=btts")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body health.PicksResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Picks, len(result.Picks))
	for i, p := range body.Picks {
		assert.Equal(t, i+1, p.Rank)
		assert.GreaterOrEqual(t, p.Probability, 0.3)
		if i > 0 {
			assert.LessOrEqual(t, p.Probability, body.Picks[i-1].Probability)
		}
	}

	metricsResp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	assert.Equal(t, http.StatusOK, metricsResp.StatusCode)
}
