package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func value(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, m.Write(&out))
	switch {
	case out.Counter != nil:
		return out.GetCounter().GetValue()
	case out.Gauge != nil:
		return out.GetGauge().GetValue()
	}
	t.Fatalf("unsupported metric type")
	return 0
}

func TestMetricsRegistry(t *testing.T) {
	registry := GetRegistry()
	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Same(t, registry, InitRegistry())
}

func TestRecordCycle(t *testing.T) {
	InitRegistry()
	before := value(t, CyclesTotal.WithLabelValues("btts", "success"))

	RecordCycle("btts", "success", 0.4)

	assert.Equal(t, before+1, value(t, CyclesTotal.WithLabelValues("btts", "success")))
}

func TestRecordPick(t *testing.T) {
	InitRegistry()
	before := value(t, PicksSelectedTotal.WithLabelValues("runline"))

	RecordPick("runline", 0.84)
	RecordPick("runline", 0.91)

	assert.Equal(t, before+2, value(t, PicksSelectedTotal.WithLabelValues("runline")))
}

func TestGauges(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name  string
		apply func()
		gauge prometheus.Gauge
		want  float64
	}{
		{"latest picks", func() { UpdateLatestPicks("btts", 4) }, LatestPicks.WithLabelValues("btts"), 4},
		{"teams without data", func() { UpdateTeamsWithoutData("btts", 2) }, TeamsWithoutData.WithLabelValues("btts"), 2},
		{"cache ratio", func() { UpdateRateCacheHitRatio(0.75) }, RateCacheHitRatio, 0.75},
		{"websocket clients", func() { UpdateWebSocketClients(3) }, WebSocketClients, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.apply()
			assert.Equal(t, tt.want, value(t, tt.gauge))
		})
	}
}

func TestProviderMetrics(t *testing.T) {
	InitRegistry()
	assert.NotPanics(t, func() {
		RecordProviderError("espn", "server_error")
		RecordProviderRequest("espn", 0.12)
		RecordFallback("btts")
		RecordFixturesScored("btts", 9)
	})
}

func TestHandlerServesMetrics(t *testing.T) {
	RecordCycle("btts", "success", 0.1)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "smart_picks_cycles_total")
}
