package broadcast

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/smart-picks/internal/logger"
	"github.com/yourusername/smart-picks/internal/models"
)

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readPicks(t *testing.T, conn *websocket.Conn) PicksMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg PicksMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_PublishPicks(t *testing.T) {
	hub := NewHub(logger.NewDiscardLogger())
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	conn := dial(t, srv, "")
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	cycleID := uuid.New()
	pick := &models.PickRecord{
		ID:                uuid.New(),
		CycleID:           cycleID,
		Market:            models.MarketBTTS,
		HomeTeam:          "Everton",
		AwayTeam:          "Fulham",
		Rank:              1,
		Probability:       0.91,
		ConfidencePercent: 91,
		Source:            models.PickSourceLive,
	}
	hub.PublishPicks(models.MarketBTTS, cycleID, []*models.PickRecord{pick})

	msg := readPicks(t, conn)
	assert.Equal(t, "picks", msg.Type)
	assert.Equal(t, models.MarketBTTS, msg.Market)
	assert.Equal(t, cycleID, msg.CycleID)
	require.Len(t, msg.Picks, 1)
	assert.Equal(t, "Everton", msg.Picks[0].HomeTeam)
	assert.Equal(t, 91, msg.Picks[0].ConfidencePercent)
}

func TestHub_EmptyCycleSendsEmptyList(t *testing.T) {
	hub := NewHub(logger.NewDiscardLogger())
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	conn := dial(t, srv, "")
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.PublishPicks(models.MarketRunline, uuid.New(), nil)

	msg := readPicks(t, conn)
	assert.NotNil(t, msg.Picks)
	assert.Empty(t, msg.Picks)
}

func TestHub_MarketFilter(t *testing.T) {
	hub := NewHub(logger.NewDiscardLogger())
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	conn := dial(t, srv, "?market=runline")
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.PublishPicks(models.MarketBTTS, uuid.New(), nil)
	runlineCycle := uuid.New()
	hub.PublishPicks(models.MarketRunline, runlineCycle, nil)

	msg := readPicks(t, conn)
	assert.Equal(t, models.MarketRunline, msg.Market)
	assert.Equal(t, runlineCycle, msg.CycleID)
}

func TestHub_RejectsUnknownMarket(t *testing.T) {
	hub := NewHub(logger.NewDiscardLogger())
	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?market=golf"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	hub := NewHub(logger.NewDiscardLogger())
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv, "")
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_CloseRejectsNewClients(t *testing.T) {
	hub := NewHub(logger.NewDiscardLogger())
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv, "")
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Close()
	assert.Equal(t, 0, hub.ClientCount())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
}
