package datasource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFootballDataClient(t *testing.T) {
	var teamPaths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key-123", r.Header.Get("X-Auth-Token"))
		switch r.URL.Path {
		case "/competitions/PL/matches":
			assert.Equal(t, "SCHEDULED,TIMED", r.URL.Query().Get("status"))
			_, _ = w.Write([]byte(`{"matches": [
				{"id": 10, "utcDate": "2026-10-18T14:00:00Z", "status": "TIMED",
				 "homeTeam": {"id": 57, "name": "Arsenal FC"}, "awayTeam": {"id": 61, "name": "Chelsea FC"},
				 "score": {"fullTime": {"home": null, "away": null}}}
			]}`))
		case "/teams/57/matches":
			teamPaths = append(teamPaths, r.URL.Path)
			assert.Equal(t, "FINISHED", r.URL.Query().Get("status"))
			_, _ = w.Write([]byte(`{"matches": [
				{"id": 1, "utcDate": "2026-10-01T14:00:00Z", "status": "FINISHED",
				 "homeTeam": {"id": 57, "name": "Arsenal FC"}, "awayTeam": {"id": 62, "name": "Everton FC"},
				 "score": {"fullTime": {"home": 2, "away": 2}}},
				{"id": 2, "utcDate": "2026-10-08T14:00:00Z", "status": "FINISHED",
				 "homeTeam": {"id": 63, "name": "Fulham FC"}, "awayTeam": {"id": 57, "name": "Arsenal FC"},
				 "score": {"fullTime": {"home": 0, "away": 1}}}
			]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := NewFootballDataClient(testHTTPClient(), server.URL, "key-123", true, nil)
	ctx := context.Background()
	from := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)

	fixtures, err := client.FetchUpcomingFixtures(ctx, "eng.1", from, from.Add(72*time.Hour))
	require.NoError(t, err)
	require.Len(t, fixtures, 1)
	assert.Equal(t, "10", fixtures[0].SourceID)
	assert.Equal(t, "Arsenal FC", fixtures[0].HomeTeam)
	assert.Equal(t, "football_data", fixtures[0].Source)

	matches, err := client.FetchRecentMatches(ctx, "Arsenal FC", "eng.1", 5)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "2", matches[0].ExternalID, "most recent first")
	assert.Equal(t, 1, matches[0].AwayScore)
	assert.True(t, matches[1].BothTeamsScored())
	assert.Equal(t, []string{"/teams/57/matches"}, teamPaths)
}

func TestFootballDataClient_UnknownTeamUsesCompetitionFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/competitions/PD/matches", r.URL.Path)
		assert.Equal(t, "FINISHED", r.URL.Query().Get("status"))
		_, _ = w.Write([]byte(`{"matches": [
			{"id": 5, "utcDate": "2026-10-01T14:00:00Z", "status": "FINISHED",
			 "homeTeam": {"id": 81, "name": "FC Barcelona"}, "awayTeam": {"id": 86, "name": "Real Madrid CF"},
			 "score": {"fullTime": {"home": 3, "away": 0}}},
			{"id": 6, "utcDate": "2026-10-02T14:00:00Z", "status": "FINISHED",
			 "homeTeam": {"id": 90, "name": "Real Betis"}, "awayTeam": {"id": 92, "name": "Real Sociedad"},
			 "score": {"fullTime": {"home": 1, "away": 1}}}
		]}`))
	}))
	defer server.Close()

	client := NewFootballDataClient(testHTTPClient(), server.URL, "k", true, nil)
	matches, err := client.FetchRecentMatches(context.Background(), "FC Barcelona", "esp.1", 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "5", matches[0].ExternalID)
}

func TestFootballDataClient_AuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewFootballDataClient(testHTTPClient(), server.URL, "bad", true, nil)
	_, err := client.FetchUpcomingFixtures(context.Background(), "eng.1", time.Now(), time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestCompetitionCode(t *testing.T) {
	assert.Equal(t, "PL", CompetitionCode("eng.1"))
	assert.Equal(t, "BL1", CompetitionCode("GER.1"))
	assert.Equal(t, "CL", CompetitionCode("cl"))
}
