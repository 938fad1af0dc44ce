package datasource

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/yourusername/smart-picks/internal/models"
)

const (
	espnSourceName     = "espn"
	espnDefaultBaseURL = "https://site.api.espn.com/apis/site/v2/sports"
	espnDateLayout     = "20060102"
	espnLookbackDays   = 120
	espnScoreboardTTL  = 10 * time.Minute
)

// leagueSports maps ESPN league slugs that are not soccer to their sport path
var leagueSports = map[string]string{
	"mlb": "baseball",
	"nba": "basketball",
	"nfl": "football",
	"nhl": "hockey",
}

// SportForLeague returns the ESPN sport path for a league slug. Unknown leagues are soccer.
func SportForLeague(league string) string {
	if sport, ok := leagueSports[strings.ToLower(league)]; ok {
		return sport
	}
	return models.SportSoccer
}

// ESPNClient implements DataSource over the public ESPN scoreboard API
type ESPNClient struct {
	httpClient   *RateLimitedHTTPClient
	baseURL      string
	enabled      bool
	lookbackDays int
	logger       *logrus.Entry
	now          func() time.Time

	// Completed scoreboards are shared by every team in a league during a cycle.
	scoreboards *cache.Cache
	group       singleflight.Group
}

type espnScoreboard struct {
	Events []espnEvent `json:"events"`
}

type espnEvent struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Status struct {
		Type struct {
			State     string `json:"state"` // pre, in, post
			Completed bool   `json:"completed"`
		} `json:"type"`
	} `json:"status"`
	Competitions []struct {
		Competitors []espnCompetitor `json:"competitors"`
	} `json:"competitions"`
}

// NewESPNClient creates a new ESPN scoreboard client
func NewESPNClient(httpClient *RateLimitedHTTPClient, baseURL string, enabled bool, logger *logrus.Logger) *ESPNClient {
	if baseURL == "" {
		baseURL = espnDefaultBaseURL
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ESPNClient{
		httpClient:   httpClient,
		baseURL:      strings.TrimRight(baseURL, "/"),
		enabled:      enabled,
		lookbackDays: espnLookbackDays,
		logger:       logger.WithField("source", espnSourceName),
		now:          time.Now,
		scoreboards:  cache.New(espnScoreboardTTL, 2*espnScoreboardTTL),
	}
}

// Name returns the data source name
func (c *ESPNClient) Name() string {
	return espnSourceName
}

// IsEnabled returns whether this data source is enabled
func (c *ESPNClient) IsEnabled() bool {
	return c.enabled
}

// FetchUpcomingFixtures retrieves scheduled events for the league
func (c *ESPNClient) FetchUpcomingFixtures(ctx context.Context, league string, from, to time.Time) ([]FixtureData, error) {
	if !c.enabled {
		return nil, NewDataSourceError(espnSourceName, ErrCodeDisabled, dataSourceDisabledMsg, nil)
	}

	board, err := c.fetchScoreboard(ctx, league, from, to)
	if err != nil {
		return nil, err
	}

	sport := SportForLeague(league)
	var fixtures []FixtureData
	for _, ev := range board.Events {
		if ev.Status.Type.State != "pre" {
			continue
		}
		home, away, ok := ev.sides()
		if !ok {
			continue
		}
		start, err := parseESPNTime(ev.Date)
		if err != nil {
			c.logger.WithError(err).WithField("event_id", ev.ID).Warn("Skipping event with unparseable date")
			continue
		}
		if start.Before(from) || start.After(to) {
			continue
		}
		fixtures = append(fixtures, FixtureData{
			SourceID:  ev.ID,
			Source:    espnSourceName,
			Sport:     sport,
			League:    league,
			HomeTeam:  home.Team.DisplayName,
			AwayTeam:  away.Team.DisplayName,
			StartTime: start.UTC(),
		})
	}

	sort.SliceStable(fixtures, func(i, j int) bool {
		return fixtures[i].StartTime.Before(fixtures[j].StartTime)
	})
	return fixtures, nil
}

// FetchRecentMatches returns the team's completed matches in the lookback window, most recent first
func (c *ESPNClient) FetchRecentMatches(ctx context.Context, team, league string, limit int) ([]models.MatchResult, error) {
	if !c.enabled {
		return nil, NewDataSourceError(espnSourceName, ErrCodeDisabled, dataSourceDisabledMsg, nil)
	}
	if limit <= 0 {
		return nil, nil
	}

	results, err := c.completedResults(ctx, league)
	if err != nil {
		return nil, err
	}

	var matches []models.MatchResult
	for _, r := range results {
		if r.Involves(team) {
			matches = append(matches, r)
		}
		if len(matches) == limit {
			break
		}
	}
	return matches, nil
}

// completedResults returns every completed match in the league's lookback window,
// newest first. Concurrent callers for the same league share one request.
func (c *ESPNClient) completedResults(ctx context.Context, league string) ([]models.MatchResult, error) {
	key := strings.ToLower(league)
	if cached, ok := c.scoreboards.Get(key); ok {
		return cached.([]models.MatchResult), nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		to := c.now().UTC()
		from := to.AddDate(0, 0, -c.lookbackDays)
		board, err := c.fetchScoreboard(ctx, league, from, to)
		if err != nil {
			return nil, err
		}

		var results []models.MatchResult
		for _, ev := range board.Events {
			if !ev.Status.Type.Completed {
				continue
			}
			result, ok := ev.result(league)
			if !ok {
				continue
			}
			results = append(results, result)
		}
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].PlayedAt.After(results[j].PlayedAt)
		})

		c.scoreboards.SetDefault(key, results)
		return results, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.MatchResult), nil
}

func (c *ESPNClient) fetchScoreboard(ctx context.Context, league string, from, to time.Time) (*espnScoreboard, error) {
	url := fmt.Sprintf("%s/%s/%s/scoreboard?dates=%s-%s&limit=1000",
		c.baseURL, SportForLeague(league), strings.ToLower(league),
		from.UTC().Format(espnDateLayout), to.UTC().Format(espnDateLayout))

	var board espnScoreboard
	if err := getJSON(ctx, c.httpClient, espnSourceName, url, nil, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

type espnCompetitor struct {
	HomeAway string `json:"homeAway"`
	Score    string `json:"score"`
	Team     struct {
		ID          string `json:"id"`
		DisplayName string `json:"displayName"`
	} `json:"team"`
}

func (ev espnEvent) sides() (home, away espnCompetitor, ok bool) {
	if len(ev.Competitions) == 0 {
		return home, away, false
	}
	var foundHome, foundAway bool
	for _, comp := range ev.Competitions[0].Competitors {
		switch comp.HomeAway {
		case "home":
			home, foundHome = comp, true
		case "away":
			away, foundAway = comp, true
		}
	}
	return home, away, foundHome && foundAway
}

func (ev espnEvent) result(league string) (models.MatchResult, bool) {
	home, away, ok := ev.sides()
	if !ok {
		return models.MatchResult{}, false
	}
	homeScore, err := strconv.Atoi(home.Score)
	if err != nil {
		return models.MatchResult{}, false
	}
	awayScore, err := strconv.Atoi(away.Score)
	if err != nil {
		return models.MatchResult{}, false
	}
	playedAt, err := parseESPNTime(ev.Date)
	if err != nil {
		return models.MatchResult{}, false
	}
	return models.MatchResult{
		ExternalID: ev.ID,
		League:     league,
		HomeTeam:   home.Team.DisplayName,
		AwayTeam:   away.Team.DisplayName,
		HomeScore:  homeScore,
		AwayScore:  awayScore,
		PlayedAt:   playedAt.UTC(),
	}, true
}

// parseESPNTime accepts RFC3339 and ESPN's minute-precision "2006-01-02T15:04Z"
func parseESPNTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04Z", s)
}
