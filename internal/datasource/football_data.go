package datasource

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/smart-picks/internal/models"
)

const (
	footballDataSourceName     = "football_data"
	footballDataDefaultBaseURL = "https://api.football-data.org/v4"
	footballDataDateLayout     = "2006-01-02"
	footballDataLookbackDays   = 180
)

// competitionCodes maps ESPN style league slugs to football-data.org competition codes
var competitionCodes = map[string]string{
	"eng.1": "PL",
	"eng.2": "ELC",
	"esp.1": "PD",
	"ger.1": "BL1",
	"ita.1": "SA",
	"fra.1": "FL1",
	"ned.1": "DED",
	"por.1": "PPL",
}

// CompetitionCode returns the football-data.org code for a league, passing unknown values through
func CompetitionCode(league string) string {
	if code, ok := competitionCodes[strings.ToLower(league)]; ok {
		return code
	}
	return strings.ToUpper(league)
}

// FootballDataClient implements DataSource for the football-data.org v4 API
type FootballDataClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	logger     *logrus.Entry
	now        func() time.Time

	mu      sync.RWMutex
	teamIDs map[string]int // lower-cased team name -> provider team ID
}

type footballDataMatches struct {
	Matches []footballDataMatch `json:"matches"`
}

type footballDataMatch struct {
	ID       int                `json:"id"`
	UTCDate  time.Time          `json:"utcDate"`
	Status   string             `json:"status"`
	HomeTeam footballDataTeam   `json:"homeTeam"`
	AwayTeam footballDataTeam   `json:"awayTeam"`
	Score    footballDataScores `json:"score"`
}

type footballDataTeam struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type footballDataScores struct {
	FullTime struct {
		Home *int `json:"home"`
		Away *int `json:"away"`
	} `json:"fullTime"`
}

// NewFootballDataClient creates a new football-data.org client
func NewFootballDataClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, enabled bool, logger *logrus.Logger) *FootballDataClient {
	if baseURL == "" {
		baseURL = footballDataDefaultBaseURL
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &FootballDataClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		enabled:    enabled,
		logger:     logger.WithField("source", footballDataSourceName),
		now:        time.Now,
		teamIDs:    make(map[string]int),
	}
}

// Name returns the data source name
func (c *FootballDataClient) Name() string {
	return footballDataSourceName
}

// IsEnabled returns whether this data source is enabled
func (c *FootballDataClient) IsEnabled() bool {
	return c.enabled
}

// FetchUpcomingFixtures retrieves scheduled matches for the competition
func (c *FootballDataClient) FetchUpcomingFixtures(ctx context.Context, league string, from, to time.Time) ([]FixtureData, error) {
	if !c.enabled {
		return nil, NewDataSourceError(footballDataSourceName, ErrCodeDisabled, dataSourceDisabledMsg, nil)
	}

	url := fmt.Sprintf("%s/competitions/%s/matches?status=SCHEDULED,TIMED&dateFrom=%s&dateTo=%s",
		c.baseURL, CompetitionCode(league),
		from.UTC().Format(footballDataDateLayout), to.UTC().Format(footballDataDateLayout))

	var resp footballDataMatches
	if err := getJSON(ctx, c.httpClient, footballDataSourceName, url, c.headers(), &resp); err != nil {
		return nil, err
	}

	var fixtures []FixtureData
	for _, m := range resp.Matches {
		c.rememberTeam(m.HomeTeam)
		c.rememberTeam(m.AwayTeam)

		if m.UTCDate.Before(from) || m.UTCDate.After(to) {
			continue
		}
		fixtures = append(fixtures, FixtureData{
			SourceID:  fmt.Sprintf("%d", m.ID),
			Source:    footballDataSourceName,
			Sport:     models.SportSoccer,
			League:    league,
			HomeTeam:  m.HomeTeam.Name,
			AwayTeam:  m.AwayTeam.Name,
			StartTime: m.UTCDate.UTC(),
		})
	}
	sort.SliceStable(fixtures, func(i, j int) bool {
		return fixtures[i].StartTime.Before(fixtures[j].StartTime)
	})
	return fixtures, nil
}

// FetchRecentMatches returns the team's finished matches, most recent first. Teams seen
// in an earlier fixture fetch are queried directly; others fall back to the competition feed.
func (c *FootballDataClient) FetchRecentMatches(ctx context.Context, team, league string, limit int) ([]models.MatchResult, error) {
	if !c.enabled {
		return nil, NewDataSourceError(footballDataSourceName, ErrCodeDisabled, dataSourceDisabledMsg, nil)
	}
	if limit <= 0 {
		return nil, nil
	}

	var url string
	if id, ok := c.teamID(team); ok {
		url = fmt.Sprintf("%s/teams/%d/matches?status=FINISHED&limit=%d", c.baseURL, id, limit)
	} else {
		to := c.now().UTC()
		from := to.AddDate(0, 0, -footballDataLookbackDays)
		url = fmt.Sprintf("%s/competitions/%s/matches?status=FINISHED&dateFrom=%s&dateTo=%s",
			c.baseURL, CompetitionCode(league),
			from.Format(footballDataDateLayout), to.Format(footballDataDateLayout))
	}

	var resp footballDataMatches
	if err := getJSON(ctx, c.httpClient, footballDataSourceName, url, c.headers(), &resp); err != nil {
		return nil, err
	}

	var matches []models.MatchResult
	for _, m := range resp.Matches {
		if m.Score.FullTime.Home == nil || m.Score.FullTime.Away == nil {
			continue
		}
		result := models.MatchResult{
			ExternalID: fmt.Sprintf("%d", m.ID),
			League:     league,
			HomeTeam:   m.HomeTeam.Name,
			AwayTeam:   m.AwayTeam.Name,
			HomeScore:  *m.Score.FullTime.Home,
			AwayScore:  *m.Score.FullTime.Away,
			PlayedAt:   m.UTCDate.UTC(),
		}
		if result.Involves(team) {
			matches = append(matches, result)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].PlayedAt.After(matches[j].PlayedAt)
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (c *FootballDataClient) headers() map[string]string {
	return map[string]string{"X-Auth-Token": c.apiKey}
}

func (c *FootballDataClient) rememberTeam(t footballDataTeam) {
	if t.ID == 0 || t.Name == "" {
		return
	}
	c.mu.Lock()
	c.teamIDs[strings.ToLower(t.Name)] = t.ID
	c.mu.Unlock()
}

func (c *FootballDataClient) teamID(name string) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.teamIDs[strings.ToLower(name)]
	return id, ok
}
