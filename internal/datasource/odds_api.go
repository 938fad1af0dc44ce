package datasource

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/smart-picks/internal/models"
)

const (
	oddsAPISourceName     = "odds_api"
	oddsAPIDefaultBaseURL = "https://api.the-odds-api.com/v4"
	oddsAPIRegions        = "uk,eu,us"
)

// runlinePoint is the handicap line that settles on a two-run margin
var runlinePoint = decimal.NewFromFloat(-1.5)

// OddsAPIClient implements OddsSource for The Odds API v4
type OddsAPIClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	logger     *logrus.Entry
}

type oddsAPIEvent struct {
	ID           string    `json:"id"`
	SportKey     string    `json:"sport_key"`
	CommenceTime time.Time `json:"commence_time"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	Bookmakers   []struct {
		Key     string `json:"key"`
		Title   string `json:"title"`
		Markets []struct {
			Key      string           `json:"key"`
			Outcomes []oddsAPIOutcome `json:"outcomes"`
		} `json:"markets"`
	} `json:"bookmakers"`
}

type oddsAPIOutcome struct {
	Name  string           `json:"name"`
	Price decimal.Decimal  `json:"price"`
	Point *decimal.Decimal `json:"point,omitempty"`
}

// NewOddsAPIClient creates a new Odds API client
func NewOddsAPIClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, enabled bool, logger *logrus.Logger) *OddsAPIClient {
	if baseURL == "" {
		baseURL = oddsAPIDefaultBaseURL
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &OddsAPIClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		enabled:    enabled,
		logger:     logger.WithField("source", oddsAPISourceName),
	}
}

// Name returns the odds source name
func (c *OddsAPIClient) Name() string {
	return oddsAPISourceName
}

// IsEnabled returns whether this odds source is enabled
func (c *OddsAPIClient) IsEnabled() bool {
	return c.enabled
}

// FetchOdds returns the best decimal price per event for the market's selection
func (c *OddsAPIClient) FetchOdds(ctx context.Context, sportKey string, market models.Market) ([]OddsData, error) {
	if !c.enabled {
		return nil, NewDataSourceError(oddsAPISourceName, ErrCodeDisabled, dataSourceDisabledMsg, nil)
	}
	if sportKey == "" {
		return nil, NewDataSourceError(oddsAPISourceName, ErrCodeInvalidData, "sport key is required", nil)
	}

	q := url.Values{}
	q.Set("apiKey", c.apiKey)
	q.Set("regions", oddsAPIRegions)
	q.Set("markets", oddsMarketKey(market))
	q.Set("oddsFormat", "decimal")
	endpoint := fmt.Sprintf("%s/sports/%s/odds?%s", c.baseURL, url.PathEscape(sportKey), q.Encode())

	var events []oddsAPIEvent
	if err := getJSON(ctx, c.httpClient, oddsAPISourceName, endpoint, nil, &events); err != nil {
		return nil, err
	}

	odds := make([]OddsData, 0, len(events))
	for _, ev := range events {
		best, bookmaker, ok := bestPrice(ev, market)
		if !ok {
			continue
		}
		odds = append(odds, OddsData{
			EventID:      ev.ID,
			HomeTeam:     ev.HomeTeam,
			AwayTeam:     ev.AwayTeam,
			CommenceTime: ev.CommenceTime.UTC(),
			BestPrice:    best,
			Bookmaker:    bookmaker,
		})
	}

	c.logger.WithFields(logrus.Fields{
		"sport_key": sportKey,
		"market":    market,
		"events":    len(odds),
	}).Debug("Fetched odds")
	return odds, nil
}

func oddsMarketKey(market models.Market) string {
	if market == models.MarketRunline {
		return "spreads"
	}
	return "btts"
}

// matchesSelection reports whether an outcome prices the pick for market
func matchesSelection(market models.Market, o oddsAPIOutcome) bool {
	if market == models.MarketRunline {
		return o.Point != nil && o.Point.Equal(runlinePoint)
	}
	return strings.EqualFold(o.Name, "Yes")
}

func bestPrice(ev oddsAPIEvent, market models.Market) (decimal.Decimal, string, bool) {
	var (
		best      decimal.Decimal
		bookmaker string
		found     bool
	)
	marketKey := oddsMarketKey(market)
	for _, bm := range ev.Bookmakers {
		for _, m := range bm.Markets {
			if m.Key != marketKey {
				continue
			}
			for _, o := range m.Outcomes {
				if !matchesSelection(market, o) {
					continue
				}
				if !found || o.Price.GreaterThan(best) {
					best, bookmaker, found = o.Price, bm.Title, true
				}
			}
		}
	}
	return best, bookmaker, found
}

// MatchOdds finds the odds entry for a fixture by team names, or nil
func MatchOdds(odds []OddsData, home, away string) *OddsData {
	for i := range odds {
		if strings.EqualFold(odds[i].HomeTeam, home) && strings.EqualFold(odds[i].AwayTeam, away) {
			return &odds[i]
		}
	}
	return nil
}
