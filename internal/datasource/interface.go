package datasource

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yourusername/smart-picks/internal/models"
)

// DataSource defines the interface for fetching fixtures and match history from external providers
type DataSource interface {
	// Name returns the name of the data source
	Name() string

	// IsEnabled returns whether this data source is currently enabled
	IsEnabled() bool

	// FetchUpcomingFixtures retrieves scheduled fixtures for a league starting within [from, to]
	FetchUpcomingFixtures(ctx context.Context, league string, from, to time.Time) ([]FixtureData, error)

	// FetchRecentMatches retrieves up to limit completed matches for a team, most recent first
	FetchRecentMatches(ctx context.Context, team, league string, limit int) ([]models.MatchResult, error)
}

// OddsSource supplies bookmaker prices for upcoming fixtures
type OddsSource interface {
	FetchOdds(ctx context.Context, sportKey string, market models.Market) ([]OddsData, error)
}

// FixtureData represents a normalized upcoming fixture from any data source
type FixtureData struct {
	SourceID  string    `json:"source_id"` // Provider's unique event ID
	Source    string    `json:"source"`
	Sport     string    `json:"sport"`
	League    string    `json:"league"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	StartTime time.Time `json:"start_time"` // UTC
}

// ToFixture converts provider data into a fixture for market. The fixture ID is
// derived from the provider and event ID so repeated cycles keep the same identity.
func (f FixtureData) ToFixture(market models.Market, order int) models.Fixture {
	return models.Fixture{
		ID:              uuid.NewSHA1(uuid.NameSpaceURL, []byte(f.Source+"/"+f.SourceID)),
		ExternalID:      f.SourceID,
		Sport:           f.Sport,
		League:          f.League,
		HomeTeam:        f.HomeTeam,
		AwayTeam:        f.AwayTeam,
		Market:          market,
		StartTime:       f.StartTime,
		DiscoveredOrder: order,
	}
}

// OddsData is the best available decimal price for one fixture
type OddsData struct {
	EventID      string          `json:"event_id"`
	HomeTeam     string          `json:"home_team"`
	AwayTeam     string          `json:"away_team"`
	CommenceTime time.Time       `json:"commence_time"`
	BestPrice    decimal.Decimal `json:"best_price"`
	Bookmaker    string          `json:"bookmaker"`
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

// Unwrap returns the underlying error
func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error for the error code
func (e DataSourceError) Is(target error) bool {
	sentinel, ok := codeSentinels[e.Code]
	return ok && target == sentinel
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeDisabled             = "disabled"
	ErrCodeUnknown              = "unknown"
)

// Error constructors
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotFound             = errors.New("data not found")
	ErrInvalidData          = errors.New("invalid data format")
	ErrNetworkError         = errors.New("network error")
	ErrServerError          = errors.New("server error")
	ErrDisabled             = errors.New("data source disabled")
)

var codeSentinels = map[string]error{
	ErrCodeRateLimitExceeded:    ErrRateLimitExceeded,
	ErrCodeAuthenticationFailed: ErrAuthenticationFailed,
	ErrCodeNotFound:             ErrNotFound,
	ErrCodeInvalidData:          ErrInvalidData,
	ErrCodeNetworkError:         ErrNetworkError,
	ErrCodeServerError:          ErrServerError,
	ErrCodeDisabled:             ErrDisabled,
}

const dataSourceDisabledMsg = "data source is disabled"

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ErrorCode extracts the code from a DataSourceError, or ErrCodeUnknown
func ErrorCode(err error) string {
	var dsErr DataSourceError
	if errors.As(err, &dsErr) {
		return dsErr.Code
	}
	return ErrCodeUnknown
}
