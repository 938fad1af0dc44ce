package models

import (
	"fmt"
	"strings"
)

// Market identifies the kind of pick the engine produces.
type Market string

const (
	// MarketBTTS is soccer "both teams to score".
	MarketBTTS Market = "btts"
	// MarketRunline is the MLB -1.5 runline.
	MarketRunline Market = "runline"
)

// Sport names used by the data providers.
const (
	SportSoccer   = "soccer"
	SportBaseball = "baseball"
)

// AllMarkets lists every supported market in display order.
func AllMarkets() []Market {
	return []Market{MarketBTTS, MarketRunline}
}

// ParseMarket parses a market name case-insensitively.
func ParseMarket(s string) (Market, error) {
	m := Market(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownMarket, s)
	}
	return m, nil
}

// Valid reports whether m is a supported market.
func (m Market) Valid() bool {
	switch m {
	case MarketBTTS, MarketRunline:
		return true
	}
	return false
}

// Sport returns the sport the market belongs to.
func (m Market) Sport() string {
	if m == MarketRunline {
		return SportBaseball
	}
	return SportSoccer
}

func (m Market) String() string { return string(m) }
