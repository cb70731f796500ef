package core

import "strings"

// MarketType represents the type of trading market on an exchange.
type MarketType int

// Market type constants define the available trading market categories.
const (
	// MarketTypeSpot indicates spot trading where assets are exchanged immediately.
	MarketTypeSpot MarketType = iota
	// MarketTypeSwap indicates a perpetual contract without expiry.
	MarketTypeSwap
	// MarketTypeFuture indicates a dated contract settled on expiry.
	MarketTypeFuture
	// MarketTypeOption indicates an options contract with a strike and expiry.
	MarketTypeOption
)

// String returns the string representation of the market type ("spot", "swap", "future" or "option").
func (m MarketType) String() string {
	return [...]string{
		"spot",
		"swap",
		"future",
		"option",
	}[m]
}

// MarshalJSON implements json.Marshaler for MarketType.
func (m MarketType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for MarketType.
// Unknown values decode as spot.
func (m *MarketType) UnmarshalJSON(data []byte) error {
	switch strings.ToLower(strings.Trim(string(data), `"`)) {
	case "swap":
		*m = MarketTypeSwap
	case "future":
		*m = MarketTypeFuture
	case "option":
		*m = MarketTypeOption
	default:
		*m = MarketTypeSpot
	}
	return nil
}

// Category is the product line an exchange lists instruments under.
type Category string

// Categories served by the instruments endpoint.
const (
	CategorySpot    Category = "spot"
	CategoryLinear  Category = "linear"
	CategoryInverse Category = "inverse"
	CategoryOption  Category = "option"
)
