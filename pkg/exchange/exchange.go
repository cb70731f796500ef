package exchange

import (
	"context"
	"time"

	"cctx/pkg/core"
)

// Exchange defines the unified read-only interface for exchange reference data.
// Implementations normalize exchange payloads into the core schema.
type Exchange interface {
	Name() string
	Version() string

	// FetchTime returns the exchange clock.
	FetchTime(ctx context.Context, opts ...Option) (time.Time, error)
	// FetchCurrencies returns every listed asset keyed by canonical code.
	FetchCurrencies(ctx context.Context, opts ...Option) (map[string]core.Currency, error)
	// FetchMarkets returns every tradable instrument across all categories.
	FetchMarkets(ctx context.Context, opts ...Option) ([]core.Market, error)

	Close() error
}
