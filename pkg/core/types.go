package core

import (
	"github.com/cockroachdb/apd/v3"
)

// Limit is an optional (min, max) pair. A nil bound means unbounded on that side.
type Limit struct {
	Min *apd.Decimal `json:"min"`
	Max *apd.Decimal `json:"max"`
}

// CurrencyLimits groups the per-direction bounds of a currency or network.
type CurrencyLimits struct {
	Amount   Limit `json:"amount"`
	Withdraw Limit `json:"withdraw"`
	Deposit  Limit `json:"deposit"`
}

// Network is one deposit/withdraw chain of a currency.
type Network struct {
	// ID is the exchange chain identifier (e.g., "ETH").
	ID string `json:"id"`
	// Network is the canonical network code (e.g., "ERC20").
	Network string `json:"network"`
	// Name is the exchange's display name for the chain, when reported.
	Name *string `json:"name"`
	// Active is true only when both deposit and withdraw are enabled.
	Active *bool `json:"active"`
	// Fee is the flat withdrawal fee in units of the currency.
	Fee *apd.Decimal `json:"fee"`
	// Precision is the number of decimal places accepted for amounts.
	Precision *int64 `json:"precision"`
	Deposit   *bool  `json:"deposit"`
	Withdraw  *bool  `json:"withdraw"`

	Limits CurrencyLimits `json:"limits"`
	// Info is the source chain payload, unmodified.
	Info map[string]any `json:"info"`
}

// Currency is one tradable asset.
type Currency struct {
	// ID is the exchange coin identifier.
	ID string `json:"id"`
	// Code is the canonical currency code.
	Code      string       `json:"code"`
	Name      string       `json:"name"`
	Active    *bool        `json:"active"`
	Fee       *apd.Decimal `json:"fee"`
	Precision *int64       `json:"precision"`
	Deposit   *bool        `json:"deposit"`
	Withdraw  *bool        `json:"withdraw"`

	Limits CurrencyLimits `json:"limits"`
	// Networks is keyed by canonical network code.
	Networks map[string]Network `json:"networks"`
	// Type is the asset class, always "crypto" for this exchange.
	Type string `json:"type"`
	// Info is the source coin payload, unmodified.
	Info map[string]any `json:"info"`
}

// MarketPrecision holds the step sizes of a market. Values are increments, not digit counts.
type MarketPrecision struct {
	Amount *apd.Decimal `json:"amount"`
	Price  *apd.Decimal `json:"price"`
	Cost   *apd.Decimal `json:"cost"`
}

// MarketLimits holds the order bounds of a market.
type MarketLimits struct {
	Amount   Limit `json:"amount"`
	Price    Limit `json:"price"`
	Cost     Limit `json:"cost"`
	Leverage Limit `json:"leverage"`
}

// Market is one tradable instrument in the unified schema.
// Exactly one of Spot, Swap, Future and Option is the primary category of a record.
type Market struct {
	// ID is the exchange instrument identifier (e.g., "BTCUSDT").
	ID string `json:"id"`
	// Symbol is the canonical symbol: BASE/QUOTE for spot,
	// BASE/QUOTE:SETTLE for contracts, with -YYMMDD for dated ones.
	Symbol  string     `json:"symbol"`
	Base    string     `json:"base"`
	Quote   string     `json:"quote"`
	BaseID  string     `json:"baseId"`
	QuoteID string     `json:"quoteId"`
	Active  bool       `json:"active"`
	Type    MarketType `json:"type"`

	Spot     bool  `json:"spot"`
	Margin   *bool `json:"margin"`
	Future   bool  `json:"future"`
	Swap     bool  `json:"swap"`
	Option   bool  `json:"option"`
	Contract bool  `json:"contract"`

	Settle       *string      `json:"settle"`
	SettleID     *string      `json:"settleId"`
	ContractSize *apd.Decimal `json:"contractSize"`
	Linear       *bool        `json:"linear"`
	Inverse      *bool        `json:"inverse"`

	// Expiry is the delivery time in epoch milliseconds, set only for dated contracts.
	Expiry         *int64       `json:"expiry"`
	ExpiryDatetime *string      `json:"expiryDatetime"`
	Strike         *apd.Decimal `json:"strike"`
	OptionType     *string      `json:"optionType"`

	Taker *apd.Decimal `json:"taker"`
	Maker *apd.Decimal `json:"maker"`

	Precision MarketPrecision `json:"precision"`
	Limits    MarketLimits    `json:"limits"`

	// Created is the listing time in epoch milliseconds, when reported.
	Created *int64 `json:"created"`
	// Info is the source instrument payload, unmodified.
	Info map[string]any `json:"info"`
}
