package core

import (
	"maps"
	"net/http"
)

// Operation represents a type of action that can be performed on an exchange.
type Operation int

// Operation constants define all supported exchange operations.
const (
	// OpServerTime retrieves the exchange clock.
	OpServerTime Operation = iota
	// OpCoinInfo retrieves per-coin chain configuration. Requires credentials.
	OpCoinInfo
	// OpInstrumentInfo retrieves the tradable instruments of one category.
	OpInstrumentInfo
)

// String returns the string representation of the operation.
func (o Operation) String() string {
	return [...]string{
		"SERVER_TIME",
		"COIN_INFO",
		"INSTRUMENT_INFO",
	}[o]
}

// Endpoint describes how an operation reaches the exchange.
type Endpoint struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	// Auth marks endpoints that must be signed.
	Auth bool `json:"auth"`
	// Envelope marks endpoints whose responses always carry retCode/retMsg.
	Envelope bool `json:"envelope"`
}

var endpoints = map[Operation]Endpoint{
	OpServerTime:     {Method: http.MethodGet, Path: "v5/market/time", Envelope: true},
	OpCoinInfo:       {Method: http.MethodGet, Path: "v5/asset/coin/query-info", Auth: true, Envelope: true},
	OpInstrumentInfo: {Method: http.MethodGet, Path: "v5/market/instruments-info", Envelope: true},
}

// Endpoints returns a copy of the operation table.
func Endpoints() map[Operation]Endpoint {
	return maps.Clone(endpoints)
}

// EndpointFor looks up a single operation.
func EndpointFor(op Operation) (Endpoint, bool) {
	ep, ok := endpoints[op]
	return ep, ok
}
