// Package bybit implements the Exchange interface for the Bybit V5 REST API.
// It signs private requests, walks cursor-paginated listings and normalizes
// coin and instrument payloads for the spot, linear, inverse and option
// categories into the core schema.
//
// Bybit API Documentation: https://bybit-exchange.github.io/docs/v5/intro
package bybit
