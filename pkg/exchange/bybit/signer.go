package bybit

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/http/httpguts"

	"cctx/internal/codec"
	"cctx/pkg/core"
)

const (
	HeaderSign       = "X-BAPI-SIGN"
	HeaderAPIKey     = "X-BAPI-API-KEY"
	HeaderTimestamp  = "X-BAPI-TIMESTAMP"
	HeaderRecvWindow = "X-BAPI-RECV-WINDOW"
)

// Signer produces Bybit V5 HMAC-SHA256 authentication headers.
// The signed string is timestamp + apiKey + recvWindow + payload, where payload is
// the encoded query for GET and the raw body for POST.
type Signer struct {
	apiKey     string
	secret     string
	recvWindow int64
	clock      func() time.Time
}

// NewSigner creates a Signer for the given credentials. The receive window is sent in milliseconds.
func NewSigner(creds core.Credentials, recvWindow time.Duration) *Signer {
	return &Signer{
		apiKey:     creds.APIKey,
		secret:     creds.SecretKey,
		recvWindow: recvWindow.Milliseconds(),
		clock:      time.Now,
	}
}

// WithClock replaces the timestamp source and returns the signer for chaining.
func (s *Signer) WithClock(clock func() time.Time) *Signer {
	s.clock = clock
	return s
}

// Sign implements core.Signer. Methods other than GET and POST are left unsigned (nil, nil).
// A header value that is not a valid HTTP field value fails the call instead of
// silently dropping authentication.
func (s *Signer) Sign(method, query string, body []byte) (map[string]string, error) {
	if s.apiKey == "" || s.secret == "" {
		return nil, core.NewExchangeError(exchangeName, core.ErrorTypeAuthentication, 0,
			"api key and secret are required for signing").WithCode(core.ErrCodeNoCredentials)
	}

	var payload string
	switch method {
	case http.MethodGet:
		payload = query
	case http.MethodPost:
		payload = string(body)
	default:
		return nil, nil
	}

	ts := strconv.FormatInt(s.clock().UnixMilli(), 10)
	window := strconv.FormatInt(s.recvWindow, 10)
	signature := codec.SignHMACSHA256(s.secret, ts+s.apiKey+window+payload)

	headers := map[string]string{
		HeaderSign:       signature,
		HeaderAPIKey:     s.apiKey,
		HeaderTimestamp:  ts,
		HeaderRecvWindow: window,
	}
	for name, value := range headers {
		if !httpguts.ValidHeaderFieldValue(value) {
			return nil, core.NewExchangeError(exchangeName, core.ErrorTypeAuthentication, 0,
				fmt.Sprintf("invalid value for header %s", name)).WithCode(core.ErrCodeSigning)
		}
	}
	return headers, nil
}
