package bybit

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/bytedance/sonic"
	"resty.dev/v3"

	"cctx/internal/codec"
	"cctx/pkg/core"
)

const (
	ProductionURL = "https://api.bybit.com"
	SandboxURL    = "https://api-testnet.bybit.com"

	exchangeName = "bybit"
)

// envelope is the {retCode, retMsg, result, time} wrapper shared by every V5 response.
type envelope struct {
	RetCode codec.Int       `json:"retCode"`
	RetMsg  *string         `json:"retMsg"`
	Result  json.RawMessage `json:"result"`
	Time    codec.Int       `json:"time"`
}

func decodeEnvelope(body []byte) (envelope, error) {
	var env envelope
	if err := sonic.Unmarshal(body, &env); err != nil {
		return envelope{}, core.NewDecodeError(exchangeName, 0, err)
	}
	return env, nil
}

// CheckEnvelope validates the status fields of a response body.
// A body without retCode or retMsg is treated as successful. A non-zero retCode
// becomes an ExchangeError carrying the code and message verbatim.
func CheckEnvelope(body []byte) error {
	env, err := decodeEnvelope(body)
	if err != nil {
		return err
	}
	return env.check()
}

func (env envelope) check() error {
	if !env.RetCode.Valid || env.RetMsg == nil {
		return nil
	}
	if env.RetCode.Value == 0 {
		return nil
	}
	return core.NewExchangeErrorWithCode(exchangeName,
		mapBybitErrorCode(env.RetCode.Value),
		0,
		strconv.FormatInt(env.RetCode.Value, 10),
		*env.RetMsg,
	)
}

// requireEnvelope reports a body without retCode as a shape error.
func (env envelope) requireEnvelope() error {
	if !env.RetCode.Valid {
		return core.NewMissingFieldError(exchangeName, "retCode")
	}
	return nil
}

// parseResponse classifies a transport response for the given endpoint and returns its body
// along with the decoded envelope.
func parseResponse(ep core.Endpoint, resp *resty.Response) ([]byte, envelope, error) {
	if resp == nil {
		return nil, envelope{}, fmt.Errorf("nil response")
	}

	body := resp.Bytes()
	status := resp.StatusCode()

	env, err := decodeEnvelope(body)
	if err != nil || (status >= 400 && !env.RetCode.Valid) {
		if status >= 400 {
			return nil, envelope{}, core.NewExchangeError(exchangeName, core.ErrorTypeServerError, status,
				fmt.Sprintf("HTTP error: %s", resp.Status()))
		}
		return nil, envelope{}, withStatus(err, status)
	}

	if ep.Envelope {
		if err := env.requireEnvelope(); err != nil {
			return nil, envelope{}, withStatus(err, status)
		}
	}
	if err := env.check(); err != nil {
		return nil, envelope{}, withStatus(err, status)
	}
	return body, env, nil
}

func withStatus(err error, status int) error {
	var exErr *core.ExchangeError
	if errors.As(err, &exErr) && exErr.StatusCode == 0 {
		exErr.StatusCode = status
	}
	return err
}

// mapBybitErrorCode maps Bybit retCode values to error categories.
// https://bybit-exchange.github.io/docs/v5/error
func mapBybitErrorCode(code int64) core.ErrorType {
	switch code {
	case 10000:
		return core.ErrorTypeTimeout
	case 10016:
		return core.ErrorTypeServerError
	case 10001, 10002:
		return core.ErrorTypeBadRequest
	case 10003, 10004, 10005, 10007, 10009, 10010, 33004:
		return core.ErrorTypeAuthentication
	case 10006, 10018:
		return core.ErrorTypeRateLimit
	default:
		if code >= 10000 && code < 11000 {
			return core.ErrorTypeBadRequest
		}
		return core.ErrorTypeUnknown
	}
}
