package bybit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"resty.dev/v3"

	"cctx/internal/circuitbreaker"
	httpClient "cctx/internal/http"
	"cctx/internal/ratelimit"
	"cctx/pkg/aggregate"
	"cctx/pkg/core"
	"cctx/pkg/exchange"
)

const (
	instrumentPageLimit = "1000"
	statusPreLaunch     = "PreLaunch"
)

// OptionBaseCoins are the underlyings whose option chains FetchMarkets lists, in result order.
var OptionBaseCoins = []string{"BTC", "ETH", "SOL"}

// BybitExchange implements the Exchange interface for Bybit V5 reference data.
// It provides rate limiting, circuit breaking and request signing around a shared HTTP client.
type BybitExchange struct {
	config         *core.Config
	signer         core.Signer
	httpClient     *httpClient.Client
	rateLimiter    *ratelimit.Limiter
	circuitBreaker *circuitbreaker.Breaker
	logger         zerolog.Logger
	aliases        *Aliases
	normalizer     *Normalizer
}

var _ exchange.Exchange = (*BybitExchange)(nil)

// Option is a functional option for configuring the BybitExchange.
type Option func(*Options)

// Options holds configuration options for the BybitExchange.
type Options struct {
	Logger  zerolog.Logger
	Aliases *Aliases
	Signer  core.Signer
}

// WithLogger returns an option that sets the logger for the exchange.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithAliases returns an option that replaces the built-in alias tables.
func WithAliases(a *Aliases) Option {
	return func(o *Options) {
		o.Aliases = a
	}
}

// WithSigner returns an option that replaces the credential-based signer.
func WithSigner(s core.Signer) Option {
	return func(o *Options) {
		o.Signer = s
	}
}

// New creates a new BybitExchange instance with the given configuration and options.
// It initializes the HTTP client, rate limiter, and circuit breaker based on the config.
func New(config *core.Config, opts ...Option) (*BybitExchange, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	options := &Options{
		Logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.Aliases == nil {
		options.Aliases = DefaultAliases()
	}

	client, err := httpClient.NewClient(&httpClient.Config{
		BaseURL:      getBaseURL(config),
		Timeout:      config.Timeout,
		MaxRetries:   config.MaxRetries,
		RetryWaitMin: config.RetryWaitMin,
		RetryWaitMax: config.RetryWaitMax,
	}, options.Logger)
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}

	coinInfo, _ := core.EndpointFor(core.OpCoinInfo)
	rl := ratelimit.New(config.RateLimitRequests, config.RateLimitPeriod,
		// asset endpoints are limited per account on top of the IP budget
		ratelimit.WithBucket(coinInfo.Path, 5, time.Second),
	)

	var cb *circuitbreaker.Breaker
	if config.CircuitBreakerEnabled {
		cb = circuitbreaker.New(circuitbreaker.Config{
			Name:             exchangeName,
			FailThreshold:    config.CircuitBreakerFailThreshold,
			SuccessThreshold: config.CircuitBreakerSuccessThreshold,
			Timeout:          config.CircuitBreakerTimeout,
			IsFailure:        isBreakerFailure,
		}, options.Logger)
	}

	signer := options.Signer
	if signer == nil && config.Credentials != nil {
		signer = NewSigner(*config.Credentials, config.RecvWindow)
	}

	return &BybitExchange{
		config:         config,
		signer:         signer,
		httpClient:     client,
		rateLimiter:    rl,
		circuitBreaker: cb,
		logger:         options.Logger,
		aliases:        options.Aliases,
		normalizer:     NewNormalizer(options.Aliases, options.Logger),
	}, nil
}

func getBaseURL(config *core.Config) string {
	if config.BaseURL != "" {
		return config.BaseURL
	}
	if config.Sandbox {
		return SandboxURL
	}
	return ProductionURL
}

// Name returns the exchange identifier "bybit".
func (e *BybitExchange) Name() string {
	return exchangeName
}

// Version returns the Bybit API version.
func (e *BybitExchange) Version() string {
	return "5"
}

// Aliases returns the alias tables the exchange was built with.
func (e *BybitExchange) Aliases() *Aliases {
	return e.aliases
}

// Close releases resources used by the exchange, including the HTTP client.
func (e *BybitExchange) Close() error {
	if e.httpClient != nil {
		return e.httpClient.Close()
	}
	return nil
}

// FetchTime returns the exchange clock from the top-level time field of v5/market/time.
func (e *BybitExchange) FetchTime(ctx context.Context, opts ...exchange.Option) (time.Time, error) {
	options := exchange.ApplyOptions(opts...)

	_, env, err := e.call(ctx, core.OpServerTime, options.Params)
	if err != nil {
		return time.Time{}, fmt.Errorf("fetch time: %w", err)
	}
	if !env.Time.Valid {
		return time.Time{}, fmt.Errorf("fetch time: %w", core.NewMissingFieldError(exchangeName, "time"))
	}
	return time.UnixMilli(env.Time.Value).UTC(), nil
}

// FetchCurrencies returns every coin with its chains, keyed by canonical code.
// The coin-info endpoint is private, so credentials or a signer are required.
func (e *BybitExchange) FetchCurrencies(ctx context.Context, opts ...exchange.Option) (map[string]core.Currency, error) {
	options := exchange.ApplyOptions(opts...)

	_, env, err := e.call(ctx, core.OpCoinInfo, options.Params)
	if err != nil {
		return nil, fmt.Errorf("fetch currencies: %w", err)
	}

	rows, err := resultRows(env.Result)
	if err != nil {
		return nil, fmt.Errorf("fetch currencies: %w", err)
	}
	return e.normalizer.NormalizeCurrencies(rows), nil
}

func resultRows(result json.RawMessage) ([]json.RawMessage, error) {
	if len(result) == 0 || string(result) == "null" {
		return nil, core.NewMissingFieldError(exchangeName, "result")
	}
	var data struct {
		Rows *[]json.RawMessage `json:"rows"`
	}
	if err := sonic.Unmarshal(result, &data); err != nil {
		return nil, core.NewDecodeError(exchangeName, 0, err)
	}
	if data.Rows == nil {
		return nil, core.NewMissingFieldError(exchangeName, "result.rows")
	}
	return *data.Rows, nil
}

// FetchMarkets lists spot, linear, inverse and the BTC, ETH and SOL option chains concurrently.
// Results keep that order. Any failing category fails the whole call and no markets are returned.
func (e *BybitExchange) FetchMarkets(ctx context.Context, opts ...exchange.Option) ([]core.Market, error) {
	options := exchange.ApplyOptions(opts...)

	markets, err := aggregate.All(ctx, e.marketBranches(options.Params)...)
	if err != nil {
		return nil, fmt.Errorf("fetch markets: %w", err)
	}
	return markets, nil
}

// FetchMarketsPartial runs the same categories as FetchMarkets but reports each one separately,
// so that a failing category does not discard the others.
func (e *BybitExchange) FetchMarketsPartial(ctx context.Context, opts ...exchange.Option) []aggregate.Result[core.Market] {
	options := exchange.ApplyOptions(opts...)
	return aggregate.Each(ctx, e.marketBranches(options.Params)...)
}

func (e *BybitExchange) marketBranches(params url.Values) []aggregate.Branch[core.Market] {
	branches := []aggregate.Branch[core.Market]{
		aggregate.NewBranch("spot markets", func(ctx context.Context) ([]core.Market, error) {
			return e.fetchSpotMarkets(ctx, params)
		}),
		aggregate.NewBranch("linear markets", func(ctx context.Context) ([]core.Market, error) {
			return e.fetchDerivativeMarkets(ctx, core.CategoryLinear, params)
		}),
		aggregate.NewBranch("inverse markets", func(ctx context.Context) ([]core.Market, error) {
			return e.fetchDerivativeMarkets(ctx, core.CategoryInverse, params)
		}),
	}
	for _, baseCoin := range OptionBaseCoins {
		branches = append(branches, aggregate.NewBranch(baseCoin+" option markets", func(ctx context.Context) ([]core.Market, error) {
			return e.fetchOptionMarkets(ctx, baseCoin, params)
		}))
	}
	return branches
}

func (e *BybitExchange) fetchSpotMarkets(ctx context.Context, params url.Values) ([]core.Market, error) {
	query := cloneQuery(params)
	query.Set("category", string(core.CategorySpot))

	rows, err := e.instrumentPaginator().Collect(ctx, query)
	if err != nil {
		return nil, err
	}
	return e.normalizer.NormalizeMarkets(core.CategorySpot, rows), nil
}

// fetchDerivativeMarkets walks the default listing and the pre-launch listing concurrently.
// Default rows come first, followed by pre-launch rows.
func (e *BybitExchange) fetchDerivativeMarkets(ctx context.Context, category core.Category, params url.Values) ([]core.Market, error) {
	query := cloneQuery(params)
	query.Set("category", string(category))
	query.Set("limit", instrumentPageLimit)

	preQuery := cloneQuery(query)
	preQuery.Set("status", statusPreLaunch)

	var listed, preLaunch []json.RawMessage
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := e.instrumentPaginator().Collect(gctx, query)
		listed = rows
		return err
	})
	g.Go(func() error {
		rows, err := e.instrumentPaginator().Collect(gctx, preQuery)
		if err != nil {
			return fmt.Errorf("pre-launch: %w", err)
		}
		preLaunch = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := make([]json.RawMessage, 0, len(listed)+len(preLaunch))
	rows = append(rows, listed...)
	rows = append(rows, preLaunch...)
	return e.normalizer.NormalizeMarkets(category, rows), nil
}

func (e *BybitExchange) fetchOptionMarkets(ctx context.Context, baseCoin string, params url.Values) ([]core.Market, error) {
	query := cloneQuery(params)
	query.Set("category", string(core.CategoryOption))
	query.Set("baseCoin", baseCoin)
	query.Set("limit", instrumentPageLimit)

	rows, err := e.instrumentPaginator().Collect(ctx, query)
	if err != nil {
		return nil, err
	}
	return e.normalizer.NormalizeMarkets(core.CategoryOption, rows), nil
}

func (e *BybitExchange) instrumentPaginator() *Paginator {
	return NewPaginator(func(ctx context.Context, query url.Values) ([]byte, error) {
		body, _, err := e.call(ctx, core.OpInstrumentInfo, query)
		return body, err
	}, e.config.MaxPages, e.logger)
}

// call resolves op in the endpoint table and performs it, signing when the endpoint requires it.
func (e *BybitExchange) call(ctx context.Context, op core.Operation, query url.Values) ([]byte, envelope, error) {
	if _, ok := core.EndpointFor(op); !ok {
		return nil, envelope{}, fmt.Errorf("unsupported operation: %s", op)
	}
	req := core.NewRequest(op).SetQueryParams(query)
	if req.Endpoint.Auth {
		return e.doSignedRequest(ctx, req)
	}
	return e.doRequest(ctx, req, nil)
}

// doRequest waits for the rate limiter and sends req through the circuit breaker. When sign
// is set it is called inside the guarded send, after every wait, so the signed timestamp is
// taken right before the request leaves.
func (e *BybitExchange) doRequest(ctx context.Context, req *core.Request, sign func() (map[string]string, error)) ([]byte, envelope, error) {
	ep := req.Endpoint
	if err := e.rateLimiter.Wait(ctx, ep.Path); err != nil {
		return nil, envelope{}, err
	}

	var (
		data []byte
		env  envelope
	)
	send := func() error {
		opts := []httpClient.RequestOption{httpClient.WithQuery(req.Query)}
		if sign != nil {
			headers, err := sign()
			if err != nil {
				return err
			}
			opts = append(opts, httpClient.WithHeaders(headers))
		}

		var (
			resp *resty.Response
			err  error
		)
		switch ep.Method {
		case http.MethodGet:
			resp, err = e.httpClient.Get(ctx, ep.Path, opts...)
		case http.MethodPost:
			resp, err = e.httpClient.Post(ctx, ep.Path, req.Body, opts...)
		default:
			return core.NewExchangeError(exchangeName, core.ErrorTypeBadRequest, 0,
				fmt.Sprintf("unsupported method: %s", ep.Method)).WithCode(core.ErrCodeUnsupported)
		}
		if err != nil {
			return fmt.Errorf("%s %s: %w", ep.Method, ep.Path, err)
		}
		data, env, err = parseResponse(ep, resp)
		return err
	}

	var err error
	if e.circuitBreaker != nil {
		err = e.circuitBreaker.Execute(ctx, send)
	} else {
		err = send()
	}
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return nil, envelope{}, core.NewExchangeError(exchangeName, core.ErrorTypeServerError, 0,
			"circuit breaker is open").WithCode(core.ErrCodeCircuitBreaker).WithCause(core.ErrCircuitBreakerOpen)
	}
	if err != nil {
		return nil, envelope{}, err
	}
	return data, env, nil
}

// doSignedRequest signs and sends a private request. It never falls back to an unsigned request:
// a missing signer, a signing failure or a method the signer would skip are all errors.
func (e *BybitExchange) doSignedRequest(ctx context.Context, req *core.Request) ([]byte, envelope, error) {
	method := req.Endpoint.Method
	if method != http.MethodGet && method != http.MethodPost {
		return nil, envelope{}, core.NewExchangeError(exchangeName, core.ErrorTypeBadRequest, 0,
			fmt.Sprintf("cannot sign %s requests", method)).WithCode(core.ErrCodeUnsupported)
	}
	if e.signer == nil {
		return nil, envelope{}, core.NewExchangeError(exchangeName, core.ErrorTypeAuthentication, 0,
			"no credentials configured").WithCode(core.ErrCodeNoCredentials).WithCause(core.ErrNoCredentials)
	}

	return e.doRequest(ctx, req, func() (map[string]string, error) {
		headers, err := e.signer.Sign(method, req.Encode(), req.Body)
		if err != nil {
			return nil, fmt.Errorf("sign request: %w", err)
		}
		if len(headers) == 0 {
			return nil, core.NewExchangeError(exchangeName, core.ErrorTypeAuthentication, 0,
				"signer produced no headers").WithCode(core.ErrCodeSigning)
		}
		return headers, nil
	})
}

// Stats is a point-in-time view of the request guards.
type Stats struct {
	RateLimit ratelimit.MetricsSnapshot `json:"rate_limit"`
	// CircuitBreaker is nil when the breaker is disabled.
	CircuitBreaker *circuitbreaker.MetricsSnapshot `json:"circuit_breaker,omitempty"`
}

// Stats returns the rate limiter counters and, when enabled, the circuit breaker counters.
func (e *BybitExchange) Stats() Stats {
	stats := Stats{RateLimit: e.rateLimiter.Metrics()}
	if e.circuitBreaker != nil {
		cb := e.circuitBreaker.Metrics()
		stats.CircuitBreaker = &cb
	}
	return stats
}

// isBreakerFailure counts transport failures and unhealthy upstream responses against the breaker.
// Exchange-level rejections and caller cancellation do not.
func isBreakerFailure(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var exErr *core.ExchangeError
	if errors.As(err, &exErr) {
		switch exErr.Type {
		case core.ErrorTypeNetwork, core.ErrorTypeTimeout, core.ErrorTypeServerError:
			return true
		}
		return false
	}
	return true
}

// Register creates a BybitExchange and registers it with the container.
func Register(container *exchange.Container, config *core.Config, opts ...Option) error {
	ex, err := New(config, opts...)
	if err != nil {
		return fmt.Errorf("create bybit exchange: %w", err)
	}
	container.Register(ex)
	return nil
}
