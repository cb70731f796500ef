package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"

	"cctx/pkg/core"
)

// DefaultMaxPages is used when a Paginator is created with a non-positive page ceiling.
const DefaultMaxPages = 100

// PageFunc performs one request of a cursor listing and returns the raw body.
type PageFunc func(ctx context.Context, query url.Values) ([]byte, error)

// Paginator walks a cursor-paginated listing until the cursor comes back empty.
// Pages are fetched one after another since each request needs the previous cursor.
type Paginator struct {
	fetch    PageFunc
	maxPages int
	logger   zerolog.Logger
}

// NewPaginator creates a Paginator that requests pages through fetch and gives up after
// maxPages requests, or DefaultMaxPages when maxPages is not positive.
func NewPaginator(fetch PageFunc, maxPages int, logger zerolog.Logger) *Paginator {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &Paginator{
		fetch:    fetch,
		maxPages: maxPages,
		logger:   logger,
	}
}

type listPage struct {
	Result *struct {
		List           *[]json.RawMessage `json:"list"`
		NextPageCursor *string            `json:"nextPageCursor"`
	} `json:"result"`
}

// Collect returns the rows of every page in fetch order. The caller's query is not modified.
// A page without result or result.list aborts the walk with a shape error, and a listing
// that is still returning cursors after maxPages requests fails with PAGE_LIMIT_EXCEEDED.
func (p *Paginator) Collect(ctx context.Context, query url.Values) ([]json.RawMessage, error) {
	var rows []json.RawMessage
	cursor := ""

	for page := 1; ; page++ {
		if page > p.maxPages {
			return nil, core.NewExchangeError(exchangeName, core.ErrorTypeBadResponse, 0,
				fmt.Sprintf("listing still paginating after %d pages", p.maxPages)).
				WithCode(core.ErrCodePageLimit)
		}

		pageQuery := cloneQuery(query)
		if cursor != "" {
			pageQuery.Set("cursor", cursor)
		}

		list, next, err := p.fetchPage(ctx, pageQuery)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		rows = append(rows, list...)

		p.logger.Debug().
			Str("category", query.Get("category")).
			Int("page", page).
			Int("rows", len(list)).
			Str("cursor", next).
			Msg("fetched page")

		if next == "" {
			return rows, nil
		}
		cursor = next
	}
}

func (p *Paginator) fetchPage(ctx context.Context, query url.Values) ([]json.RawMessage, string, error) {
	body, err := p.fetch(ctx, query)
	if err != nil {
		return nil, "", err
	}
	if err := CheckEnvelope(body); err != nil {
		return nil, "", err
	}

	var page listPage
	if err := sonic.Unmarshal(body, &page); err != nil {
		return nil, "", core.NewDecodeError(exchangeName, 0, err)
	}
	if page.Result == nil {
		return nil, "", core.NewMissingFieldError(exchangeName, "result")
	}
	if page.Result.List == nil {
		return nil, "", core.NewMissingFieldError(exchangeName, "result.list")
	}

	var next string
	if page.Result.NextPageCursor != nil {
		next = *page.Result.NextPageCursor
	}
	return *page.Result.List, next, nil
}

func cloneQuery(query url.Values) url.Values {
	out := make(url.Values, len(query)+1)
	for k, v := range query {
		out[k] = append([]string(nil), v...)
	}
	return out
}
