package bybit

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cctx/pkg/core"
)

type pageRecorder struct {
	pages   []string
	queries []url.Values
}

func (p *pageRecorder) fetch(_ context.Context, query url.Values) ([]byte, error) {
	p.queries = append(p.queries, query)
	i := len(p.queries) - 1
	if i >= len(p.pages) {
		return nil, fmt.Errorf("unexpected request %d", i+1)
	}
	return []byte(p.pages[i]), nil
}

func TestPaginator_Collect_FollowsCursor(t *testing.T) {
	rec := &pageRecorder{pages: []string{
		`{"retCode":0,"retMsg":"OK","result":{"list":[{"symbol":"A"},{"symbol":"B"}],"nextPageCursor":"c1"}}`,
		`{"retCode":0,"retMsg":"OK","result":{"list":[{"symbol":"C"}],"nextPageCursor":"c2"}}`,
		`{"retCode":0,"retMsg":"OK","result":{"list":[{"symbol":"D"}],"nextPageCursor":""}}`,
	}}
	p := NewPaginator(rec.fetch, 10, zerolog.Nop())

	query := url.Values{"category": {"linear"}}
	rows, err := p.Collect(context.Background(), query)
	require.NoError(t, err)

	require.Len(t, rows, 4)
	assert.JSONEq(t, `{"symbol":"A"}`, string(rows[0]))
	assert.JSONEq(t, `{"symbol":"D"}`, string(rows[3]))

	require.Len(t, rec.queries, 3)
	assert.Empty(t, rec.queries[0].Get("cursor"))
	assert.Equal(t, "c1", rec.queries[1].Get("cursor"))
	assert.Equal(t, "c2", rec.queries[2].Get("cursor"))
	for _, q := range rec.queries {
		assert.Equal(t, "linear", q.Get("category"))
	}

	assert.Equal(t, url.Values{"category": {"linear"}}, query)
}

func TestPaginator_Collect_MissingCursorEndsWalk(t *testing.T) {
	rec := &pageRecorder{pages: []string{
		`{"retCode":0,"retMsg":"OK","result":{"list":[{"symbol":"A"}]}}`,
	}}
	p := NewPaginator(rec.fetch, 10, zerolog.Nop())

	rows, err := p.Collect(context.Background(), url.Values{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Len(t, rec.queries, 1)
}

func TestPaginator_Collect_EmptyList(t *testing.T) {
	rec := &pageRecorder{pages: []string{
		`{"retCode":0,"retMsg":"OK","result":{"list":[],"nextPageCursor":""}}`,
	}}
	p := NewPaginator(rec.fetch, 10, zerolog.Nop())

	rows, err := p.Collect(context.Background(), url.Values{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestPaginator_Collect_ShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		page string
	}{
		{"missing result", `{"retCode":0,"retMsg":"OK"}`},
		{"null result", `{"retCode":0,"retMsg":"OK","result":null}`},
		{"missing list", `{"retCode":0,"retMsg":"OK","result":{"nextPageCursor":""}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &pageRecorder{pages: []string{tt.page}}
			p := NewPaginator(rec.fetch, 10, zerolog.Nop())

			rows, err := p.Collect(context.Background(), url.Values{})
			require.Error(t, err)
			assert.Nil(t, rows)
			assert.True(t, core.IsShapeError(err))
		})
	}
}

func TestPaginator_Collect_APIErrorOnLaterPage(t *testing.T) {
	rec := &pageRecorder{pages: []string{
		`{"retCode":0,"retMsg":"OK","result":{"list":[{"symbol":"A"}],"nextPageCursor":"c1"}}`,
		`{"retCode":10002,"retMsg":"request expired","result":{}}`,
	}}
	p := NewPaginator(rec.fetch, 10, zerolog.Nop())

	rows, err := p.Collect(context.Background(), url.Values{})
	require.Error(t, err)
	assert.Nil(t, rows)
	assert.Contains(t, err.Error(), "page 2")
	assert.True(t, core.IsAPIError(err))
}

func TestPaginator_Collect_FetchError(t *testing.T) {
	boom := errors.New("connection reset")
	p := NewPaginator(func(context.Context, url.Values) ([]byte, error) {
		return nil, boom
	}, 10, zerolog.Nop())

	_, err := p.Collect(context.Background(), url.Values{})
	assert.ErrorIs(t, err, boom)
}

func TestPaginator_Collect_PageLimit(t *testing.T) {
	calls := 0
	p := NewPaginator(func(context.Context, url.Values) ([]byte, error) {
		calls++
		return []byte(fmt.Sprintf(`{"retCode":0,"retMsg":"OK","result":{"list":[{"n":%d}],"nextPageCursor":"next-%d"}}`, calls, calls)), nil
	}, 3, zerolog.Nop())

	rows, err := p.Collect(context.Background(), url.Values{})
	require.Error(t, err)
	assert.Nil(t, rows)
	assert.Equal(t, 3, calls)
	assert.True(t, core.IsErrorCode(err, core.ErrCodePageLimit))
}

func TestNewPaginator_DefaultMaxPages(t *testing.T) {
	p := NewPaginator(nil, 0, zerolog.Nop())
	assert.Equal(t, DefaultMaxPages, p.maxPages)
}
