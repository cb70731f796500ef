package aggregate

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func delayed(d time.Duration, items ...string) FetchFunc[string] {
	return func(ctx context.Context) ([]string, error) {
		select {
		case <-time.After(d):
			return items, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func failing(err error) FetchFunc[string] {
	return func(context.Context) ([]string, error) { return nil, err }
}

func TestAll_PreservesBranchOrder(t *testing.T) {
	got, err := All(context.Background(),
		NewBranch("spot", delayed(30*time.Millisecond, "s1", "s2")),
		NewBranch("linear", delayed(20*time.Millisecond, "l1")),
		NewBranch("inverse", delayed(10*time.Millisecond, "i1")),
		NewBranch("btc option", delayed(0, "b1")),
		NewBranch("eth option", delayed(5*time.Millisecond)),
		NewBranch("sol option", delayed(1*time.Millisecond, "o1")),
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2", "l1", "i1", "b1", "o1"}, got)
}

func TestAll_RunsConcurrently(t *testing.T) {
	var running, peak atomic.Int32
	fetch := func(ctx context.Context) ([]string, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		running.Add(-1)
		return []string{"x"}, nil
	}

	_, err := All(context.Background(),
		NewBranch("a", fetch), NewBranch("b", fetch), NewBranch("c", fetch))
	require.NoError(t, err)
	assert.Greater(t, peak.Load(), int32(1))
}

func TestAll_FailFast(t *testing.T) {
	errEnvelope := errors.New("retCode 10001")

	got, err := All(context.Background(),
		NewBranch("spot", delayed(0, "s1")),
		NewBranch("linear", delayed(0, "l1")),
		NewBranch("inverse", failing(errEnvelope)),
		NewBranch("btc option", delayed(0, "b1")),
	)

	require.Error(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, errEnvelope)
	assert.Equal(t, "inverse: retCode 10001", err.Error())
}

func TestAll_CancelsSiblings(t *testing.T) {
	started := make(chan struct{})
	slow := func(ctx context.Context) ([]string, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	fail := func(context.Context) ([]string, error) {
		<-started
		return nil, errors.New("boom")
	}

	_, err := All(context.Background(), NewBranch("slow", slow), NewBranch("fail", fail))
	require.Error(t, err)
	assert.Equal(t, "fail: boom", err.Error())
}

func TestAll_NoBranches(t *testing.T) {
	got, err := All[string](context.Background())

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEach_CollectsPerBranch(t *testing.T) {
	errDown := errors.New("down")

	results := Each(context.Background(),
		NewBranch("spot", delayed(10*time.Millisecond, "s1")),
		NewBranch("linear", failing(errDown)),
		NewBranch("inverse", delayed(0, "i1", "i2")),
	)

	require.Len(t, results, 3)
	assert.Equal(t, "spot", results[0].Name)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, []string{"s1"}, results[0].Items)

	assert.Equal(t, "linear", results[1].Name)
	assert.ErrorIs(t, results[1].Err, errDown)
	assert.EqualError(t, results[1].Err, "linear: down")
	assert.Nil(t, results[1].Items)

	assert.Equal(t, []string{"i1", "i2"}, results[2].Items)
	assert.Equal(t, []string{"s1", "i1", "i2"}, Items(results))
}
