// Package aggregate fans a fetch out over independent branches and joins the results
// in the order the branches were declared.
package aggregate

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// FetchFunc produces the items of one branch.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// Branch is a named unit of work. The name prefixes any error the branch returns.
type Branch[T any] struct {
	Name  string
	Fetch FetchFunc[T]
}

// NewBranch is a convenience constructor for Branch.
func NewBranch[T any](name string, fetch FetchFunc[T]) Branch[T] {
	return Branch[T]{Name: name, Fetch: fetch}
}

// All runs every branch concurrently and waits for all of them.
// On success the items are concatenated in branch order, regardless of completion order.
// If any branch fails, All returns nil and the first error, prefixed with the branch name as "<name>: <err>".
// The context passed to the remaining branches is cancelled on the first failure.
func All[T any](ctx context.Context, branches ...Branch[T]) ([]T, error) {
	results := make([][]T, len(branches))

	g, gctx := errgroup.WithContext(ctx)
	for i, branch := range branches {
		g.Go(func() error {
			items, err := branch.Fetch(gctx)
			if err != nil {
				return fmt.Errorf("%s: %w", branch.Name, err)
			}
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return concat(results), nil
}

// Result is the outcome of one branch under Each.
type Result[T any] struct {
	Name  string
	Items []T
	Err   error
}

// Each runs every branch concurrently and reports each outcome separately, in branch order.
// A failing branch does not cancel the others.
func Each[T any](ctx context.Context, branches ...Branch[T]) []Result[T] {
	results := make([]Result[T], len(branches))

	var g errgroup.Group
	for i, branch := range branches {
		g.Go(func() error {
			items, err := branch.Fetch(ctx)
			results[i] = Result[T]{Name: branch.Name, Items: items}
			if err != nil {
				results[i] = Result[T]{Name: branch.Name, Err: fmt.Errorf("%s: %w", branch.Name, err)}
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Items concatenates the items of the successful results in order.
func Items[T any](results []Result[T]) []T {
	parts := make([][]T, 0, len(results))
	for _, r := range results {
		if r.Err == nil {
			parts = append(parts, r.Items)
		}
	}
	return concat(parts)
}

func concat[T any](parts [][]T) []T {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]T, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
