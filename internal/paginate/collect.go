// Package paginate materializes complete listings from page-numbered endpoints.
package paginate

import (
	"context"
	"fmt"
)

const (
	// MaxPages bounds CollectAll so a backend that misreports its totals cannot loop forever.
	MaxPages = 200
	// PageSize is the backend's maximum page size, used for full listings.
	PageSize = 200
)

// Page is one page of a listing. Total is the backend's reported collection
// size; zero means unknown.
type Page[T any] struct {
	Items []T
	Total int
}

// Listing is the accumulated result of CollectAll.
type Listing[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	// Truncated is set when collection stopped at MaxPages.
	Truncated bool `json:"truncated,omitempty"`
}

// FetchFunc loads a 1-based page.
type FetchFunc[T any] func(ctx context.Context, page int) (Page[T], error)

// CollectAll fetches pages starting at 1 until a page comes back empty, the
// accumulated count reaches the last reported total, or MaxPages pages were read.
// Fetch errors are returned as-is together with nothing collected.
func CollectAll[T any](ctx context.Context, fetch FetchFunc[T]) (Listing[T], error) {
	return collect(ctx, fetch, MaxPages)
}

func collect[T any](ctx context.Context, fetch FetchFunc[T], maxPages int) (Listing[T], error) {
	if fetch == nil {
		return Listing[T]{}, fmt.Errorf("paginate: fetch func is nil")
	}

	out := Listing[T]{Items: []T{}}
	for page := 1; ; page++ {
		if page > maxPages {
			out.Truncated = true
			break
		}
		if err := ctx.Err(); err != nil {
			return Listing[T]{}, err
		}

		p, err := fetch(ctx, page)
		if err != nil {
			return Listing[T]{}, err
		}
		if p.Total > 0 {
			out.Total = p.Total
		}
		out.Items = append(out.Items, p.Items...)

		if len(p.Items) == 0 {
			break
		}
		if out.Total > 0 && len(out.Items) >= out.Total {
			break
		}
	}

	if out.Total == 0 {
		out.Total = len(out.Items)
	}
	return out, nil
}
