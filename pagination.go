package paddle

import (
	"context"
	"iter"

	"github.com/ccxlv/paddle-go/models"
)

// DefaultPerPage is sent when a list call leaves PerPage unset.
const DefaultPerPage = 50

func perPage(v *int) int {
	if v == nil {
		return DefaultPerPage
	}

	return *v
}

// pageFunc fetches the page starting after the given cursor (nil for the first page).
type pageFunc[T any] func(ctx context.Context, after *string) (*models.ListResponse[T], error)

// listAll walks every page, yielding records in order. Iteration stops at
// the first error, which is yielded with a zero record.
func listAll[T any](ctx context.Context, resource string, after *string, fetch pageFunc[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		seen := make(map[string]struct{})

		for {
			page, err := fetch(ctx, after)
			if err != nil {
				yield(zero, err)
				return
			}

			for _, item := range page.Data {
				if !yield(item, nil) {
					return
				}
			}

			next := page.NextCursor()
			if next == "" {
				return
			}

			if _, dup := seen[next]; dup {
				yield(zero, &DeserializationError{
					Resource: resource,
					Field:    "meta.pagination.next",
					Reason:   "cursor did not advance",
				})
				return
			}
			seen[next] = struct{}{}

			after = &next
		}
	}
}
