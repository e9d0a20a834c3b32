package providers

import (
	"context"
	"errors"

	"github.com/larkwiot/bookexplorer/internal/book"
	"github.com/samber/mo"
)

var (
	ErrRateLimited = errors.New("rate limit exceeded")
	ErrDisabled    = errors.New("provider disabled")
)

// Outcome separates "found nothing" (Ok with an empty slice) from a failed
// lookup (Err). Callers may still choose to display both the same way.
type Outcome = mo.Result[[]book.Summary]

func Found(books []book.Summary) Outcome {
	if books == nil {
		books = []book.Summary{}
	}
	return mo.Ok(books)
}

func Failed(err error) Outcome {
	return mo.Err[[]book.Summary](err)
}

type Provider interface {
	Name() string
	Lookup(ctx context.Context, query string) Outcome
	Disabled() bool
}
