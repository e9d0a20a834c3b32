package providers

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/larkwiot/bookexplorer/internal/logger"
	"golang.org/x/time/rate"
)

// Limited paces calls to the wrapped provider and switches it off for the rest
// of the process once the endpoint reports a rate limit.
type Limited struct {
	Provider

	limiter  *rate.Limiter
	disabled atomic.Bool
}

func NewLimited(impl Provider, millisecondsPerRequest uint) *Limited {
	limit := rate.Inf
	if millisecondsPerRequest > 0 {
		limit = rate.Every(time.Duration(millisecondsPerRequest) * time.Millisecond)
	}

	return &Limited{
		Provider: impl,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

func (l *Limited) Lookup(ctx context.Context, query string) Outcome {
	if l.disabled.Load() {
		return Failed(fmt.Errorf("%s: %w, probably due to rate limit", l.Name(), ErrDisabled))
	}
	if l.Provider.Disabled() {
		return Failed(fmt.Errorf("%s: %w", l.Name(), ErrDisabled))
	}

	err := l.limiter.Wait(ctx)
	if err != nil {
		return Failed(fmt.Errorf("waiting for %s rate limiter: %w", l.Name(), err))
	}

	outcome := l.Provider.Lookup(ctx, query)

	if outcome.IsError() && errors.Is(outcome.Error(), ErrRateLimited) {
		if l.disabled.CompareAndSwap(false, true) {
			logger.For(ctx).Errorf("provider %s rate limit exceeded, self-disabling provider", l.Name())
		}
	}
	return outcome
}

func (l *Limited) Disabled() bool {
	return l.disabled.Load() || l.Provider.Disabled()
}
