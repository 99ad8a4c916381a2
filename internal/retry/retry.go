// Package retry runs startup operations with a bounded number of attempts and
// exponential backoff between them.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jpillora/backoff"
	"github.com/rs/zerolog/log"
)

var ErrExhausted = errors.New("retry attempts exhausted")

type Policy struct {
	MaxAttempts int
	Min         time.Duration
	Max         time.Duration
	Factor      float64
	Jitter      bool
}

func (p Policy) backoff() *backoff.Backoff {
	factor := p.Factor
	if factor <= 0 {
		factor = 2
	}
	return &backoff.Backoff{
		Min:    p.Min,
		Max:    p.Max,
		Factor: factor,
		Jitter: p.Jitter,
	}
}

// Do calls op until it succeeds, ctx is done or MaxAttempts is reached.
// It returns the number of attempts made. On exhaustion the error wraps both
// ErrExhausted and the last op error.
func Do(ctx context.Context, p Policy, name string, op func(context.Context) error) (int, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	b := p.backoff()

	var attempt int
	for {
		attempt++
		err := op(ctx)
		if err == nil {
			return attempt, nil
		}
		if attempt >= maxAttempts {
			log.Error().Err(err).Str("op", name).Int("attempts", attempt).Msg("giving up")
			return attempt, fmt.Errorf("%s: %w after %d attempts: %w", name, ErrExhausted, attempt, err)
		}

		sleep := b.Duration()
		log.Warn().Err(err).Str("op", name).Int("attempt", attempt).Dur("retry_in", sleep).Msg("attempt failed, will retry")

		t := time.NewTimer(sleep)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return attempt, fmt.Errorf("%s: %w", name, ctx.Err())
		}
	}
}
