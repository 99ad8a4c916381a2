// Package clock provides wall-clock time corrected once against an NTP server.
package clock

import (
	"context"
	"fmt"
	"time"

	"github.com/beevik/ntp"
	"github.com/bilal/solar-monitor/internal/retry"
	"github.com/rs/zerolog/log"
)

// Source reports how far the local clock is from the reference.
type Source interface {
	Offset(ctx context.Context) (time.Duration, error)
}

type NTPSource struct {
	Server  string
	Timeout time.Duration
}

func (s *NTPSource) Offset(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	resp, err := ntp.QueryWithOptions(s.Server, ntp.QueryOptions{Timeout: s.Timeout})
	if err != nil {
		return 0, fmt.Errorf("ntp query %s: %w", s.Server, err)
	}
	if err := resp.Validate(); err != nil {
		return 0, fmt.Errorf("ntp response %s: %w", s.Server, err)
	}
	return resp.ClockOffset, nil
}

// Clock is synced at most once. Drift after that is accepted.
type Clock struct {
	zone   *time.Location
	now    func() time.Time
	offset time.Duration
	synced bool
}

func New(zone *time.Location) *Clock {
	if zone == nil {
		zone = time.UTC
	}
	return &Clock{zone: zone, now: time.Now}
}

// Sync queries src until it answers or the policy gives up.
func (c *Clock) Sync(ctx context.Context, src Source, p retry.Policy) error {
	if c.synced {
		return nil
	}
	log.Info().Msg("waiting for time")
	var offset time.Duration
	_, err := retry.Do(ctx, p, "clock sync", func(ctx context.Context) error {
		var err error
		offset, err = src.Offset(ctx)
		return err
	})
	if err != nil {
		return err
	}
	c.offset = offset
	c.synced = true
	log.Info().
		Dur("offset", offset).
		Str("local_time", c.Local(c.Now()).Format(time.RFC3339)).
		Msg("time synced")
	return nil
}

func (c *Clock) Synced() bool { return c.synced }

// Now is the corrected wall-clock time.
func (c *Clock) Now() time.Time { return c.now().Add(c.offset) }

// Unix returns epoch seconds, or 0 while the clock has never been synced.
func (c *Clock) Unix() int64 {
	if !c.synced {
		return 0
	}
	return c.Now().Unix()
}

func (c *Clock) Local(t time.Time) time.Time { return t.In(c.zone) }
