// Package power suspends the host for a fixed number of minutes.
package power

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/bilal/solar-monitor/internal/config"
	"github.com/rs/zerolog/log"
)

// Runner executes a command and waits for it.
type Runner func(ctx context.Context, name string, args ...string) error

func execRunner(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, out)
	}
	return nil
}

type Sleeper struct {
	command string
	args    []string
	run     Runner
}

func NewSleeper(cfg config.PowerConfig) *Sleeper {
	return &Sleeper{command: cfg.Command, args: cfg.Args, run: execRunner}
}

// EnterDeepSleep suspends for minutes, waking on the RTC alarm. The
// configured args get "-s <seconds>" appended.
func (s *Sleeper) EnterDeepSleep(ctx context.Context, minutes int) error {
	if minutes < 1 {
		return fmt.Errorf("sleep minutes must be positive, got %d", minutes)
	}
	if s.command == "" {
		return fmt.Errorf("power.command not configured")
	}
	seconds := minutes * 60
	args := append(append([]string{}, s.args...), "-s", strconv.Itoa(seconds))

	log.Warn().Int("minutes", minutes).Str("command", s.command).Strs("args", args).Msg("entering deep sleep")
	return s.run(ctx, s.command, args...)
}
