package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/bilal/solar-monitor/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger.
func Init(lcfg config.LoggingConfig) {
	InitWriter(lcfg, os.Stderr)
}

func InitWriter(lcfg config.LoggingConfig, out io.Writer) {
	levelVal, err := zerolog.ParseLevel(strings.ToLower(lcfg.Level))
	if err != nil || levelVal == zerolog.NoLevel {
		levelVal = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(levelVal)

	if strings.ToLower(lcfg.Format) == "console" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	} else {
		// default json
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	}
}

// Component returns a child of the global logger tagged with name.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
