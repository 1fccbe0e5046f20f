// Package logging configures the process-wide zerolog logger.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/nctr-alliance/garden-backend/internal/reqctx"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup replaces the global logger. format is "json" or "console".
func Setup(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	var w io.Writer = os.Stdout
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Str("service", "garden").Logger()
	return log.Logger
}

// Component returns the global logger tagged with a component name.
func Component(name string) zerolog.Logger {
	return log.Logger.With().Str("component", name).Logger()
}

// FromContext enriches l with the request id and user id carried by ctx.
func FromContext(ctx context.Context, l zerolog.Logger) *zerolog.Logger {
	c := l.With()
	if rid := reqctx.RID(ctx); rid != "" {
		c = c.Str("rid", rid)
	}
	if uid := reqctx.UID(ctx); uid != "" {
		c = c.Str("uid", uid)
	}
	out := c.Logger()
	return &out
}
