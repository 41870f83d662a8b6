// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level  string
	Format string // "console" or "json"
	File   string // optional rotated file sink
}

// New builds a logger writing to stderr and, when configured, to a rotated file.
func New(opts Options) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stderr
	if opts.Format != "json" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}
	}
	if opts.File != "" {
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    20,
			MaxBackups: 5,
			MaxAge:     28,
			Compress:   true,
		})
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
