// Package logger wraps zerolog behind package-level helpers so the rest
// of the codebase logs through one configured instance.
package logger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var Log zerolog.Logger

func init() {
	Setup(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

// Setup configures the package logger. Level defaults to info, format
// defaults to console; LOG_FORMAT=json switches to plain JSON output.
func Setup(level, format string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	var out = zerolog.New(os.Stderr)
	if format != "json" {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	Log = out.Level(lvl).With().Timestamp().Logger()
}

func Debug() *zerolog.Event { return Log.Debug() }
func Info() *zerolog.Event  { return Log.Info() }
func Warn() *zerolog.Event  { return Log.Warn() }
func Error() *zerolog.Event { return Log.Error() }

func Debugf(format string, args ...interface{}) { Log.Debug().Msg(fmt.Sprintf(format, args...)) }
func Infof(format string, args ...interface{})  { Log.Info().Msg(fmt.Sprintf(format, args...)) }
func Warnf(format string, args ...interface{})  { Log.Warn().Msg(fmt.Sprintf(format, args...)) }
func Errorf(format string, args ...interface{}) { Log.Error().Msg(fmt.Sprintf(format, args...)) }

func Fatalf(format string, args ...interface{}) {
	Log.Fatal().Msg(fmt.Sprintf(format, args...))
}
