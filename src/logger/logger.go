// Package logger configures the process-wide zerolog logger.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup builds the logger, installs it as the global and context default,
// and returns it. Verbose lowers the level to debug. Output is JSON unless
// stderr is a terminal or verbose is set.
func Setup(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	if verbose || stderrIsTerminal() {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, FormatTimestamp: func(i any) string {
			return time.Now().Format(time.Kitchen)
		}}).Level(level).With().Stack().Logger()
	}

	log.Logger = logger
	zerolog.DefaultContextLogger = &logger
	return logger
}

func stderrIsTerminal() bool {
	fi, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
