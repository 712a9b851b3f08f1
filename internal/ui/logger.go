// Package ui provides terminal styling and logger setup for recipewriter.
package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// InitLogger sets up the CLI logger: stderr, info level, no timestamps.
func InitLogger() {
	log.SetOutput(os.Stderr)
	log.SetLevel(log.InfoLevel)
	log.SetReportCaller(false)
	log.SetReportTimestamp(false)
	log.SetFormatter(log.TextFormatter)
}

// SetDebug toggles debug logging.
func SetDebug(enabled bool) {
	level := log.InfoLevel
	if enabled {
		level = log.DebugLevel
	}
	log.SetLevel(level)
}

// SetServerMode switches to timestamped lines in the given format for
// long-running processes. An empty format keeps text output.
func SetServerMode(format string) error {
	formatter, err := parseFormat(format)
	if err != nil {
		return err
	}
	log.SetFormatter(formatter)
	log.SetReportTimestamp(true)
	log.SetTimeFormat(time.DateTime)
	return nil
}

func parseFormat(format string) (log.Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		return log.TextFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	default:
		return log.TextFormatter, fmt.Errorf("unknown log format %q", format)
	}
}
