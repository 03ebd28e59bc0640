package main

import (
	"errors"
	"os"
	"strings"

	mdpress "github.com/inkforge/mdpress"
	"github.com/inkforge/mdpress/internal/config"
)

// isInContainer detects Docker-like environments via the /.dockerenv marker
// the engine creates automatically. Variable so tests can override it.
var isInContainer = func() bool {
	_, err := os.Stat("/.dockerenv")
	return err == nil
}

// hintFor returns an actionable hint for common failures, formatted as
// "\n  hint: <text>" for appending to the error message. Empty when no
// hint applies.
func hintFor(err error) string {
	switch {
	case errors.Is(err, mdpress.ErrBrowserConnect), errors.Is(err, mdpress.ErrPageCreate):
		return browserHint()
	case errors.Is(err, config.ErrConfigNotFound):
		return formatHint("use --config /path/to/file.yaml")
	case errors.Is(err, mdpress.ErrAcquireTimeout):
		return formatHint("render pool saturated; retry, or raise --workers or --surfaces")
	default:
		return ""
	}
}

// browserHint suggests environment variables for browser launch failures.
func browserHint() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != ""

	if (inCI || isInContainer()) && os.Getenv("MDPRESS_NO_SANDBOX") == "" {
		hints = append(hints, "set MDPRESS_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("MDPRESS_BROWSER_BIN") == "" {
		hints = append(hints, "set MDPRESS_BROWSER_BIN to use an installed Chrome")
	}
	if len(hints) == 0 {
		return ""
	}
	return formatHint(strings.Join(hints, "; "))
}

func formatHint(text string) string {
	return "\n  hint: " + text
}
