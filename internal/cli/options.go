// Package cli parses and validates the command-line surface of
// retrieve-bankmail.
package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
)

// ErrHelp is returned by Parse when the user asked for usage text.
var ErrHelp = errors.New("help requested")

// UsageError indicates invalid command-line input. The caller should
// print the usage text and exit non-zero without touching the network.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// IsUsageError reports whether err (or any error in its chain) is a
// UsageError.
func IsUsageError(err error) bool {
	var ue *UsageError
	return errors.As(err, &ue)
}

// Options holds the run options for a single invocation, immutable once
// parsed.
type Options struct {
	// Verbose enables progress logging.
	Verbose bool

	// Debug enables debug logging.
	Debug bool

	// ShowBrowser runs the browser with a visible window.
	ShowBrowser bool

	// Limit caps how many messages are retrieved; 0 means no limit.
	Limit int

	// LogLevel is an explicit level name overriding the flags above.
	LogLevel string
}

// Usage is the CLI usage text.
const Usage = `Usage: retrieve-bankmail [OPTIONS]

Retrieve bankmail from Bankwest Online Banking

Options:
  -v, --verbose             verbose logging
  -d, --debug               debug logging
  -s, --show-browser        display the browser
  -l, --limit int           limit for the amount of mail returned
  -g, --log-level string    manually set the log level
  -h, --help                show this help and exit
`

// Parse resolves Options from command-line arguments. It returns ErrHelp
// when -h/--help is given, and a UsageError for malformed input,
// including a --limit that is not a positive integer.
func Parse(args []string) (*Options, error) {
	opts := &Options{}

	fs := pflag.NewFlagSet("retrieve-bankmail", pflag.ContinueOnError)
	fs.SortFlags = false
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	fs.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose logging")
	fs.BoolVarP(&opts.Debug, "debug", "d", false, "debug logging")
	fs.BoolVarP(&opts.ShowBrowser, "show-browser", "s", false, "display the browser")
	fs.IntVarP(&opts.Limit, "limit", "l", 0, "limit for the amount of mail returned")
	fs.StringVarP(&opts.LogLevel, "log-level", "g", "", "manually set the log level")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, ErrHelp
		}
		return nil, &UsageError{Message: err.Error()}
	}

	if rest := fs.Args(); len(rest) > 0 {
		return nil, &UsageError{
			Message: fmt.Sprintf("unexpected argument %q", rest[0]),
		}
	}

	if fs.Changed("limit") && opts.Limit <= 0 {
		return nil, &UsageError{
			Message: fmt.Sprintf("--limit must be a positive integer, got %d", opts.Limit),
		}
	}

	opts.LogLevel = strings.TrimSpace(opts.LogLevel)

	return opts, nil
}
