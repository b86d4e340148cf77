package commands

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/fivetwenty-io/aidbox-client/internal/constants"
	"github.com/fivetwenty-io/aidbox-client/pkg/aidbox"
	"github.com/hashicorp/go-hclog"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Masked replaces secrets in displayed output.
const Masked = "***"

// Common static errors used throughout the commands package.
var (
	ErrHostNotFound     = errors.New("host not found")
	ErrHostRequired     = errors.New("host is required")
	ErrEmailRequired    = errors.New("email is required")
	ErrUnknownConfigKey = errors.New("unknown configuration key")
)

func outputFormat() string {
	format := viper.GetString("output")
	if format == "" {
		return constants.FormatTable
	}

	return format
}

func validFormat(format string) bool {
	switch format {
	case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
		return true
	default:
		return false
	}
}

func valueOrNA(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}

// newLogger returns the logger used for --debug output, or nil when debug
// output is off.
func newLogger() aidbox.Logger {
	if !viper.GetBool("debug") {
		return nil
	}

	if viper.GetString("log_format") == constants.FormatJSON {
		return aidbox.NewZerologLogger(zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.DebugLevel))
	}

	return aidbox.NewHCLogger(hclog.New(&hclog.LoggerOptions{
		Name:   "aidbox",
		Level:  hclog.Debug,
		Output: os.Stderr,
	}))
}

// hostName derives the config key for a server URL from its host name.
func hostName(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return strings.ToLower(rawURL)
	}

	return strings.ToLower(parsed.Hostname())
}

// parseFilters turns repeated key=value flags into search parameters.
func parseFilters(filters []string) (map[string]any, error) {
	params := make(map[string]any, len(filters))

	for _, filter := range filters {
		key, value, ok := strings.Cut(filter, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidFilter, filter)
		}

		params[key] = value
	}

	return params, nil
}
