// Package naming converts field names between the server's camelCase
// convention and the client's snake_case convention.
package naming

import (
	"strings"

	"github.com/iancoleman/strcase"
)

// Underscore returns the snake_case form of a single field name. Digits stay
// attached to the word before them, so addressLine1 becomes address_line1.
func Underscore(name string) string {
	var builder strings.Builder

	builder.Grow(len(name) + 4)

	for start := 0; start < len(name); {
		digits := isDigit(name[start])

		end := start
		for end < len(name) && isDigit(name[end]) == digits {
			end++
		}

		chunk := name[start:end]

		switch {
		case digits:
			builder.WriteString(chunk)
		default:
			if start > 0 && isUpper(chunk[0]) {
				builder.WriteByte('_')
			}

			builder.WriteString(strcase.ToSnake(chunk))
		}

		start = end
	}

	return builder.String()
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isUpper(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

// UnderscoreKeys walks a decoded JSON document and rewrites every object key
// to snake_case. Values are left untouched, only keys are converted.
func UnderscoreKeys(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		converted := make(map[string]any, len(typed))
		for key, item := range typed {
			converted[Underscore(key)] = UnderscoreKeys(item)
		}

		return converted
	case []any:
		converted := make([]any, len(typed))
		for i, item := range typed {
			converted[i] = UnderscoreKeys(item)
		}

		return converted
	default:
		return value
	}
}
