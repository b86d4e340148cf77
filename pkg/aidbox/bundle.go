package aidbox

import (
	"encoding/json"
	"fmt"

	"github.com/fivetwenty-io/aidbox-client/internal/constants"
)

// bundleEntries returns the resources of a search bundle in server order.
// A bundle without entries yields an empty slice.
func bundleEntries(bundle map[string]any) ([]map[string]any, error) {
	raw, ok := bundle[constants.FieldEntry]
	if !ok || raw == nil {
		return []map[string]any{}, nil
	}

	entries, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: entry is %T", ErrMalformedResponse, raw)
	}

	resources := make([]map[string]any, 0, len(entries))

	for i, item := range entries {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: entry %d is %T", ErrMalformedResponse, i, item)
		}

		resource, ok := entry[constants.FieldResource].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: entry %d has no resource", ErrMalformedResponse, i)
		}

		resources = append(resources, resource)
	}

	return resources, nil
}

// bundleTotal reads the total reported by the server.
func bundleTotal(bundle map[string]any) (int, error) {
	switch total := bundle[constants.FieldTotal].(type) {
	case json.Number:
		value, err := total.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: total %q: %w", ErrMalformedResponse, total, err)
		}

		return int(value), nil
	case float64:
		return int(total), nil
	case int:
		return total, nil
	default:
		return 0, fmt.Errorf("%w: total is %T", ErrMalformedResponse, total)
	}
}
