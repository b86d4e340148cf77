package aidbox

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/aidbox-client/internal/constants"
)

// Query is an immutable set of search parameters. It has no access to the
// network; every method returns a new Query and leaves the receiver as is.
type Query struct {
	params map[string]string
}

// NewQuery creates an empty query.
func NewQuery() Query {
	return Query{params: map[string]string{}}
}

// with copies the parameters, applies set to the copy and returns it.
func (q Query) with(set func(map[string]string)) Query {
	params := make(map[string]string, len(q.params)+1)
	for key, value := range q.params {
		params[key] = value
	}

	set(params)

	return Query{params: params}
}

// Where sets a single filter parameter.
func (q Query) Where(key string, value any) Query {
	return q.with(func(params map[string]string) {
		params[key] = formatParam(value)
	})
}

// Search merges filters into the query. A filter already present is overwritten.
func (q Query) Search(filters map[string]any) Query {
	return q.with(func(params map[string]string) {
		for key, value := range filters {
			params[key] = formatParam(value)
		}
	})
}

// Limit sets the page size.
func (q Query) Limit(n int) Query {
	return q.Where(constants.ParamCount, n)
}

// Page sets the page number.
func (q Query) Page(p int) Query {
	return q.Where(constants.ParamPage, p)
}

// Sort sets the sort keys, in order. Prefix a key with "-" for descending.
func (q Query) Sort(keys ...string) Query {
	return q.Where(constants.ParamSort, strings.Join(keys, ","))
}

// TotalOnly asks the server for the total count only, with a single-item page.
func (q Query) TotalOnly() Query {
	return q.with(func(params map[string]string) {
		params[constants.ParamCount] = "1"
		params[constants.ParamTotalMethod] = constants.TotalMethodCount
	})
}

// Get returns a parameter and whether it is set.
func (q Query) Get(key string) (string, bool) {
	value, ok := q.params[key]

	return value, ok
}

// Len returns the number of parameters.
func (q Query) Len() int {
	return len(q.params)
}

// Values returns the parameters as url.Values.
func (q Query) Values() url.Values {
	values := make(url.Values, len(q.params))
	for key, value := range q.params {
		values.Set(key, value)
	}

	return values
}

// String returns the encoded query string, keys sorted.
func (q Query) String() string {
	return q.Values().Encode()
}

func formatParam(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case int:
		return strconv.Itoa(typed)
	case []string:
		return strings.Join(typed, ",")
	case fmt.Stringer:
		return typed.String()
	default:
		return fmt.Sprint(value)
	}
}
