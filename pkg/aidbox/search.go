package aidbox

import (
	"context"
	"fmt"
	"iter"
	"net/url"
)

// Executor groups the operations of a SearchSet that talk to the server.
// Chain operations are not part of it: they only build a new Query.
type Executor interface {
	Get(ctx context.Context, id string) (*Resource, error)
	All(ctx context.Context) ([]*Resource, error)
	First(ctx context.Context) (*Resource, error)
	Count(ctx context.Context) (int, error)
	Iter(ctx context.Context) iter.Seq2[*Resource, error]
}

var _ Executor = (*SearchSet)(nil)

// SearchSet is a lazily executed search over one resource type. Chain
// methods return a new SearchSet; nothing is fetched until a terminal method
// (Get, All, First, Count, Iter) is called.
type SearchSet struct {
	session      Session
	resourceType string
	query        Query
}

// NewSearchSet starts an empty search over resourceType.
func NewSearchSet(session Session, resourceType string) *SearchSet {
	return &SearchSet{
		session:      session,
		resourceType: resourceType,
		query:        NewQuery(),
	}
}

func (s *SearchSet) withQuery(query Query) *SearchSet {
	return &SearchSet{
		session:      s.session,
		resourceType: s.resourceType,
		query:        query,
	}
}

// ResourceType returns the searched resource type.
func (s *SearchSet) ResourceType() string {
	return s.resourceType
}

// Query returns the accumulated parameters.
func (s *SearchSet) Query() Query {
	return s.query
}

// Search merges filters into the search.
func (s *SearchSet) Search(filters map[string]any) *SearchSet {
	return s.withQuery(s.query.Search(filters))
}

// Where adds a single filter.
func (s *SearchSet) Where(key string, value any) *SearchSet {
	return s.withQuery(s.query.Where(key, value))
}

// Limit sets the page size.
func (s *SearchSet) Limit(n int) *SearchSet {
	return s.withQuery(s.query.Limit(n))
}

// Page sets the page number.
func (s *SearchSet) Page(p int) *SearchSet {
	return s.withQuery(s.query.Page(p))
}

// Sort sets the sort keys, in order.
func (s *SearchSet) Sort(keys ...string) *SearchSet {
	return s.withQuery(s.query.Sort(keys...))
}

// Get fetches one resource by id. The accumulated parameters are not sent.
func (s *SearchSet) Get(ctx context.Context, id string) (*Resource, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: %s with an empty id", ErrNotFound, s.resourceType)
	}

	data, err := s.session.Fetch(ctx, s.resourceType+"/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	return NewResource(ctx, s.session, s.resourceType, data, true)
}

// All fetches the matching resources in server order.
func (s *SearchSet) All(ctx context.Context) ([]*Resource, error) {
	return s.fetch(ctx, s.query)
}

// First fetches a single-item page and returns its resource, or nil when the
// search matches nothing.
func (s *SearchSet) First(ctx context.Context) (*Resource, error) {
	resources, err := s.fetch(ctx, s.query.Limit(1))
	if err != nil {
		return nil, err
	}

	if len(resources) == 0 {
		return nil, nil //nolint:nilnil // an empty result is not an error
	}

	return resources[0], nil
}

// Count returns the total number of matching resources as reported by the server.
func (s *SearchSet) Count(ctx context.Context) (int, error) {
	data, err := s.session.Fetch(ctx, s.resourceType, s.query.TotalOnly().Values())
	if err != nil {
		return 0, err
	}

	total, err := bundleTotal(data)
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", s.resourceType, err)
	}

	return total, nil
}

// Iter yields the results of All. Every iteration performs a new fetch.
func (s *SearchSet) Iter(ctx context.Context) iter.Seq2[*Resource, error] {
	return func(yield func(*Resource, error) bool) {
		resources, err := s.All(ctx)
		if err != nil {
			yield(nil, err)

			return
		}

		for _, resource := range resources {
			if !yield(resource, nil) {
				return
			}
		}
	}
}

// String implements fmt.Stringer.
func (s *SearchSet) String() string {
	return fmt.Sprintf("<SearchSet %s?%s>", s.resourceType, s.query)
}

func (s *SearchSet) fetch(ctx context.Context, query Query) ([]*Resource, error) {
	data, err := s.session.Fetch(ctx, s.resourceType, query.Values())
	if err != nil {
		return nil, err
	}

	entries, err := bundleEntries(data)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", s.resourceType, err)
	}

	resources := make([]*Resource, 0, len(entries))

	for _, entry := range entries {
		resource, err := NewResource(ctx, s.session, s.resourceType, entry, true)
		if err != nil {
			return nil, err
		}

		resources = append(resources, resource)
	}

	return resources, nil
}
