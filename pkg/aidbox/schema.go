package aidbox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"sort"
	"sync"

	"github.com/fivetwenty-io/aidbox-client/internal/constants"
	"github.com/fivetwenty-io/aidbox-client/internal/naming"
	"golang.org/x/sync/singleflight"
)

// Schema is the set of field names the server recognises for a resource type.
// It always contains "id".
type Schema struct {
	resourceType string
	fields       map[string]struct{}
}

// NewSchema builds a schema from field names. "id" is added if missing.
func NewSchema(resourceType string, fields ...string) Schema {
	set := make(map[string]struct{}, len(fields)+1)
	for _, field := range fields {
		set[field] = struct{}{}
	}

	set[constants.FieldID] = struct{}{}

	return Schema{resourceType: resourceType, fields: set}
}

// ResourceType returns the resource type the schema describes.
func (s Schema) ResourceType() string {
	return s.resourceType
}

// Has reports whether field belongs to the schema.
func (s Schema) Has(field string) bool {
	_, ok := s.fields[field]

	return ok
}

// Fields returns the field names in sorted order.
func (s Schema) Fields() []string {
	fields := make([]string, 0, len(s.fields))
	for field := range s.fields {
		fields = append(fields, field)
	}

	sort.Strings(fields)

	return fields
}

// Len returns the number of fields.
func (s Schema) Len() int {
	return len(s.fields)
}

// SchemaCacheOption configures a SchemaCache.
type SchemaCacheOption func(*SchemaCache)

// WithSchemaBackend makes the cache consult and populate a shared backend.
func WithSchemaBackend(backend Cache) SchemaCacheOption {
	return func(c *SchemaCache) {
		c.backend = backend
	}
}

// WithSchemaLogger sets the logger used to report backend failures.
func WithSchemaLogger(logger Logger) SchemaCacheOption {
	return func(c *SchemaCache) {
		c.logger = logger
	}
}

// SchemaCache resolves and memoizes schemas per resource type. Once a type is
// resolved it is never refetched for the lifetime of the cache.
type SchemaCache struct {
	fetcher Fetcher
	backend Cache
	logger  Logger

	mu      sync.RWMutex
	schemas map[string]Schema
	group   singleflight.Group
}

// NewSchemaCache creates a schema cache reading attribute definitions through fetcher.
func NewSchemaCache(fetcher Fetcher, opts ...SchemaCacheOption) *SchemaCache {
	cache := &SchemaCache{
		fetcher: fetcher,
		schemas: make(map[string]Schema),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

// Get returns the schema for resourceType, fetching it on first use.
// Concurrent first uses of one type share a single fetch.
func (c *SchemaCache) Get(ctx context.Context, resourceType string) (Schema, error) {
	c.mu.RLock()
	schema, ok := c.schemas[resourceType]
	c.mu.RUnlock()

	if ok {
		return schema, nil
	}

	// The shared fetch outlives any one caller; each caller stops waiting
	// when its own context ends.
	fetchCtx := context.WithoutCancel(ctx)

	results := c.group.DoChan(resourceType, func() (interface{}, error) {
		c.mu.RLock()
		cached, found := c.schemas[resourceType]
		c.mu.RUnlock()

		if found {
			return cached, nil
		}

		resolved, err := c.resolve(fetchCtx, resourceType)
		if err != nil {
			return Schema{}, err
		}

		c.mu.Lock()
		c.schemas[resourceType] = resolved
		c.mu.Unlock()

		return resolved, nil
	})

	var result singleflight.Result

	select {
	case <-ctx.Done():
		return Schema{}, fmt.Errorf("waiting for %s schema: %w", resourceType, ctx.Err())
	case result = <-results:
	}

	if result.Err != nil {
		return Schema{}, result.Err
	}

	return result.Val.(Schema), nil //nolint:forcetypeassert // singleflight only stores Schema values
}

// Cached returns the resource types resolved so far, sorted.
func (c *SchemaCache) Cached() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	types := make([]string, 0, len(c.schemas))
	for resourceType := range c.schemas {
		types = append(types, resourceType)
	}

	slices.Sort(types)

	return types
}

func (c *SchemaCache) resolve(ctx context.Context, resourceType string) (Schema, error) {
	if schema, ok := c.loadBackend(ctx, resourceType); ok {
		return schema, nil
	}

	data, err := c.fetcher.Fetch(ctx, constants.AttributeResourceType, url.Values{
		constants.AttributeEntityParam: []string{resourceType},
	})
	if err != nil {
		return Schema{}, err
	}

	fields, err := attributeNames(data)
	if err != nil {
		return Schema{}, fmt.Errorf("reading attributes of %s: %w", resourceType, err)
	}

	schema := NewSchema(resourceType, fields...)
	c.storeBackend(ctx, schema)

	return schema, nil
}

// attributeNames extracts the leading path segment of every attribute in an
// Attribute bundle.
func attributeNames(bundle map[string]any) ([]string, error) {
	entries, err := bundleEntries(bundle)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))

	for _, entry := range entries {
		path, ok := entry[constants.FieldPath].([]any)
		if !ok || len(path) == 0 {
			continue
		}

		head, ok := path[0].(string)
		if !ok || head == "" {
			continue
		}

		names = append(names, naming.Underscore(head))
	}

	return names, nil
}

func (c *SchemaCache) loadBackend(ctx context.Context, resourceType string) (Schema, bool) {
	if c.backend == nil {
		return Schema{}, false
	}

	entry, err := c.backend.Get(ctx, schemaCacheKey(resourceType))
	if err != nil {
		return Schema{}, false
	}

	var fields []string

	err = json.Unmarshal(entry.Data, &fields)
	if err != nil {
		c.warn("discarding unreadable cached schema", resourceType, err)

		return Schema{}, false
	}

	return NewSchema(resourceType, fields...), true
}

func (c *SchemaCache) storeBackend(ctx context.Context, schema Schema) {
	if c.backend == nil {
		return
	}

	data, err := json.Marshal(schema.Fields())
	if err != nil {
		c.warn("encoding schema for cache", schema.ResourceType(), err)

		return
	}

	err = c.backend.Set(ctx, schemaCacheKey(schema.ResourceType()), &CacheEntry{Data: data})
	if err != nil {
		c.warn("storing schema in cache", schema.ResourceType(), err)
	}
}

func (c *SchemaCache) warn(msg, resourceType string, err error) {
	if c.logger == nil {
		return
	}

	c.logger.Warn(msg, map[string]interface{}{
		"resource_type": resourceType,
		"error":         err.Error(),
	})
}

func schemaCacheKey(resourceType string) string {
	return constants.SchemaCacheKeyPrefix + resourceType
}
