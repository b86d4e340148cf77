package aidbox

import (
	"context"
	"fmt"
	"sort"

	"github.com/fivetwenty-io/aidbox-client/internal/constants"
	"github.com/mitchellh/mapstructure"
)

// Resource is one remote record. Field reads and writes are checked against
// the resource type's schema, which is resolved through the session when the
// resource is built.
type Resource struct {
	session      Session
	resourceType string
	schema       Schema
	data         map[string]Value
	meta         map[string]any
}

// NewResource builds a resource of resourceType from fields. "meta" is kept
// as opaque metadata and "resource_type" is ignored. Every other field goes
// through Set; an unknown field fails construction unless skipValidation is
// set, in which case it is dropped.
func NewResource(ctx context.Context, session Session, resourceType string, fields map[string]any, skipValidation bool) (*Resource, error) {
	schema, err := session.Schema(ctx, resourceType)
	if err != nil {
		return nil, err
	}

	resource := &Resource{
		session:      session,
		resourceType: resourceType,
		schema:       schema,
		data:         make(map[string]Value, len(fields)),
		meta:         map[string]any{},
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		value := fields[key]

		switch key {
		case constants.FieldMeta:
			if meta, ok := value.(map[string]any); ok {
				resource.meta = meta
			}

			continue
		case constants.FieldResourceType:
			continue
		}

		err := resource.Set(key, value)
		if err != nil {
			if skipValidation && IsUnknownField(err) {
				continue
			}

			return nil, err
		}
	}

	return resource, nil
}

// ResourceType returns the resource type.
func (r *Resource) ResourceType() string {
	return r.resourceType
}

// Schema returns the schema the resource is validated against.
func (r *Resource) Schema() Schema {
	return r.schema
}

// ID returns the server-assigned id, or "" when unset.
func (r *Resource) ID() string {
	value, ok := r.data[constants.FieldID]
	if !ok {
		return ""
	}

	return value.String()
}

// Meta returns a copy of the opaque metadata block.
func (r *Resource) Meta() map[string]any {
	meta := make(map[string]any, len(r.meta))
	for key, value := range r.meta {
		meta[key] = value
	}

	return meta
}

// Get returns the value of a schema field. A known field that was never set
// returns a null Value. "meta" and "resource_type" are always readable and
// come back as scalars holding the metadata map and the type name.
func (r *Resource) Get(field string) (Value, error) {
	switch field {
	case constants.FieldMeta:
		return Scalar(r.Meta()), nil
	case constants.FieldResourceType:
		return Scalar(r.resourceType), nil
	}

	if !r.schema.Has(field) {
		return Value{}, &UnknownFieldError{ResourceType: r.resourceType, Field: field}
	}

	value, ok := r.data[field]
	if !ok {
		return Null(), nil
	}

	return value, nil
}

// Set assigns a schema field. A *Resource value is stored as a Reference.
// "meta" accepts a map, or nil to clear it. "resource_type" is fixed at
// construction and only accepts the current type name.
func (r *Resource) Set(field string, value any) error {
	switch field {
	case constants.FieldMeta:
		return r.setMeta(value)
	case constants.FieldResourceType:
		if name, ok := value.(string); ok && name == r.resourceType {
			return nil
		}

		return fmt.Errorf("%w: %s.%s cannot be changed to %v", ErrUnsupportedValue, r.resourceType, field, value)
	}

	if !r.schema.Has(field) {
		return &UnknownFieldError{ResourceType: r.resourceType, Field: field}
	}

	converted, err := ValueOf(value)
	if err != nil {
		return fmt.Errorf("setting %s.%s: %w", r.resourceType, field, err)
	}

	r.data[field] = converted

	return nil
}

func (r *Resource) setMeta(value any) error {
	switch meta := value.(type) {
	case nil:
		r.meta = map[string]any{}
	case map[string]any:
		r.meta = meta
	default:
		return fmt.Errorf("%w: %s.meta must be an object, got %T", ErrUnsupportedValue, r.resourceType, value)
	}

	return nil
}

// Fields returns the names of the fields that hold a value, sorted.
func (r *Resource) Fields() []string {
	fields := make([]string, 0, len(r.data))
	for field := range r.data {
		fields = append(fields, field)
	}

	sort.Strings(fields)

	return fields
}

// Data returns the field values in plain Go form. References are rendered as
// {"resource_type": ..., "id": ...} objects.
func (r *Resource) Data() map[string]any {
	data := make(map[string]any, len(r.data))
	for field, value := range r.data {
		data[field] = value.plain()
	}

	return data
}

// Reference returns a Reference to this resource. The resource must have an id.
func (r *Resource) Reference() (Reference, error) {
	id := r.ID()
	if id == "" {
		return Reference{}, fmt.Errorf("%w: %s", ErrMissingID, r.resourceType)
	}

	return NewReference(r.session, r.resourceType, id), nil
}

// Decode copies the resource's data into out, which is usually a pointer to a
// struct whose fields carry json tags in snake_case.
func (r *Resource) Decode(out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("creating decoder: %w", err)
	}

	err = decoder.Decode(r.Data())
	if err != nil {
		return fmt.Errorf("decoding %s: %w", r.resourceType, err)
	}

	return nil
}

// Save is reserved for persisting the resource. Not supported yet.
func (r *Resource) Save(ctx context.Context) error {
	return fmt.Errorf("saving %s: %w", r.resourceType, ErrNotImplemented)
}

// Delete is reserved for removing the resource. Not supported yet.
func (r *Resource) Delete(ctx context.Context) error {
	return fmt.Errorf("deleting %s: %w", r.resourceType, ErrNotImplemented)
}

// String implements fmt.Stringer.
func (r *Resource) String() string {
	if len(r.data) == 0 {
		return "<Resource>"
	}

	if id := r.ID(); id != "" {
		return fmt.Sprintf("<Resource %s/%s>", r.resourceType, id)
	}

	return fmt.Sprintf("<Resource %s>", r.resourceType)
}
