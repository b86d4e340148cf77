package aidbox

import (
	"fmt"
	"reflect"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	// KindNull is an unset field.
	KindNull Kind = iota
	// KindScalar is any plain decoded value: string, number, bool or nested object.
	KindScalar
	// KindReference points at another resource by type and id.
	KindReference
	// KindList holds further Values.
	KindList
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindReference:
		return "reference"
	case KindList:
		return "list"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a field value of a Resource: a scalar, a Reference, or a list of
// either. Resources are never stored by value; they become References.
type Value struct {
	kind   Kind
	scalar any
	ref    Reference
	list   []Value
}

// Null returns the null Value.
func Null() Value {
	return Value{kind: KindNull}
}

// Scalar wraps a plain value.
func Scalar(v any) Value {
	if v == nil {
		return Null()
	}

	return Value{kind: KindScalar, scalar: v}
}

// RefValue wraps a Reference.
func RefValue(ref Reference) Value {
	return Value{kind: KindReference, ref: ref}
}

// ListValue wraps a list of Values.
func ListValue(items ...Value) Value {
	list := make([]Value, len(items))
	copy(list, items)

	return Value{kind: KindList, list: list}
}

// ValueOf converts a Go value into a Value. A *Resource becomes a Reference,
// which requires the resource to have an id. Slices of resources, references
// or arbitrary values become lists.
func ValueOf(v any) (Value, error) {
	switch typed := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return typed, nil
	case Reference:
		return RefValue(typed), nil
	case *Reference:
		if typed == nil {
			return Null(), nil
		}

		return RefValue(*typed), nil
	case *Resource:
		if typed == nil {
			return Null(), nil
		}

		ref, err := typed.Reference()
		if err != nil {
			return Value{}, err
		}

		return RefValue(ref), nil
	case []*Resource:
		return listOf(typed)
	case []Reference:
		return listOf(typed)
	case []Value:
		return ListValue(typed...), nil
	case []any:
		return listOf(typed)
	default:
		switch reflect.TypeOf(v).Kind() {
		case reflect.Func, reflect.Chan, reflect.UnsafePointer:
			return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
		default:
			return Scalar(v), nil
		}
	}
}

func listOf[T any](items []T) (Value, error) {
	list := make([]Value, 0, len(items))

	for i, item := range items {
		value, err := ValueOf(item)
		if err != nil {
			return Value{}, fmt.Errorf("list item %d: %w", i, err)
		}

		list = append(list, value)
	}

	return Value{kind: KindList, list: list}, nil
}

// Kind returns the variant held.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the value is unset.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Scalar returns the plain value and whether v is a scalar.
func (v Value) Scalar() (any, bool) {
	return v.scalar, v.kind == KindScalar
}

// Reference returns the reference and whether v is a reference.
func (v Value) Reference() (Reference, bool) {
	return v.ref, v.kind == KindReference
}

// List returns a copy of the items and whether v is a list.
func (v Value) List() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}

	items := make([]Value, len(v.list))
	copy(items, v.list)

	return items, true
}

// String returns the scalar as a string when it is one.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindScalar:
		if s, ok := v.scalar.(string); ok {
			return s
		}

		return fmt.Sprint(v.scalar)
	case KindReference:
		return v.ref.String()
	case KindList:
		return fmt.Sprint(v.Interface())
	default:
		return ""
	}
}

// Interface returns the plain Go form: nil, the scalar, a Reference, or []any.
func (v Value) Interface() any {
	switch v.kind {
	case KindScalar:
		return v.scalar
	case KindReference:
		return v.ref
	case KindList:
		items := make([]any, len(v.list))
		for i, item := range v.list {
			items[i] = item.Interface()
		}

		return items
	default:
		return nil
	}
}

// plain returns the form used for decoding and display, with references
// rendered as resource_type/id objects.
func (v Value) plain() any {
	switch v.kind {
	case KindReference:
		return v.ref.toMap()
	case KindList:
		items := make([]any, len(v.list))
		for i, item := range v.list {
			items[i] = item.plain()
		}

		return items
	default:
		return v.Interface()
	}
}
