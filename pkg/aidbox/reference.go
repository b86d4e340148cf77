package aidbox

import (
	"context"

	"github.com/fivetwenty-io/aidbox-client/internal/constants"
)

// Reference points at a remote resource by type and id without carrying its
// data. It is immutable.
type Reference struct {
	session      Session
	resourceType string
	id           string
}

// NewReference creates a reference to resourceType/id.
func NewReference(session Session, resourceType, id string) Reference {
	return Reference{session: session, resourceType: resourceType, id: id}
}

// ResourceType returns the referenced resource type.
func (r Reference) ResourceType() string {
	return r.resourceType
}

// ID returns the referenced id.
func (r Reference) ID() string {
	return r.id
}

// String returns "Type/id".
func (r Reference) String() string {
	return r.resourceType + "/" + r.id
}

// Resolve fetches the referenced resource.
func (r Reference) Resolve(ctx context.Context) (*Resource, error) {
	return NewSearchSet(r.session, r.resourceType).Get(ctx, r.id)
}

func (r Reference) toMap() map[string]any {
	return map[string]any{
		constants.FieldResourceType: r.resourceType,
		constants.FieldID:           r.id,
	}
}
