package domain

import (
	"strings"
	"time"
)

// Collection is a named, coloured, user-defined group of documents.
// Membership is many-to-many and carries no payload.
type Collection struct {
	// ID is the store-assigned identifier.
	ID int64

	// Name is required.
	Name string

	// Description is optional free text.
	Description string

	// Color is an optional display colour (e.g. "#7C3AED").
	Color string

	// CreatedAt is when the collection was created.
	CreatedAt time.Time
}

// Validate checks required fields.
func (c Collection) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrInvalidInput
	}
	return nil
}

// CollectionUpdate carries optional changes to a collection.
// Nil fields are left untouched.
type CollectionUpdate struct {
	Name        *string
	Description *string
	Color       *string
}
