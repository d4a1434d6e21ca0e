// Package docstore is the boundary to the schema-less document store. It
// exposes the handful of primitives the engines sequence their best-effort
// mutations through: point reads and writes, guarded array mutations, and
// filtered bulk operations. The store offers per-document atomicity only;
// anything spanning documents is the caller's problem.
package docstore

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by Get and Delete when no document has the id.
	ErrNotFound = errors.New("document not found")
	// ErrConflict is returned by Create when a document with the id exists.
	ErrConflict = errors.New("document already exists")
)

// Member is an entry destined for an embedded array, identified by the "id"
// field of Doc. AppendUnique uses ID as the idempotency key.
type Member struct {
	ID  string
	Doc any
}

// Range restricts a time field to [From, To). Zero bounds are open.
type Range struct {
	Field string
	From  time.Time
	To    time.Time
}

// Query is the filter language the engines need: field equality (matching
// array containment when the stored field is an array), id-set membership,
// embedded-array membership by entry id, and a single time range.
type Query struct {
	Eq       map[string]string
	In       map[string][]string
	MemberID map[string]string
	Range    *Range
}

// Update describes a mutation of one or many documents.
//
// AppendUnique appends each member to its array field iff no entry with the
// same id is present, making repeated application a no-op. RemoveID pulls
// entries by id and is a safe no-op when absent. Set overwrites top-level
// fields. AppendUnique is only valid for single-document Update calls.
// Updating a missing document is a no-op: cascades strip back-references from
// documents that may already be gone.
type Update struct {
	AppendUnique map[string]Member
	RemoveID     map[string]string
	Set          map[string]any
}

// Store is the document store adapter consumed by the engines. Documents are
// addressed by (collection, id); values are marshaled structs. Implementations
// guarantee per-document atomicity of a single call and nothing more.
type Store interface {
	Exists(ctx context.Context, collection, id string) (bool, error)
	Get(ctx context.Context, collection, id string, out any) error
	Create(ctx context.Context, collection, id string, doc any) error
	Delete(ctx context.Context, collection, id string) error
	Update(ctx context.Context, collection, id string, u Update) error

	Search(ctx context.Context, collection string, q Query, out any) error
	DeleteByQuery(ctx context.Context, collection string, q Query) (int64, error)
	UpdateByQuery(ctx context.Context, collection string, q Query, u Update) (int64, error)

	// CountByField buckets matching documents by the value of a (possibly
	// nested) field, the aggregation Quantify is built on.
	CountByField(ctx context.Context, collection string, q Query, field string) (map[string]int64, error)

	Ping(ctx context.Context) error
}
