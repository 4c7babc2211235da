package docstore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
)

// Store is the document store collaborator: keyed documents grouped into
// collections, partial field updates with last-writer-wins resolution, and
// full-snapshot change subscriptions. No multi-document atomicity is offered
// and none may be assumed by callers.
type Store interface {
	// Create insert a new document under the given id
	Create(ctx context.Context, collection, id string, data any) error
	// Get fetch one document; errs.NotFound when the id is unknown
	Get(ctx context.Context, collection, id string) (Snapshot, error)
	// UpdateFields merge the named fields into the document. Plain values
	// replace the field whole; Union, Append and Increment values apply the
	// corresponding operator. errs.NotFound when the document vanished.
	UpdateFields(ctx context.Context, collection, id string, fields Fields) error
	// QueryAll fetch every document of a collection once
	QueryAll(ctx context.Context, collection string) ([]Snapshot, error)
	// SubscribeDocument deliver the full current document on every change,
	// starting with the state at subscribe time. Callbacks run on the
	// subscription's own goroutine, unordered relative to local writes.
	SubscribeDocument(collection, id string, onChange func(Snapshot)) (UnsubscribeFunc, error)
	// SubscribeCollection deliver the full collection contents on every
	// change to any document in it.
	SubscribeCollection(collection string, onChange func([]Snapshot)) (UnsubscribeFunc, error)
}

// UnsubscribeFunc tears down a subscription. Safe to call more than once;
// only the first call has effect.
type UnsubscribeFunc func()

// Fields is a partial document update keyed by field name.
type Fields map[string]any

type unionOp struct{ elems []any }

type appendOp struct{ elems []any }

type incrementOp struct{ delta int64 }

// Union adds the elements to an array field, skipping elements already
// present. Creates the array when the field is missing.
func Union(elems ...any) any { return unionOp{elems: elems} }

// Append appends the elements to an array field unconditionally, preserving
// arrival order. Creates the array when the field is missing.
func Append(elems ...any) any { return appendOp{elems: elems} }

// Increment adds delta to a numeric field, treating a missing field as zero.
func Increment(delta int64) any { return incrementOp{delta: delta} }

// Snapshot is one observed document state.
type Snapshot struct {
	ID  string
	raw bson.Raw
}

// Decode unmarshal the snapshot into a typed value
func (s Snapshot) Decode(out any) error {
	return bson.Unmarshal(s.raw, out)
}
