package docstore

import (
	"context"
	"fmt"
	"sync"

	"room_chat_service/pkg/errs"

	"go.mongodb.org/mongo-driver/bson"
)

// MemoryStore is an in-process Store used by tests and local runs. Documents
// are held as bson so typed encode/decode behaves exactly like the Mongo
// implementation. Subscribers get their own delivery goroutine with a
// coalescing signal: rapid writes may collapse into one callback carrying the
// latest snapshot, which matches the full-replace subscription contract.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]bson.Raw
	order       map[string][]string
	subs        map[int]*memSub
	nextSubID   int
}

type memSub struct {
	collection string
	docID      string // empty for collection subscriptions
	signal     chan struct{}
	done       chan struct{}
}

// NewMemoryStore create an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]bson.Raw),
		order:       make(map[string][]string),
		subs:        make(map[int]*memSub),
	}
}

// Create insert a new document under the given id
func (s *MemoryStore) Create(ctx context.Context, collection, id string, data any) error {
	doc, err := toDoc(id, data)
	if err != nil {
		return err
	}
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]bson.Raw)
		s.collections[collection] = coll
	}
	if _, exists := coll[id]; exists {
		s.mu.Unlock()
		return fmt.Errorf("document %s/%s already exists", collection, id)
	}
	coll[id] = raw
	s.order[collection] = append(s.order[collection], id)
	s.mu.Unlock()

	s.notifySubs(collection, id)
	return nil
}

// Get fetch one document
func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Snapshot, error) {
	s.mu.RLock()
	raw, ok := s.collections[collection][id]
	s.mu.RUnlock()
	if !ok {
		return Snapshot{}, errs.NotFound("document " + collection + "/" + id + " not found")
	}
	return Snapshot{ID: id, raw: raw}, nil
}

// UpdateFields merge the named fields into the document
func (s *MemoryStore) UpdateFields(ctx context.Context, collection, id string, fields Fields) error {
	s.mu.Lock()
	raw, ok := s.collections[collection][id]
	if !ok {
		s.mu.Unlock()
		return errs.NotFound("document " + collection + "/" + id + " not found")
	}
	updated, err := applyFields(raw, fields)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.collections[collection][id] = updated
	s.mu.Unlock()

	s.notifySubs(collection, id)
	return nil
}

// QueryAll fetch every document of a collection once, in insertion order
func (s *MemoryStore) QueryAll(ctx context.Context, collection string) ([]Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var snaps []Snapshot
	for _, id := range s.order[collection] {
		if raw, ok := s.collections[collection][id]; ok {
			snaps = append(snaps, Snapshot{ID: id, raw: raw})
		}
	}
	return snaps, nil
}

// SubscribeDocument deliver the full document on every change
func (s *MemoryStore) SubscribeDocument(collection, id string, onChange func(Snapshot)) (UnsubscribeFunc, error) {
	sub, unsubscribe := s.addSub(collection, id)

	go func() {
		for {
			select {
			case <-sub.done:
				return
			case <-sub.signal:
				if snap, err := s.Get(context.Background(), collection, id); err == nil {
					onChange(snap)
				}
			}
		}
	}()

	return unsubscribe, nil
}

// SubscribeCollection deliver the full collection contents on every change
func (s *MemoryStore) SubscribeCollection(collection string, onChange func([]Snapshot)) (UnsubscribeFunc, error) {
	sub, unsubscribe := s.addSub(collection, "")

	go func() {
		for {
			select {
			case <-sub.done:
				return
			case <-sub.signal:
				if snaps, err := s.QueryAll(context.Background(), collection); err == nil {
					onChange(snaps)
				}
			}
		}
	}()

	return unsubscribe, nil
}

func (s *MemoryStore) addSub(collection, docID string) (*memSub, UnsubscribeFunc) {
	sub := &memSub{
		collection: collection,
		docID:      docID,
		signal:     make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
	// initial snapshot
	sub.signal <- struct{}{}

	s.mu.Lock()
	subID := s.nextSubID
	s.nextSubID++
	s.subs[subID] = sub
	s.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, subID)
			s.mu.Unlock()
			close(sub.done)
		})
	}
	return sub, unsubscribe
}

func (s *MemoryStore) notifySubs(collection, id string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.subs {
		if sub.collection != collection {
			continue
		}
		if sub.docID != "" && sub.docID != id {
			continue
		}
		select {
		case sub.signal <- struct{}{}:
		default: // a delivery is already pending; it will pick up this state
		}
	}
}

// applyFields materializes the Fields operators against a stored document.
// bson.D keeps document field order stable so element comparisons done on
// marshaled bytes stay deterministic.
func applyFields(raw bson.Raw, fields Fields) (bson.Raw, error) {
	var doc bson.D
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	for name, value := range fields {
		switch op := value.(type) {
		case unionOp:
			arr := arrayField(doc, name)
			for _, elem := range op.elems {
				if !arrayContains(arr, elem) {
					arr = append(arr, elem)
				}
			}
			doc = setField(doc, name, arr)
		case appendOp:
			arr := arrayField(doc, name)
			arr = append(arr, op.elems...)
			doc = setField(doc, name, arr)
		case incrementOp:
			cur, _ := getField(doc, name)
			doc = setField(doc, name, asInt64(cur)+op.delta)
		default:
			doc = setField(doc, name, value)
		}
	}

	return bson.Marshal(doc)
}

func getField(doc bson.D, name string) (any, bool) {
	for _, e := range doc {
		if e.Key == name {
			return e.Value, true
		}
	}
	return nil, false
}

func setField(doc bson.D, name string, value any) bson.D {
	for i, e := range doc {
		if e.Key == name {
			doc[i].Value = value
			return doc
		}
	}
	return append(doc, bson.E{Key: name, Value: value})
}

func arrayField(doc bson.D, name string) bson.A {
	v, ok := getField(doc, name)
	if !ok || v == nil {
		return bson.A{}
	}
	if arr, ok := v.(bson.A); ok {
		return arr
	}
	return bson.A{}
}

func arrayContains(arr bson.A, elem any) bool {
	want := rawValueOf(elem)
	for _, v := range arr {
		if rawValueOf(v).Equal(want) {
			return true
		}
	}
	return false
}

func rawValueOf(v any) bson.RawValue {
	b, err := bson.Marshal(bson.D{{Key: "v", Value: v}})
	if err != nil {
		return bson.RawValue{}
	}
	return bson.Raw(b).Lookup("v")
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}
