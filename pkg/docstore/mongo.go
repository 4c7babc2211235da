package docstore

import (
	"context"
	"sync"

	"room_chat_service/pkg/errs"
	"room_chat_service/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoStore backs the document store with MongoDB and fans change
// notifications out through redis pub/sub, so subscriptions fire across
// service nodes, not only on the node that performed the write.
type MongoStore struct {
	db  *mongo.Database
	rdb *redis.Client
}

// NewMongoStore create a MongoStore on an existing database and redis client
func NewMongoStore(db *mongo.Database, rdb *redis.Client) *MongoStore {
	return &MongoStore{db: db, rdb: rdb}
}

func channelFor(collection string) string {
	return "docstore:changes:" + collection
}

// Create insert a new document under the given id
func (s *MongoStore) Create(ctx context.Context, collection, id string, data any) error {
	doc, err := toDoc(id, data)
	if err != nil {
		return err
	}
	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return err
	}
	s.notify(ctx, collection, id)
	return nil
}

// Get fetch one document
func (s *MongoStore) Get(ctx context.Context, collection, id string) (Snapshot, error) {
	var raw bson.Raw
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if err == mongo.ErrNoDocuments {
		return Snapshot{}, errs.NotFound("document " + collection + "/" + id + " not found")
	}
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{ID: id, raw: raw}, nil
}

// UpdateFields merge the named fields into the document
func (s *MongoStore) UpdateFields(ctx context.Context, collection, id string, fields Fields) error {
	set := bson.M{}
	addToSet := bson.M{}
	push := bson.M{}
	inc := bson.M{}

	for name, value := range fields {
		switch op := value.(type) {
		case unionOp:
			addToSet[name] = bson.M{"$each": op.elems}
		case appendOp:
			push[name] = bson.M{"$each": op.elems}
		case incrementOp:
			inc[name] = op.delta
		default:
			set[name] = value
		}
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(addToSet) > 0 {
		update["$addToSet"] = addToSet
	}
	if len(push) > 0 {
		update["$push"] = push
	}
	if len(inc) > 0 {
		update["$inc"] = inc
	}
	if len(update) == 0 {
		return nil
	}

	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errs.NotFound("document " + collection + "/" + id + " not found")
	}
	s.notify(ctx, collection, id)
	return nil
}

// QueryAll fetch every document of a collection once
func (s *MongoStore) QueryAll(ctx context.Context, collection string) ([]Snapshot, error) {
	cur, err := s.db.Collection(collection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var snaps []Snapshot
	for cur.Next(ctx) {
		raw := bson.Raw(append([]byte(nil), cur.Current...))
		snaps = append(snaps, Snapshot{ID: idOf(raw), raw: raw})
	}
	return snaps, cur.Err()
}

// SubscribeDocument deliver the full document on every change
func (s *MongoStore) SubscribeDocument(collection, id string, onChange func(Snapshot)) (UnsubscribeFunc, error) {
	ctx, cancel := context.WithCancel(context.Background())
	sub := s.rdb.Subscribe(ctx, channelFor(collection))

	go func() {
		ch := sub.Channel()
		if snap, err := s.Get(ctx, collection, id); err == nil {
			onChange(snap)
		}
		for {
			select {
			case m, ok := <-ch:
				if !ok {
					return
				}
				if m.Payload != id {
					continue
				}
				if snap, err := s.Get(ctx, collection, id); err == nil {
					onChange(snap)
				}
			case <-ctx.Done():
				sub.Close()
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(cancel) }, nil
}

// SubscribeCollection deliver the full collection contents on every change
func (s *MongoStore) SubscribeCollection(collection string, onChange func([]Snapshot)) (UnsubscribeFunc, error) {
	ctx, cancel := context.WithCancel(context.Background())
	sub := s.rdb.Subscribe(ctx, channelFor(collection))

	go func() {
		ch := sub.Channel()
		if snaps, err := s.QueryAll(ctx, collection); err == nil {
			onChange(snaps)
		}
		for {
			select {
			case _, ok := <-ch:
				if !ok {
					return
				}
				if snaps, err := s.QueryAll(ctx, collection); err == nil {
					onChange(snaps)
				}
			case <-ctx.Done():
				sub.Close()
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(cancel) }, nil
}

func (s *MongoStore) notify(ctx context.Context, collection, id string) {
	if err := s.rdb.Publish(ctx, channelFor(collection), id).Err(); err != nil {
		logger.Log.Errorf("docstore publish error:", err)
	}
}

func toDoc(id string, data any) (bson.M, error) {
	b, err := bson.Marshal(data)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	doc["_id"] = id
	return doc, nil
}

func idOf(raw bson.Raw) string {
	if v, err := raw.LookupErr("_id"); err == nil {
		if s, ok := v.StringValueOK(); ok {
			return s
		}
	}
	return ""
}
