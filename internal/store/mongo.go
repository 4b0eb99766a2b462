package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Mongo maps each collection to a MongoDB collection with the document id
// as _id.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongo uses database dbName of client.
func NewMongo(client *mongo.Client, dbName string) *Mongo {
	return &Mongo{client: client, db: client.Database(dbName)}
}

// EnsureIndexes creates the secondary indexes used by the board queries.
func (m *Mongo) EnsureIndexes(ctx context.Context, indexed map[string][]string) error {
	for collection, fields := range indexed {
		models := make([]mongo.IndexModel, 0, len(fields))
		for _, f := range fields {
			models = append(models, mongo.IndexModel{Keys: bson.D{{Key: f, Value: 1}}})
		}
		if _, err := m.db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
	}
	return nil
}

func (m *Mongo) Get(ctx context.Context, collection, id string) (Document, error) {
	var raw bson.M
	err := m.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return fromBSON(raw), nil
}

func (m *Mongo) Query(ctx context.Context, collection, field string, value any) ([]Document, error) {
	return m.find(ctx, collection, bson.M{field: value})
}

func (m *Mongo) All(ctx context.Context, collection string) ([]Document, error) {
	return m.find(ctx, collection, bson.M{})
}

func (m *Mongo) find(ctx context.Context, collection string, filter bson.M) ([]Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := m.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	docs := make([]Document, 0)
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode %s: %w", collection, err)
		}
		docs = append(docs, fromBSON(raw))
	}
	return docs, cursor.Err()
}

func (m *Mongo) Count(ctx context.Context, collection, field string, value any) (int, error) {
	n, err := m.db.Collection(collection).CountDocuments(ctx, bson.M{field: value})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return int(n), nil
}

func (m *Mongo) Set(ctx context.Context, collection, id string, doc Document) error {
	opts := options.Replace().SetUpsert(true)
	_, err := m.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, toBSON(doc, id), opts)
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (m *Mongo) Update(ctx context.Context, collection, id string, partial Document) error {
	patch, err := Encode(partial)
	if err != nil {
		return err
	}
	delete(patch, IDField)
	if len(patch) == 0 {
		_, err := m.Get(ctx, collection, id)
		return err
	}

	res, err := m.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M(patch)})
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) Delete(ctx context.Context, collection, id string) error {
	if _, err := m.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (m *Mongo) CreateIfAbsent(ctx context.Context, collection, id string, doc Document) (Document, bool, error) {
	_, err := m.db.Collection(collection).InsertOne(ctx, toBSON(doc, id))
	if mongo.IsDuplicateKeyError(err) {
		existing, getErr := m.Get(ctx, collection, id)
		return existing, false, getErr
	}
	if err != nil {
		return nil, false, fmt.Errorf("create %s/%s: %w", collection, id, err)
	}
	created, err := Encode(withID(doc, id))
	return created, true, err
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func toBSON(doc Document, id string) bson.M {
	out := bson.M{"_id": id}
	for k, v := range doc {
		out[k] = v
	}
	out[IDField] = id
	return out
}

// fromBSON turns a decoded MongoDB document into the JSON-shaped Document
// the other stores return.
func fromBSON(raw bson.M) Document {
	doc := make(Document, len(raw))
	for k, v := range raw {
		if k == "_id" {
			continue
		}
		doc[k] = fromBSONValue(v)
	}
	if _, ok := doc[IDField]; !ok {
		if id, ok := raw["_id"].(string); ok {
			doc[IDField] = id
		}
	}
	return doc
}

func fromBSONValue(v any) any {
	switch t := v.(type) {
	case bson.M:
		return map[string]any(fromBSON(t))
	case bson.D:
		m := make(bson.M, len(t))
		for _, e := range t {
			m[e.Key] = e.Value
		}
		return map[string]any(fromBSON(m))
	case bson.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = fromBSONValue(e)
		}
		return out
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case bson.DateTime:
		return t.Time().UTC().Format(time.RFC3339Nano)
	default:
		return v
	}
}
