// Package store defines the document store the board service persists to,
// with in-memory, PostgreSQL (jsonb) and MongoDB implementations.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get and Update when no document has the id.
var ErrNotFound = errors.New("document not found")

// Document is a JSON-compatible map. The "id" key mirrors the document id.
type Document map[string]any

// IDField is the key carrying a document's id.
const IDField = "id"

// DocumentStore is the persistence contract of the board service.
type DocumentStore interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	// Query returns every document whose field equals value.
	Query(ctx context.Context, collection, field string, value any) ([]Document, error)
	All(ctx context.Context, collection string) ([]Document, error)
	Count(ctx context.Context, collection, field string, value any) (int, error)
	Set(ctx context.Context, collection, id string, doc Document) error
	// Update merges partial into the stored document.
	Update(ctx context.Context, collection, id string, partial Document) error
	Delete(ctx context.Context, collection, id string) error
	// CreateIfAbsent stores doc under id unless a document already exists.
	// It returns the stored document and whether this call created it.
	CreateIfAbsent(ctx context.Context, collection, id string, doc Document) (Document, bool, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Encode converts a struct into a Document through its JSON form.
func Encode(v any) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return decodeJSON(raw)
}

// Decode fills v from doc through its JSON form.
func Decode(doc Document, v any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

func decodeJSON(raw []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

// withID returns a copy of doc carrying id.
func withID(doc Document, id string) Document {
	out := make(Document, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}
	out[IDField] = id
	return out
}
