// This package implements the document store holding surveillance records:
// collections of schemaless JSON documents in a single bbolt file, keyed by
// an internal UUID carried in each document as "_id".
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

// a schemaless record, as decoded from JSON
type Document = map[string]any

// Store holds one bucket per collection in a bbolt database file.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if necessary) the store at the given path and ensures
// a bucket exists for each named collection.
func Open(path string, collections []string) (*Store, error) {
	db, err := bolt.Open(path, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, collection := range collections {
			if _, err := tx.CreateBucketIfNotExists([]byte(collection)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// FindByField returns every document in the collection whose top-level field
// equals the given value.
func (s *Store) FindByField(collection, field string, value any) ([]Document, error) {
	return s.scan(collection, func(doc Document) bool {
		stored, present := doc[field]
		return present && jsonEqual(stored, value)
	}, nil)
}

// FindMatching returns every document containing all of the filter's fields
// with equal values (an empty filter matches everything). If fields is
// non-empty, returned documents are trimmed to those fields plus "_id".
func (s *Store) FindMatching(collection string, filter Document, fields []string) ([]Document, error) {
	return s.scan(collection, func(doc Document) bool {
		return matches(doc, filter)
	}, fields)
}

// All returns every document in the collection.
func (s *Store) All(collection string) ([]Document, error) {
	return s.scan(collection, func(Document) bool { return true }, nil)
}

// UpsertByKey writes the document to the collection. If a single existing
// document's key field matches the incoming one, the incoming fields are
// folded into it (untouched fields survive); more than one existing match is
// an error. The stored document carries its internal UUID under "_id".
func (s *Store) UpsertByKey(collection, key string, doc Document) error {
	matching, err := s.FindByField(collection, key, doc[key])
	if err != nil {
		return err
	}
	var id string
	switch len(matching) {
	case 0:
		id = uuid.NewString()
	case 1:
		existing := matching[0]
		id, _ = existing["_id"].(string)
		if id == "" {
			id = uuid.NewString()
		}
		maps.Copy(existing, doc)
		doc = existing
	default:
		return &DuplicateKeyError{
			Collection: collection,
			Field:      key,
			Value:      fmt.Sprintf("%v", doc[key]),
		}
	}
	doc["_id"] = id
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(collection))
		if bucket == nil {
			return &UnknownCollectionError{Name: collection}
		}
		return bucket.Put([]byte(id), data)
	})
}

// DeleteMatching removes every document matching the filter and reports how
// many were removed. An empty filter empties the collection.
func (s *Store) DeleteMatching(collection string, filter Document) (int, error) {
	deleted := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(collection))
		if bucket == nil {
			return &UnknownCollectionError{Name: collection}
		}
		var doomed [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			var doc Document
			if err := json.Unmarshal(v, &doc); err != nil {
				return err
			}
			if matches(doc, filter) {
				doomed = append(doomed, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range doomed {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		deleted = len(doomed)
		return nil
	})
	return deleted, err
}

// runs a predicate over every document in a collection, optionally trimming
// the survivors to the given fields
func (s *Store) scan(collection string, keep func(Document) bool, fields []string) ([]Document, error) {
	var results []Document
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(collection))
		if bucket == nil {
			return &UnknownCollectionError{Name: collection}
		}
		return bucket.ForEach(func(k, v []byte) error {
			var doc Document
			if err := json.Unmarshal(v, &doc); err != nil {
				return err
			}
			if keep(doc) {
				results = append(results, project(doc, fields))
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// reports whether doc contains every field in filter with an equal value
func matches(doc, filter Document) bool {
	for field, want := range filter {
		got, present := doc[field]
		if !present || !jsonEqual(got, want) {
			return false
		}
	}
	return true
}

// trims a document to the given fields (plus "_id"); nil fields keeps all
func project(doc Document, fields []string) Document {
	if len(fields) == 0 {
		return doc
	}
	trimmed := Document{}
	if id, present := doc["_id"]; present {
		trimmed["_id"] = id
	}
	for _, field := range fields {
		if value, present := doc[field]; present {
			trimmed[field] = value
		}
	}
	return trimmed
}

// compares two values by their canonical JSON encodings, so that numbers and
// nested structures compare the same whether they came from a decoded
// document or from caller-supplied Go values
func jsonEqual(a, b any) bool {
	aBytes, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bBytes, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(aBytes, bBytes)
}
