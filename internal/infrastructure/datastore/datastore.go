// Package datastore persists the entire dataset as a single JSON document
// on disk. Every mutation is a whole-document read-modify-write; the last
// writer's snapshot wins. This is a local development stand-in for a real
// data store, not a transactional database.
package datastore

import (
	"fmt"
	"os"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/fastlab/regain-api/internal/infrastructure/logger"
)

// Record is one row of a collection. Records are schemaless: create accepts
// arbitrary partial objects and update shallow-merges arbitrary patches, so
// fields are kept as raw JSON values rather than a rigid struct.
type Record = map[string]any

// Document is the persisted dataset: eight named collections, each an
// ordered sequence of records. Insertion order is preserved.
type Document struct {
	Users          []Record `json:"users"`
	Groups         []Record `json:"groups"`
	Exercises      []Record `json:"exercises"`
	GroupExercises []Record `json:"groupExercises"`
	UserGroups     []Record `json:"userGroups"`
	Stats          []Record `json:"stats"`
	Messages       []Record `json:"messages"`
	Sessions       []Record `json:"sessions"`
}

// NewDocument returns a document with all collections initialized empty, so
// an untouched database serializes as [] rather than null per collection.
func NewDocument() *Document {
	return &Document{
		Users:          []Record{},
		Groups:         []Record{},
		Exercises:      []Record{},
		GroupExercises: []Record{},
		UserGroups:     []Record{},
		Stats:          []Record{},
		Messages:       []Record{},
		Sessions:       []Record{},
	}
}

func (d *Document) normalize() {
	for _, col := range []*[]Record{
		&d.Users, &d.Groups, &d.Exercises, &d.GroupExercises,
		&d.UserGroups, &d.Stats, &d.Messages, &d.Sessions,
	} {
		if *col == nil {
			*col = []Record{}
		}
	}
}

// Store owns the backing file. A single mutex serializes every
// read-modify-write cycle so concurrent in-process requests cannot
// interleave partial document states; last-writer-wins semantics are
// otherwise unchanged.
type Store struct {
	path string
	mu   sync.Mutex
	log  *logger.Logger
}

// New creates a store backed by the JSON document at path.
func New(path string, log *logger.Logger) *Store {
	return &Store{path: path, log: log.WithComponent("datastore")}
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the current document. If no backing file exists yet, an
// empty document is created, persisted and returned.
func (s *Store) Load() (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (*Document, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			doc := NewDocument()
			if err := s.save(doc); err != nil {
				return nil, err
			}
			s.log.Infow("created empty database", "path", s.path)
			return doc, nil
		}
		return nil, fmt.Errorf("read database: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse database: %w", err)
	}
	doc.normalize()
	return &doc, nil
}

// Save serializes the full document and overwrites the backing file.
func (s *Store) Save(doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(doc)
}

func (s *Store) save(doc *Document) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize database: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0644); err != nil {
		return fmt.Errorf("write database: %w", err)
	}
	return nil
}

// Update runs fn against the current document under the store lock and
// persists the result. fn's return value is passed through so handlers can
// hand back the record they touched.
func (s *Store) Update(fn func(doc *Document) (any, error)) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	out, err := fn(doc)
	if err != nil {
		return nil, err
	}
	if err := s.save(doc); err != nil {
		return nil, err
	}
	return out, nil
}
