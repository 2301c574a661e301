// Package memstore is an in-memory stand-in for the hosted document store,
// used in DEV and in tests. It reproduces the behaviors the application has
// to cope with: equality-filtered queries, single-field sorting, merge
// updates, and the failed-precondition error a filter+sort query raises
// when no supporting composite index was declared. Errors of any kind can
// also be injected to exercise the surfacing paths.
package memstore

import (
	"context"
	"reflect"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mzalendo/kazi/storage/docstore"
)

type (
	// Index declares a composite index: the equality-filtered fields plus
	// the sorted field. Compound queries on a collection fail with
	// failed-precondition unless a matching Index was registered.
	Index struct {
		Collection string
		Filters    []string
		Order      string
	}

	Store struct {
		mu      sync.RWMutex
		colls   map[string]*collection
		indexes []Index

		// pending injected failures, keyed by collection name; own lock so
		// read paths holding mu.RLock can still consume one
		fmu      sync.Mutex
		failures map[string]error
	}

	collection struct {
		name  string
		store *Store
		docs  map[string]map[string]interface{}
	}
)

var _ docstore.Store = (*Store)(nil)
var _ docstore.Collection = (*collection)(nil)

func New(indexes ...Index) *Store {
	return &Store{
		colls:    make(map[string]*collection),
		indexes:  indexes,
		failures: make(map[string]error),
	}
}

func (s *Store) Collection(name string) docstore.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	coll, ok := s.colls[name]
	if !ok {
		coll = &collection{name: name, store: s, docs: make(map[string]map[string]interface{})}
		s.colls[name] = coll
	}
	return coll
}

// RegisterIndex declares a composite index after construction.
func (s *Store) RegisterIndex(idx Index) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexes = append(s.indexes, idx)
}

// FailNext makes the next operation on the named collection return err.
func (s *Store) FailNext(collName string, err error) {
	s.fmu.Lock()
	defer s.fmu.Unlock()
	s.failures[collName] = err
}

func (s *Store) takeFailure(collName string) error {
	s.fmu.Lock()
	defer s.fmu.Unlock()
	err, ok := s.failures[collName]
	if ok {
		delete(s.failures, collName)
	}
	return err
}

func (s *Store) hasIndex(collName string, filters []docstore.Filter, order docstore.Order) bool {
	for _, idx := range s.indexes {
		if idx.Collection != collName || idx.Order != order.Field || len(idx.Filters) != len(filters) {
			continue
		}
		ok := true
		for i, f := range filters {
			if idx.Filters[i] != f.Field {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func (c *collection) Get(ctx context.Context, id string) (docstore.Doc, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	if err := c.store.takeFailure(c.name); err != nil {
		return docstore.Doc{}, err
	}

	data, ok := c.docs[id]
	if !ok {
		return docstore.Doc{}, docstore.NewError(docstore.KindNotFound, c.name+".Get", nil)
	}
	return docstore.Doc{ID: id, Data: copyData(data)}, nil
}

func (c *collection) Query(ctx context.Context, filters []docstore.Filter, order *docstore.Order) ([]docstore.Doc, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	if err := c.store.takeFailure(c.name); err != nil {
		return nil, err
	}

	// a compound filter+sort query needs a declared composite index;
	// filter-only and sort-only queries are always served
	if order != nil && len(filters) > 0 && !c.store.hasIndex(c.name, filters, *order) {
		return nil, docstore.NewError(docstore.KindFailedPrecondition, c.name+".Query",
			errors.New("the query requires a composite index"))
	}

	var docs []docstore.Doc
	for id, data := range c.docs {
		if matches(data, filters) {
			docs = append(docs, docstore.Doc{ID: id, Data: copyData(data)})
		}
	}
	if order != nil {
		docstore.SortByInstant(docs, *order)
	} else {
		// map iteration order is random; pin it for callers that do their
		// own sorting afterwards
		sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	}
	return docs, nil
}

func (c *collection) Create(ctx context.Context, data map[string]interface{}) (string, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if err := c.store.takeFailure(c.name); err != nil {
		return "", err
	}

	id := uuid.NewString()
	c.docs[id] = copyData(data)
	return id, nil
}

func (c *collection) Set(ctx context.Context, id string, data map[string]interface{}) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if err := c.store.takeFailure(c.name); err != nil {
		return err
	}

	c.docs[id] = copyData(data)
	return nil
}

func (c *collection) Update(ctx context.Context, id string, data map[string]interface{}) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if err := c.store.takeFailure(c.name); err != nil {
		return err
	}

	doc, ok := c.docs[id]
	if !ok {
		return docstore.NewError(docstore.KindNotFound, c.name+".Update", nil)
	}
	for k, v := range data {
		doc[k] = v
	}
	return nil
}

func (c *collection) Delete(ctx context.Context, id string) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if err := c.store.takeFailure(c.name); err != nil {
		return err
	}

	delete(c.docs, id) // deleting a missing document is a no-op, as upstream
	return nil
}

func matches(data map[string]interface{}, filters []docstore.Filter) bool {
	for _, f := range filters {
		v, ok := data[f.Field]
		if !ok || !reflect.DeepEqual(v, f.Value) {
			return false
		}
	}
	return true
}

func copyData(data map[string]interface{}) map[string]interface{} {
	cp := make(map[string]interface{}, len(data))
	for k, v := range data {
		cp[k] = v
	}
	return cp
}
