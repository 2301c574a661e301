// Package docstore is the client-side surface of the hosted document
// database: three loosely-typed collections of documents addressed by
// generated keys, queried with equality predicates and at most one
// single-field sort. The hosted service enforces access policy and owns
// indexing; this package only names the operations and the closed set of
// error kinds it can signal.
package docstore

import "context"

// Collection names used by the portal.
const (
	Users       = "users"
	Projects    = "projects"
	Submissions = "submissions"
)

type (
	// Doc is a raw document: its generated key plus the stored field map.
	Doc struct {
		ID   string
		Data map[string]interface{}
	}

	// Filter is an equality predicate on a single field.
	Filter struct {
		Field string
		Value interface{}
	}

	// Order is a single-field sort.
	Order struct {
		Field string
		Desc  bool
	}

	Collection interface {
		Get(ctx context.Context, id string) (Doc, error)
		// Query applies every filter (AND) and, when order is non-nil, asks
		// the store to sort. A filter+sort combination may fail with a
		// failed-precondition error when no supporting index exists; see
		// QueryOrdered for the fallback.
		Query(ctx context.Context, filters []Filter, order *Order) ([]Doc, error)
		// Create inserts data under a generated key and returns it.
		Create(ctx context.Context, data map[string]interface{}) (string, error)
		// Set writes the full document under the given key, creating it if
		// needed.
		Set(ctx context.Context, id string, data map[string]interface{}) error
		// Update merges data into an existing document.
		Update(ctx context.Context, id string, data map[string]interface{}) error
		Delete(ctx context.Context, id string) error
	}

	Store interface {
		Collection(name string) Collection
	}
)
