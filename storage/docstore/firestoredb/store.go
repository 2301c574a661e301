// Package firestoredb adapts a Cloud Firestore client to the docstore
// interfaces and maps its gRPC status codes onto the closed error kinds.
package firestoredb

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mzalendo/kazi/storage/docstore"
)

type (
	Store struct {
		client *firestore.Client
	}

	collection struct {
		name string
		ref  *firestore.CollectionRef
	}
)

var _ docstore.Store = (*Store)(nil)
var _ docstore.Collection = (*collection)(nil)

func New(client *firestore.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Collection(name string) docstore.Collection {
	return &collection{name: name, ref: s.client.Collection(name)}
}

func (c *collection) Get(ctx context.Context, id string) (docstore.Doc, error) {
	snap, err := c.ref.Doc(id).Get(ctx)
	if err != nil {
		return docstore.Doc{}, mapError(c.name+".Get", err)
	}
	return docstore.Doc{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

func (c *collection) Query(ctx context.Context, filters []docstore.Filter, order *docstore.Order) ([]docstore.Doc, error) {
	q := c.ref.Query
	for _, f := range filters {
		q = q.Where(f.Field, "==", f.Value)
	}
	if order != nil {
		dir := firestore.Asc
		if order.Desc {
			dir = firestore.Desc
		}
		q = q.OrderBy(order.Field, dir)
	}

	var docs []docstore.Doc
	iter := q.Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, mapError(c.name+".Query", err)
		}
		docs = append(docs, docstore.Doc{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return docs, nil
}

func (c *collection) Create(ctx context.Context, data map[string]interface{}) (string, error) {
	ref := c.ref.NewDoc()
	if _, err := ref.Create(ctx, data); err != nil {
		return "", mapError(c.name+".Create", err)
	}
	return ref.ID, nil
}

func (c *collection) Set(ctx context.Context, id string, data map[string]interface{}) error {
	if _, err := c.ref.Doc(id).Set(ctx, data); err != nil {
		return mapError(c.name+".Set", err)
	}
	return nil
}

func (c *collection) Update(ctx context.Context, id string, data map[string]interface{}) error {
	// firestore.Update (unlike Set with MergeAll) fails on a missing
	// document, which is what the repositories expect
	updates := make([]firestore.Update, 0, len(data))
	for field, value := range data {
		updates = append(updates, firestore.Update{Path: field, Value: value})
	}
	if _, err := c.ref.Doc(id).Update(ctx, updates); err != nil {
		return mapError(c.name+".Update", err)
	}
	return nil
}

func (c *collection) Delete(ctx context.Context, id string) error {
	if _, err := c.ref.Doc(id).Delete(ctx); err != nil {
		return mapError(c.name+".Delete", err)
	}
	return nil
}

func mapError(op string, err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return docstore.NewError(docstore.KindNotFound, op, err)
	case codes.PermissionDenied:
		return docstore.NewError(docstore.KindPermissionDenied, op, err)
	case codes.FailedPrecondition:
		return docstore.NewError(docstore.KindFailedPrecondition, op, err)
	}
	return docstore.NewError(docstore.KindUnknown, op, err)
}
