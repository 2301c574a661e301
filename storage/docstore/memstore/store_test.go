package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzalendo/kazi/storage/docstore"
)

func at(day int) time.Time {
	return time.Date(2024, 3, day, 12, 0, 0, 0, time.UTC)
}

func TestCollectionCRUD(t *testing.T) {
	ctx := context.Background()
	coll := New().Collection("things")

	id, err := coll.Create(ctx, map[string]interface{}{"name": "one"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := coll.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "one", doc.Data["name"])

	t.Run("get missing", func(t *testing.T) {
		_, err := coll.Get(ctx, "nope")
		assert.True(t, docstore.IsNotFound(err))
	})

	t.Run("update merges", func(t *testing.T) {
		require.NoError(t, coll.Update(ctx, id, map[string]interface{}{"size": 3}))
		doc, err := coll.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "one", doc.Data["name"])
		assert.Equal(t, 3, doc.Data["size"])
	})

	t.Run("update missing", func(t *testing.T) {
		err := coll.Update(ctx, "nope", map[string]interface{}{"size": 3})
		assert.True(t, docstore.IsNotFound(err))
	})

	t.Run("set keys explicitly", func(t *testing.T) {
		require.NoError(t, coll.Set(ctx, "uid-1", map[string]interface{}{"name": "keyed"}))
		doc, err := coll.Get(ctx, "uid-1")
		require.NoError(t, err)
		assert.Equal(t, "keyed", doc.Data["name"])
	})

	t.Run("delete is a no-op on missing", func(t *testing.T) {
		assert.NoError(t, coll.Delete(ctx, "nope"))
	})

	t.Run("returned docs are copies", func(t *testing.T) {
		doc, err := coll.Get(ctx, id)
		require.NoError(t, err)
		doc.Data["name"] = "mutated"

		again, err := coll.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "one", again.Data["name"])
	})
}

func TestCollectionQuery(t *testing.T) {
	ctx := context.Background()
	store := New(Index{Collection: "subs", Filters: []string{"studentId"}, Order: "timestamp"})
	coll := store.Collection("subs")

	seed := []map[string]interface{}{
		{"studentId": "s1", "timestamp": at(1)},
		{"studentId": "s1", "timestamp": at(5)},
		{"studentId": "s2", "timestamp": at(3)},
	}
	for _, data := range seed {
		_, err := coll.Create(ctx, data)
		require.NoError(t, err)
	}

	t.Run("filter only", func(t *testing.T) {
		docs, err := coll.Query(ctx, []docstore.Filter{{Field: "studentId", Value: "s1"}}, nil)
		require.NoError(t, err)
		assert.Len(t, docs, 2)
	})

	t.Run("indexed compound query sorts", func(t *testing.T) {
		docs, err := coll.Query(ctx,
			[]docstore.Filter{{Field: "studentId", Value: "s1"}},
			&docstore.Order{Field: "timestamp", Desc: true})
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, at(5), docs[0].Data["timestamp"])
		assert.Equal(t, at(1), docs[1].Data["timestamp"])
	})

	t.Run("unindexed compound query fails precondition", func(t *testing.T) {
		_, err := coll.Query(ctx,
			[]docstore.Filter{{Field: "studentId", Value: "s1"}},
			&docstore.Order{Field: "createdAt", Desc: true})
		assert.True(t, docstore.IsFailedPrecondition(err))
	})

	t.Run("sort only needs no index", func(t *testing.T) {
		docs, err := coll.Query(ctx, nil, &docstore.Order{Field: "timestamp", Desc: true})
		require.NoError(t, err)
		require.Len(t, docs, 3)
		assert.Equal(t, at(5), docs[0].Data["timestamp"])
	})

	t.Run("registering the index afterwards unblocks the query", func(t *testing.T) {
		store.RegisterIndex(Index{Collection: "subs", Filters: []string{"studentId"}, Order: "createdAt"})
		_, err := coll.Query(ctx,
			[]docstore.Filter{{Field: "studentId", Value: "s1"}},
			&docstore.Order{Field: "createdAt", Desc: true})
		assert.NoError(t, err)
	})
}

func TestFailNext(t *testing.T) {
	ctx := context.Background()
	store := New()
	coll := store.Collection("things")

	id, err := coll.Create(ctx, map[string]interface{}{"name": "one"})
	require.NoError(t, err)

	injected := docstore.NewError(docstore.KindPermissionDenied, "things.Get", nil)
	store.FailNext("things", injected)

	_, err = coll.Get(ctx, id)
	assert.True(t, docstore.IsPermissionDenied(err))

	// one-shot: the next call succeeds
	_, err = coll.Get(ctx, id)
	assert.NoError(t, err)
}
