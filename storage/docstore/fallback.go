package docstore

import (
	"context"
	"sort"
	"time"
)

// QueryOrdered runs a filter+sort query with the missing-index fallback:
// when the compound query fails with failed-precondition, it is reissued
// once with the filters only and the full result set is sorted here using
// the same comparator. Any other error kind propagates unchanged, as does a
// failure of the retry itself.
func QueryOrdered(ctx context.Context, coll Collection, filters []Filter, order Order) ([]Doc, error) {
	docs, err := coll.Query(ctx, filters, &order)
	if err == nil {
		return docs, nil
	}
	if !IsFailedPrecondition(err) {
		return nil, err
	}

	docs, err = coll.Query(ctx, filters, nil)
	if err != nil {
		return nil, err
	}
	SortByInstant(docs, order)
	return docs, nil
}

// SortByInstant sorts docs in place by a time-valued field. A missing or
// non-instant value sorts as the epoch, matching how the hosted store ranks
// absent fields lowest.
func SortByInstant(docs []Doc, order Order) {
	sort.SliceStable(docs, func(i, j int) bool {
		ti, tj := instantAt(docs[i], order.Field), instantAt(docs[j], order.Field)
		if order.Desc {
			return tj.Before(ti)
		}
		return ti.Before(tj)
	})
}

func instantAt(doc Doc, field string) time.Time {
	switch v := doc.Data[field].(type) {
	case time.Time:
		return v
	case *time.Time:
		if v != nil {
			return *v
		}
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	}
	return time.Unix(0, 0).UTC()
}
