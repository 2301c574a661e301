package docrepos

import (
	"github.com/mzalendo/kazi/storage/docstore"
	"github.com/mzalendo/kazi/storage/docstore/memstore"
)

// CompositeIndexes lists the composite indexes the compound queries above
// rely on. The in-memory store takes them at construction; against the
// hosted store they must be declared in the deployment console, and until
// they are, the query shim falls back to sorting in memory.
func CompositeIndexes() []memstore.Index {
	return []memstore.Index{
		{Collection: docstore.Projects, Filters: []string{"teacherId"}, Order: "dueDate"},
		{Collection: docstore.Submissions, Filters: []string{"studentId"}, Order: "timestamp"},
		{Collection: docstore.Submissions, Filters: []string{"projectId"}, Order: "timestamp"},
	}
}
