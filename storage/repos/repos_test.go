package docrepos_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzalendo/kazi/core/project"
	"github.com/mzalendo/kazi/core/submission"
	"github.com/mzalendo/kazi/core/user"
	"github.com/mzalendo/kazi/storage/docstore/memstore"
	docrepos "github.com/mzalendo/kazi/storage/repos"
	testutil "github.com/mzalendo/kazi/tests"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := docrepos.NewUserRepository(memstore.New())

	usr, err := repo.CreateUser(ctx, user.User{
		UID:       "auth-uid-1",
		Name:      "Ada",
		Email:     "ada@test.cd",
		Role:      user.RoleStudent,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	t.Run("profile is keyed by the auth UID", func(t *testing.T) {
		got, err := repo.GetUserByUID(ctx, "auth-uid-1")
		require.NoError(t, err)
		assert.Equal(t, usr, got)
	})

	t.Run("lookup by email", func(t *testing.T) {
		got, err := repo.GetUserByEmail(ctx, "ada@test.cd")
		require.NoError(t, err)
		assert.Equal(t, usr.UID, got.UID)
	})

	t.Run("missing profile", func(t *testing.T) {
		_, err := repo.GetUserByUID(ctx, "ghost")
		assert.Equal(t, user.ErrNotFound, err)

		_, err = repo.GetUserByEmail(ctx, "ghost@test.cd")
		assert.Equal(t, user.ErrNotFound, err)
	})
}

func TestProjectRepository(t *testing.T) {
	ctx := context.Background()
	store := memstore.New(docrepos.CompositeIndexes()...)
	repo := docrepos.NewProjectRepository(store)

	due := func(day int) time.Time { return time.Date(2024, 6, day, 17, 0, 0, 0, time.UTC) }
	first := testutil.CreateProject(t, repo, "t1", "First", due(1))
	testutil.CreateProject(t, repo, "t1", "Second", due(10))
	testutil.CreateProject(t, repo, "t2", "Other", due(5))

	t.Run("query by teacher orders by due descending", func(t *testing.T) {
		projects, err := repo.QueryProjectsByTeacher(ctx, "t1")
		require.NoError(t, err)
		require.Len(t, projects, 2)
		assert.Equal(t, "Second", projects[0].Title)
		assert.Equal(t, "First", projects[1].Title)
	})

	t.Run("query all spans teachers", func(t *testing.T) {
		projects, err := repo.QueryAllProjects(ctx)
		require.NoError(t, err)
		require.Len(t, projects, 3)
		assert.Equal(t, "Second", projects[0].Title)
		assert.Equal(t, "Other", projects[1].Title)
		assert.Equal(t, "First", projects[2].Title)
	})

	t.Run("update merges and keeps creation fields", func(t *testing.T) {
		got, err := repo.UpdateProject(ctx, project.Project{
			ID:          first.ID,
			Title:       "First, revised",
			Description: "new brief",
			DueAt:       due(3),
			UpdatedAt:   time.Now().UTC(),
		})
		require.NoError(t, err)
		assert.Equal(t, "First, revised", got.Title)
		assert.Equal(t, "t1", got.TeacherID, "the owner survives an edit")
		assert.True(t, got.CreatedAt.Equal(first.CreatedAt))
		assert.False(t, got.UpdatedAt.IsZero())
	})

	t.Run("update missing", func(t *testing.T) {
		_, err := repo.UpdateProject(ctx, project.Project{ID: "ghost", Title: "x"})
		assert.Equal(t, project.ErrNotFound, err)
	})

	t.Run("fallback without a composite index", func(t *testing.T) {
		bare := docrepos.NewProjectRepository(memstore.New()) // no indexes registered
		testutil.CreateProject(t, bare, "t1", "Early", due(2))
		testutil.CreateProject(t, bare, "t1", "Late", due(20))

		projects, err := bare.QueryProjectsByTeacher(ctx, "t1")
		require.NoError(t, err)
		require.Len(t, projects, 2)
		assert.Equal(t, "Late", projects[0].Title, "order holds even when sorted in memory")
	})
}

func TestSubmissionRepository(t *testing.T) {
	ctx := context.Background()
	store := memstore.New(docrepos.CompositeIndexes()...)
	repo := docrepos.NewSubmissionRepository(store)

	sub := testutil.CreateSubmission(t, repo, "p1", "s1", "https://example.com/work")
	testutil.CreateSubmission(t, repo, "p1", "s2", "https://example.com/other")
	testutil.CreateSubmission(t, repo, "p2", "s1", "https://example.com/elsewhere")

	t.Run("pair lookup", func(t *testing.T) {
		got, err := repo.GetSubmissionByProjectAndStudent(ctx, "p1", "s1")
		require.NoError(t, err)
		assert.Equal(t, sub.ID, got.ID)

		_, err = repo.GetSubmissionByProjectAndStudent(ctx, "p1", "ghost")
		assert.Equal(t, submission.ErrNotFound, err)
	})

	t.Run("empty status reads as pending", func(t *testing.T) {
		id, err := store.Collection("submissions").Create(ctx, map[string]interface{}{
			"projectId": "p3",
			"studentId": "s1",
			"link":      "https://example.com/legacy",
			"timestamp": time.Now().UTC(),
		})
		require.NoError(t, err)

		got, err := repo.GetSubmissionByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, submission.StatusPending, got.Status)
	})

	t.Run("update link leaves grade alone", func(t *testing.T) {
		_, err := repo.GradeSubmission(ctx, sub.ID, submission.StatusGraded, "ok", time.Now().UTC())
		require.NoError(t, err)

		at := time.Now().UTC()
		got, err := repo.UpdateSubmissionLink(ctx, sub.ID, "https://example.com/v2", at)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/v2", got.Link)
		assert.Equal(t, submission.StatusGraded, got.Status)
		assert.Equal(t, "ok", got.Feedback)
		assert.True(t, got.SubmittedAt.Equal(at))
	})

	t.Run("cascade delete clears only the project", func(t *testing.T) {
		require.NoError(t, repo.DeleteSubmissionsByProject(ctx, "p1"))

		left, err := repo.QuerySubmissionsByProject(ctx, "p1")
		require.NoError(t, err)
		assert.Empty(t, left)

		kept, err := repo.QuerySubmissionsByProject(ctx, "p2")
		require.NoError(t, err)
		assert.Len(t, kept, 1)
	})
}
