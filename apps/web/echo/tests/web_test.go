package tests

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzalendo/kazi/core/project"
	"github.com/mzalendo/kazi/core/submission"
	"github.com/mzalendo/kazi/core/user"
	"github.com/mzalendo/kazi/storage/docstore"
)

func TestLanding(t *testing.T) {
	ta := setup(t)

	req, rec := newRequest(http.MethodGet, "/")
	ta.app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Log in")
	assert.Contains(t, rec.Body.String(), "Sign up")
}

func TestSignupAndLogin(t *testing.T) {
	ta := setup(t)

	form := url.Values{
		"name":     {"Ada"},
		"email":    {"ada@test.cd"},
		"password": {"hunter22"},
		"role":     {"student"},
	}
	req, rec := newRequest(http.MethodPost, "/signup", form)
	ta.app.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	token, ok := cookieValue(rec, "kazi_session")
	require.True(t, ok)
	require.NotEmpty(t, token)

	t.Run("dashboard routes by role", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/dashboard", token)
		ta.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/student", rec.Header().Get("Location"))
	})

	t.Run("login with the same credentials", func(t *testing.T) {
		form := url.Values{"email": {"ada@test.cd"}, "password": {"hunter22"}}
		req, rec := newRequest(http.MethodPost, "/login", form)
		ta.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	})

	t.Run("wrong password bounces to landing", func(t *testing.T) {
		form := url.Values{"email": {"ada@test.cd"}, "password": {"nope"}}
		req, rec := newRequest(http.MethodPost, "/login", form)
		ta.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
		flash, ok := cookieValue(rec, "kazi_flash")
		require.True(t, ok)
		assert.Contains(t, flash, "Incorrect")
	})

	t.Run("unauthenticated dashboard redirects to landing", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/dashboard")
		ta.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	})
}

func TestRoleGate(t *testing.T) {
	ta := setup(t)
	_, studentToken := ta.signUp(t, "Student", "stud@test.cd", user.RoleStudent)
	_, teacherToken := ta.signUp(t, "Teacher", "teach@test.cd", user.RoleTeacher)

	t.Run("student denied the teacher panel", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/teacher", studentToken)
		ta.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Access denied")
		assert.Contains(t, body, `http-equiv="refresh"`, "the notice page must bounce back on its own")
		assert.Contains(t, body, "url=/dashboard")
		assert.Contains(t, body, "Student (student)", "the topbar shows who is signed in")
		assert.NotContains(t, body, "()")
	})

	t.Run("teacher denied the student panel", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/student", teacherToken)
		ta.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "Access denied")
	})

	t.Run("profileless session is signed out", func(t *testing.T) {
		// an identity with no profile document
		_, token, err := ta.auth.SignUp(context.Background(), "ghost@test.cd", "hunter22")
		require.NoError(t, err)

		req, rec := newAuthRequest(http.MethodGet, "/teacher", token)
		ta.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
		flash, ok := cookieValue(rec, "kazi_flash")
		require.True(t, ok)
		assert.Contains(t, flash, "User")

		session, ok := cookieValue(rec, "kazi_session")
		require.True(t, ok, "the stale session cookie must be cleared")
		assert.Empty(t, session)
	})
}

func TestTeacherProjects(t *testing.T) {
	ta := setup(t)
	teacher, token := ta.signUp(t, "Teacher", "teach@test.cd", user.RoleTeacher)
	_, otherToken := ta.signUp(t, "Rival", "rival@test.cd", user.RoleTeacher)

	form := url.Values{
		"title":       {"Build a compiler"},
		"description": {"A small language of your own"},
		"due_date":    {time.Now().AddDate(0, 0, 7).Format(project.DueInputLayout)},
	}
	req, rec := newAuthRequest(http.MethodPost, "/projects", token, form)
	ta.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	projects, err := ta.projSvc.QueryByTeacher(context.Background(), teacher.UID)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	prj := projects[0]

	t.Run("panel lists the project", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/teacher", token)
		ta.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Build a compiler")
	})

	t.Run("user entered markup renders inert", func(t *testing.T) {
		form := url.Values{
			"title":       {`<script>alert("xss")</script>`},
			"description": {"does it escape"},
			"due_date":    {time.Now().AddDate(0, 0, 7).Format(project.DueInputLayout)},
		}
		req, rec := newAuthRequest(http.MethodPost, "/projects", token, form)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusSeeOther, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, "/teacher", token)
		ta.app.ServeHTTP(rec, req)

		body := rec.Body.String()
		assert.NotContains(t, body, `<script>alert`)
		assert.Contains(t, body, "&lt;script&gt;")
	})

	t.Run("edit", func(t *testing.T) {
		form := url.Values{
			"title":       {"Build a compiler, v2"},
			"description": {"Now with a type checker"},
			"due_date":    {time.Now().AddDate(0, 0, 14).Format(project.DueInputLayout)},
		}
		req, rec := newAuthRequest(http.MethodPost, "/projects/"+prj.ID, token, form)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusSeeOther, rec.Code)

		got, err := ta.projSvc.GetByID(context.Background(), prj.ID)
		require.NoError(t, err)
		assert.Equal(t, "Build a compiler, v2", got.Title)
		assert.Equal(t, teacher.UID, got.TeacherID)
	})

	t.Run("another teacher cannot edit it", func(t *testing.T) {
		form := url.Values{
			"title":       {"Hijacked"},
			"description": {"nope"},
			"due_date":    {time.Now().AddDate(0, 0, 1).Format(project.DueInputLayout)},
		}
		req, rec := newAuthRequest(http.MethodPost, "/projects/"+prj.ID, otherToken, form)
		ta.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("delete cascades", func(t *testing.T) {
		student, _ := ta.signUp(t, "Student", "stud@test.cd", user.RoleStudent)
		_, err := ta.subSvc.Submit(context.Background(), prj.ID, student.UID,
			submission.SubmitInput{Link: "https://example.com/work"}, false)
		require.NoError(t, err)

		req, rec := newAuthRequest(http.MethodPost, "/projects/"+prj.ID+"/delete", token)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusSeeOther, rec.Code)

		subs, err := ta.subSvc.QueryByProject(context.Background(), prj.ID)
		require.NoError(t, err)
		assert.Empty(t, subs)
	})
}

func TestStudentSubmitFlow(t *testing.T) {
	ta := setup(t)
	teacher, teacherToken := ta.signUp(t, "Teacher", "teach@test.cd", user.RoleTeacher)
	student, token := ta.signUp(t, "Student", "stud@test.cd", user.RoleStudent)

	prj, err := ta.projSvc.Create(context.Background(), teacher.UID, project.NewProject{
		Title:       "Essay",
		Description: "Write one",
		DueAt:       time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	t.Run("panel shows the project and the teacher", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/student", token)
		ta.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Essay")
		assert.Contains(t, body, "Teacher")
	})

	form := url.Values{
		"project_id": {prj.ID},
		"link":       {"https://example.com/v1"},
	}
	req, rec := newAuthRequest(http.MethodPost, "/submit", token, form)
	ta.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/student", rec.Header().Get("Location"))

	t.Run("resubmit asks for confirmation first", func(t *testing.T) {
		form := url.Values{
			"project_id": {prj.ID},
			"link":       {"https://example.com/v2"},
		}
		req, rec := newAuthRequest(http.MethodPost, "/submit", token, form)
		ta.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, "no overwrite without confirmation")
		body := rec.Body.String()
		assert.Contains(t, body, "already submitted")
		assert.Contains(t, body, `name="confirm" value="1"`)

		// still the old link
		sub, err := ta.subSvc.QueryByStudent(context.Background(), student.UID)
		require.NoError(t, err)
		require.Len(t, sub, 1)
		assert.Equal(t, "https://example.com/v1", sub[0].Link)
	})

	t.Run("confirmed resubmit replaces the link", func(t *testing.T) {
		form := url.Values{
			"project_id": {prj.ID},
			"link":       {"https://example.com/v2"},
			"confirm":    {"1"},
		}
		req, rec := newAuthRequest(http.MethodPost, "/submit", token, form)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusSeeOther, rec.Code)

		subs, err := ta.subSvc.QueryByStudent(context.Background(), student.UID)
		require.NoError(t, err)
		require.Len(t, subs, 1, "resubmission must update in place")
		assert.Equal(t, "https://example.com/v2", subs[0].Link)
	})

	t.Run("teacher reviews and grades", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/submissions?projectId="+prj.ID, teacherToken)
		ta.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Student")
		assert.Contains(t, body, "https://example.com/v2")
		assert.Contains(t, body, "1 total")

		subs, err := ta.subSvc.QueryByProject(context.Background(), prj.ID)
		require.NoError(t, err)
		require.Len(t, subs, 1)

		form := url.Values{
			"status":   {"graded"},
			"feedback": {"well done"},
		}
		req, rec = newAuthRequest(http.MethodPost, "/submissions/"+subs[0].ID+"/grade", teacherToken, form)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusSeeOther, rec.Code)

		graded, err := ta.subSvc.GetByID(context.Background(), subs[0].ID)
		require.NoError(t, err)
		assert.True(t, graded.IsGraded())
		assert.Equal(t, "well done", graded.Feedback)
	})

	t.Run("review without a project id bounces back", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/submissions", teacherToken)
		ta.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/teacher", rec.Header().Get("Location"))
	})
}

func TestStoreRejectionNotice(t *testing.T) {
	ta := setup(t)
	_, token := ta.signUp(t, "Teacher", "teach@test.cd", user.RoleTeacher)

	ta.store.FailNext(docstore.Projects,
		docstore.NewError(docstore.KindPermissionDenied, "projects.Query", nil))

	req, rec := newAuthRequest(http.MethodGet, "/teacher", token)
	ta.app.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "security rules")
}

func TestReviewPageTolerateMissingProfile(t *testing.T) {
	ta := setup(t)
	ctx := context.Background()
	teacher, token := ta.signUp(t, "Teacher", "teach@test.cd", user.RoleTeacher)
	alice, _ := ta.signUp(t, "Alice", "alice@test.cd", user.RoleStudent)
	ghost, _ := ta.signUp(t, "Ghost", "ghost@test.cd", user.RoleStudent)

	prj, err := ta.projSvc.Create(ctx, teacher.UID, project.NewProject{
		Title:       "Essay",
		Description: "Write one",
		DueAt:       time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	_, err = ta.subSvc.Submit(ctx, prj.ID, alice.UID,
		submission.SubmitInput{Link: "https://example.com/alice"}, false)
	require.NoError(t, err)
	_, err = ta.subSvc.Submit(ctx, prj.ID, ghost.UID,
		submission.SubmitInput{Link: "https://example.com/ghost"}, false)
	require.NoError(t, err)

	// the profile disappears behind the submission
	require.NoError(t, ta.store.Collection(docstore.Users).Delete(ctx, ghost.UID))

	req, rec := newAuthRequest(http.MethodGet, "/submissions?projectId="+prj.ID, token)
	ta.app.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Student unavailable")
	assert.Contains(t, body, "https://example.com/ghost", "the orphaned submission still shows")
	assert.Contains(t, body, "Alice", "the sibling card renders normally")
	assert.Contains(t, body, "https://example.com/alice")
}

func TestBadFormRedirect(t *testing.T) {
	ta := setup(t)
	_, token := ta.signUp(t, "Teacher", "teach@test.cd", user.RoleTeacher)

	form := url.Values{
		"title":       {"Essay"},
		"description": {"Write one"},
		"due_date":    {"not-a-date"},
	}

	t.Run("same-origin referer is honored", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/projects", token, form)
		req.Header.Set("Referer", "http://example.com/teacher")
		ta.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/teacher", rec.Header().Get("Location"))
		flash, ok := cookieValue(rec, "kazi_flash")
		require.True(t, ok)
		assert.Contains(t, flash, "due_date")
	})

	t.Run("foreign referer falls back to the dashboard", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/projects", token, form)
		req.Header.Set("Referer", "https://evil.test/phish")
		ta.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	})
}
