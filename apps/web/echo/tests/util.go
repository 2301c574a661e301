package tests

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	. "github.com/mzalendo/kazi/apps/web/echo"
	"github.com/mzalendo/kazi/core"
	"github.com/mzalendo/kazi/core/project"
	"github.com/mzalendo/kazi/core/submission"
	"github.com/mzalendo/kazi/core/user"
	"github.com/mzalendo/kazi/services/auth/localauth"
	emailsvc "github.com/mzalendo/kazi/services/email"
	"github.com/mzalendo/kazi/storage/docstore/memstore"
	docrepos "github.com/mzalendo/kazi/storage/repos"
)

type testApp struct {
	app     Server
	store   *memstore.Store
	auth    *localauth.Provider
	usrSvc  *user.Service
	projSvc *project.Service
	subSvc  *submission.Service
}

func setup(t *testing.T) *testApp {
	t.Helper()

	store := memstore.New(docrepos.CompositeIndexes()...)
	auth := localauth.NewProvider(store, core.Conf)

	subRepo := docrepos.NewSubmissionRepository(store)
	usrSvc := user.NewService(docrepos.NewUserRepository(store))
	projSvc := project.NewService(docrepos.NewProjectRepository(store), subRepo)
	logger := core.NewStdLogger(log.New(io.Discard, "", 0))
	subSvc := submission.NewService(subRepo, usrSvc, projSvc, emailsvc.NewConsoleServiceMock(), logger)

	app := NewServer(
		&Options{
			DisableReqLogs: true,
			Auth:           auth,
			UserSvc:        usrSvc,
			ProjectSvc:     projSvc,
			SubmissionSvc:  subSvc,
			Logger:         logger,
		},
	)
	return &testApp{
		app:     app,
		store:   store,
		auth:    auth,
		usrSvc:  usrSvc,
		projSvc: projSvc,
		subSvc:  subSvc,
	}
}

// signUp creates an account plus its profile and returns the profile and a
// session token.
func (ta *testApp) signUp(t *testing.T, name, email, role string) (user.User, string) {
	t.Helper()
	ctx := context.Background()

	ident, token, err := ta.auth.SignUp(ctx, email, "hunter22")
	if err != nil {
		t.Fatalf("signUp() auth failed: %v", err)
	}
	usr, err := ta.usrSvc.Register(ctx, ident.UID, user.NewUser{
		Name:     name,
		Email:    email,
		Password: "hunter22",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("signUp() register failed: %v", err)
	}
	return usr, token
}

func newAuthRequest(method, path, token string, form ...url.Values) (*http.Request, *httptest.ResponseRecorder) {
	var body io.Reader
	if len(form) > 0 {
		body = strings.NewReader(form[0].Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if len(form) > 0 {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "kazi_session", Value: token})
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, form ...url.Values) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", form...)
}

func cookieValue(rec *httptest.ResponseRecorder, name string) (string, bool) {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}
