package echoweb

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/mzalendo/kazi/core"
	"github.com/mzalendo/kazi/core/project"
	"github.com/mzalendo/kazi/core/submission"
	"github.com/mzalendo/kazi/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		Auth          core.IdentityProvider
		UserSvc       *user.Service
		ProjectSvc    *project.Service
		SubmissionSvc *submission.Service
		Logger        core.Logger
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.Renderer = newPageRenderer()
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, func() {
		_ = s.Stop(context.Background())
	})
	s.app.Debug = core.Conf.Debug

	s.app.Static("/static", "assets/static")

	h := handler{
		auth:    s.opts.Auth,
		userSvc: s.opts.UserSvc,
		projSvc: s.opts.ProjectSvc,
		subSvc:  s.opts.SubmissionSvc,
		logger:  s.opts.Logger,
	}

	// un-authed pages
	s.app.GET("/", h.landing)
	s.app.POST("/signup", h.signup)
	s.app.POST("/login", h.login)
	s.app.POST("/logout", h.logout)

	// authed pages
	guard := sessionGuard(s.opts.Auth)
	ag := s.app.Group("", guard)
	ag.GET("/dashboard", h.dashboard)

	tg := ag.Group("", requireRole(user.RoleTeacher, s.opts.UserSvc, s.opts.Auth))
	tg.GET("/teacher", h.teacherPanel)
	tg.POST("/projects", h.createProject)
	tg.POST("/projects/:id", h.updateProject)
	tg.POST("/projects/:id/delete", h.deleteProject)
	tg.GET("/submissions", h.reviewSubmissions)
	tg.POST("/submissions/:id/grade", h.gradeSubmission)

	sg := ag.Group("", requireRole(user.RoleStudent, s.opts.UserSvc, s.opts.Auth))
	sg.GET("/student", h.studentPanel)
	sg.POST("/submit", h.submit)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Address))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}
