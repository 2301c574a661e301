package echoweb

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mzalendo/kazi/core/submission"
)

// PendingConfirm carries the submit the student must confirm because a
// submission for that project already exists.
type PendingConfirm struct {
	ProjectID string
	Link      string
}

func (h *handler) studentPanel(ctx echo.Context) error {
	return h.renderStudentPanel(ctx, nil)
}

func (h *handler) submit(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	projectID := ctx.FormValue("project_id")
	if projectID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing project")
	}
	confirmed := ctx.FormValue("confirm") == "1"

	data := submission.SubmitInput{Link: ctx.FormValue("link")}
	if err := data.Validate(); err != nil {
		return err
	}

	_, err = h.subSvc.Submit(ctx.Request().Context(), projectID, usr.UID, data, confirmed)
	switch errors.Cause(err) {
	case nil:
		setFlash(ctx, "Submission saved.")
		return ctx.Redirect(http.StatusSeeOther, "/student")
	case submission.ErrAlreadySubmitted:
		// re-render the panel with a confirm form instead of overwriting
		return h.renderStudentPanel(ctx, &PendingConfirm{ProjectID: projectID, Link: data.Link})
	default:
		return errors.Wrap(err, "submitting")
	}
}

func (h *handler) renderStudentPanel(ctx echo.Context, confirm *PendingConfirm) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()

	projects, err := h.projSvc.QueryAll(rctx)
	if err != nil {
		return errors.Wrap(err, "querying projects")
	}
	subs, err := h.subSvc.QueryByStudent(rctx, usr.UID)
	if err != nil {
		return errors.Wrap(err, "querying student submissions")
	}

	subsByProject := make(map[string]submission.Submission, len(subs))
	for _, sub := range subs {
		subsByProject[sub.ProjectID] = sub
	}
	titles := make(map[string]string, len(projects))
	for _, prj := range projects {
		titles[prj.ID] = prj.Title
	}

	return ctx.Render(http.StatusOK, "student", echo.Map{
		"User":        usr,
		"Cards":       buildProjectCards(rctx, projects, subsByProject, h.userSvc, time.Now()),
		"Submissions": buildSubmissionRows(subs, titles),
		"Confirm":     confirm,
		"Flash":       popFlash(ctx),
	})
}
