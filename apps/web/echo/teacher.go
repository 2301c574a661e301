package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mzalendo/kazi/core/project"
	"github.com/mzalendo/kazi/core/submission"
)

func (h *handler) teacherPanel(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	projects, err := h.projSvc.QueryByTeacher(ctx.Request().Context(), usr.UID)
	if err != nil {
		return errors.Wrap(err, "querying teacher projects")
	}

	return ctx.Render(http.StatusOK, "teacher", echo.Map{
		"User":     usr,
		"Projects": projects,
		"Flash":    popFlash(ctx),
	})
}

func (h *handler) createProject(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	data := project.NewProject{
		Title:       ctx.FormValue("title"),
		Description: ctx.FormValue("description"),
		Due:         ctx.FormValue("due_date"),
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if _, err := h.projSvc.Create(ctx.Request().Context(), usr.UID, data); err != nil {
		return errors.Wrap(err, "creating project")
	}

	setFlash(ctx, "Project created.")
	return ctx.Redirect(http.StatusSeeOther, "/teacher")
}

func (h *handler) updateProject(ctx echo.Context) error {
	prj, err := h.ownedProject(ctx)
	if err != nil {
		return err
	}

	data := project.UpdateProject{
		Title:       ctx.FormValue("title"),
		Description: ctx.FormValue("description"),
		Due:         ctx.FormValue("due_date"),
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if _, err := h.projSvc.Update(ctx.Request().Context(), prj.ID, data); err != nil {
		return errors.Wrap(err, "updating project")
	}

	setFlash(ctx, "Project updated.")
	return ctx.Redirect(http.StatusSeeOther, "/teacher")
}

func (h *handler) deleteProject(ctx echo.Context) error {
	prj, err := h.ownedProject(ctx)
	if err != nil {
		return err
	}

	if err := h.projSvc.Delete(ctx.Request().Context(), prj.ID); err != nil {
		return errors.Wrap(err, "deleting project")
	}

	setFlash(ctx, "Project and its submissions deleted.")
	return ctx.Redirect(http.StatusSeeOther, "/teacher")
}

func (h *handler) reviewSubmissions(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	projectID := ctx.QueryParam("projectId")
	if projectID == "" {
		setFlash(ctx, "Pick a project to review.")
		return ctx.Redirect(http.StatusSeeOther, "/teacher")
	}

	rctx := ctx.Request().Context()
	prj, err := h.projSvc.GetByID(rctx, projectID)
	if err != nil {
		if errors.Cause(err) == project.ErrNotFound {
			setFlash(ctx, "Project not found.")
			return ctx.Redirect(http.StatusSeeOther, "/teacher")
		}
		return errors.Wrap(err, "finding project")
	}
	if prj.TeacherID != usr.UID {
		return errAccessDenied
	}

	subs, err := h.subSvc.QueryByProject(rctx, prj.ID)
	if err != nil {
		return errors.Wrap(err, "querying project submissions")
	}

	return ctx.Render(http.StatusOK, "submissions", echo.Map{
		"User":       usr,
		"Project":    prj,
		"Cards":      buildReviewCards(rctx, subs, h.userSvc),
		"Summary":    summarize(subs),
		"Flash":      popFlash(ctx),
		"StatusOpts": []string{submission.StatusPending, submission.StatusGraded},
	})
}

func (h *handler) gradeSubmission(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	data := submission.GradeInput{
		Status:   ctx.FormValue("status"),
		Feedback: ctx.FormValue("feedback"),
	}
	if err := data.Validate(); err != nil {
		return err
	}

	rctx := ctx.Request().Context()
	sub, err := h.subSvc.GetByID(rctx, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == submission.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "submission not found")
		}
		return errors.Wrap(err, "finding submission")
	}

	prj, err := h.projSvc.GetByID(rctx, sub.ProjectID)
	if err != nil {
		return errors.Wrap(err, "finding submission project")
	}
	if prj.TeacherID != usr.UID {
		return errAccessDenied
	}

	if _, err := h.subSvc.Grade(rctx, sub.ID, data); err != nil {
		return errors.Wrap(err, "grading submission")
	}

	setFlash(ctx, "Feedback saved.")
	return ctx.Redirect(http.StatusSeeOther, "/submissions?projectId="+prj.ID)
}

// ownedProject loads the :id project and checks the signed-in teacher owns it.
func (h *handler) ownedProject(ctx echo.Context) (project.Project, error) {
	usr, err := getContextUser(ctx)
	if err != nil {
		return project.Project{}, err
	}

	prj, err := h.projSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == project.ErrNotFound {
			return project.Project{}, echo.NewHTTPError(http.StatusNotFound, "project not found")
		}
		return project.Project{}, errors.Wrap(err, "finding project")
	}
	if prj.TeacherID != usr.UID {
		return project.Project{}, errAccessDenied
	}
	return prj, nil
}
