package project

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("project not found")

type (
	Repository interface {
		CreateProject(ctx context.Context, prj Project) (Project, error)
		GetProjectByID(ctx context.Context, id string) (Project, error)
		// QueryProjectsByTeacher returns the teacher's projects ordered by
		// due instant descending.
		QueryProjectsByTeacher(ctx context.Context, teacherID string) ([]Project, error)
		// QueryAllProjects returns every project (student view), ordered by
		// due instant descending.
		QueryAllProjects(ctx context.Context) ([]Project, error)
		UpdateProject(ctx context.Context, prj Project) (Project, error)
		DeleteProject(ctx context.Context, id string) error
	}

	// Submissions is the slice of the submission store the cascade delete
	// needs. The store enforces no referential integrity, so a project
	// delete must clear its submissions itself.
	Submissions interface {
		DeleteSubmissionsByProject(ctx context.Context, projectID string) error
	}

	Service struct {
		repo Repository
		subs Submissions
	}
)

func NewService(repo Repository, subs Submissions) *Service {
	return &Service{repo: repo, subs: subs}
}

func (svc *Service) Create(ctx context.Context, teacherID string, np NewProject) (Project, error) {
	prj := Project{
		Title:       np.Title,
		Description: np.Description,
		DueAt:       np.DueAt,
		TeacherID:   teacherID,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateProject(ctx, prj)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Project, error) {
	return svc.repo.GetProjectByID(ctx, id)
}

func (svc *Service) QueryByTeacher(ctx context.Context, teacherID string) ([]Project, error) {
	return svc.repo.QueryProjectsByTeacher(ctx, teacherID)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Project, error) {
	return svc.repo.QueryAllProjects(ctx)
}

func (svc *Service) Update(ctx context.Context, id string, up UpdateProject) (Project, error) {
	prj := Project{
		ID:          id,
		Title:       up.Title,
		Description: up.Description,
		DueAt:       up.DueAt,
		UpdatedAt:   time.Now().UTC(),
	}
	return svc.repo.UpdateProject(ctx, prj)
}

// Delete removes the project and every submission referencing it. The
// submissions go first so a failure cannot leave a live project pointing at
// half-deleted work; the two steps are still not atomic and a crash in
// between leaves orphaned submissions behind.
func (svc *Service) Delete(ctx context.Context, id string) error {
	if err := svc.subs.DeleteSubmissionsByProject(ctx, id); err != nil {
		return errors.Wrap(err, "deleting project submissions")
	}
	return svc.repo.DeleteProject(ctx, id)
}
