package docrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/mzalendo/kazi/core/project"
	"github.com/mzalendo/kazi/storage/docstore"
)

var dueDateDesc = docstore.Order{Field: "dueDate", Desc: true}

type projectRepository struct {
	coll docstore.Collection
}

var _ project.Repository = (*projectRepository)(nil) // interface compliance check

func NewProjectRepository(store docstore.Store) project.Repository {
	return &projectRepository{coll: store.Collection(docstore.Projects)}
}

func (repo *projectRepository) CreateProject(ctx context.Context, prj project.Project) (project.Project, error) {
	id, err := repo.coll.Create(ctx, map[string]interface{}{
		"title":       prj.Title,
		"description": prj.Description,
		"dueDate":     prj.DueAt,
		"teacherId":   prj.TeacherID,
		"createdAt":   prj.CreatedAt,
	})
	if err != nil {
		return project.Project{}, errors.Wrap(err, "creating project")
	}
	prj.ID = id
	return prj, nil
}

func (repo *projectRepository) GetProjectByID(ctx context.Context, id string) (project.Project, error) {
	doc, err := repo.coll.Get(ctx, id)
	if err != nil {
		if docstore.IsNotFound(err) {
			return project.Project{}, project.ErrNotFound
		}
		return project.Project{}, errors.Wrap(err, "getting project")
	}
	return projectFromDoc(doc), nil
}

func (repo *projectRepository) QueryProjectsByTeacher(ctx context.Context, teacherID string) ([]project.Project, error) {
	docs, err := docstore.QueryOrdered(ctx, repo.coll,
		[]docstore.Filter{{Field: "teacherId", Value: teacherID}}, dueDateDesc)
	if err != nil {
		return nil, errors.Wrap(err, "querying teacher projects")
	}
	return projectsFromDocs(docs), nil
}

func (repo *projectRepository) QueryAllProjects(ctx context.Context) ([]project.Project, error) {
	docs, err := docstore.QueryOrdered(ctx, repo.coll, nil, dueDateDesc)
	if err != nil {
		return nil, errors.Wrap(err, "querying all projects")
	}
	return projectsFromDocs(docs), nil
}

func (repo *projectRepository) UpdateProject(ctx context.Context, prj project.Project) (project.Project, error) {
	err := repo.coll.Update(ctx, prj.ID, map[string]interface{}{
		"title":       prj.Title,
		"description": prj.Description,
		"dueDate":     prj.DueAt,
		"updatedAt":   prj.UpdatedAt,
	})
	if err != nil {
		if docstore.IsNotFound(err) {
			return project.Project{}, project.ErrNotFound
		}
		return project.Project{}, errors.Wrap(err, "updating project")
	}
	return repo.GetProjectByID(ctx, prj.ID)
}

func (repo *projectRepository) DeleteProject(ctx context.Context, id string) error {
	return errors.Wrap(repo.coll.Delete(ctx, id), "deleting project")
}

func projectFromDoc(doc docstore.Doc) project.Project {
	return project.Project{
		ID:          doc.ID,
		Title:       stringAt(doc.Data, "title"),
		Description: stringAt(doc.Data, "description"),
		DueAt:       timeAt(doc.Data, "dueDate"),
		TeacherID:   stringAt(doc.Data, "teacherId"),
		CreatedAt:   timeAt(doc.Data, "createdAt"),
		UpdatedAt:   timeAt(doc.Data, "updatedAt"),
	}
}

func projectsFromDocs(docs []docstore.Doc) []project.Project {
	projects := make([]project.Project, 0, len(docs))
	for _, doc := range docs {
		projects = append(projects, projectFromDoc(doc))
	}
	return projects
}
