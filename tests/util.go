package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mzalendo/kazi/core/project"
	"github.com/mzalendo/kazi/core/submission"
	"github.com/mzalendo/kazi/core/user"
)

func CreateUser(t *testing.T, repo user.Repository, name, email, role string) user.User {
	t.Helper()
	usr, err := repo.CreateUser(context.Background(), user.User{
		UID:       uuid.NewString(),
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateProject(t *testing.T, repo project.Repository, teacherID, title string, dueAt time.Time) project.Project {
	t.Helper()
	prj, err := repo.CreateProject(context.Background(), project.Project{
		Title:       title,
		Description: "description of " + title,
		DueAt:       dueAt,
		TeacherID:   teacherID,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateProject() failed: %v", err)
	}
	return prj
}

func CreateSubmission(t *testing.T, repo submission.Repository, projectID, studentID, link string, submittedAt ...time.Time) submission.Submission {
	t.Helper()
	at := time.Now().UTC()
	if len(submittedAt) > 0 {
		at = submittedAt[0].UTC()
	}
	sub, err := repo.CreateSubmission(context.Background(), submission.Submission{
		ProjectID:   projectID,
		StudentID:   studentID,
		Link:        link,
		Status:      submission.StatusPending,
		SubmittedAt: at,
	})
	if err != nil {
		t.Fatalf("CreateSubmission() failed: %v", err)
	}
	return sub
}
