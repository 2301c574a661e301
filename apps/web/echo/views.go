package echoweb

import (
	"context"
	"sync"
	"time"

	"github.com/mzalendo/kazi/core/project"
	"github.com/mzalendo/kazi/core/submission"
	"github.com/mzalendo/kazi/core/user"
)

const (
	unknownTeacher = "Unknown Teacher"
	unknownProject = "Unknown Project"
)

type (
	// ProjectCard is a project as the student list shows it.
	ProjectCard struct {
		project.Project
		TeacherName string
		PastDue     bool
		Submitted   bool
		Submission  submission.Submission
	}

	// SubmissionRow is a submission as the student's history shows it.
	SubmissionRow struct {
		submission.Submission
		ProjectTitle string
	}

	// ReviewCard is a submission as the teacher's review page shows it. A
	// failed profile lookup fills LoadErr and leaves the rest of the page
	// intact.
	ReviewCard struct {
		submission.Submission
		StudentName  string
		StudentEmail string
		LoadErr      bool
	}

	Summary struct {
		Total   int
		Graded  int
		Pending int
	}
)

type profileDirectory interface {
	GetByUID(ctx context.Context, uid string) (user.User, error)
}

// buildProjectCards resolves each project's teacher name concurrently. Each
// goroutine writes only its own slot, so the slice needs no lock.
func buildProjectCards(
	ctx context.Context,
	projects []project.Project,
	subsByProject map[string]submission.Submission,
	users profileDirectory,
	now time.Time,
) []ProjectCard {
	cards := make([]ProjectCard, len(projects))

	var wg sync.WaitGroup
	for i, prj := range projects {
		cards[i] = ProjectCard{
			Project: prj,
			PastDue: prj.PastDue(now),
		}
		if sub, ok := subsByProject[prj.ID]; ok {
			cards[i].Submitted = true
			cards[i].Submission = sub
		}

		wg.Add(1)
		go func(i int, teacherID string) {
			defer wg.Done()
			teacher, err := users.GetByUID(ctx, teacherID)
			if err != nil {
				cards[i].TeacherName = unknownTeacher
				return
			}
			cards[i].TeacherName = teacher.Name
		}(i, prj.TeacherID)
	}
	wg.Wait()

	return cards
}

func buildSubmissionRows(subs []submission.Submission, titles map[string]string) []SubmissionRow {
	rows := make([]SubmissionRow, len(subs))
	for i, sub := range subs {
		title, ok := titles[sub.ProjectID]
		if !ok {
			title = unknownProject
		}
		rows[i] = SubmissionRow{Submission: sub, ProjectTitle: title}
	}
	return rows
}

// buildReviewCards resolves each student profile concurrently. A lookup
// failure is isolated to its own card.
func buildReviewCards(ctx context.Context, subs []submission.Submission, users profileDirectory) []ReviewCard {
	cards := make([]ReviewCard, len(subs))

	var wg sync.WaitGroup
	for i, sub := range subs {
		cards[i] = ReviewCard{Submission: sub}

		wg.Add(1)
		go func(i int, studentID string) {
			defer wg.Done()
			student, err := users.GetByUID(ctx, studentID)
			if err != nil {
				cards[i].LoadErr = true
				return
			}
			cards[i].StudentName = student.Name
			cards[i].StudentEmail = student.Email
		}(i, sub.StudentID)
	}
	wg.Wait()

	return cards
}

func summarize(subs []submission.Submission) Summary {
	s := Summary{Total: len(subs)}
	for _, sub := range subs {
		if sub.IsGraded() {
			s.Graded++
		} else {
			s.Pending++
		}
	}
	return s
}
