package submission

import (
	"time"

	"github.com/mzalendo/kazi/core"
)

// Submission statuses.
const (
	StatusPending = "pending"
	StatusGraded  = "graded"
)

// Submission is a student's link to their work for a project, stored in the
// `submissions` collection. At most one exists per (project, student) pair;
// resubmitting updates the same document so any feedback already attached
// survives.
type Submission struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	StudentID   string    `json:"student_id"`
	Link        string    `json:"link"`
	Status      string    `json:"status"`
	Feedback    string    `json:"feedback"` // empty means none yet
	SubmittedAt time.Time `json:"submitted_at"`
	UpdatedAt   time.Time `json:"updated_at"` // zero until first resubmit or grade
}

func (s Submission) IsGraded() bool { return s.Status == StatusGraded }

// SubmitInput is what a student provides when submitting.
type SubmitInput struct {
	Link string `json:"link" validate:"required,url"`
}

func (si *SubmitInput) Validate() error {
	si.Link = core.CleanString(si.Link)
	return core.Validate.Struct(si)
}

// GradeInput is what a teacher provides when grading.
type GradeInput struct {
	Status   string `json:"status" validate:"required,oneof=pending graded"`
	Feedback string `json:"feedback"`
}

func (gi *GradeInput) Validate() error {
	gi.Status = core.CleanString(gi.Status, true /* lower */)
	gi.Feedback = core.CleanString(gi.Feedback)
	return core.Validate.Struct(gi)
}
