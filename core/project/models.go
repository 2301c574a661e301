package project

import (
	"time"

	"github.com/pkg/errors"

	"github.com/mzalendo/kazi/core"
)

// DueInputLayout matches the browser's datetime-local input format.
const DueInputLayout = "2006-01-02T15:04"

// Project is a piece of work a teacher assigns, stored in the `projects`
// collection. Whether it is past due is never persisted; it is recomputed
// against the wall clock at render time.
type Project struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueAt       time.Time `json:"due_at"`
	TeacherID   string    `json:"teacher_id"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC; zero until first edit
}

// PastDue reports whether the due instant lies strictly before now.
func (p Project) PastDue(now time.Time) bool {
	return p.DueAt.Before(now)
}

// NewProject contains information needed to create a new Project.
// Due carries the raw form value; Validate parses it into DueAt.
type NewProject struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Due         string `json:"due_date" validate:"required"`

	DueAt time.Time `json:"-"`
}

func (np *NewProject) Validate() error {
	np.Title = core.CleanString(np.Title)
	np.Description = core.CleanString(np.Description)
	np.Due = core.CleanString(np.Due)

	if err := core.Validate.Struct(np); err != nil {
		return err
	}
	due, err := time.ParseInLocation(DueInputLayout, np.Due, time.Local)
	if err != nil {
		return core.NewValidationError(errors.New("invalid date format"),
			core.FieldError{Field: "due_date", Error: "enter a valid date and time"})
	}
	np.DueAt = due
	return nil
}

// UpdateProject defines what may be modified on an existing Project.
// All fields are required on edit, same as on create.
type UpdateProject struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Due         string `json:"due_date" validate:"required"`

	DueAt time.Time `json:"-"`
}

func (up *UpdateProject) Validate() error {
	up.Title = core.CleanString(up.Title)
	up.Description = core.CleanString(up.Description)
	up.Due = core.CleanString(up.Due)

	if err := core.Validate.Struct(up); err != nil {
		return err
	}
	due, err := time.ParseInLocation(DueInputLayout, up.Due, time.Local)
	if err != nil {
		return core.NewValidationError(errors.New("invalid date format"),
			core.FieldError{Field: "due_date", Error: "enter a valid date and time"})
	}
	up.DueAt = due
	return nil
}
