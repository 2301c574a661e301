package submission

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/mzalendo/kazi/core"
	"github.com/mzalendo/kazi/core/project"
	"github.com/mzalendo/kazi/core/user"
)

var (
	ErrNotFound = errors.New("submission not found")
	// ErrAlreadySubmitted is returned when a submission for the (project,
	// student) pair exists and the caller has not confirmed the overwrite.
	ErrAlreadySubmitted = errors.New("a submission for this project already exists")
)

type (
	Repository interface {
		CreateSubmission(ctx context.Context, sub Submission) (Submission, error)
		GetSubmissionByID(ctx context.Context, id string) (Submission, error)
		// GetSubmissionByProjectAndStudent returns ErrNotFound when the pair
		// has no submission yet.
		GetSubmissionByProjectAndStudent(ctx context.Context, projectID, studentID string) (Submission, error)
		// QuerySubmissionsByStudent returns the student's submissions ordered
		// by submission instant descending.
		QuerySubmissionsByStudent(ctx context.Context, studentID string) ([]Submission, error)
		// QuerySubmissionsByProject returns a project's submissions ordered
		// by submission instant descending.
		QuerySubmissionsByProject(ctx context.Context, projectID string) ([]Submission, error)
		// UpdateSubmissionLink overwrites link and submission instant only;
		// id, status and feedback are left untouched.
		UpdateSubmissionLink(ctx context.Context, id, link string, at time.Time) (Submission, error)
		// GradeSubmission overwrites status and feedback only; link, the
		// submission instant and the student identity are left untouched.
		GradeSubmission(ctx context.Context, id, status, feedback string, at time.Time) (Submission, error)
		DeleteSubmissionsByProject(ctx context.Context, projectID string) error
	}

	// Directories for the secondary lookups the graded notification needs.
	UserDirectory interface {
		GetByUID(ctx context.Context, uid string) (user.User, error)
	}
	ProjectDirectory interface {
		GetByID(ctx context.Context, id string) (project.Project, error)
	}

	Service struct {
		repo     Repository
		users    UserDirectory
		projects ProjectDirectory
		mailSvc  core.EmailService
		logger   core.Logger
	}
)

func NewService(
	repo Repository,
	users UserDirectory,
	projects ProjectDirectory,
	mailSvc core.EmailService,
	logger core.Logger,
) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		projects: projects,
		mailSvc:  mailSvc,
		logger:   logger,
	}
}

// Submit creates the student's submission for a project, or updates it in
// place when one already exists and the student confirmed the overwrite.
// The existence check and the write are not isolated from each other: two
// near-simultaneous submits can both observe "not found" and both insert.
// That race is accepted and demonstrated in the tests rather than hidden.
func (svc *Service) Submit(ctx context.Context, projectID, studentID string, in SubmitInput, confirmed bool) (Submission, error) {
	existing, err := svc.repo.GetSubmissionByProjectAndStudent(ctx, projectID, studentID)
	switch errors.Cause(err) {
	case nil:
		if !confirmed {
			return existing, ErrAlreadySubmitted
		}
		return svc.repo.UpdateSubmissionLink(ctx, existing.ID, in.Link, time.Now().UTC())
	case ErrNotFound:
		sub := Submission{
			ProjectID:   projectID,
			StudentID:   studentID,
			Link:        in.Link,
			Status:      StatusPending,
			SubmittedAt: time.Now().UTC(),
		}
		return svc.repo.CreateSubmission(ctx, sub)
	default:
		return Submission{}, errors.Wrap(err, "looking up existing submission")
	}
}

// Grade updates status and feedback and notifies the student by email.
func (svc *Service) Grade(ctx context.Context, id string, in GradeInput) (Submission, error) {
	sub, err := svc.repo.GradeSubmission(ctx, id, in.Status, in.Feedback, time.Now().UTC())
	if err != nil {
		return Submission{}, err
	}
	svc.notifyGraded(ctx, sub)
	return sub, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Submission, error) {
	return svc.repo.GetSubmissionByID(ctx, id)
}

func (svc *Service) QueryByStudent(ctx context.Context, studentID string) ([]Submission, error) {
	return svc.repo.QuerySubmissionsByStudent(ctx, studentID)
}

func (svc *Service) QueryByProject(ctx context.Context, projectID string) ([]Submission, error) {
	return svc.repo.QuerySubmissionsByProject(ctx, projectID)
}

func (svc *Service) notifyGraded(ctx context.Context, sub Submission) {
	if svc.mailSvc == nil {
		return
	}
	student, err := svc.users.GetByUID(ctx, sub.StudentID)
	if err != nil {
		svc.logger.Warn("graded notification: looking up student", err)
		return
	}
	prj, err := svc.projects.GetByID(ctx, sub.ProjectID)
	if err != nil {
		svc.logger.Warn("graded notification: looking up project", err)
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: student.Name, Address: student.Email}},
		Subject:      "Your submission has been reviewed",
		TemplateName: "submission-graded",
		TemplateData: struct {
			StudentName  string
			ProjectTitle string
			Status       string
			Feedback     string
		}{student.Name, prj.Title, sub.Status, sub.Feedback},
	})
}
