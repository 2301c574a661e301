package docrepos

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/mzalendo/kazi/core/submission"
	"github.com/mzalendo/kazi/storage/docstore"
)

var submittedAtDesc = docstore.Order{Field: "timestamp", Desc: true}

type submissionRepository struct {
	coll docstore.Collection
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(store docstore.Store) submission.Repository {
	return &submissionRepository{coll: store.Collection(docstore.Submissions)}
}

func (repo *submissionRepository) CreateSubmission(ctx context.Context, sub submission.Submission) (submission.Submission, error) {
	id, err := repo.coll.Create(ctx, map[string]interface{}{
		"projectId": sub.ProjectID,
		"studentId": sub.StudentID,
		"link":      sub.Link,
		"status":    sub.Status,
		"feedback":  sub.Feedback,
		"timestamp": sub.SubmittedAt,
	})
	if err != nil {
		return submission.Submission{}, errors.Wrap(err, "creating submission")
	}
	sub.ID = id
	return sub, nil
}

func (repo *submissionRepository) GetSubmissionByID(ctx context.Context, id string) (submission.Submission, error) {
	doc, err := repo.coll.Get(ctx, id)
	if err != nil {
		if docstore.IsNotFound(err) {
			return submission.Submission{}, submission.ErrNotFound
		}
		return submission.Submission{}, errors.Wrap(err, "getting submission")
	}
	return submissionFromDoc(doc), nil
}

func (repo *submissionRepository) GetSubmissionByProjectAndStudent(ctx context.Context, projectID, studentID string) (submission.Submission, error) {
	docs, err := repo.coll.Query(ctx, []docstore.Filter{
		{Field: "projectId", Value: projectID},
		{Field: "studentId", Value: studentID},
	}, nil)
	if err != nil {
		return submission.Submission{}, errors.Wrap(err, "querying submission by project and student")
	}
	if len(docs) == 0 {
		return submission.Submission{}, submission.ErrNotFound
	}
	// more than one means the submit race fired; surface the first and let
	// grading/resubmission converge on it
	return submissionFromDoc(docs[0]), nil
}

func (repo *submissionRepository) QuerySubmissionsByStudent(ctx context.Context, studentID string) ([]submission.Submission, error) {
	docs, err := docstore.QueryOrdered(ctx, repo.coll,
		[]docstore.Filter{{Field: "studentId", Value: studentID}}, submittedAtDesc)
	if err != nil {
		return nil, errors.Wrap(err, "querying student submissions")
	}
	return submissionsFromDocs(docs), nil
}

func (repo *submissionRepository) QuerySubmissionsByProject(ctx context.Context, projectID string) ([]submission.Submission, error) {
	docs, err := docstore.QueryOrdered(ctx, repo.coll,
		[]docstore.Filter{{Field: "projectId", Value: projectID}}, submittedAtDesc)
	if err != nil {
		return nil, errors.Wrap(err, "querying project submissions")
	}
	return submissionsFromDocs(docs), nil
}

func (repo *submissionRepository) UpdateSubmissionLink(ctx context.Context, id, link string, at time.Time) (submission.Submission, error) {
	err := repo.coll.Update(ctx, id, map[string]interface{}{
		"link":      link,
		"timestamp": at,
		"updatedAt": at,
	})
	if err != nil {
		if docstore.IsNotFound(err) {
			return submission.Submission{}, submission.ErrNotFound
		}
		return submission.Submission{}, errors.Wrap(err, "updating submission link")
	}
	return repo.GetSubmissionByID(ctx, id)
}

func (repo *submissionRepository) GradeSubmission(ctx context.Context, id, status, feedback string, at time.Time) (submission.Submission, error) {
	err := repo.coll.Update(ctx, id, map[string]interface{}{
		"status":    status,
		"feedback":  feedback,
		"updatedAt": at,
	})
	if err != nil {
		if docstore.IsNotFound(err) {
			return submission.Submission{}, submission.ErrNotFound
		}
		return submission.Submission{}, errors.Wrap(err, "grading submission")
	}
	return repo.GetSubmissionByID(ctx, id)
}

// DeleteSubmissionsByProject removes every submission referencing the
// project. The deletes run concurrently and are all awaited before
// returning, so the caller can delete the parent knowing the orphan window
// has closed (absent a crash in between; the store offers no transaction
// spanning the batch).
func (repo *submissionRepository) DeleteSubmissionsByProject(ctx context.Context, projectID string) error {
	docs, err := repo.coll.Query(ctx, []docstore.Filter{{Field: "projectId", Value: projectID}}, nil)
	if err != nil {
		return errors.Wrap(err, "querying project submissions")
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for _, doc := range docs {
		doc := doc
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.coll.Delete(ctx, doc.ID); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return errors.Wrap(firstErr, "deleting submissions")
}

func submissionFromDoc(doc docstore.Doc) submission.Submission {
	sub := submission.Submission{
		ID:          doc.ID,
		ProjectID:   stringAt(doc.Data, "projectId"),
		StudentID:   stringAt(doc.Data, "studentId"),
		Link:        stringAt(doc.Data, "link"),
		Status:      stringAt(doc.Data, "status"),
		Feedback:    stringAt(doc.Data, "feedback"),
		SubmittedAt: timeAt(doc.Data, "timestamp"),
		UpdatedAt:   timeAt(doc.Data, "updatedAt"),
	}
	if sub.Status == "" {
		sub.Status = submission.StatusPending
	}
	return sub
}

func submissionsFromDocs(docs []docstore.Doc) []submission.Submission {
	subs := make([]submission.Submission, 0, len(docs))
	for _, doc := range docs {
		subs = append(subs, submissionFromDoc(doc))
	}
	return subs
}
