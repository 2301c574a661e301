package main

import (
	"context"
	"fmt"
	"time"

	"github.com/mzalendo/kazi/core/project"
	"github.com/mzalendo/kazi/core/submission"
	"github.com/mzalendo/kazi/core/user"
)

// seed loads a small demo data set into the configured store: a teacher with
// two projects (one already past due), a student, and one pending
// submission. Handy for a fresh environment.
func (cli *commandLine) seed() error {
	ctx := context.Background()

	teacher, err := cli.seedUser(ctx, "Demo Teacher", "teacher@example.com", user.RoleTeacher)
	if err != nil {
		return err
	}
	student, err := cli.seedUser(ctx, "Demo Student", "student@example.com", user.RoleStudent)
	if err != nil {
		return err
	}

	now := time.Now()
	open := project.NewProject{
		Title:       "Build a portfolio site",
		Description: "Ship a small site that presents three past projects.",
		Due:         now.AddDate(0, 0, 14).Format(project.DueInputLayout),
	}
	if err := open.Validate(); err != nil {
		return err
	}
	openPrj, err := cli.projSvc.Create(ctx, teacher.UID, open)
	if err != nil {
		return err
	}

	closed := project.NewProject{
		Title:       "Command line quiz",
		Description: "A terminal quiz game with at least ten questions.",
		Due:         now.AddDate(0, 0, -7).Format(project.DueInputLayout),
	}
	if err := closed.Validate(); err != nil {
		return err
	}
	if _, err := cli.projSvc.Create(ctx, teacher.UID, closed); err != nil {
		return err
	}

	in := submission.SubmitInput{Link: "https://github.com/demo-student/portfolio"}
	if err := in.Validate(); err != nil {
		return err
	}
	if _, err := cli.subSvc.Submit(ctx, openPrj.ID, student.UID, in, false); err != nil {
		return err
	}

	fmt.Println("seeded demo teacher, student, projects and submission")
	return nil
}

func (cli *commandLine) seedUser(ctx context.Context, name, email, role string) (user.User, error) {
	if usr, err := cli.usrSvc.GetByEmail(ctx, email); err == nil {
		return usr, nil
	}

	ident, _, err := cli.auth.SignUp(ctx, email, "changeme123")
	if err != nil {
		return user.User{}, err
	}
	return cli.usrSvc.Register(ctx, ident.UID, user.NewUser{
		Name:     name,
		Email:    email,
		Password: "changeme123",
		Role:     role,
	})
}
