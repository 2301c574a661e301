package main

import (
	"context"

	"github.com/mzalendo/kazi/core/user"
)

// addUser creates an account with the identity provider and its profile
// document in one go.
func (cli *commandLine) addUser(name, email, pwd, role string) error {
	ctx := context.Background()

	nu := user.NewUser{
		Name:     name,
		Email:    email,
		Password: pwd,
		Role:     role,
	}
	if err := nu.Validate(); err != nil {
		return err
	}

	ident, _, err := cli.auth.SignUp(ctx, nu.Email, nu.Password)
	if err != nil {
		return err
	}
	if _, err := cli.usrSvc.Register(ctx, ident.UID, nu); err != nil {
		return err
	}
	return nil
}
