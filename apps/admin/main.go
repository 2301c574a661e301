package main

import (
	"context"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"github.com/mzalendo/kazi/core"
	"github.com/mzalendo/kazi/core/project"
	"github.com/mzalendo/kazi/core/submission"
	"github.com/mzalendo/kazi/core/user"
	"github.com/mzalendo/kazi/services/auth/firebaseauth"
	"github.com/mzalendo/kazi/services/auth/localauth"
	"github.com/mzalendo/kazi/storage/docstore"
	"github.com/mzalendo/kazi/storage/docstore/firestoredb"
	"github.com/mzalendo/kazi/storage/docstore/memstore"
	docrepos "github.com/mzalendo/kazi/storage/repos"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	ctx := context.Background()

	var (
		store docstore.Store
		auth  core.IdentityProvider
	)
	if core.Conf.Debug {
		store = memstore.New(docrepos.CompositeIndexes()...)
		auth = localauth.NewProvider(store, core.Conf)
	} else {
		app, err := firebase.NewApp(ctx,
			&firebase.Config{ProjectID: core.Conf.Firebase.ProjectID},
			option.WithCredentialsFile(core.Conf.Firebase.CredentialsFile),
		)
		errAndDie(err)

		fsClient, err := app.Firestore(ctx)
		errAndDie(err)
		defer fsClient.Close()
		store = firestoredb.New(fsClient)

		auth, err = firebaseauth.NewProvider(ctx, app, core.Conf.Firebase.WebAPIKey)
		errAndDie(err)
	}

	subRepo := docrepos.NewSubmissionRepository(store)
	usrSvc := user.NewService(docrepos.NewUserRepository(store))
	projSvc := project.NewService(docrepos.NewProjectRepository(store), subRepo)
	subSvc := submission.NewService(subRepo, usrSvc, projSvc, nil, core.NewStdLogger(logger))

	cli := commandLine{
		auth:    auth,
		usrSvc:  usrSvc,
		projSvc: projSvc,
		subSvc:  subSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
