package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	echoweb "github.com/mzalendo/kazi/apps/web/echo"
	"github.com/mzalendo/kazi/core"
	"github.com/mzalendo/kazi/core/project"
	"github.com/mzalendo/kazi/core/submission"
	"github.com/mzalendo/kazi/core/user"
	"github.com/mzalendo/kazi/services/auth/firebaseauth"
	"github.com/mzalendo/kazi/services/auth/localauth"
	emailsvc "github.com/mzalendo/kazi/services/email"
	logsvc "github.com/mzalendo/kazi/services/logger"
	"github.com/mzalendo/kazi/storage/docstore"
	"github.com/mzalendo/kazi/storage/docstore/firestoredb"
	"github.com/mzalendo/kazi/storage/docstore/memstore"
	docrepos "github.com/mzalendo/kazi/storage/repos"
)

func main() {
	ctx := context.Background()
	std := log.New(os.Stdout, "WEB : ", log.LstdFlags|log.Lshortfile)

	var (
		store   docstore.Store
		auth    core.IdentityProvider
		mailSvc core.EmailService
		logger  core.Logger
	)
	if core.Conf.Debug {
		// DEV runs entirely in memory
		store = memstore.New(docrepos.CompositeIndexes()...)
		auth = localauth.NewProvider(store, core.Conf)
		mailSvc = emailsvc.NewConsoleService()
		logger = core.NewStdLogger(std)
	} else {
		app, err := firebase.NewApp(ctx,
			&firebase.Config{ProjectID: core.Conf.Firebase.ProjectID},
			option.WithCredentialsFile(core.Conf.Firebase.CredentialsFile),
		)
		errAndDie(std, err)

		fsClient, err := app.Firestore(ctx)
		errAndDie(std, err)
		defer fsClient.Close()
		store = firestoredb.New(fsClient)

		auth, err = firebaseauth.NewProvider(ctx, app, core.Conf.Firebase.WebAPIKey)
		errAndDie(std, err)

		logger = logsvc.NewRollbarLogger(std, core.Conf)
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	// set up services
	userRepo := docrepos.NewUserRepository(store)
	projRepo := docrepos.NewProjectRepository(store)
	subRepo := docrepos.NewSubmissionRepository(store)

	usrSvc := user.NewService(userRepo)
	projSvc := project.NewService(projRepo, subRepo)
	subSvc := submission.NewService(subRepo, usrSvc, projSvc, mailSvc, logger)

	app := echoweb.NewServer(
		&echoweb.Options{
			Address:       core.Conf.Server.Address(),
			Auth:          auth,
			UserSvc:       usrSvc,
			ProjectSvc:    projSvc,
			SubmissionSvc: subSvc,
			Logger:        logger,
		},
	)

	// graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-shutdown
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Stop(ctx); err != nil {
			std.Printf("stopping server: %v", err)
		}
	}()

	app.Start()
}

func errAndDie(std *log.Logger, err error) {
	if err != nil {
		std.Fatal(err)
	}
}
