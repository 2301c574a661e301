package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/mzalendo/kazi/core"
	"github.com/mzalendo/kazi/core/project"
	"github.com/mzalendo/kazi/core/submission"
	"github.com/mzalendo/kazi/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	auth    core.IdentityProvider
	usrSvc  *user.Service
	projSvc *project.Service
	subSvc  *submission.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  adduser -name NAME -email EMAIL -role student|teacher - create an account; the password will be prompted")
	fmt.Println("  seed - load a demo teacher, student, project and submission")
	fmt.Println("  printindexes - list the composite indexes the queries need")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserName := addUserCmd.String("name", "", "The account's display name.")
	addUserEmail := addUserCmd.String("email", "", "The account's email.")
	addUserRole := addUserCmd.String("role", user.RoleStudent, "One of: student, teacher.")

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserName == "" || *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserName, *addUserEmail, string(pwd), *addUserRole)
	case "seed":
		return cli.seed()
	case "printindexes":
		cli.printIndexes()
		return nil
	default:
		cli.printUsage()
		return errHelp
	}
}
