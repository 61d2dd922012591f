package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/darasa/core/content"
	"github.com/trezcool/darasa/storage/database"
)

var (
	readPasswordFunc = term.ReadPassword     // mockable
	ensureSchemaFunc = database.EnsureSchema // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db  *sql.DB
	svc *content.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  schema                                     - create missing database tables")
	fmt.Println("  createcontent -course COURSE -type TYPE    - create a course's content record")
	fmt.Println("  resetpasscode -course COURSE               - regenerate a live session passcode")
	fmt.Println("  checkpasscode -course COURSE               - verify a live session passcode")
	fmt.Println("  unlock -course COURSE [-email EMAIL]       - unlock all chapters of a course")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createContentCmd := flag.NewFlagSet("createcontent", flag.ExitOnError)
	createCourse := createContentCmd.String("course", "", "The course id.")
	createType := createContentCmd.String("type", "recorded", "The content type: recorded or live.")
	createOwner := createContentCmd.String("owner", "", "The owning user's id.")
	createScheduled := createContentCmd.String("scheduled", "", "The live session start time, RFC3339 (live content only).")

	resetPasscodeCmd := flag.NewFlagSet("resetpasscode", flag.ExitOnError)
	resetCourse := resetPasscodeCmd.String("course", "", "The course id. The new passcode is printed once.")

	checkPasscodeCmd := flag.NewFlagSet("checkpasscode", flag.ExitOnError)
	checkCourse := checkPasscodeCmd.String("course", "", "The course id. The passcode will be prompted next.")

	unlockCmd := flag.NewFlagSet("unlock", flag.ExitOnError)
	unlockCourse := unlockCmd.String("course", "", "The course id.")
	unlockEmail := unlockCmd.String("email", "", "Optional student email to notify.")

	switch args[1] {
	case "schema":
		return ensureSchemaFunc(cli.db)
	case "createcontent":
		if err := createContentCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *createCourse == "" {
			createContentCmd.Usage()
			return errHelp
		}
		return cli.createContent(*createCourse, *createType, *createOwner, *createScheduled)
	case "resetpasscode":
		if err := resetPasscodeCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetCourse == "" {
			resetPasscodeCmd.Usage()
			return errHelp
		}
		return cli.resetPasscode(*resetCourse)
	case "checkpasscode":
		if err := checkPasscodeCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *checkCourse == "" {
			checkPasscodeCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter passcode:")
		passcode, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(passcode) == 0 {
			checkPasscodeCmd.Usage()
			return errHelp
		}
		return cli.checkPasscode(*checkCourse, string(passcode))
	case "unlock":
		if err := unlockCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *unlockCourse == "" {
			unlockCmd.Usage()
			return errHelp
		}
		return cli.unlock(*unlockCourse, *unlockEmail)
	default:
		cli.printUsage()
		return errHelp
	}
}
