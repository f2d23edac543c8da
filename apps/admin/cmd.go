package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/smanielp/cactusgolf/core"
	"github.com/smanielp/cactusgolf/core/drill"
	"github.com/smanielp/cactusgolf/core/practice"
	"github.com/smanielp/cactusgolf/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db          *sqlx.DB
	conf        *core.Config
	usrSvc      *user.Service
	drillSvc    *drill.Service
	practiceSvc *practice.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS]                 - run a migration command (up, down, status, ...)")
	fmt.Println("  addadmin -name NAME                    - create the admin account; the password is prompted next")
	fmt.Println("  resetpassword -email EMAIL             - reset a user's password; the password is prompted next")
	fmt.Println("  importdrills -file PATH [-format FMT]  - bulk import drills from a json or csv file")
	fmt.Println("  seedcatalog                            - load the built-in drill catalog")
	fmt.Println("  migratelocal -email EMAIL              - move the device-local journal into the user's account")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addAdminCmd := flag.NewFlagSet("addadmin", flag.ExitOnError)
	addAdminName := addAdminCmd.String("name", "Admin", "The admin's display name. The password will be prompted next.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The user's email. The password will be prompted next.")

	importDrillsCmd := flag.NewFlagSet("importdrills", flag.ExitOnError)
	importDrillsFile := importDrillsCmd.String("file", "", "Path to the drill catalog file.")
	importDrillsFormat := importDrillsCmd.String("format", "", "File format: json or csv. Defaults to the file extension.")

	migrateLocalCmd := flag.NewFlagSet("migratelocal", flag.ExitOnError)
	migrateLocalEmail := migrateLocalCmd.String("email", "", "Email of the account receiving the local journal.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "addadmin":
		if err := addAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addAdminCmd.Usage()
			return errHelp
		}
		return cli.addAdmin(*addAdminName, pwd)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordEmail, pwd)
	case "importdrills":
		if err := importDrillsCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importDrillsFile == "" {
			importDrillsCmd.Usage()
			return errHelp
		}
		return cli.importDrills(*importDrillsFile, *importDrillsFormat)
	case "seedcatalog":
		return cli.seedCatalog()
	case "migratelocal":
		if err := migrateLocalCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *migrateLocalEmail == "" {
			migrateLocalCmd.Usage()
			return errHelp
		}
		return cli.migrateLocal(*migrateLocalEmail)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

// addAdmin ensures the configured admin account exists with the given password.
func (cli *commandLine) addAdmin(name, pwd string) error {
	ctx := context.Background()
	email := core.CleanString(cli.conf.AdminEmail, true /* lower */)

	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		_, err = cli.usrSvc.Register(ctx, user.NewUser{
			Name:            name,
			Email:           email,
			Password:        pwd,
			PasswordConfirm: pwd,
		})
		return err
	}
	return cli.setPassword(usr, pwd)
}

func (cli *commandLine) resetPassword(email, pwd string) error {
	usr, err := cli.usrSvc.GetByEmail(context.Background(), email)
	if err != nil {
		return err
	}
	return cli.setPassword(usr, pwd)
}

func (cli *commandLine) setPassword(usr user.User, pwd string) error {
	_, err := cli.usrSvc.SetPassword(context.Background(), usr, pwd)
	return err
}

func (cli *commandLine) importDrills(path, format string) error {
	if format == "" {
		format = formatFromExt(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := cli.drillSvc.Import(context.Background(), drill.ImportFormat(format), f)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d drill(s), skipped %d\n", res.Imported, res.Skipped)
	return nil
}

// migrateLocal moves the device-scoped journal and achievements into the given
// user's account.
func (cli *commandLine) migrateLocal(email string) error {
	ctx := context.Background()
	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	n, err := cli.practiceSvc.MigrateLocal(ctx, usr.ID)
	if err != nil {
		return err
	}
	fmt.Printf("migrated %d session(s)\n", n)
	return nil
}

func (cli *commandLine) seedCatalog() error {
	n, err := cli.drillSvc.Seed(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("seeded %d drill(s)\n", n)
	return nil
}

func formatFromExt(path string) string {
	if ext := filepath.Ext(path); ext != "" {
		return ext[1:]
	}
	return ""
}
