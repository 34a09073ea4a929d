package main

import (
	"context"
	"fmt"
	"io"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trezcool/avaliacao/core/user"
	"github.com/trezcool/avaliacao/storage/database"
)

var (
	readPasswordFunc  = term.ReadPassword      // mockable
	runMigrationsFunc = database.RunMigrations // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db     *sqlx.DB
	engine string
	usrSvc user.Service
	out    io.Writer
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Avaliacao administration tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errHelp
		},
	}
	root.SetOut(cli.out)
	root.SetErr(cli.out)

	root.AddCommand(
		cli.migrateCmd(),
		cli.addUserCmd(),
		cli.resetPasswordCmd(),
	)
	return root
}

// run executes the command line; args[0] is the program name.
func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	root.SetArgs(args[1:])
	return root.ExecuteContext(context.Background())
}

func (cli *commandLine) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate COMMAND [ARGS...]",
		Short: "Run a goose migration command (up, up-by-one, up-to, down, down-to, redo, reset, status, version, fix)",
		// goose owns the arguments, e.g. `migrate up-to 2`
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Help()
				return errHelp
			}
			return runMigrationsFunc(cmd.Context(), cli.db.DB, cli.engine, args[0], args[1:]...)
		},
	}
}

func (cli *commandLine) addUserCmd() *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create an active user. The password will be prompted next.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" || email == "" {
				_ = cmd.Usage()
				return errHelp
			}
			pwd, confirm, err := cli.promptPassword(cmd)
			if err != nil {
				return err
			}
			usr, err := cli.usrSvc.Create(cmd.Context(), user.NewUser{
				Name:            name,
				Email:           email,
				Password:        pwd,
				PasswordConfirm: confirm,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "user %s <%s> created\n", usr.ID, usr.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "The user's full name")
	cmd.Flags().StringVar(&email, "email", "", "The user's email, used to log in")
	return cmd
}

func (cli *commandLine) resetPasswordCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "resetpassword",
		Short: "Reset a user's password. The password will be prompted next.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				_ = cmd.Usage()
				return errHelp
			}
			pwd, confirm, err := cli.promptPassword(cmd)
			if err != nil {
				return err
			}
			return cli.usrSvc.ResetPassword(cmd.Context(), user.ResetPassword{
				Email:           email,
				Password:        pwd,
				PasswordConfirm: confirm,
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "The user's email")
	return cmd
}

func (cli *commandLine) promptPassword(cmd *cobra.Command) (pwd, confirm string, err error) {
	read := func(prompt string) (string, error) {
		fmt.Fprint(cli.out, prompt)
		b, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		return string(b), err
	}

	if pwd, err = read("Enter password:"); err != nil {
		return "", "", err
	}
	if pwd == "" {
		_ = cmd.Usage()
		return "", "", errHelp
	}
	if confirm, err = read("Confirm password:"); err != nil {
		return "", "", err
	}
	return pwd, confirm, nil
}
