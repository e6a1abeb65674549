package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/klu2500030136/lptd-app/core"
	"github.com/klu2500030136/lptd-app/core/mark"
	"github.com/klu2500030136/lptd-app/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp        = errors.New("help provided")
	errNotLoggedIn = errors.New("not logged in, run `login` first")
)

type seeder interface {
	Seed(ctx context.Context) error
}

type commandLine struct {
	sess   *user.Session
	usrSvc *user.Service
	mrkSvc *mark.Service
	seeder seeder
	out    io.Writer
	in     *bufio.Reader
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -username USERNAME                           - log in, the password is prompted next")
	fmt.Fprintln(cli.out, "  register -name NAME -username USERNAME -role student|teacher [-branch BRANCH]")
	fmt.Fprintln(cli.out, "                                                     - create an account and log in")
	fmt.Fprintln(cli.out, "  logout                                             - end the session")
	fmt.Fprintln(cli.out, "  whoami                                             - show the logged in user")
	fmt.Fprintln(cli.out, "  marks                                              - list the marks visible to you")
	fmt.Fprintln(cli.out, "  marks set [-id ID] -student ID -subject S -marks M - add or edit a mark entry (teacher)")
	fmt.Fprintln(cli.out, "  marks delete -id ID [-yes]                         - delete a mark entry (teacher)")
	fmt.Fprintln(cli.out, "  students                                           - list the students (teacher, admin)")
	fmt.Fprintln(cli.out, "  users                                              - list all users (admin)")
	fmt.Fprintln(cli.out, "  stats                                              - roster statistics (admin)")
	fmt.Fprintln(cli.out, "  performance                                        - your CGPA and trend (student)")
	fmt.Fprintln(cli.out, "  export [-o FILE]                                   - export the marks to XLSX (teacher, admin)")
	fmt.Fprintln(cli.out, "  seed                                               - populate an empty store with demo data")
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	switch args[1] {
	case "login":
		return cli.runLogin(ctx, args[2:])
	case "register":
		return cli.runRegister(ctx, args[2:])
	case "logout":
		if err := cli.sess.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "Logged out.")
		return nil
	case "whoami":
		return cli.whoami(ctx)
	case "marks":
		return cli.runMarks(ctx, args[2:])
	case "students":
		return cli.listStudents(ctx)
	case "users":
		return cli.listUsers(ctx)
	case "stats":
		return cli.stats(ctx)
	case "performance":
		return cli.performance(ctx)
	case "export":
		return cli.runExport(ctx, args[2:])
	case "seed":
		if err := cli.seeder.Seed(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "Store seeded.")
		return nil
	default:
		cli.printUsage()
		return errHelp
	}
}

// currentUser returns the session user if they hold every capability in caps.
func (cli *commandLine) currentUser(ctx context.Context, caps ...user.Capability) (user.User, error) {
	usr, ok, err := cli.sess.Current(ctx)
	if err != nil {
		return user.User{}, err
	}
	if !ok {
		return user.User{}, errNotLoggedIn
	}
	for _, c := range caps {
		if !usr.Can(c) {
			return user.User{}, core.ErrForbidden
		}
	}
	return usr, nil
}

func (cli *commandLine) promptPassword(fs *flag.FlagSet) (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		fs.Usage()
		return "", errHelp
	}
	return string(pwd), nil
}

// confirm asks a yes/no question, defaulting to no.
func (cli *commandLine) confirm(question string) (bool, error) {
	fmt.Fprintf(cli.out, "%s [y/N] ", question)
	answer, err := cli.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
