package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/klu2500030136/lptd-app/core"
	"github.com/klu2500030136/lptd-app/core/user"
)

func (cli *commandLine) runLogin(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("login")
	uname := fs.String("username", "", "The username or ID number. The password will be prompted next.")
	if err := fs.Parse(args); err != nil {
		return errHelp
	}
	if *uname == "" {
		fs.Usage()
		return errHelp
	}
	pwd, err := cli.promptPassword(fs)
	if err != nil {
		return err
	}

	res, err := cli.sess.Login(ctx, *uname, pwd)
	if err != nil {
		return err
	}
	return cli.printResult(ctx, res)
}

func (cli *commandLine) runRegister(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("register")
	var nu user.NewUser
	fs.StringVar(&nu.Name, "name", "", "Full name.")
	fs.StringVar(&nu.Username, "username", "", "Username or ID number.")
	fs.StringVar(&nu.Role, "role", user.RoleStudent.String(), "student or teacher.")
	fs.StringVar(&nu.Branch, "branch", "", "Branch, required for students.")
	if err := fs.Parse(args); err != nil {
		return errHelp
	}
	if nu.Username == "" {
		fs.Usage()
		return errHelp
	}
	pwd, err := cli.promptPassword(fs)
	if err != nil {
		return err
	}
	nu.Password = pwd

	res, err := cli.sess.Register(ctx, nu)
	if err != nil {
		var vErr *core.ValidationError
		if errors.As(err, &vErr) {
			for _, f := range vErr.Fields {
				fmt.Fprintf(cli.out, "  %s: %s\n", f.Field, f.Error)
			}
		}
		return err
	}
	return cli.printResult(ctx, res)
}

func (cli *commandLine) printResult(ctx context.Context, res user.Result) error {
	if !res.Success {
		return errors.New(res.Message)
	}
	usr, err := cli.currentUser(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Welcome %s! You are logged in as %s.\n", usr.Name, res.Role)
	return nil
}

func (cli *commandLine) whoami(ctx context.Context) error {
	usr, err := cli.currentUser(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s (%s) %s\n", usr.Username, usr.Role, usr.Name)
	return nil
}
