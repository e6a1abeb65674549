package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/klu2500030136/lptd-app/apps/shared"
	"github.com/klu2500030136/lptd-app/core/user"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx := context.Background()

	app, err := shared.Bootstrap(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		return 1
	}
	defer func() { _ = app.Close() }()

	sess, err := user.NewSession(ctx, app.Users, app.Sessions)
	if err != nil {
		app.Logger.Error("restoring session", err)
		return 1
	}

	// start CLI
	cli := commandLine{
		sess:   sess,
		usrSvc: app.Users,
		mrkSvc: app.Marks,
		seeder: app.Seeder,
		out:    os.Stdout,
		in:     bufio.NewReader(os.Stdin),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		return 1
	}
	return 0
}
