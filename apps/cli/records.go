package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/klu2500030136/lptd-app/core/mark"
	"github.com/klu2500030136/lptd-app/core/user"
	exportsvc "github.com/klu2500030136/lptd-app/services/export"
)

func (cli *commandLine) table() *tabwriter.Writer {
	return tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (cli *commandLine) runMarks(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return cli.listMarks(ctx)
	}
	switch args[0] {
	case "set":
		return cli.runSetMark(ctx, args[1:])
	case "delete":
		return cli.runDeleteMark(ctx, args[1:])
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) listMarks(ctx context.Context) error {
	usr, err := cli.currentUser(ctx)
	if err != nil {
		return err
	}
	marks, err := cli.mrkSvc.List(ctx, usr)
	if err != nil {
		return err
	}
	if len(marks) == 0 {
		fmt.Fprintln(cli.out, "No marks recorded yet.")
		return nil
	}

	tw := cli.table()
	fmt.Fprintln(tw, "ID\tSTUDENT ID\tSTUDENT\tSUBJECT\tMARKS\tCGPA")
	for _, m := range marks {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%.1f\n", m.ID, m.StudentID, m.StudentName, m.Subject, formatFloat(m.Marks), m.CGPA)
	}
	return tw.Flush()
}

func (cli *commandLine) runSetMark(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("marks set")
	id := fs.Int("id", 0, "The mark entry to edit. Omit to add a new entry.")
	studentID := fs.Int("student", 0, "The student's ID.")
	subject := fs.String("subject", "", "The subject.")
	marks := fs.Float64("marks", -1, "The marks, between 0 and 100.")
	if err := fs.Parse(args); err != nil {
		return errHelp
	}
	if *studentID == 0 || *subject == "" || *marks < 0 {
		fs.Usage()
		return errHelp
	}
	if _, err := cli.currentUser(ctx, user.CapEditMarks); err != nil {
		return err
	}

	um := mark.UpsertMark{StudentID: *studentID, Subject: *subject, Marks: *marks}
	if *id > 0 {
		um.ID = id
	}
	entry, err := cli.mrkSvc.Upsert(ctx, um)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Saved mark entry %d: %s %s = %s (CGPA %.1f)\n",
		entry.ID, entry.StudentName, entry.Subject, formatFloat(entry.Marks), entry.CGPA)
	return nil
}

func (cli *commandLine) runDeleteMark(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("marks delete")
	id := fs.Int("id", 0, "The mark entry to delete.")
	yes := fs.Bool("yes", false, "Do not ask for confirmation.")
	if err := fs.Parse(args); err != nil {
		return errHelp
	}
	if *id == 0 {
		fs.Usage()
		return errHelp
	}
	if _, err := cli.currentUser(ctx, user.CapEditMarks); err != nil {
		return err
	}

	if !*yes {
		ok, err := cli.confirm("Are you sure you want to delete this mark entry?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cli.out, "Cancelled.")
			return nil
		}
	}
	deleted, err := cli.mrkSvc.Delete(ctx, *id)
	if err != nil {
		return err
	}
	if !deleted {
		return mark.ErrNotFound
	}
	fmt.Fprintf(cli.out, "Deleted mark entry %d.\n", *id)
	return nil
}

func (cli *commandLine) listStudents(ctx context.Context) error {
	if _, err := cli.currentUser(ctx, user.CapListStudents); err != nil {
		return err
	}
	students, err := cli.usrSvc.Students(ctx)
	if err != nil {
		return err
	}

	tw := cli.table()
	fmt.Fprintln(tw, "ID\tUSERNAME\tNAME\tBRANCH")
	for _, s := range students {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.ID, s.Username, s.Name, s.Branch)
	}
	return tw.Flush()
}

func (cli *commandLine) listUsers(ctx context.Context) error {
	if _, err := cli.currentUser(ctx, user.CapViewStats); err != nil {
		return err
	}
	users, err := cli.usrSvc.All(ctx)
	if err != nil {
		return err
	}

	tw := cli.table()
	fmt.Fprintln(tw, "ID\tUSERNAME\tNAME\tROLE")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", u.ID, u.Username, u.Name, u.Role)
	}
	return tw.Flush()
}

func (cli *commandLine) stats(ctx context.Context) error {
	if _, err := cli.currentUser(ctx, user.CapViewStats); err != nil {
		return err
	}
	stats, err := cli.usrSvc.Stats(ctx)
	if err != nil {
		return err
	}

	tw := cli.table()
	fmt.Fprintf(tw, "Total users:\t%d\n", stats.Total)
	fmt.Fprintf(tw, "Admins:\t%d\n", stats.Admins)
	fmt.Fprintf(tw, "Teachers:\t%d\n", stats.Teachers)
	fmt.Fprintf(tw, "Students:\t%d\n", stats.Students)
	return tw.Flush()
}

func (cli *commandLine) performance(ctx context.Context) error {
	usr, err := cli.currentUser(ctx, user.CapViewPerformance)
	if err != nil {
		return err
	}
	perf, err := cli.mrkSvc.Performance(ctx, usr)
	if err != nil {
		return err
	}

	tw := cli.table()
	fmt.Fprintf(tw, "Overall CGPA:\t%.2f\n", perf.OverallCGPA)
	fmt.Fprintf(tw, "Average score:\t%.1f%%\n", perf.AverageScore)
	fmt.Fprintf(tw, "Subjects:\t%d\n", perf.TotalSubjects)
	if perf.TotalSubjects > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "TERM\tSUBJECT\tMARKS\tCGPA")
		for i, s := range perf.Subjects {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\n", perf.Trend[i].Label, s.Subject, formatFloat(s.Marks), perf.Trend[i].CGPA)
		}
	}
	return tw.Flush()
}

func (cli *commandLine) runExport(ctx context.Context, args []string) (err error) {
	fs := cli.newFlagSet("export")
	path := fs.String("o", "marks.xlsx", "The output file.")
	if err = fs.Parse(args); err != nil {
		return errHelp
	}
	usr, err := cli.currentUser(ctx, user.CapViewAllMarks)
	if err != nil {
		return err
	}
	marks, err := cli.mrkSvc.List(ctx, usr)
	if err != nil {
		return err
	}

	f, err := os.Create(*path)
	if err != nil {
		return err
	}
	defer func() {
		if cErr := f.Close(); err == nil {
			err = cErr
		}
	}()
	if err = exportsvc.WriteMarksXLSX(f, marks); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Exported %d mark entries to %s.\n", len(marks), *path)
	return nil
}
