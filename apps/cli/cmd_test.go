package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/klu2500030136/lptd-app/core"
	"github.com/klu2500030136/lptd-app/core/mark"
	"github.com/klu2500030136/lptd-app/core/seed"
	"github.com/klu2500030136/lptd-app/core/user"
	logsvc "github.com/klu2500030136/lptd-app/services/logger"
	testutil "github.com/klu2500030136/lptd-app/tests"
)

type offlineRoster struct{}

func (*offlineRoster) FetchStudents(context.Context) ([]seed.RemoteStudent, error) {
	return nil, errors.New("offline")
}

type fixture struct {
	env     *testutil.Env
	cli     *commandLine
	out     *bytes.Buffer
	admin   user.User
	teacher user.User
	student user.User
}

func setup(t *testing.T) *fixture {
	env := testutil.NewEnv(t)
	sess, err := user.NewSession(context.Background(), env.UserSvc, env.Sessions)
	require.NoError(t, err)
	seeder, err := seed.NewSeeder(env.UserSvc, env.MarkSvc, &offlineRoster{}, logsvc.NewNopLogger(), 0)
	require.NoError(t, err)

	fx := &fixture{env: env, out: new(bytes.Buffer)}
	fx.admin = testutil.CreateUser(t, env.UserRepo, "System Admin", "admin", "admin", user.RoleAdmin)
	fx.teacher = testutil.CreateUser(t, env.UserRepo, "Mr. Smith", "teacher", "teacher", user.RoleTeacher)
	fx.student = testutil.CreateUser(t, env.UserRepo, "Arjun Reddy", "2100030001", "student", user.RoleStudent, "CSE")

	// start CLI
	fx.cli = &commandLine{
		sess:   sess,
		usrSvc: env.UserSvc,
		mrkSvc: env.MarkSvc,
		seeder: seeder,
		out:    fx.out,
		in:     bufio.NewReader(strings.NewReader("")),
	}
	return fx
}

// login logs uname in, using uname as the password.
func (fx *fixture) login(t *testing.T, uname string) {
	t.Helper()
	mockPassword(uname)
	require.NoError(t, fx.cli.run([]string{"cli", "login", "-username", uname}))
	fx.out.Reset()
}

func mockPassword(pwd string) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte(pwd), nil
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func checkErr(t *testing.T, tt cliTest, err error) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Equal(t, tt.wantErrStr, err.Error())
		}
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_usage(t *testing.T) {
	fx := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "unknown marks subcommand", args: []string{"marks", "lol"}, wantErr: errHelp},
		{name: "login without username", args: []string{"login"}, wantErr: errHelp},
		{name: "bad flag", args: []string{"login", "-user", "x"}, wantErr: errHelp},
		{name: "marks set without subject", args: []string{"marks", "set", "-student", "3", "-marks", "50"}, wantErr: errHelp},
		{name: "marks delete without id", args: []string{"marks", "delete"}, wantErr: errHelp},
		{name: "whoami logged out", args: []string{"whoami"}, wantErr: errNotLoggedIn},
		{name: "marks logged out", args: []string{"marks"}, wantErr: errNotLoggedIn},
	}
	for _, tt := range tests {
		args := append([]string{"cli"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, fx.cli.run(args))
		})
	}
}

func Test_commandLine_login(t *testing.T) {
	fx := setup(t)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no password", args: []string{"login", "-username", "admin"}, wantErr: errHelp},
		{name: "wrong password", args: []string{"login", "-username", "admin"}, extra: extra{pwd: "nope"}, wantErrStr: "Invalid credentials"},
		{name: "unknown user", args: []string{"login", "-username", "root"}, extra: extra{pwd: "admin"}, wantErrStr: "Invalid credentials"},
		{name: "admin", args: []string{"login", "-username", "admin"}, extra: extra{pwd: "admin"}},
		{name: "student", args: []string{"login", "-username", "2100030001"}, extra: extra{pwd: "student"}},
	}
	for _, tt := range tests {
		args := append([]string{"cli"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, fx.cli.run(args))
		})
	}

	fx.out.Reset()
	require.NoError(t, fx.cli.run([]string{"cli", "whoami"}))
	assert.Equal(t, "2100030001 (student) Arjun Reddy\n", fx.out.String())

	require.NoError(t, fx.cli.run([]string{"cli", "logout"}))
	assert.Equal(t, errNotLoggedIn, fx.cli.run([]string{"cli", "whoami"}))
}

func Test_commandLine_register(t *testing.T) {
	fx := setup(t)
	mockPassword("pwd")

	tests := []cliTest{
		{name: "no username", args: []string{"register", "-name", "Jane"}, wantErr: errHelp},
		{name: "missing name", args: []string{"register", "-username", "jane", "-branch", "CSE"}, wantErrStr: "Please fill in all required fields"},
		{name: "student without branch", args: []string{"register", "-name", "Jane", "-username", "jane"}, wantErrStr: "Please specify your branch"},
		{name: "admin role", args: []string{"register", "-name", "Jane", "-username", "jane", "-role", "admin"}, wantErrStr: "Please choose the student or teacher role"},
		{name: "duplicate", args: []string{"register", "-name", "Jane", "-username", "teacher", "-role", "teacher"}, wantErrStr: "Username/ID Number already exists"},
		{name: "student", args: []string{"register", "-name", "Jane", "-username", "jane", "-branch", "ECE"}},
	}
	for _, tt := range tests {
		args := append([]string{"cli"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, fx.cli.run(args))
		})
	}

	assert.Contains(t, fx.out.String(), "Welcome Jane! You are logged in as student.")
	users, err := fx.env.UserSvc.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 4)
}

func Test_commandLine_marks(t *testing.T) {
	ctx := context.Background()
	fx := setup(t)
	fx.login(t, "teacher")

	tests := []cliTest{
		{name: "add", args: []string{"marks", "set", "-student", "3", "-subject", "Mathematics", "-marks", "85"}},
		{name: "add zero", args: []string{"marks", "set", "-student", "3", "-subject", "Physics", "-marks", "0"}},
		{name: "edit", args: []string{"marks", "set", "-id", "2", "-student", "3", "-subject", "Physics", "-marks", "78"}},
		{name: "not a student", args: []string{"marks", "set", "-student", "2", "-subject", "Physics", "-marks", "50"}, wantErr: mark.ErrInvalidStudent},
		{name: "out of range", args: []string{"marks", "set", "-student", "3", "-subject", "Physics", "-marks", "150"}, wantErrStr: "invalid mark entry"},
		{name: "delete unknown", args: []string{"marks", "delete", "-id", "9", "-yes"}, wantErr: mark.ErrNotFound},
	}
	for _, tt := range tests {
		args := append([]string{"cli"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, fx.cli.run(args))
		})
	}

	marks, err := fx.env.MarkSvc.Query(ctx, mark.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, marks, 2)
	assert.Equal(t, mark.MarkEntry{ID: 2, StudentID: 3, StudentName: "Arjun Reddy", Subject: "Physics", Marks: 78, Score: 78, CGPA: 7.8}, marks[1])

	fx.out.Reset()
	require.NoError(t, fx.cli.run([]string{"cli", "marks"}))
	assert.Contains(t, fx.out.String(), "Mathematics")
	assert.Contains(t, fx.out.String(), "7.8")

	// students cannot edit
	fx.login(t, "2100030001")
	assert.Equal(t, core.ErrForbidden, fx.cli.run([]string{"cli", "marks", "set", "-student", "3", "-subject", "Art", "-marks", "99"}))
	assert.Equal(t, core.ErrForbidden, fx.cli.run([]string{"cli", "marks", "delete", "-id", "1", "-yes"}))
}

func Test_commandLine_deleteConfirm(t *testing.T) {
	ctx := context.Background()
	fx := setup(t)
	m1 := testutil.CreateMark(t, fx.env.MarkRepo, fx.student, "Mathematics", 85)
	fx.login(t, "teacher")

	tests := []cliTest{
		{name: "declined", args: []string{"marks", "delete", "-id", "1"}, extra: "n\n"},
		{name: "no answer", args: []string{"marks", "delete", "-id", "1"}, extra: ""},
		{name: "confirmed", args: []string{"marks", "delete", "-id", "1"}, extra: "y\n"},
		{name: "replay", args: []string{"marks", "delete", "-id", "1", "-yes"}, wantErr: mark.ErrNotFound},
	}
	for _, tt := range tests {
		args := append([]string{"cli"}, tt.args...)
		answer, _ := tt.extra.(string)
		fx.cli.in = bufio.NewReader(strings.NewReader(answer))

		t.Run(tt.name, func(t *testing.T) {
			fx.out.Reset()
			checkErr(t, tt, fx.cli.run(args))

			marks, err := fx.env.MarkSvc.Query(ctx, mark.QueryFilter{})
			require.NoError(t, err)
			if tt.name == "declined" || tt.name == "no answer" {
				assert.Contains(t, fx.out.String(), "Are you sure you want to delete this mark entry? [y/N]")
				assert.Equal(t, []mark.MarkEntry{m1}, marks)
			} else {
				assert.Empty(t, marks)
			}
		})
	}
}

func Test_commandLine_dashboards(t *testing.T) {
	fx := setup(t)
	testutil.CreateMark(t, fx.env.MarkRepo, fx.student, "Mathematics", 85)
	testutil.CreateMark(t, fx.env.MarkRepo, fx.student, "Physics", 78)

	fx.login(t, "admin")
	tests := []cliTest{
		{name: "admin stats", args: []string{"stats"}, extra: "Total users:  3"},
		{name: "admin users", args: []string{"users"}, extra: "teacher"},
		{name: "admin students", args: []string{"students"}, extra: "CSE"},
		{name: "admin performance", args: []string{"performance"}, wantErr: core.ErrForbidden},
	}
	for _, tt := range tests {
		args := append([]string{"cli"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			fx.out.Reset()
			checkErr(t, tt, fx.cli.run(args))
			if want, ok := tt.extra.(string); ok {
				assert.Contains(t, fx.out.String(), want)
			}
		})
	}

	fx.login(t, "2100030001")
	fx.out.Reset()
	require.NoError(t, fx.cli.run([]string{"cli", "performance"}))
	assert.Regexp(t, `Overall CGPA:\s+8\.15`, fx.out.String())
	assert.Contains(t, fx.out.String(), "Term 2")
	assert.Equal(t, core.ErrForbidden, fx.cli.run([]string{"cli", "stats"}))
	assert.Equal(t, core.ErrForbidden, fx.cli.run([]string{"cli", "students"}))
}

func Test_commandLine_export(t *testing.T) {
	fx := setup(t)
	testutil.CreateMark(t, fx.env.MarkRepo, fx.student, "Mathematics", 85)
	fx.login(t, "teacher")

	path := filepath.Join(t.TempDir(), "marks.xlsx")
	require.NoError(t, fx.cli.run([]string{"cli", "export", "-o", path}))
	assert.Contains(t, fx.out.String(), "Exported 1 mark entries")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows("Marks")
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	fx.login(t, "2100030001")
	assert.Equal(t, core.ErrForbidden, fx.cli.run([]string{"cli", "export", "-o", path}))
}

func Test_commandLine_seed(t *testing.T) {
	ctx := context.Background()
	fx := setup(t)

	// the roster exists already, only the demo marks are added
	require.NoError(t, fx.cli.run([]string{"cli", "seed"}))
	require.NoError(t, fx.cli.run([]string{"cli", "seed"}))

	users, err := fx.env.UserSvc.All(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)
	marks, err := fx.env.MarkSvc.Query(ctx, mark.QueryFilter{})
	require.NoError(t, err)
	assert.Len(t, marks, 3)
}
