package seed

import (
	"context"
	"strconv"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/klu2500030136/lptd-app/core"
	"github.com/klu2500030136/lptd-app/core/mark"
	"github.com/klu2500030136/lptd-app/core/user"
)

const DefaultTimeout = 5 * time.Second

// ErrFetchFailure is logged when the remote roster cannot be used. It never reaches Seed's caller.
var ErrFetchFailure = errors.New("could not fetch remote roster")

type (
	// RemoteStudent is a student of the remote roster.
	RemoteStudent struct {
		ID         int    `json:"id"`
		Name       string `json:"name"`
		RollNumber string `json:"rollNumber"`
		Branch     string `json:"branch"`
		Image      string `json:"image"`
	}

	RosterSource interface {
		FetchStudents(ctx context.Context) ([]RemoteStudent, error)
	}

	RosterStore interface {
		RosterExists(ctx context.Context) (bool, error)
		SeedRoster(ctx context.Context, users []user.User) (bool, error)
	}

	MarkStore interface {
		MarksExist(ctx context.Context) (bool, error)
		SeedMarks(ctx context.Context, entries []mark.MarkEntry) (bool, error)
	}

	Seeder struct {
		users   RosterStore
		marks   MarkStore
		source  RosterSource
		logger  core.Logger
		timeout time.Duration
	}
)

func NewSeeder(users RosterStore, marks MarkStore, source RosterSource, logger core.Logger, timeout time.Duration) (*Seeder, error) {
	err := vala.BeginValidation().Validate(
		vala.IsNotNil(users, "users"),
		vala.IsNotNil(marks, "marks"),
		vala.IsNotNil(source, "source"),
		vala.IsNotNil(logger, "logger"),
	).Check()
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Seeder{users: users, marks: marks, source: source, logger: logger, timeout: timeout}, nil
}

// Seed populates the roster and the marks if they are not persisted yet.
// Existing data is never overwritten.
func (s *Seeder) Seed(ctx context.Context) error {
	exists, err := s.users.RosterExists(ctx)
	if err != nil {
		return errors.Wrap(err, "checking roster")
	}
	if !exists {
		roster := s.buildRoster(ctx)
		seeded, err := s.users.SeedRoster(ctx, roster)
		if err != nil {
			return errors.Wrap(err, "seeding roster")
		}
		if seeded {
			s.logger.Info("seeded roster", map[string]interface{}{"users": len(roster)})
		}
	}

	exists, err = s.marks.MarksExist(ctx)
	if err != nil {
		return errors.Wrap(err, "checking marks")
	}
	if !exists {
		marks := DemoMarks()
		seeded, err := s.marks.SeedMarks(ctx, marks)
		if err != nil {
			return errors.Wrap(err, "seeding marks")
		}
		if seeded {
			s.logger.Info("seeded marks", map[string]interface{}{"marks": len(marks)})
		}
	}
	return nil
}

func (s *Seeder) buildRoster(ctx context.Context) []user.User {
	roster := BuiltinUsers()

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	remote, err := s.source.FetchStudents(fetchCtx)
	if err != nil {
		s.logger.Warn("using fallback roster", errors.Wrapf(ErrFetchFailure, "%v", err))
		return append(roster, FallbackStudent())
	}
	return append(roster, s.toUsers(remote, roster)...)
}

// toUsers converts remote students, skipping any whose id or username is already taken.
// Offset ids at or below the largest existing id are rejected too.
func (s *Seeder) toUsers(remote []RemoteStudent, existing []user.User) []user.User {
	takenIDs := make(map[int]bool, len(existing)+len(remote))
	taken := make(map[string]bool, len(existing)+len(remote))
	var maxID int
	for _, u := range existing {
		takenIDs[u.ID] = true
		taken[u.Username] = true
		if u.ID > maxID {
			maxID = u.ID
		}
	}

	users := make([]user.User, 0, len(remote))
	for _, rs := range remote {
		id := rs.ID + remoteIDOffset
		if id <= maxID || takenIDs[id] {
			s.logger.Warn("skipping remote student with a conflicting id", map[string]interface{}{"id": rs.ID, "name": rs.Name})
			continue
		}
		uname := core.CleanString(rs.RollNumber)
		if uname == "" {
			uname = "student" + strconv.Itoa(id)
		}
		if taken[uname] {
			s.logger.Warn("skipping remote student with a taken username", map[string]interface{}{"id": rs.ID, "username": uname})
			continue
		}
		takenIDs[id] = true
		taken[uname] = true
		users = append(users, user.User{
			ID:       id,
			Username: uname,
			Password: studentPassword,
			Role:     user.RoleStudent,
			Name:     rs.Name,
			Branch:   rs.Branch,
		})
	}
	return users
}
