package mark

import (
	"context"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/klu2500030136/lptd-app/core"
	"github.com/klu2500030136/lptd-app/core/user"
)

var (
	// errors
	ErrNotFound       = errors.New("mark entry not found")
	ErrInvalidStudent = errors.New("Please select a valid student")
	ErrInvalidMark    = errors.New("invalid mark entry")
)

type (
	Repository interface {
		// QueryMarks returns the entries matching filter in insertion order.
		QueryMarks(ctx context.Context, filter QueryFilter) ([]MarkEntry, error)
		// UpsertMark replaces the entry with the same ID in place, keeping its position.
		// If entry.ID is 0 or unmatched, a new entry is appended with the next free ID.
		UpsertMark(ctx context.Context, entry MarkEntry) (MarkEntry, error)
		// DeleteMark reports whether an entry was removed.
		DeleteMark(ctx context.Context, id int) (bool, error)
		MarksExist(ctx context.Context) (bool, error)
		// SeedMarks persists entries only if no marks are persisted yet and reports whether it did.
		SeedMarks(ctx context.Context, entries []MarkEntry) (bool, error)
	}

	// StudentFinder resolves the student a mark entry is written for.
	StudentFinder interface {
		GetByID(ctx context.Context, id int) (user.User, error)
	}

	Service struct {
		repo      Repository
		students  StudentFinder
		validator *core.Validator
	}
)

func NewService(repo Repository, students StudentFinder, v *core.Validator) (*Service, error) {
	err := vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(students, "students"),
		vala.IsNotNil(v, "validator"),
	).Check()
	if err != nil {
		return nil, err
	}
	return &Service{repo: repo, students: students, validator: v}, nil
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]MarkEntry, error) {
	return svc.repo.QueryMarks(ctx, filter)
}

// List returns the entries visible to viewer: their own for students, all of them otherwise.
func (svc *Service) List(ctx context.Context, viewer user.User) ([]MarkEntry, error) {
	switch {
	case viewer.Can(user.CapViewAllMarks):
		return svc.repo.QueryMarks(ctx, QueryFilter{})
	case viewer.Can(user.CapViewOwnMarks):
		return svc.repo.QueryMarks(ctx, QueryFilter{StudentID: viewer.ID})
	default:
		return nil, core.ErrForbidden
	}
}

// Upsert validates um and writes the derived entry.
func (svc *Service) Upsert(ctx context.Context, um UpsertMark) (MarkEntry, error) {
	um.Clean()
	if err := svc.validate(um); err != nil {
		return MarkEntry{}, err
	}

	student, err := svc.students.GetByID(ctx, um.StudentID)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return MarkEntry{}, ErrInvalidStudent
		}
		return MarkEntry{}, errors.Wrap(err, "finding student")
	}
	if !student.IsStudent() {
		return MarkEntry{}, ErrInvalidStudent
	}

	entry := MarkEntry{
		StudentID:   student.ID,
		StudentName: student.Name,
		Subject:     um.Subject,
		Marks:       um.Marks,
		Score:       um.Marks,
		CGPA:        CGPA(um.Marks),
	}
	if um.ID != nil {
		entry.ID = *um.ID
	}
	return svc.repo.UpsertMark(ctx, entry)
}

func (svc *Service) Delete(ctx context.Context, id int) (bool, error) {
	return svc.repo.DeleteMark(ctx, id)
}

// Performance aggregates the entries of student.
func (svc *Service) Performance(ctx context.Context, student user.User) (Performance, error) {
	marks, err := svc.repo.QueryMarks(ctx, QueryFilter{StudentID: student.ID})
	if err != nil {
		return Performance{}, errors.Wrap(err, "querying marks")
	}
	return ComputePerformance(marks), nil
}

func (svc *Service) MarksExist(ctx context.Context) (bool, error) {
	return svc.repo.MarksExist(ctx)
}

func (svc *Service) SeedMarks(ctx context.Context, entries []MarkEntry) (bool, error) {
	return svc.repo.SeedMarks(ctx, entries)
}

func (svc *Service) validate(um UpsertMark) error {
	err := svc.validator.Struct(um)
	if err == nil {
		return nil
	}
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Wrap(err, "validating UpsertMark")
	}
	flds := make([]core.FieldError, 0, len(vErrs))
	for _, fe := range vErrs {
		flds = append(flds, core.FieldError{Field: fe.Field(), Error: fe.Translate(svc.validator.Translator)})
	}
	return core.NewValidationError(ErrInvalidMark, flds...)
}

// ComputePerformance aggregates marks, which must all belong to one student.
func ComputePerformance(marks []MarkEntry) Performance {
	perf := Performance{
		TotalSubjects: len(marks),
		Trend:         make([]TrendPoint, 0, len(marks)),
		Subjects:      make([]SubjectMark, 0, len(marks)),
	}
	if len(marks) == 0 {
		return perf
	}

	var cgpaSum float64
	for i, m := range marks {
		cgpaSum += m.CGPA
		perf.TotalScore += m.Score
		perf.Trend = append(perf.Trend, TrendPoint{Label: termLabel(i), CGPA: m.CGPA})
		perf.Subjects = append(perf.Subjects, SubjectMark{Subject: m.Subject, Marks: m.Marks})
	}
	n := float64(len(marks))
	perf.OverallCGPA = core.Round(cgpaSum/n, 2)
	perf.AverageScore = core.Round(perf.TotalScore/n, 1)
	return perf
}

func termLabel(i int) string {
	return "Term " + strconv.Itoa(i+1)
}
