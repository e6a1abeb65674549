package seed

import (
	"github.com/klu2500030136/lptd-app/core/mark"
	"github.com/klu2500030136/lptd-app/core/user"
)

const (
	// remote student ids are shifted to stay clear of the built-in users
	remoteIDOffset = 100

	studentPassword = "student"
)

// BuiltinUsers are seeded regardless of the remote roster outcome.
func BuiltinUsers() []user.User {
	return []user.User{
		{ID: 1, Username: "admin", Password: "admin", Role: user.RoleAdmin, Name: "System Admin"},
		{ID: 2, Username: "teacher", Password: "teacher", Role: user.RoleTeacher, Name: "Mr. Smith"},
	}
}

// FallbackStudent replaces the remote roster when it cannot be fetched.
func FallbackStudent() user.User {
	return user.User{ID: 3, Username: "student", Password: studentPassword, Role: user.RoleStudent, Name: "John Doe"}
}

// DemoMarks are seeded when no marks are persisted.
func DemoMarks() []mark.MarkEntry {
	return []mark.MarkEntry{
		demoMark(1, "Mathematics", 85),
		demoMark(2, "Physics", 78),
		demoMark(3, "Chemistry", 92),
	}
}

func demoMark(id int, subject string, marks float64) mark.MarkEntry {
	return mark.MarkEntry{
		ID:          id,
		StudentID:   101,
		StudentName: "Arjun Reddy",
		Subject:     subject,
		Marks:       marks,
		Score:       marks,
		CGPA:        mark.CGPA(marks),
	}
}
