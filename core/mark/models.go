package mark

import (
	"github.com/klu2500030136/lptd-app/core"
)

// MarkEntry is one subject mark of one student.
type MarkEntry struct {
	ID          int     `json:"id"`
	StudentID   int     `json:"studentId"`
	StudentName string  `json:"studentName"` // snapshot at write time
	Subject     string  `json:"subject"`
	Marks       float64 `json:"marks"`
	Score       float64 `json:"score"`
	CGPA        float64 `json:"cgpa"`
}

// UpsertMark contains the information needed to create or edit a MarkEntry.
// A nil or unmatched ID creates a new entry.
type UpsertMark struct {
	ID        *int    `json:"id"`
	StudentID int     `json:"studentId"`
	Subject   string  `json:"subject" validate:"required,notblank"`
	Marks     float64 `json:"marks" validate:"gte=0,lte=100"`
}

func (um *UpsertMark) Clean() {
	um.Subject = core.CleanString(um.Subject)
}

// QueryFilter narrows a marks query. Zero values match everything.
type QueryFilter struct {
	StudentID int
	Subject   string
}

// Match reports whether m satisfies the filter.
func (f QueryFilter) Match(m MarkEntry) bool {
	if f.StudentID != 0 && m.StudentID != f.StudentID {
		return false
	}
	if f.Subject != "" && m.Subject != f.Subject {
		return false
	}
	return true
}

// CGPA converts a 0-100 mark to the 0-10 scale, rounded to one decimal.
func CGPA(marks float64) float64 {
	return core.Round(marks/10, 1)
}

type (
	// Performance is a student's aggregate over their mark entries.
	Performance struct {
		TotalSubjects int           `json:"totalSubjects"`
		OverallCGPA   float64       `json:"overallCgpa"`
		TotalScore    float64       `json:"totalScore"`
		AverageScore  float64       `json:"averageScore"`
		Trend         []TrendPoint  `json:"trend"`
		Subjects      []SubjectMark `json:"subjects"`
	}

	TrendPoint struct {
		Label string  `json:"label"`
		CGPA  float64 `json:"cgpa"`
	}

	SubjectMark struct {
		Subject string  `json:"subject"`
		Marks   float64 `json:"marks"`
	}
)
