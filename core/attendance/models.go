package attendance

import "time"

// Statuses
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLeave   = "leave"
)

// Attendance is one student's mark for one subject on one calendar day.
// At most one record per (student, subject, date) is authoritative;
// re-marking replaces prior rows instead of updating them.
type Attendance struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	SubjectID string    `json:"subject_id"`
	SectionID string    `json:"section_id"`
	Date      time.Time `json:"date"` // calendar day, midnight UTC
	Status    string    `json:"status"`
	MarkedBy  string    `json:"marked_by"` // user ID of the marker
	CreatedAt time.Time `json:"created_at"`
}

func ValidStatus(s string) bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLeave:
		return true
	}
	return false
}

// SubjectSummary aggregates a student's marks for one subject.
type SubjectSummary struct {
	SubjectID  string  `json:"subject_id"`
	Total      int     `json:"total"`
	Present    int     `json:"present"`
	Absent     int     `json:"absent"`
	Leave      int     `json:"leave"`
	Percentage float64 `json:"percentage"` // present / total * 100
}
