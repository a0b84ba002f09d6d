package timetable

import (
	"time"

	"github.com/trezcool/kampus/core"
)

// Entry is one recurring lecture slot: a subject taught by a faculty
// member to a section on a given weekday between two times of day.
// Times are zero-padded 24h "HH:MM" strings so that lexicographic
// comparison matches time order.
type Entry struct {
	ID        string    `json:"id"`
	SectionID string    `json:"section_id"`
	SubjectID string    `json:"subject_id"`
	FacultyID string    `json:"faculty_id"` // user ID of the teaching faculty
	Weekday   string    `json:"weekday"`    // "Monday" - "Saturday"
	StartTime string    `json:"start_time"` // inclusive
	EndTime   string    `json:"end_time"`   // exclusive
	Room      string    `json:"room,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// Overlaps reports whether the entry's [start, end) interval intersects
// [start, end) of other. Touching slots (one ends when the other starts)
// do not overlap.
func (e Entry) Overlaps(other Entry) bool {
	return e.StartTime < other.EndTime && other.StartTime < e.EndTime
}

// NewEntry contains information needed to schedule a lecture slot.
type NewEntry struct {
	SectionID string `json:"section_id" validate:"required"`
	SubjectID string `json:"subject_id" validate:"required"`
	FacultyID string `json:"faculty_id" validate:"required"`
	Weekday   string `json:"weekday" validate:"required,weekday"`
	StartTime string `json:"start_time" validate:"required,clock"`
	EndTime   string `json:"end_time" validate:"required,clock"`
	Room      string `json:"room"`
}

func (ne *NewEntry) Validate() error {
	ne.Room = core.CleanString(ne.Room)
	if err := core.Validate.Struct(ne); err != nil {
		return err
	}
	// zero-padded HH:MM compares lexicographically
	if ne.EndTime <= ne.StartTime {
		return core.NewValidationError(nil, core.FieldError{Field: "end_time", Error: "end time must be after start time"})
	}
	return nil
}
