package timetable

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kampus/core"
	"github.com/trezcool/kampus/core/course"
	"github.com/trezcool/kampus/core/user"
)

var (
	// errors
	ErrNotFound        = errors.New("timetable entry not found")
	ErrUnauthorized    = errors.New("not allowed to manage this section's timetable")
	ErrFacultyConflict = errors.New("faculty already has a lecture in this time slot")
	ErrSectionConflict = errors.New("section already has a lecture in this time slot")
	ErrQuotaExceeded   = errors.New("faculty daily lecture limit reached")
)

type (
	Repository interface {
		CreateEntry(e Entry) (Entry, error)
		GetEntryByID(id string) (Entry, error)
		QueryEntriesBySection(sectionID string) ([]Entry, error)
		QueryActiveEntriesBySectionDay(sectionID, weekday string) ([]Entry, error)
		QueryActiveEntriesByFacultyDay(facultyID, weekday string) ([]Entry, error)
		CountSubjectRefs(subjectID string) (int, error)
		DeleteEntry(id string) error
	}

	// Sections resolves sections for scope checks.
	Sections interface {
		GetSection(id string) (course.Section, error)
	}

	// FacultyInfo resolves a faculty member's personal daily lecture cap,
	// when one is set.
	FacultyInfo interface {
		MaxLecturesPerDay(facultyUserID string) (int, error)
	}

	Service struct {
		repo    Repository
		secs    Sections
		faculty FacultyInfo
		conf    *core.Config
	}
)

func NewService(repo Repository, secs Sections, faculty FacultyInfo, conf *core.Config) *Service {
	return &Service{
		repo:    repo,
		secs:    secs,
		faculty: faculty,
		conf:    conf,
	}
}

// Schedule creates a lecture slot after checking the actor's scope, the
// faculty's and section's existing slots for overlaps, and the faculty's
// daily lecture quota. The quota is counted from active entries on the
// spot; nothing is incremented on success.
//
// A class advisor may only schedule for their own section; a coordinator
// for any section of their course. The section-overlap check runs on the
// coordinator path, the faculty-overlap and quota checks always.
func (svc *Service) Schedule(act user.Actor, ne NewEntry) (Entry, error) {
	sec, err := svc.secs.GetSection(ne.SectionID)
	if err != nil {
		return Entry{}, err
	}

	checkSection := false
	switch act.Kind {
	case user.ActorClassAdvisor:
		if act.SectionID != sec.ID {
			return Entry{}, ErrUnauthorized
		}
	case user.ActorCoordinator:
		if act.CourseID != sec.CourseID {
			return Entry{}, ErrUnauthorized
		}
		checkSection = true
	case user.ActorAdmin:
		checkSection = true
	default:
		return Entry{}, ErrUnauthorized
	}

	entry := Entry{
		SectionID: ne.SectionID,
		SubjectID: ne.SubjectID,
		FacultyID: ne.FacultyID,
		Weekday:   ne.Weekday,
		StartTime: ne.StartTime,
		EndTime:   ne.EndTime,
		Room:      ne.Room,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}

	facultyEntries, err := svc.repo.QueryActiveEntriesByFacultyDay(ne.FacultyID, ne.Weekday)
	if err != nil {
		return Entry{}, err
	}
	for _, other := range facultyEntries {
		if entry.Overlaps(other) {
			return Entry{}, ErrFacultyConflict
		}
	}

	max, err := svc.maxLectures(ne.FacultyID)
	if err != nil {
		return Entry{}, err
	}
	if len(facultyEntries) >= max {
		return Entry{}, ErrQuotaExceeded
	}

	if checkSection {
		sectionEntries, err := svc.repo.QueryActiveEntriesBySectionDay(ne.SectionID, ne.Weekday)
		if err != nil {
			return Entry{}, err
		}
		for _, other := range sectionEntries {
			if entry.Overlaps(other) {
				return Entry{}, ErrSectionConflict
			}
		}
	}

	return svc.repo.CreateEntry(entry)
}

func (svc *Service) maxLectures(facultyUserID string) (int, error) {
	max, err := svc.faculty.MaxLecturesPerDay(facultyUserID)
	if err != nil {
		return 0, errors.Wrap(err, "resolving lecture quota")
	}
	if max <= 0 {
		max = svc.conf.DefaultMaxLecturesPerDay
	}
	return max, nil
}

func (svc *Service) GetByID(id string) (Entry, error) {
	return svc.repo.GetEntryByID(id)
}

// QuerySection lists all entries of a section, active and not.
func (svc *Service) QuerySection(sectionID string) ([]Entry, error) {
	return svc.repo.QueryEntriesBySection(sectionID)
}

// ActiveEntriesOn lists a section's active entries on the given weekday.
// The attendance reconciler materializes leave rows from these.
func (svc *Service) ActiveEntriesOn(sectionID, weekday string) ([]Entry, error) {
	if !core.IsValidWeekday(weekday) {
		return nil, fmt.Errorf("invalid weekday %q", weekday)
	}
	return svc.repo.QueryActiveEntriesBySectionDay(sectionID, weekday)
}

// SubjectReferenced implements course.TimetableRef.
func (svc *Service) SubjectReferenced(subjectID string) (bool, error) {
	n, err := svc.repo.CountSubjectRefs(subjectID)
	return n > 0, err
}

// Remove deletes a lecture slot. Only a coordinator of the section's
// course (or an admin) may do it.
func (svc *Service) Remove(act user.Actor, id string) error {
	entry, err := svc.repo.GetEntryByID(id)
	if err != nil {
		return err
	}
	if !act.IsAdmin() {
		if act.Kind != user.ActorCoordinator {
			return ErrUnauthorized
		}
		sec, err := svc.secs.GetSection(entry.SectionID)
		if err != nil {
			return err
		}
		if act.CourseID != sec.CourseID {
			return ErrUnauthorized
		}
	}
	return svc.repo.DeleteEntry(id)
}
