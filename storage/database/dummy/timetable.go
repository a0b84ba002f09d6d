package dummydb

import (
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/kampus/core/timetable"
)

type timetableRepository struct {
	db *timetableTable
}

var _ timetable.Repository = (*timetableRepository)(nil) // interface compliance check

func NewTimetableRepository(db *DB) timetable.Repository {
	return &timetableRepository{db: db.timetable}
}

func (repo *timetableRepository) CreateEntry(e timetable.Entry) (timetable.Entry, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	e.ID = uuid.New().String()
	repo.db.table[e.ID] = &e
	return e, nil
}

func (repo *timetableRepository) GetEntryByID(id string) (timetable.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if e, ok := repo.db.table[id]; ok {
		return *e, nil
	}
	return timetable.Entry{}, timetable.ErrNotFound
}

func (repo *timetableRepository) QueryEntriesBySection(sectionID string) ([]timetable.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var entries []timetable.Entry
	for _, e := range repo.db.table {
		if e.SectionID == sectionID {
			entries = append(entries, *e)
		}
	}
	sortEntries(entries)
	return entries, nil
}

func (repo *timetableRepository) QueryActiveEntriesBySectionDay(sectionID, weekday string) ([]timetable.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var entries []timetable.Entry
	for _, e := range repo.db.table {
		if e.IsActive && e.SectionID == sectionID && e.Weekday == weekday {
			entries = append(entries, *e)
		}
	}
	sortEntries(entries)
	return entries, nil
}

func (repo *timetableRepository) QueryActiveEntriesByFacultyDay(facultyID, weekday string) ([]timetable.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var entries []timetable.Entry
	for _, e := range repo.db.table {
		if e.IsActive && e.FacultyID == facultyID && e.Weekday == weekday {
			entries = append(entries, *e)
		}
	}
	sortEntries(entries)
	return entries, nil
}

func (repo *timetableRepository) CountSubjectRefs(subjectID string) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var n int
	for _, e := range repo.db.table {
		if e.SubjectID == subjectID {
			n++
		}
	}
	return n, nil
}

func (repo *timetableRepository) DeleteEntry(id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return timetable.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}

func sortEntries(entries []timetable.Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].StartTime < entries[j].StartTime })
}
