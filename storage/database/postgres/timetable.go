package postgres

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/kampus/core/timetable"
)

type timetableRepository struct {
	db *sqlx.DB
}

var _ timetable.Repository = (*timetableRepository)(nil) // interface compliance check

func NewTimetableRepository(db *sqlx.DB) timetable.Repository {
	return &timetableRepository{db: db}
}

type entryRow struct {
	ID        string    `db:"id"`
	SectionID string    `db:"section_id"`
	SubjectID string    `db:"subject_id"`
	FacultyID string    `db:"faculty_id"`
	Weekday   string    `db:"weekday"`
	StartTime string    `db:"start_time"`
	EndTime   string    `db:"end_time"`
	Room      string    `db:"room"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
}

func (r entryRow) toCore() timetable.Entry { return timetable.Entry(r) }

func (repo *timetableRepository) CreateEntry(e timetable.Entry) (timetable.Entry, error) {
	query := `
		INSERT INTO timetable_entry (section_id, subject_id, faculty_id, weekday, start_time, end_time,
		                             room, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := repo.db.Get(&e.ID, query,
		e.SectionID, e.SubjectID, e.FacultyID, e.Weekday, e.StartTime, e.EndTime,
		e.Room, e.IsActive, e.CreatedAt)
	if err != nil {
		return timetable.Entry{}, errors.Wrap(err, "creating timetable entry")
	}
	return e, nil
}

func (repo *timetableRepository) GetEntryByID(id string) (timetable.Entry, error) {
	var row entryRow
	if err := repo.db.Get(&row, `SELECT * FROM timetable_entry WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return timetable.Entry{}, timetable.ErrNotFound
		}
		return timetable.Entry{}, errors.Wrap(err, "getting timetable entry")
	}
	return row.toCore(), nil
}

func (repo *timetableRepository) queryEntries(query string, args ...interface{}) ([]timetable.Entry, error) {
	var rows []entryRow
	if err := repo.db.Select(&rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying timetable entries")
	}
	entries := make([]timetable.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toCore())
	}
	return entries, nil
}

func (repo *timetableRepository) QueryEntriesBySection(sectionID string) ([]timetable.Entry, error) {
	query := `SELECT * FROM timetable_entry WHERE section_id = $1 ORDER BY weekday, start_time`
	return repo.queryEntries(query, sectionID)
}

func (repo *timetableRepository) QueryActiveEntriesBySectionDay(sectionID, weekday string) ([]timetable.Entry, error) {
	query := `
		SELECT * FROM timetable_entry
		WHERE section_id = $1 AND weekday = $2 AND is_active
		ORDER BY start_time`
	return repo.queryEntries(query, sectionID, weekday)
}

func (repo *timetableRepository) QueryActiveEntriesByFacultyDay(facultyID, weekday string) ([]timetable.Entry, error) {
	query := `
		SELECT * FROM timetable_entry
		WHERE faculty_id = $1 AND weekday = $2 AND is_active
		ORDER BY start_time`
	return repo.queryEntries(query, facultyID, weekday)
}

func (repo *timetableRepository) CountSubjectRefs(subjectID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM timetable_entry WHERE subject_id = $1 AND is_active`
	if err := repo.db.Get(&count, query, subjectID); err != nil {
		return 0, errors.Wrap(err, "counting subject references")
	}
	return count, nil
}

func (repo *timetableRepository) DeleteEntry(id string) error {
	res, err := repo.db.Exec(`DELETE FROM timetable_entry WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting timetable entry")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return timetable.ErrNotFound
	}
	return nil
}
