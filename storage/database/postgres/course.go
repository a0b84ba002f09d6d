package postgres

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kampus/core/course"
)

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

// --- courses ---

type courseRow struct {
	ID            string      `db:"id"`
	Name          string      `db:"name"`
	Code          string      `db:"code"`
	Description   string      `db:"description"`
	DurationYears int         `db:"duration_years"`
	HODID         null.String `db:"hod_id"`
	CoordinatorID null.String `db:"coordinator_id"`
	IsActive      bool        `db:"is_active"`
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`
}

func (r courseRow) toCore() course.Course { return course.Course(r) }

func (repo *courseRepository) CheckCourseCodeUniqueness(code string) error {
	var count int
	if err := repo.db.Get(&count, `SELECT COUNT(*) FROM course WHERE code = $1`, code); err != nil {
		return errors.Wrap(err, "checking course code uniqueness")
	}
	if count > 0 {
		return course.ErrCodeExists
	}
	return nil
}

func (repo *courseRepository) CreateCourse(c course.Course) (course.Course, error) {
	query := `
		INSERT INTO course (name, code, description, duration_years, hod_id, coordinator_id, is_active,
		                    created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := repo.db.Get(&c.ID, query,
		c.Name, c.Code, c.Description, c.DurationYears, c.HODID, c.CoordinatorID, c.IsActive,
		c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "creating course")
	}
	return c, nil
}

func (repo *courseRepository) QueryAllCourses() ([]course.Course, error) {
	var rows []courseRow
	if err := repo.db.Select(&rows, `SELECT * FROM course ORDER BY code`); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.toCore())
	}
	return courses, nil
}

func (repo *courseRepository) GetCourseByID(id string) (course.Course, error) {
	var row courseRow
	if err := repo.db.Get(&row, `SELECT * FROM course WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "getting course")
	}
	return row.toCore(), nil
}

func (repo *courseRepository) UpdateCourse(c course.Course) (course.Course, error) {
	query := `
		UPDATE course
		SET name = $1, description = $2, duration_years = $3, hod_id = $4, coordinator_id = $5,
		    is_active = $6, updated_at = $7
		WHERE id = $8`
	res, err := repo.db.Exec(query,
		c.Name, c.Description, c.DurationYears, c.HODID, c.CoordinatorID, c.IsActive, c.UpdatedAt, c.ID)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return c, nil
}

func (repo *courseRepository) DeleteCourse(id string) error {
	res, err := repo.db.Exec(`DELETE FROM course WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting course")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return course.ErrNotFound
	}
	return nil
}

// --- sections ---

type sectionRow struct {
	ID             string      `db:"id"`
	Name           string      `db:"name"`
	CourseID       string      `db:"course_id"`
	Year           int         `db:"year"`
	ClassAdvisorID null.String `db:"class_advisor_id"`
	IsActive       bool        `db:"is_active"`
	CreatedAt      time.Time   `db:"created_at"`
}

func (r sectionRow) toCore() course.Section { return course.Section(r) }

func (repo *courseRepository) CreateSection(s course.Section) (course.Section, error) {
	query := `
		INSERT INTO section (name, course_id, year, class_advisor_id, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := repo.db.Get(&s.ID, query, s.Name, s.CourseID, s.Year, s.ClassAdvisorID, s.IsActive, s.CreatedAt)
	if err != nil {
		return course.Section{}, errors.Wrap(err, "creating section")
	}
	return s, nil
}

func (repo *courseRepository) GetSectionByID(id string) (course.Section, error) {
	var row sectionRow
	if err := repo.db.Get(&row, `SELECT * FROM section WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return course.Section{}, course.ErrSectionNotFound
		}
		return course.Section{}, errors.Wrap(err, "getting section")
	}
	return row.toCore(), nil
}

func (repo *courseRepository) QuerySectionsByCourse(courseID string) ([]course.Section, error) {
	var rows []sectionRow
	query := `SELECT * FROM section WHERE course_id = $1 ORDER BY year, name`
	if err := repo.db.Select(&rows, query, courseID); err != nil {
		return nil, errors.Wrap(err, "querying sections")
	}
	sections := make([]course.Section, 0, len(rows))
	for _, row := range rows {
		sections = append(sections, row.toCore())
	}
	return sections, nil
}

// --- subjects ---

type subjectRow struct {
	ID        string      `db:"id"`
	Name      string      `db:"name"`
	Code      string      `db:"code"`
	CourseID  string      `db:"course_id"`
	Year      int         `db:"year"`
	SectionID null.String `db:"section_id"`
	FacultyID null.String `db:"faculty_id"`
	Credits   int         `db:"credits"`
	IsActive  bool        `db:"is_active"`
	CreatedAt time.Time   `db:"created_at"`
}

func (r subjectRow) toCore() course.Subject { return course.Subject(r) }

func (repo *courseRepository) CheckSubjectCodeUniqueness(courseID, code string) error {
	var count int
	query := `SELECT COUNT(*) FROM subject WHERE course_id = $1 AND code = $2`
	if err := repo.db.Get(&count, query, courseID, code); err != nil {
		return errors.Wrap(err, "checking subject code uniqueness")
	}
	if count > 0 {
		return course.ErrSubjectCodeExists
	}
	return nil
}

func (repo *courseRepository) CreateSubject(s course.Subject) (course.Subject, error) {
	query := `
		INSERT INTO subject (name, code, course_id, year, section_id, faculty_id, credits, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := repo.db.Get(&s.ID, query,
		s.Name, s.Code, s.CourseID, s.Year, s.SectionID, s.FacultyID, s.Credits, s.IsActive, s.CreatedAt)
	if err != nil {
		return course.Subject{}, errors.Wrap(err, "creating subject")
	}
	return s, nil
}

func (repo *courseRepository) GetSubjectByID(id string) (course.Subject, error) {
	var row subjectRow
	if err := repo.db.Get(&row, `SELECT * FROM subject WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return course.Subject{}, course.ErrSubjectNotFound
		}
		return course.Subject{}, errors.Wrap(err, "getting subject")
	}
	return row.toCore(), nil
}

func (repo *courseRepository) querySubjects(query string, args ...interface{}) ([]course.Subject, error) {
	var rows []subjectRow
	if err := repo.db.Select(&rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	subjects := make([]course.Subject, 0, len(rows))
	for _, row := range rows {
		subjects = append(subjects, row.toCore())
	}
	return subjects, nil
}

func (repo *courseRepository) QuerySubjectsBySection(sectionID string) ([]course.Subject, error) {
	return repo.querySubjects(`SELECT * FROM subject WHERE section_id = $1 ORDER BY code`, sectionID)
}

func (repo *courseRepository) QuerySubjectsByCourse(courseID string) ([]course.Subject, error) {
	return repo.querySubjects(`SELECT * FROM subject WHERE course_id = $1 ORDER BY year, code`, courseID)
}

func (repo *courseRepository) UpdateSubject(s course.Subject) (course.Subject, error) {
	query := `
		UPDATE subject
		SET name = $1, year = $2, section_id = $3, faculty_id = $4, credits = $5, is_active = $6
		WHERE id = $7`
	res, err := repo.db.Exec(query, s.Name, s.Year, s.SectionID, s.FacultyID, s.Credits, s.IsActive, s.ID)
	if err != nil {
		return course.Subject{}, errors.Wrap(err, "updating subject")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return course.Subject{}, course.ErrSubjectNotFound
	}
	return s, nil
}

func (repo *courseRepository) DeleteSubject(id string) error {
	res, err := repo.db.Exec(`DELETE FROM subject WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return course.ErrSubjectNotFound
	}
	return nil
}
