package postgres

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/kampus/core/placement"
)

type placementRepository struct {
	db *sqlx.DB
}

var _ placement.Repository = (*placementRepository)(nil) // interface compliance check

func NewPlacementRepository(db *sqlx.DB) placement.Repository {
	return &placementRepository{db: db}
}

// --- placements ---

type placementRow struct {
	ID           string         `db:"id"`
	Company      string         `db:"company"`
	Role         string         `db:"role"`
	Description  string         `db:"description"`
	Requirements string         `db:"requirements"`
	Package      string         `db:"package"`
	CourseIDs    pq.StringArray `db:"course_ids"`
	DriveDate    time.Time      `db:"drive_date"`
	Deadline     time.Time      `db:"deadline"`
	CreatedBy    string         `db:"created_by"`
	IsActive     bool           `db:"is_active"`
	CreatedAt    time.Time      `db:"created_at"`
}

func (r placementRow) toCore() placement.Placement {
	return placement.Placement{
		ID:           r.ID,
		Company:      r.Company,
		Role:         r.Role,
		Description:  r.Description,
		Requirements: r.Requirements,
		Package:      r.Package,
		CourseIDs:    r.CourseIDs,
		DriveDate:    r.DriveDate,
		Deadline:     r.Deadline,
		CreatedBy:    r.CreatedBy,
		IsActive:     r.IsActive,
		CreatedAt:    r.CreatedAt,
	}
}

func (repo *placementRepository) CreatePlacement(p placement.Placement) (placement.Placement, error) {
	query := `
		INSERT INTO placement (company, role, description, requirements, package, course_ids,
		                       drive_date, deadline, created_by, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`
	err := repo.db.Get(&p.ID, query,
		p.Company, p.Role, p.Description, p.Requirements, p.Package, pq.Array(p.CourseIDs),
		p.DriveDate, p.Deadline, p.CreatedBy, p.IsActive, p.CreatedAt)
	if err != nil {
		return placement.Placement{}, errors.Wrap(err, "creating placement")
	}
	return p, nil
}

func (repo *placementRepository) queryPlacements(query string, args ...interface{}) ([]placement.Placement, error) {
	var rows []placementRow
	if err := repo.db.Select(&rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying placements")
	}
	placements := make([]placement.Placement, 0, len(rows))
	for _, row := range rows {
		placements = append(placements, row.toCore())
	}
	return placements, nil
}

func (repo *placementRepository) QueryAllPlacements() ([]placement.Placement, error) {
	return repo.queryPlacements(`SELECT * FROM placement ORDER BY drive_date DESC`)
}

func (repo *placementRepository) QueryActivePlacementsByCourse(courseID string) ([]placement.Placement, error) {
	query := `SELECT * FROM placement WHERE is_active AND $1 = ANY(course_ids) ORDER BY drive_date`
	return repo.queryPlacements(query, courseID)
}

func (repo *placementRepository) QueryPlacementsByDriveDate(date time.Time) ([]placement.Placement, error) {
	return repo.queryPlacements(`SELECT * FROM placement WHERE is_active AND drive_date = $1`, date)
}

func (repo *placementRepository) QueryPlacementsClosingBetween(from, to time.Time) ([]placement.Placement, error) {
	query := `SELECT * FROM placement WHERE is_active AND deadline >= $1 AND deadline <= $2`
	return repo.queryPlacements(query, from, to)
}

func (repo *placementRepository) GetPlacementByID(id string) (placement.Placement, error) {
	var row placementRow
	if err := repo.db.Get(&row, `SELECT * FROM placement WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return placement.Placement{}, placement.ErrNotFound
		}
		return placement.Placement{}, errors.Wrap(err, "getting placement")
	}
	return row.toCore(), nil
}

func (repo *placementRepository) UpdatePlacement(p placement.Placement) (placement.Placement, error) {
	query := `
		UPDATE placement
		SET company = $1, role = $2, description = $3, requirements = $4, package = $5,
		    course_ids = $6, drive_date = $7, deadline = $8, is_active = $9
		WHERE id = $10`
	res, err := repo.db.Exec(query,
		p.Company, p.Role, p.Description, p.Requirements, p.Package,
		pq.Array(p.CourseIDs), p.DriveDate, p.Deadline, p.IsActive, p.ID)
	if err != nil {
		return placement.Placement{}, errors.Wrap(err, "updating placement")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return placement.Placement{}, placement.ErrNotFound
	}
	return p, nil
}

// --- applications ---

type applicationRow struct {
	ID          string    `db:"id"`
	PlacementID string    `db:"placement_id"`
	StudentID   string    `db:"student_id"`
	Status      string    `db:"status"`
	AppliedAt   time.Time `db:"applied_at"`
}

func (r applicationRow) toCore() placement.Application { return placement.Application(r) }

func (repo *placementRepository) CreateApplication(a placement.Application) (placement.Application, error) {
	query := `
		INSERT INTO application (placement_id, student_id, status, applied_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	err := repo.db.Get(&a.ID, query, a.PlacementID, a.StudentID, a.Status, a.AppliedAt)
	if err != nil {
		return placement.Application{}, errors.Wrap(err, "creating application")
	}
	return a, nil
}

func (repo *placementRepository) getApplication(query string, args ...interface{}) (placement.Application, error) {
	var row applicationRow
	if err := repo.db.Get(&row, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return placement.Application{}, placement.ErrAppNotFound
		}
		return placement.Application{}, errors.Wrap(err, "getting application")
	}
	return row.toCore(), nil
}

func (repo *placementRepository) GetApplication(placementID, studentID string) (placement.Application, error) {
	return repo.getApplication(
		`SELECT * FROM application WHERE placement_id = $1 AND student_id = $2`, placementID, studentID)
}

func (repo *placementRepository) GetApplicationByID(id string) (placement.Application, error) {
	return repo.getApplication(`SELECT * FROM application WHERE id = $1`, id)
}

func (repo *placementRepository) QueryApplicationsByPlacement(placementID string) ([]placement.Application, error) {
	var rows []applicationRow
	query := `SELECT * FROM application WHERE placement_id = $1 ORDER BY applied_at`
	if err := repo.db.Select(&rows, query, placementID); err != nil {
		return nil, errors.Wrap(err, "querying applications")
	}
	apps := make([]placement.Application, 0, len(rows))
	for _, row := range rows {
		apps = append(apps, row.toCore())
	}
	return apps, nil
}

func (repo *placementRepository) UpdateApplication(a placement.Application) (placement.Application, error) {
	res, err := repo.db.Exec(`UPDATE application SET status = $1 WHERE id = $2`, a.Status, a.ID)
	if err != nil {
		return placement.Application{}, errors.Wrap(err, "updating application")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return placement.Application{}, placement.ErrAppNotFound
	}
	return a, nil
}

// --- resumes ---

type resumeRow struct {
	ID          string         `db:"id"`
	StudentID   string         `db:"student_id"`
	Skills      pq.StringArray `db:"skills"`
	Education   string         `db:"education"`
	Experience  string         `db:"experience"`
	Projects    string         `db:"projects"`
	Links       string         `db:"links"`
	Summary     string         `db:"summary"`
	IsCompleted bool           `db:"is_completed"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r resumeRow) toCore() placement.Resume {
	return placement.Resume{
		ID:          r.ID,
		StudentID:   r.StudentID,
		Skills:      r.Skills,
		Education:   r.Education,
		Experience:  r.Experience,
		Projects:    r.Projects,
		Links:       r.Links,
		Summary:     r.Summary,
		IsCompleted: r.IsCompleted,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (repo *placementRepository) UpsertResume(r placement.Resume) (placement.Resume, error) {
	query := `
		INSERT INTO resume (student_id, skills, education, experience, projects, links, summary,
		                    is_completed, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (student_id) DO UPDATE
		SET skills = EXCLUDED.skills, education = EXCLUDED.education, experience = EXCLUDED.experience,
		    projects = EXCLUDED.projects, links = EXCLUDED.links, summary = EXCLUDED.summary,
		    is_completed = EXCLUDED.is_completed, updated_at = EXCLUDED.updated_at
		RETURNING id`
	err := repo.db.Get(&r.ID, query,
		r.StudentID, pq.Array(r.Skills), r.Education, r.Experience, r.Projects, r.Links, r.Summary,
		r.IsCompleted, r.UpdatedAt)
	if err != nil {
		return placement.Resume{}, errors.Wrap(err, "upserting resume")
	}
	return r, nil
}

func (repo *placementRepository) GetResumeByStudent(studentID string) (placement.Resume, error) {
	var row resumeRow
	if err := repo.db.Get(&row, `SELECT * FROM resume WHERE student_id = $1`, studentID); err != nil {
		if err == sql.ErrNoRows {
			return placement.Resume{}, placement.ErrResumeNotFound
		}
		return placement.Resume{}, errors.Wrap(err, "getting resume")
	}
	return row.toCore(), nil
}
