package postgres

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kampus/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

// userRow maps the "user" table; skills and admission data need driver
// types the core model should not carry.
type userRow struct {
	ID                string         `db:"id"`
	Name              string         `db:"name"`
	Email             string         `db:"email"`
	Role              string         `db:"role"`
	IsActive          bool           `db:"is_active"`
	PasswordHash      []byte         `db:"password_hash"`
	StudentID         null.String    `db:"student_id"`
	CourseID          null.String    `db:"course_id"`
	SectionID         null.String    `db:"section_id"`
	Year              null.Int       `db:"year"`
	Skills            pq.StringArray `db:"skills"`
	AdmissionStatus   null.String    `db:"admission_status"`
	AdmissionData     null.JSON      `db:"admission_data"`
	FacultyID         null.String    `db:"faculty_id"`
	Position          null.String    `db:"position"`
	Department        null.String    `db:"department"`
	MaxLecturesPerDay null.Int       `db:"max_lectures_per_day"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
	LastLogin         null.Time      `db:"last_login"`
}

func (r userRow) toCore() (user.User, error) {
	usr := user.User{
		ID:                r.ID,
		Name:              r.Name,
		Email:             r.Email,
		Role:              r.Role,
		IsActive:          r.IsActive,
		PasswordHash:      r.PasswordHash,
		StudentID:         r.StudentID,
		CourseID:          r.CourseID,
		SectionID:         r.SectionID,
		Year:              r.Year,
		Skills:            r.Skills,
		AdmissionStatus:   r.AdmissionStatus,
		FacultyID:         r.FacultyID,
		Position:          r.Position,
		Department:        r.Department,
		MaxLecturesPerDay: r.MaxLecturesPerDay,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
		LastLogin:         r.LastLogin.Time,
	}
	if r.AdmissionData.Valid {
		var data user.AdmissionData
		if err := json.Unmarshal(r.AdmissionData.JSON, &data); err != nil {
			return user.User{}, errors.Wrap(err, "unmarshalling admission data")
		}
		usr.AdmissionData = &data
	}
	return usr, nil
}

func fromCore(usr user.User) (userRow, error) {
	row := userRow{
		ID:                usr.ID,
		Name:              usr.Name,
		Email:             usr.Email,
		Role:              usr.Role,
		IsActive:          usr.IsActive,
		PasswordHash:      usr.PasswordHash,
		StudentID:         usr.StudentID,
		CourseID:          usr.CourseID,
		SectionID:         usr.SectionID,
		Year:              usr.Year,
		Skills:            usr.Skills,
		AdmissionStatus:   usr.AdmissionStatus,
		FacultyID:         usr.FacultyID,
		Position:          usr.Position,
		Department:        usr.Department,
		MaxLecturesPerDay: usr.MaxLecturesPerDay,
		CreatedAt:         usr.CreatedAt,
		UpdatedAt:         usr.UpdatedAt,
	}
	if row.Skills == nil {
		row.Skills = pq.StringArray{}
	}
	if !usr.LastLogin.IsZero() {
		row.LastLogin = null.TimeFrom(usr.LastLogin)
	}
	if usr.AdmissionData != nil {
		data, err := json.Marshal(usr.AdmissionData)
		if err != nil {
			return userRow{}, errors.Wrap(err, "marshalling admission data")
		}
		row.AdmissionData = null.JSONFrom(data)
	}
	return row, nil
}

func (repo *userRepository) CheckEmailUniqueness(email string, excludedUsers ...user.User) error {
	query := `SELECT COUNT(*) FROM "user" WHERE email = $1`
	args := []interface{}{email}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, usr := range excludedUsers {
			ids = append(ids, usr.ID)
		}
		query += ` AND NOT (id = ANY($2))`
		args = append(args, pq.Array(ids))
	}

	var count int
	if err := repo.db.Get(&count, query, args...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if count > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(usr user.User) (user.User, error) {
	row, err := fromCore(usr)
	if err != nil {
		return user.User{}, err
	}
	query := `
		INSERT INTO "user" (name, email, role, is_active, password_hash, student_id, course_id, section_id,
		                    year, skills, admission_status, admission_data, faculty_id, position, department,
		                    max_lectures_per_day, created_at, updated_at)
		VALUES (:name, :email, :role, :is_active, :password_hash, :student_id, :course_id, :section_id,
		        :year, :skills, :admission_status, :admission_data, :faculty_id, :position, :department,
		        :max_lectures_per_day, :created_at, :updated_at)
		RETURNING id`
	rows, err := repo.db.NamedQuery(query, row)
	if err != nil {
		return user.User{}, errors.Wrap(err, "creating user")
	}
	defer func() { _ = rows.Close() }()
	if rows.Next() {
		if err = rows.Scan(&usr.ID); err != nil {
			return user.User{}, errors.Wrap(err, "creating user")
		}
	}
	return usr, nil
}

func (repo *userRepository) queryUsers(query string, args ...interface{}) ([]user.User, error) {
	var rows []userRow
	if err := repo.db.Select(&rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		usr, err := row.toCore()
		if err != nil {
			return nil, err
		}
		users = append(users, usr)
	}
	return users, nil
}

func (repo *userRepository) QueryAllUsers() ([]user.User, error) {
	return repo.queryUsers(`SELECT * FROM "user" ORDER BY created_at`)
}

func (repo *userRepository) getUser(query string, args ...interface{}) (user.User, error) {
	var row userRow
	if err := repo.db.Get(&row, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user")
	}
	return row.toCore()
}

func (repo *userRepository) GetUserByID(id string) (user.User, error) {
	return repo.getUser(`SELECT * FROM "user" WHERE id = $1`, id)
}

func (repo *userRepository) GetUserByEmail(email string) (user.User, error) {
	return repo.getUser(`SELECT * FROM "user" WHERE email = $1`, email)
}

func (repo *userRepository) FilterUsers(filter user.QueryFilter) ([]user.User, error) {
	query := `SELECT * FROM "user" WHERE 1=1`
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + itoa(len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		query += ` AND (name ILIKE ` + p + ` OR email ILIKE ` + p +
			` OR student_id ILIKE ` + p + ` OR faculty_id ILIKE ` + p + `)`
	}
	if filter.Role != "" {
		query += ` AND role = ` + arg(filter.Role)
	}
	if filter.Position != "" {
		query += ` AND position = ` + arg(filter.Position)
	}
	if filter.CourseID != "" {
		query += ` AND course_id = ` + arg(filter.CourseID)
	}
	if filter.SectionID != "" {
		query += ` AND section_id = ` + arg(filter.SectionID)
	}
	if filter.IsActive != nil {
		query += ` AND is_active = ` + arg(*filter.IsActive)
	}
	query += ` ORDER BY created_at`

	return repo.queryUsers(query, args...)
}

func (repo *userRepository) UpdateUser(usr user.User, isActive *bool) (user.User, error) {
	if isActive != nil {
		usr.IsActive = *isActive
	} else {
		current, err := repo.GetUserByID(usr.ID)
		if err != nil {
			return user.User{}, err
		}
		usr.IsActive = current.IsActive
	}

	row, err := fromCore(usr)
	if err != nil {
		return user.User{}, err
	}
	query := `
		UPDATE "user"
		SET name = :name, email = :email, is_active = :is_active, password_hash = :password_hash,
		    student_id = :student_id, course_id = :course_id, section_id = :section_id, year = :year,
		    skills = :skills, admission_status = :admission_status, admission_data = :admission_data,
		    faculty_id = :faculty_id, position = :position, department = :department,
		    max_lectures_per_day = :max_lectures_per_day, updated_at = :updated_at, last_login = :last_login
		WHERE id = :id`
	res, err := repo.db.NamedExec(query, row)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) DeleteUser(id string) error {
	res, err := repo.db.Exec(`DELETE FROM "user" WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.ErrNotFound
	}
	return nil
}
