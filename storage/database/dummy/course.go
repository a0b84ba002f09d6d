package dummydb

import (
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/kampus/core/course"
)

type courseRepository struct {
	courses  *courseTable
	sections *sectionTable
	subjects *subjectTable
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{
		courses:  db.course,
		sections: db.section,
		subjects: db.subject,
	}
}

func (repo *courseRepository) CheckCourseCodeUniqueness(code string) error {
	repo.courses.RLock()
	defer repo.courses.RUnlock()

	for _, crs := range repo.courses.table {
		if crs.Code == code {
			return course.ErrCodeExists
		}
	}
	return nil
}

func (repo *courseRepository) CreateCourse(crs course.Course) (course.Course, error) {
	repo.courses.Lock()
	defer repo.courses.Unlock()

	crs.ID = uuid.New().String()
	repo.courses.table[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) QueryAllCourses() ([]course.Course, error) {
	repo.courses.RLock()
	defer repo.courses.RUnlock()

	courses := make([]course.Course, 0, len(repo.courses.table))
	for _, crs := range repo.courses.table {
		courses = append(courses, *crs)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Code < courses[j].Code })
	return courses, nil
}

func (repo *courseRepository) GetCourseByID(id string) (course.Course, error) {
	repo.courses.RLock()
	defer repo.courses.RUnlock()

	if crs, ok := repo.courses.table[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) UpdateCourse(crs course.Course) (course.Course, error) {
	repo.courses.Lock()
	defer repo.courses.Unlock()

	if _, ok := repo.courses.table[crs.ID]; !ok {
		return course.Course{}, course.ErrNotFound
	}
	repo.courses.table[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) DeleteCourse(id string) error {
	repo.courses.Lock()
	defer repo.courses.Unlock()

	if _, ok := repo.courses.table[id]; !ok {
		return course.ErrNotFound
	}
	delete(repo.courses.table, id)
	return nil
}

func (repo *courseRepository) CreateSection(sec course.Section) (course.Section, error) {
	repo.sections.Lock()
	defer repo.sections.Unlock()

	sec.ID = uuid.New().String()
	repo.sections.table[sec.ID] = &sec
	return sec, nil
}

func (repo *courseRepository) GetSectionByID(id string) (course.Section, error) {
	repo.sections.RLock()
	defer repo.sections.RUnlock()

	if sec, ok := repo.sections.table[id]; ok {
		return *sec, nil
	}
	return course.Section{}, course.ErrSectionNotFound
}

func (repo *courseRepository) QuerySectionsByCourse(courseID string) ([]course.Section, error) {
	repo.sections.RLock()
	defer repo.sections.RUnlock()

	var sections []course.Section
	for _, sec := range repo.sections.table {
		if sec.CourseID == courseID {
			sections = append(sections, *sec)
		}
	}
	sort.Slice(sections, func(i, j int) bool { return sections[i].Name < sections[j].Name })
	return sections, nil
}

func (repo *courseRepository) CheckSubjectCodeUniqueness(courseID, code string) error {
	repo.subjects.RLock()
	defer repo.subjects.RUnlock()

	for _, sub := range repo.subjects.table {
		if sub.CourseID == courseID && sub.Code == code {
			return course.ErrSubjectCodeExists
		}
	}
	return nil
}

func (repo *courseRepository) CreateSubject(sub course.Subject) (course.Subject, error) {
	repo.subjects.Lock()
	defer repo.subjects.Unlock()

	sub.ID = uuid.New().String()
	repo.subjects.table[sub.ID] = &sub
	return sub, nil
}

func (repo *courseRepository) GetSubjectByID(id string) (course.Subject, error) {
	repo.subjects.RLock()
	defer repo.subjects.RUnlock()

	if sub, ok := repo.subjects.table[id]; ok {
		return *sub, nil
	}
	return course.Subject{}, course.ErrSubjectNotFound
}

func (repo *courseRepository) QuerySubjectsBySection(sectionID string) ([]course.Subject, error) {
	repo.subjects.RLock()
	defer repo.subjects.RUnlock()

	var subjects []course.Subject
	for _, sub := range repo.subjects.table {
		if sub.SectionID.String == sectionID {
			subjects = append(subjects, *sub)
		}
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Code < subjects[j].Code })
	return subjects, nil
}

func (repo *courseRepository) QuerySubjectsByCourse(courseID string) ([]course.Subject, error) {
	repo.subjects.RLock()
	defer repo.subjects.RUnlock()

	var subjects []course.Subject
	for _, sub := range repo.subjects.table {
		if sub.CourseID == courseID {
			subjects = append(subjects, *sub)
		}
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Code < subjects[j].Code })
	return subjects, nil
}

func (repo *courseRepository) UpdateSubject(sub course.Subject) (course.Subject, error) {
	repo.subjects.Lock()
	defer repo.subjects.Unlock()

	if _, ok := repo.subjects.table[sub.ID]; !ok {
		return course.Subject{}, course.ErrSubjectNotFound
	}
	repo.subjects.table[sub.ID] = &sub
	return sub, nil
}

func (repo *courseRepository) DeleteSubject(id string) error {
	repo.subjects.Lock()
	defer repo.subjects.Unlock()

	if _, ok := repo.subjects.table[id]; !ok {
		return course.ErrSubjectNotFound
	}
	delete(repo.subjects.table, id)
	return nil
}
