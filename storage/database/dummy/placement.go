package dummydb

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/kampus/core/placement"
)

type placementRepository struct {
	placements   *placementTable
	applications *applicationTable
	resumes      *resumeTable
}

var _ placement.Repository = (*placementRepository)(nil) // interface compliance check

func NewPlacementRepository(db *DB) placement.Repository {
	return &placementRepository{
		placements:   db.placement,
		applications: db.application,
		resumes:      db.resume,
	}
}

func (repo *placementRepository) CreatePlacement(p placement.Placement) (placement.Placement, error) {
	repo.placements.Lock()
	defer repo.placements.Unlock()

	p.ID = uuid.New().String()
	repo.placements.table[p.ID] = &p
	return p, nil
}

func (repo *placementRepository) query() []placement.Placement {
	placements := make([]placement.Placement, 0, len(repo.placements.table))
	for _, p := range repo.placements.table {
		placements = append(placements, *p)
	}
	sort.Slice(placements, func(i, j int) bool { return placements[i].CreatedAt.Before(placements[j].CreatedAt) })
	return placements
}

func (repo *placementRepository) QueryAllPlacements() ([]placement.Placement, error) {
	repo.placements.RLock()
	defer repo.placements.RUnlock()
	return repo.query(), nil
}

func (repo *placementRepository) QueryActivePlacementsByCourse(courseID string) ([]placement.Placement, error) {
	repo.placements.RLock()
	defer repo.placements.RUnlock()

	var placements []placement.Placement
	for _, p := range repo.query() {
		if !p.IsActive {
			continue
		}
		for _, id := range p.CourseIDs {
			if id == courseID {
				placements = append(placements, p)
				break
			}
		}
	}
	return placements, nil
}

func (repo *placementRepository) QueryPlacementsByDriveDate(date time.Time) ([]placement.Placement, error) {
	repo.placements.RLock()
	defer repo.placements.RUnlock()

	var placements []placement.Placement
	for _, p := range repo.query() {
		if p.IsActive && p.DriveDate.Equal(date) {
			placements = append(placements, p)
		}
	}
	return placements, nil
}

func (repo *placementRepository) QueryPlacementsClosingBetween(from, to time.Time) ([]placement.Placement, error) {
	repo.placements.RLock()
	defer repo.placements.RUnlock()

	var placements []placement.Placement
	for _, p := range repo.query() {
		if p.IsActive && !p.Deadline.Before(from) && !p.Deadline.After(to) {
			placements = append(placements, p)
		}
	}
	return placements, nil
}

func (repo *placementRepository) GetPlacementByID(id string) (placement.Placement, error) {
	repo.placements.RLock()
	defer repo.placements.RUnlock()

	if p, ok := repo.placements.table[id]; ok {
		return *p, nil
	}
	return placement.Placement{}, placement.ErrNotFound
}

func (repo *placementRepository) UpdatePlacement(p placement.Placement) (placement.Placement, error) {
	repo.placements.Lock()
	defer repo.placements.Unlock()

	if _, ok := repo.placements.table[p.ID]; !ok {
		return placement.Placement{}, placement.ErrNotFound
	}
	repo.placements.table[p.ID] = &p
	return p, nil
}

func (repo *placementRepository) CreateApplication(a placement.Application) (placement.Application, error) {
	repo.applications.Lock()
	defer repo.applications.Unlock()

	a.ID = uuid.New().String()
	repo.applications.table[a.ID] = &a
	return a, nil
}

func (repo *placementRepository) GetApplication(placementID, studentID string) (placement.Application, error) {
	repo.applications.RLock()
	defer repo.applications.RUnlock()

	for _, a := range repo.applications.table {
		if a.PlacementID == placementID && a.StudentID == studentID {
			return *a, nil
		}
	}
	return placement.Application{}, placement.ErrAppNotFound
}

func (repo *placementRepository) GetApplicationByID(id string) (placement.Application, error) {
	repo.applications.RLock()
	defer repo.applications.RUnlock()

	if a, ok := repo.applications.table[id]; ok {
		return *a, nil
	}
	return placement.Application{}, placement.ErrAppNotFound
}

func (repo *placementRepository) QueryApplicationsByPlacement(placementID string) ([]placement.Application, error) {
	repo.applications.RLock()
	defer repo.applications.RUnlock()

	var apps []placement.Application
	for _, a := range repo.applications.table {
		if a.PlacementID == placementID {
			apps = append(apps, *a)
		}
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].AppliedAt.Before(apps[j].AppliedAt) })
	return apps, nil
}

func (repo *placementRepository) UpdateApplication(a placement.Application) (placement.Application, error) {
	repo.applications.Lock()
	defer repo.applications.Unlock()

	if _, ok := repo.applications.table[a.ID]; !ok {
		return placement.Application{}, placement.ErrAppNotFound
	}
	repo.applications.table[a.ID] = &a
	return a, nil
}

func (repo *placementRepository) UpsertResume(r placement.Resume) (placement.Resume, error) {
	repo.resumes.Lock()
	defer repo.resumes.Unlock()

	if orig, ok := repo.resumes.table[r.StudentID]; ok {
		r.ID = orig.ID
	} else {
		r.ID = uuid.New().String()
	}
	repo.resumes.table[r.StudentID] = &r
	return r, nil
}

func (repo *placementRepository) GetResumeByStudent(studentID string) (placement.Resume, error) {
	repo.resumes.RLock()
	defer repo.resumes.RUnlock()

	if r, ok := repo.resumes.table[studentID]; ok {
		return *r, nil
	}
	return placement.Resume{}, placement.ErrResumeNotFound
}
