package dummydb

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/kampus/core/leave"
)

type leaveRepository struct {
	leaves   *leaveTable
	sections *sectionTable
}

var _ leave.Repository = (*leaveRepository)(nil) // interface compliance check

func NewLeaveRepository(db *DB) leave.Repository {
	return &leaveRepository{
		leaves:   db.leave,
		sections: db.section,
	}
}

func (repo *leaveRepository) CreateLeave(l leave.Leave) (leave.Leave, error) {
	repo.leaves.Lock()
	defer repo.leaves.Unlock()

	l.ID = uuid.New().String()
	repo.leaves.table[l.ID] = &l
	return l, nil
}

func (repo *leaveRepository) GetLeaveByID(id string) (leave.Leave, error) {
	repo.leaves.RLock()
	defer repo.leaves.RUnlock()

	if l, ok := repo.leaves.table[id]; ok {
		return *l, nil
	}
	return leave.Leave{}, leave.ErrNotFound
}

func (repo *leaveRepository) GetLeaveByStudentDate(studentID string, date time.Time) (leave.Leave, error) {
	repo.leaves.RLock()
	defer repo.leaves.RUnlock()

	for _, l := range repo.leaves.table {
		if l.StudentID == studentID && l.Date.Equal(date) {
			return *l, nil
		}
	}
	return leave.Leave{}, leave.ErrNotFound
}

func (repo *leaveRepository) QueryLeavesByStudent(studentID string) ([]leave.Leave, error) {
	repo.leaves.RLock()
	defer repo.leaves.RUnlock()

	var leaves []leave.Leave
	for _, l := range repo.leaves.table {
		if l.StudentID == studentID {
			leaves = append(leaves, *l)
		}
	}
	sortLeaves(leaves)
	return leaves, nil
}

func (repo *leaveRepository) QueryLeavesBySectionStatus(sectionID, status string) ([]leave.Leave, error) {
	repo.leaves.RLock()
	defer repo.leaves.RUnlock()

	var leaves []leave.Leave
	for _, l := range repo.leaves.table {
		if l.SectionID == sectionID && l.Status == status {
			leaves = append(leaves, *l)
		}
	}
	sortLeaves(leaves)
	return leaves, nil
}

func (repo *leaveRepository) QueryLeavesByCourseStatus(courseID, status string) ([]leave.Leave, error) {
	repo.leaves.RLock()
	defer repo.leaves.RUnlock()
	repo.sections.RLock()
	defer repo.sections.RUnlock()

	courseSections := make(map[string]bool)
	for _, sec := range repo.sections.table {
		if sec.CourseID == courseID {
			courseSections[sec.ID] = true
		}
	}

	var leaves []leave.Leave
	for _, l := range repo.leaves.table {
		if courseSections[l.SectionID] && l.Status == status {
			leaves = append(leaves, *l)
		}
	}
	sortLeaves(leaves)
	return leaves, nil
}

func (repo *leaveRepository) UpdateLeave(l leave.Leave) (leave.Leave, error) {
	repo.leaves.Lock()
	defer repo.leaves.Unlock()

	if _, ok := repo.leaves.table[l.ID]; !ok {
		return leave.Leave{}, leave.ErrNotFound
	}
	repo.leaves.table[l.ID] = &l
	return l, nil
}

func sortLeaves(leaves []leave.Leave) {
	sort.Slice(leaves, func(i, j int) bool { return leaves[i].CreatedAt.Before(leaves[j].CreatedAt) })
}
