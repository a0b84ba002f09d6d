package dummydb

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/kampus/core"
	"github.com/trezcool/kampus/core/notification"
)

type notificationRepository struct {
	db *notificationTable
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *DB) notification.Repository {
	return &notificationRepository{db: db.notification}
}

func (repo *notificationRepository) CreateNotification(n notification.Notification) (notification.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	n.ID = uuid.New().String()
	repo.db.table[n.ID] = &n
	return n, nil
}

func (repo *notificationRepository) GetNotificationByID(id string) (notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if n, ok := repo.db.table[id]; ok {
		return *n, nil
	}
	return notification.Notification{}, notification.ErrNotFound
}

func (repo *notificationRepository) QueryUnreadByUser(userID string, limit int) ([]notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var notifs []notification.Notification
	for _, n := range repo.db.table {
		if n.UserID == userID && !n.IsRead {
			notifs = append(notifs, *n)
		}
	}
	// newest first
	sort.Slice(notifs, func(i, j int) bool { return notifs[i].CreatedAt.After(notifs[j].CreatedAt) })
	if limit > 0 && len(notifs) > limit {
		notifs = notifs[:limit]
	}
	return notifs, nil
}

func (repo *notificationRepository) ExistsForDay(userID, placementID, titlePrefix string, day time.Time) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, n := range repo.db.table {
		if n.UserID == userID && n.PlacementID.String == placementID &&
			strings.HasPrefix(n.Title, titlePrefix) && core.SameDay(n.CreatedAt, day) {
			return true, nil
		}
	}
	return false, nil
}

func (repo *notificationRepository) UpdateNotification(n notification.Notification) (notification.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[n.ID]; !ok {
		return notification.Notification{}, notification.ErrNotFound
	}
	repo.db.table[n.ID] = &n
	return n, nil
}
