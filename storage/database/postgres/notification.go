package postgres

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kampus/core/notification"
)

type notificationRepository struct {
	db *sqlx.DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *sqlx.DB) notification.Repository {
	return &notificationRepository{db: db}
}

type notificationRow struct {
	ID          string      `db:"id"`
	UserID      string      `db:"user_id"`
	Title       string      `db:"title"`
	Message     string      `db:"message"`
	Type        string      `db:"type"`
	PlacementID null.String `db:"placement_id"`
	IsRead      bool        `db:"is_read"`
	CreatedAt   time.Time   `db:"created_at"`
}

func (r notificationRow) toCore() notification.Notification { return notification.Notification(r) }

func (repo *notificationRepository) CreateNotification(n notification.Notification) (notification.Notification, error) {
	query := `
		INSERT INTO notification (user_id, title, message, type, placement_id, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := repo.db.Get(&n.ID, query, n.UserID, n.Title, n.Message, n.Type, n.PlacementID, n.IsRead, n.CreatedAt)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "creating notification")
	}
	return n, nil
}

func (repo *notificationRepository) GetNotificationByID(id string) (notification.Notification, error) {
	var row notificationRow
	if err := repo.db.Get(&row, `SELECT * FROM notification WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return notification.Notification{}, notification.ErrNotFound
		}
		return notification.Notification{}, errors.Wrap(err, "getting notification")
	}
	return row.toCore(), nil
}

func (repo *notificationRepository) QueryUnreadByUser(userID string, limit int) ([]notification.Notification, error) {
	var rows []notificationRow
	query := `
		SELECT * FROM notification
		WHERE user_id = $1 AND NOT is_read
		ORDER BY created_at DESC
		LIMIT $2`
	if err := repo.db.Select(&rows, query, userID, limit); err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	notifs := make([]notification.Notification, 0, len(rows))
	for _, row := range rows {
		notifs = append(notifs, row.toCore())
	}
	return notifs, nil
}

func (repo *notificationRepository) ExistsForDay(userID, placementID, titlePrefix string, day time.Time) (bool, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM notification
		WHERE user_id = $1 AND placement_id = $2 AND title LIKE $3
		  AND created_at >= $4 AND created_at < $4 + INTERVAL '1 day'`
	if err := repo.db.Get(&count, query, userID, placementID, titlePrefix+"%", day); err != nil {
		return false, errors.Wrap(err, "checking notification dedup")
	}
	return count > 0, nil
}

func (repo *notificationRepository) UpdateNotification(n notification.Notification) (notification.Notification, error) {
	res, err := repo.db.Exec(`UPDATE notification SET is_read = $1 WHERE id = $2`, n.IsRead, n.ID)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "updating notification")
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return notification.Notification{}, notification.ErrNotFound
	}
	return n, nil
}
