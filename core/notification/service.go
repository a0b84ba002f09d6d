package notification

import (
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kampus/core"
)

var (
	// errors
	ErrNotFound = errors.New("notification not found")

	// unreadLimit caps the unread list the way the frontend expects it.
	unreadLimit = 10
)

type (
	Repository interface {
		CreateNotification(n Notification) (Notification, error)
		GetNotificationByID(id string) (Notification, error)
		QueryUnreadByUser(userID string, limit int) ([]Notification, error)
		// ExistsForDay reports whether the user already got a notification
		// for the placement with the given title prefix on that day.
		ExistsForDay(userID, placementID, titlePrefix string, day time.Time) (bool, error)
		UpdateNotification(n Notification) (Notification, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(userID, title, message, typ string) (Notification, error) {
	if typ == "" {
		typ = TypeInfo
	}
	n := Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      typ,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateNotification(n)
}

// CreateForPlacement notifies a user about a placement at most once per day
// per title prefix; repeated scheduler runs on the same day are no-ops.
func (svc *Service) CreateForPlacement(userID, placementID, title, message, typ string) (Notification, error) {
	exists, err := svc.repo.ExistsForDay(userID, placementID, title, core.Today())
	if err != nil {
		return Notification{}, err
	}
	if exists {
		return Notification{}, nil
	}
	if typ == "" {
		typ = TypeInfo
	}
	n := Notification{
		UserID:      userID,
		Title:       title,
		Message:     message,
		Type:        typ,
		PlacementID: null.StringFrom(placementID),
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateNotification(n)
}

// Unread lists the user's most recent unread notifications.
func (svc *Service) Unread(userID string) ([]Notification, error) {
	return svc.repo.QueryUnreadByUser(userID, unreadLimit)
}

// MarkRead flags a notification as read. Only its owner may do it.
func (svc *Service) MarkRead(userID, id string) (Notification, error) {
	n, err := svc.repo.GetNotificationByID(id)
	if err != nil {
		return Notification{}, err
	}
	if n.UserID != userID {
		return Notification{}, ErrNotFound
	}
	if n.IsRead {
		return n, nil
	}
	n.IsRead = true
	return svc.repo.UpdateNotification(n)
}
