package notification_test

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/kampus/core/notification"
	dummydb "github.com/trezcool/kampus/storage/database/dummy"
)

func newNotifService(t *testing.T) *notification.Service {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatal(err)
	}
	return notification.NewService(dummydb.NewNotificationRepository(db))
}

func TestServiceCreateForPlacement_dailyDedup(t *testing.T) {
	svc := newNotifService(t)

	n, err := svc.CreateForPlacement("usr1", "plc1", "New placement: Acme", "details", "")
	if err != nil {
		t.Fatal(err)
	}
	if n.ID == "" || n.Type != notification.TypeInfo {
		t.Errorf("CreateForPlacement() = %+v", n)
	}

	// same title prefix, same day: swallowed
	if _, err := svc.CreateForPlacement("usr1", "plc1", "New placement: Acme", "details", ""); err != nil {
		t.Fatal(err)
	}
	unread, err := svc.Unread("usr1")
	if err != nil {
		t.Fatal(err)
	}
	if len(unread) != 1 {
		t.Errorf("Unread() = %d, want 1 (repeat swallowed)", len(unread))
	}

	// a different title prefix for the same placement still goes out
	if _, err := svc.CreateForPlacement("usr1", "plc1", "Reminder: Acme drive", "tomorrow", ""); err != nil {
		t.Fatal(err)
	}
	unread, err = svc.Unread("usr1")
	if err != nil {
		t.Fatal(err)
	}
	if len(unread) != 2 {
		t.Errorf("Unread() = %d, want 2", len(unread))
	}
}

func TestServiceMarkRead(t *testing.T) {
	svc := newNotifService(t)

	n, err := svc.Create("usr1", "hello", "msg", "")
	if err != nil {
		t.Fatal(err)
	}

	// not the owner
	if _, err := svc.MarkRead("usr2", n.ID); errors.Cause(err) != notification.ErrNotFound {
		t.Errorf("MarkRead() by non-owner error = %v, want ErrNotFound", err)
	}

	n, err = svc.MarkRead("usr1", n.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !n.IsRead {
		t.Error("IsRead = false after MarkRead")
	}
	unread, err := svc.Unread("usr1")
	if err != nil {
		t.Fatal(err)
	}
	if len(unread) != 0 {
		t.Errorf("Unread() = %d, want 0", len(unread))
	}

	// idempotent
	if _, err := svc.MarkRead("usr1", n.ID); err != nil {
		t.Errorf("MarkRead() twice error = %v", err)
	}
}
