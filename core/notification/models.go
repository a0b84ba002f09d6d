package notification

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// Types
const (
	TypeInfo    = "info"
	TypeWarning = "warning"
)

type Notification struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	Title       string      `json:"title"`
	Message     string      `json:"message"`
	Type        string      `json:"type"`
	PlacementID null.String `json:"placement_id,omitempty"`
	IsRead      bool        `json:"is_read"`
	CreatedAt   time.Time   `json:"created_at"` // UTC
}
