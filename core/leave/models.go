package leave

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kampus/core"
)

// Statuses; a leave walks the approval chain in order or drops to
// rejected from any non-terminal state.
const (
	StatusPending               = "pending"
	StatusApprovedByAdvisor     = "approved-by-advisor"
	StatusApprovedByCoordinator = "approved-by-coordinator"
	StatusApprovedByHOD         = "approved-by-hod" // terminal
	StatusRejected              = "rejected"        // terminal
)

type Leave struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	SectionID string    `json:"section_id"`
	Date      time.Time `json:"date"` // calendar day, midnight UTC
	Reason    string    `json:"reason"`
	Status    string    `json:"status"`

	ApprovedByAdvisor     null.String `json:"approved_by_advisor,omitempty"`
	ApprovedByCoordinator null.String `json:"approved_by_coordinator,omitempty"`
	ApprovedByHOD         null.String `json:"approved_by_hod,omitempty"`
	RejectedBy            null.String `json:"rejected_by,omitempty"`
	RejectionReason       null.String `json:"rejection_reason,omitempty"`

	IsAutoApplied bool        `json:"is_auto_applied"`
	PlacementID   null.String `json:"placement_id,omitempty"`
	CreatedAt     time.Time   `json:"created_at"` // UTC
}

// Terminal reports whether no further transition is allowed.
func (l Leave) Terminal() bool {
	return l.Status == StatusApprovedByHOD || l.Status == StatusRejected
}

// NewLeave contains information needed for a student's leave request.
type NewLeave struct {
	Date   time.Time `json:"date" validate:"required"`
	Reason string    `json:"reason" validate:"required"`
}

func (nl *NewLeave) Validate() error {
	nl.Reason = core.CleanString(nl.Reason)
	return core.Validate.Struct(nl)
}

// Rejection carries the mandatory reason for a reject transition.
type Rejection struct {
	Reason string `json:"reason" validate:"required"`
}

func (r *Rejection) Validate() error {
	r.Reason = core.CleanString(r.Reason)
	return core.Validate.Struct(r)
}
