package entity

import "github.com/google/uuid"

type ComplaintStatus string

const (
	ComplaintOpen       ComplaintStatus = "open"
	ComplaintInProgress ComplaintStatus = "in_progress"
	ComplaintResolved   ComplaintStatus = "resolved"
)

type Complaint struct {
	Base
	UserID      uuid.UUID       `db:"user_id"`
	CompanyID   *uuid.UUID      `db:"company_id"`
	Title       string          `db:"title"`
	Description string          `db:"description"`
	Status      ComplaintStatus `db:"status"`
	AssignedTo  *uuid.UUID      `db:"assigned_to"`
}

var complaintTransitions = map[ComplaintStatus]ComplaintStatus{
	ComplaintOpen:       ComplaintInProgress,
	ComplaintInProgress: ComplaintResolved,
}

// CanTransitionTo allows exactly one step forward: open, in_progress, resolved.
func (s ComplaintStatus) CanTransitionTo(next ComplaintStatus) bool {
	return complaintTransitions[s] == next
}
