package response

import (
	"time"

	"bizdesk/internal/data/entity"
)

type RoleChangeResponse struct {
	ID        string          `json:"id"`
	OldRole   entity.UserRole `json:"old_role"`
	NewRole   entity.UserRole `json:"new_role"`
	Reason    string          `json:"reason"`
	ChangedBy *string         `json:"changed_by,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func RoleChangeToResponse(c *entity.RoleChange) RoleChangeResponse {
	return RoleChangeResponse{
		ID:        c.ID.String(),
		OldRole:   c.OldRole,
		NewRole:   c.NewRole,
		Reason:    c.Reason,
		ChangedBy: uuidString(c.ChangedBy),
		CreatedAt: c.CreatedAt,
	}
}
