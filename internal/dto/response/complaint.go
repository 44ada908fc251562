package response

import (
	"time"

	"bizdesk/internal/data/entity"
)

type ComplaintResponse struct {
	ID          string                 `json:"id"`
	UserID      string                 `json:"user_id"`
	CompanyID   *string                `json:"company_id,omitempty"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Status      entity.ComplaintStatus `json:"status"`
	AssignedTo  *string                `json:"assigned_to,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

func ComplaintToResponse(c *entity.Complaint) ComplaintResponse {
	return ComplaintResponse{
		ID:          c.ID.String(),
		UserID:      c.UserID.String(),
		CompanyID:   uuidString(c.CompanyID),
		Title:       c.Title,
		Description: c.Description,
		Status:      c.Status,
		AssignedTo:  uuidString(c.AssignedTo),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func ComplaintsToResponse(list []*entity.Complaint) []ComplaintResponse {
	out := make([]ComplaintResponse, 0, len(list))
	for _, c := range list {
		out = append(out, ComplaintToResponse(c))
	}
	return out
}
