package response

import (
	"time"

	"bizdesk/internal/data/entity"

	"github.com/google/uuid"
)

type CompanyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

func CompanyToResponse(c *entity.Company) CompanyResponse {
	return CompanyResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		OwnerID:   c.OwnerID.String(),
		CreatedAt: c.CreatedAt,
	}
}

type InvitationResponse struct {
	ID          string                  `json:"id"`
	Email       string                  `json:"email"`
	Role        entity.UserRole         `json:"role"`
	CompanyID   *string                 `json:"company_id,omitempty"`
	CompanyName *string                 `json:"company_name,omitempty"`
	Status      entity.InvitationStatus `json:"status"`
	ExpiresAt   time.Time               `json:"expires_at"`
	Expired     bool                    `json:"expired"`
	InviteURL   string                  `json:"invite_url,omitempty"`
	Delivery    *DeliveryResponse       `json:"delivery,omitempty"`
}

func InvitationToResponse(inv *entity.Invitation, companyName *string, now time.Time) InvitationResponse {
	return InvitationResponse{
		ID:          inv.ID.String(),
		Email:       inv.Email,
		Role:        inv.Role,
		CompanyID:   uuidString(inv.CompanyID),
		CompanyName: companyName,
		Status:      inv.Status,
		ExpiresAt:   inv.ExpiresAt,
		Expired:     inv.Expired(now),
	}
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
