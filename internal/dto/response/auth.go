package response

import (
	"time"

	"bizdesk/internal/data/entity"
)

type UserResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Phone         *string         `json:"phone,omitempty"`
	EmailVerified bool            `json:"is_email_verified"`
	PhoneVerified bool            `json:"is_phone_verified"`
	Role          entity.UserRole `json:"role"`
	CompanyID     *string         `json:"company_id,omitempty"`
	CompanyName   *string         `json:"company_name,omitempty"`
	CreatedAt     *time.Time      `json:"created_at,omitempty"`
}

type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DeliveryResponse tells the caller whether a code or link actually left the
// server. Sent=false means the user will not receive it.
type DeliveryResponse struct {
	Channel string `json:"channel"`
	Sent    bool   `json:"sent"`
	Error   string `json:"error,omitempty"`
}

// AuthResponse is either a verification prompt or a user with a fresh session.
type AuthResponse struct {
	NeedsVerification bool              `json:"needsVerification,omitempty"`
	Email             string            `json:"email,omitempty"`
	Delivery          *DeliveryResponse `json:"delivery,omitempty"`
	User              *UserResponse     `json:"user,omitempty"`
	Session           *SessionResponse  `json:"session,omitempty"`
}

type OTPDispatchResponse struct {
	Recipient string           `json:"recipient"`
	ExpiresAt time.Time        `json:"expires_at"`
	Delivery  DeliveryResponse `json:"delivery"`
}

// Helper converters
func UserToResponse(user *entity.User, companyName *string) UserResponse {
	createdAt := user.CreatedAt
	return UserResponse{
		ID:            user.ID.String(),
		Name:          user.Name,
		Email:         user.Email,
		Phone:         user.Phone,
		EmailVerified: user.EmailVerified,
		PhoneVerified: user.PhoneVerified,
		Role:          user.Role,
		CompanyID:     uuidString(user.CompanyID),
		CompanyName:   companyName,
		CreatedAt:     &createdAt,
	}
}

func ResolvedToResponse(user *entity.ResolvedUser) UserResponse {
	return UserResponse{
		ID:            user.ID.String(),
		Name:          user.Name,
		Email:         user.Email,
		Phone:         user.Phone,
		EmailVerified: user.EmailVerified,
		PhoneVerified: user.PhoneVerified,
		Role:          user.Role,
		CompanyID:     uuidString(user.CompanyID),
		CompanyName:   user.CompanyName,
	}
}

func SessionToResponse(session *entity.Session) *SessionResponse {
	if session == nil {
		return nil
	}
	return &SessionResponse{Token: session.Token, ExpiresAt: session.ExpiresAt}
}
