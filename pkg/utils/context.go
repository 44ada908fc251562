package utils

import (
	"context"

	"bizdesk/internal/data/entity"

	"github.com/google/uuid"
)

type contextKey string

const (
	UserKey  contextKey = "user"
	TokenKey contextKey = "token"
)

// SetUserContext stores the resolved session owner for downstream handlers.
func SetUserContext(ctx context.Context, user *entity.ResolvedUser) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

func GetUserFromContext(ctx context.Context) (*entity.ResolvedUser, bool) {
	user, ok := ctx.Value(UserKey).(*entity.ResolvedUser)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	user, ok := GetUserFromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return user.ID, true
}

// GetTokenFromContext mendapatkan token dari context
func GetTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok && token != ""
}

// SetTokenContext menambahkan token ke context
func SetTokenContext(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, TokenKey, token)
}
