package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/nexocrm/nexo/pkg/models"
)

type contextKey string

const (
	userKey      contextKey = "user"
	sessionIDKey contextKey = "session_id"
	teamIDKey    contextKey = "team_id"
	teamRoleKey  contextKey = "team_role"
)

func SetUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func GetUser(r *http.Request) (*models.User, bool) {
	u, ok := r.Context().Value(userKey).(*models.User)
	return u, ok
}

func setSessionID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

func GetSessionID(r *http.Request) (uuid.UUID, bool) {
	id, ok := r.Context().Value(sessionIDKey).(uuid.UUID)
	return id, ok
}

func SetTeamID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, teamIDKey, id)
}

func GetTeamID(r *http.Request) (uuid.UUID, bool) {
	id, ok := r.Context().Value(teamIDKey).(uuid.UUID)
	return id, ok
}

func setTeamRole(ctx context.Context, role models.Role) context.Context {
	return context.WithValue(ctx, teamRoleKey, role)
}

func GetTeamRole(r *http.Request) (models.Role, bool) {
	role, ok := r.Context().Value(teamRoleKey).(models.Role)
	return role, ok
}
