package middleware

import (
	"context"
	"errors"
	"strings"

	"bluujobs/internal/domain/user"
	"bluujobs/internal/pkg/jwt"

	"github.com/gofiber/fiber/v3"
)

const (
	ctxActorKey   = "actor"
	ctxSessionKey = "session_id"
)

// SessionLookup resolves the stored session a token is bound to.
type SessionLookup interface {
	CurrentUser(ctx context.Context, scope string) (user.User, bool, error)
}

type AuthMiddleware struct {
	jwt      jwt.Service
	sessions SessionLookup
}

func NewAuthMiddleware(jwtSvc jwt.Service, sessions SessionLookup) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwtSvc, sessions: sessions}
}

// Middleware accepts a bearer access token whose session still exists and
// stores the acting user on the request.
func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := BearerToken(c.Get("Authorization"))
		if !ok {
			return Unauthorized("Unauthorized", nil)
		}

		claims, err := m.jwt.ValidateAccessToken(token)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return Unauthorized("Token expired", err)
			}
			return Unauthorized("Invalid token", err)
		}
		if claims.SessionID == "" {
			return Unauthorized("Invalid token", nil)
		}

		u, ok, err := m.sessions.CurrentUser(c.Context(), claims.SessionID)
		if err != nil {
			return Internal(err)
		}
		if !ok || u.ID != claims.UserID {
			return Unauthorized("Session ended", nil)
		}

		c.Locals(ctxActorKey, user.Actor{ID: u.ID, Type: u.UserType})
		c.Locals(ctxSessionKey, claims.SessionID)
		return c.Next()
	}
}

// RequireAdmin rejects actors without admin rights. It must run after
// Middleware.
func RequireAdmin() fiber.Handler {
	return func(c fiber.Ctx) error {
		a, ok := ActorFrom(c)
		if !ok {
			return Unauthorized("Unauthorized", nil)
		}
		if !a.IsAdmin() {
			return Forbidden(nil)
		}
		return c.Next()
	}
}

func ActorFrom(c fiber.Ctx) (user.Actor, bool) {
	a, ok := c.Locals(ctxActorKey).(user.Actor)
	return a, ok
}

// SessionFrom returns the session scope of the authenticated request.
func SessionFrom(c fiber.Ctx) string {
	s, _ := c.Locals(ctxSessionKey).(string)
	return s
}

func BearerToken(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}
