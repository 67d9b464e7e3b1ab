package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"telehealth-consult/internal/domain/entity"
	"telehealth-consult/internal/usecase"
	"telehealth-consult/pkg/response"
)

type contextKey string

const SessionKey contextKey = "session"

// SessionValidator resolves a bearer token to a live session.
type SessionValidator interface {
	ValidateAccessToken(ctx context.Context, token string) (*entity.Session, error)
}

type AuthMiddleware struct {
	validator SessionValidator
}

func NewAuthMiddleware(validator SessionValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		session, err := m.validator.ValidateAccessToken(r.Context(), parts[1])
		if err != nil {
			switch {
			case errors.Is(err, usecase.ErrInvalidToken):
				response.Unauthorized(w, "Invalid or expired token")
			case errors.Is(err, usecase.ErrTokenRevoked):
				response.Unauthorized(w, "Token has been revoked")
			default:
				response.InternalServerError(w, "Failed to validate token")
			}
			return
		}

		ctx := context.WithValue(r.Context(), SessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionFromContext extracts the caller's session set by Authenticate
func SessionFromContext(ctx context.Context) (*entity.Session, bool) {
	session, ok := ctx.Value(SessionKey).(*entity.Session)
	return session, ok && session != nil
}
