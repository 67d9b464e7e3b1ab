package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"telehealth-consult/internal/domain/entity"
	"telehealth-consult/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubValidator struct {
	sessions map[string]*entity.Session
	err      error
}

func (v *stubValidator) ValidateAccessToken(ctx context.Context, token string) (*entity.Session, error) {
	if v.err != nil {
		return nil, v.err
	}
	session, ok := v.sessions[token]
	if !ok {
		return nil, usecase.ErrInvalidToken
	}
	return session, nil
}

func TestAuthenticate(t *testing.T) {
	patient := &entity.Session{UserID: uuid.New(), Role: entity.RolePatient, TokenID: "t1"}
	validator := &stubValidator{sessions: map[string]*entity.Session{"good": patient}}

	var seen *entity.Session
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := NewAuthMiddleware(validator).Authenticate(next)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"unknown token", "Bearer bad", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusNoContent {
				assert.Equal(t, patient, seen)
			} else {
				assert.Nil(t, seen)
			}
		})
	}
}

func TestAuthenticateStoreFailure(t *testing.T) {
	handler := NewAuthMiddleware(&stubValidator{err: errors.New("redis down")}).
		Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		session    *entity.Session
		guard      func(http.Handler) http.Handler
		wantStatus int
	}{
		{"admin on admin route", &entity.Session{Role: entity.RoleAdmin}, RequireAdmin, http.StatusNoContent},
		{"patient on admin route", &entity.Session{Role: entity.RolePatient}, RequireAdmin, http.StatusForbidden},
		{"patient on patient route", &entity.Session{Role: entity.RolePatient}, RequirePatient, http.StatusNoContent},
		{"admin on patient route", &entity.Session{Role: entity.RoleAdmin}, RequirePatient, http.StatusForbidden},
		{"no session", nil, RequireAdmin, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.session != nil {
				req = req.WithContext(context.WithValue(req.Context(), SessionKey, tt.session))
			}
			rec := httptest.NewRecorder()

			tt.guard(ok).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
