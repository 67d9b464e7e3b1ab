package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"telehealth-consult/internal/delivery/dto"
	"telehealth-consult/internal/delivery/http/middleware"
	"telehealth-consult/internal/domain/entity"
	"telehealth-consult/internal/usecase"
	"telehealth-consult/pkg/response"
	"telehealth-consult/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMessageUsecase struct {
	mock.Mock
}

func (m *mockMessageUsecase) Append(ctx context.Context, session *entity.Session, consultationID int64, body string) (*dto.MessageResponse, error) {
	args := m.Called(ctx, session, consultationID, body)
	res, _ := args.Get(0).(*dto.MessageResponse)
	return res, args.Error(1)
}

func (m *mockMessageUsecase) ListByConsultation(ctx context.Context, session *entity.Session, consultationID int64, afterID int64) (*dto.MessageListResponse, error) {
	args := m.Called(ctx, session, consultationID, afterID)
	res, _ := args.Get(0).(*dto.MessageListResponse)
	return res, args.Error(1)
}

func (m *mockMessageUsecase) WaitForMessages(ctx context.Context, session *entity.Session, consultationID int64, afterID int64, timeout time.Duration) (*dto.MessageListResponse, error) {
	args := m.Called(ctx, session, consultationID, afterID, timeout)
	res, _ := args.Get(0).(*dto.MessageListResponse)
	return res, args.Error(1)
}

func withSession(r *http.Request, session *entity.Session) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.SessionKey, session))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var body response.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestSendMessage(t *testing.T) {
	session := &entity.Session{UserID: uuid.New(), Role: entity.RolePatient}

	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{"stored", `{"body":"hello"}`, nil, http.StatusCreated},
		{"blank", `{"body":"  "}`, usecase.ErrEmptyMessage, http.StatusBadRequest},
		{"not open", `{"body":"hello"}`, usecase.ErrConsultationNotAvailable, http.StatusConflict},
		{"someone else's", `{"body":"hello"}`, usecase.ErrForbidden, http.StatusForbidden},
		{"missing", `{"body":"hello"}`, usecase.ErrConsultationNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockMessageUsecase{}
			var res *dto.MessageResponse
			if tt.err == nil {
				res = &dto.MessageResponse{ID: 1, ConsultationID: 7, Sender: "Patient", Body: "hello"}
			}
			uc.On("Append", mock.Anything, session, int64(7), mock.AnythingOfType("string")).Return(res, tt.err)

			h := NewMessageHandler(uc, validator.NewValidator())
			req := httptest.NewRequest(http.MethodPost, "/api/v1/consultations/7/messages", strings.NewReader(tt.body))
			req = mux.SetURLVars(withSession(req, session), map[string]string{"id": "7"})
			rec := httptest.NewRecorder()

			h.SendMessage(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.err == nil, decode(t, rec).Success)
			uc.AssertExpectations(t)
		})
	}
}

func TestSendMessageWithoutSession(t *testing.T) {
	uc := &mockMessageUsecase{}
	h := NewMessageHandler(uc, validator.NewValidator())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/consultations/7/messages", strings.NewReader(`{"body":"hi"}`))
	req = mux.SetURLVars(req, map[string]string{"id": "7"})
	rec := httptest.NewRecorder()

	h.SendMessage(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	uc.AssertNotCalled(t, "Append")
}

func TestListMessagesPollModes(t *testing.T) {
	session := &entity.Session{UserID: uuid.New(), Role: entity.RoleAdmin}
	page := &dto.MessageListResponse{Messages: []dto.MessageResponse{}, LastID: 3}

	t.Run("plain read", func(t *testing.T) {
		uc := &mockMessageUsecase{}
		uc.On("ListByConsultation", mock.Anything, session, int64(7), int64(3)).Return(page, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/consultations/7/messages?after=3", nil)
		req = mux.SetURLVars(withSession(req, session), map[string]string{"id": "7"})
		rec := httptest.NewRecorder()
		NewMessageHandler(uc, validator.NewValidator()).ListMessages(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		uc.AssertExpectations(t)
	})

	t.Run("long poll", func(t *testing.T) {
		uc := &mockMessageUsecase{}
		uc.On("WaitForMessages", mock.Anything, session, int64(7), int64(3), 10*time.Second).Return(page, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/consultations/7/messages?after=3&wait=10", nil)
		req = mux.SetURLVars(withSession(req, session), map[string]string{"id": "7"})
		rec := httptest.NewRecorder()
		NewMessageHandler(uc, validator.NewValidator()).ListMessages(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		uc.AssertExpectations(t)
	})

	t.Run("bad parameters", func(t *testing.T) {
		for _, q := range []string{"after=x", "after=-1", "wait=soon"} {
			uc := &mockMessageUsecase{}
			req := httptest.NewRequest(http.MethodGet, "/api/v1/consultations/7/messages?"+q, nil)
			req = mux.SetURLVars(withSession(req, session), map[string]string{"id": "7"})
			rec := httptest.NewRecorder()
			NewMessageHandler(uc, validator.NewValidator()).ListMessages(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code, q)
			uc.AssertNotCalled(t, "ListByConsultation")
			uc.AssertNotCalled(t, "WaitForMessages")
		}
	})
}
