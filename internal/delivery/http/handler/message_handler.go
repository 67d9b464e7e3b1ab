package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"telehealth-consult/internal/delivery/dto"
	"telehealth-consult/internal/delivery/http/middleware"
	"telehealth-consult/internal/usecase"
	"telehealth-consult/pkg/response"
	"telehealth-consult/pkg/validator"
)

type MessageHandler struct {
	messageUsecase usecase.MessageUsecase
	validator      *validator.CustomValidator
}

func NewMessageHandler(messageUsecase usecase.MessageUsecase, validator *validator.CustomValidator) *MessageHandler {
	return &MessageHandler{
		messageUsecase: messageUsecase,
		validator:      validator,
	}
}

// SendMessage appends to a consultation's chat thread
// @Summary Send a chat message
// @Tags Chat
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Consultation ID"
// @Param request body dto.SendMessageRequest true "Message"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /consultations/{id}/messages [post]
func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	id, ok := consultationID(w, r)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	msg, err := h.messageUsecase.Append(r.Context(), session, id, req.Body)
	if err != nil {
		writeConsultationError(w, err, "Failed to send message")
		return
	}

	response.Success(w, http.StatusCreated, "Message sent successfully", msg)
}

// ListMessages reads the thread. With ?wait=<seconds> it long-polls until a
// message newer than ?after= arrives.
// @Summary List chat messages
// @Tags Chat
// @Security BearerAuth
// @Produce json
// @Param id path int true "Consultation ID"
// @Param after query int false "Only messages with a greater ID"
// @Param wait query int false "Seconds to wait for new messages"
// @Success 200 {object} response.Response
// @Router /consultations/{id}/messages [get]
func (h *MessageHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	id, ok := consultationID(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	var afterID int64
	if v := query.Get("after"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil || parsed < 0 {
			response.Error(w, http.StatusBadRequest, "Invalid after parameter", nil)
			return
		}
		afterID = parsed
	}

	var (
		page *dto.MessageListResponse
		err  error
	)
	if v := query.Get("wait"); v != "" {
		seconds, convErr := strconv.Atoi(v)
		if convErr != nil || seconds < 0 {
			response.Error(w, http.StatusBadRequest, "Invalid wait parameter", nil)
			return
		}
		page, err = h.messageUsecase.WaitForMessages(r.Context(), session, id, afterID, time.Duration(seconds)*time.Second)
	} else {
		page, err = h.messageUsecase.ListByConsultation(r.Context(), session, id, afterID)
	}
	if err != nil {
		writeConsultationError(w, err, "Failed to get messages")
		return
	}

	response.Success(w, http.StatusOK, "Messages retrieved successfully", page)
}
