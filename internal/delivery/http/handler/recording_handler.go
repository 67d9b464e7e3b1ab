package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"telehealth-consult/internal/delivery/dto"
	"telehealth-consult/internal/delivery/http/middleware"
	"telehealth-consult/internal/domain/entity"
	"telehealth-consult/internal/media"
	"telehealth-consult/internal/usecase"
	"telehealth-consult/pkg/response"
	"telehealth-consult/pkg/validator"

	"github.com/gorilla/mux"
)

type RecordingHandler struct {
	recordingUsecase usecase.RecordingUsecase
	validator        *validator.CustomValidator
}

func NewRecordingHandler(recordingUsecase usecase.RecordingUsecase, validator *validator.CustomValidator) *RecordingHandler {
	return &RecordingHandler{
		recordingUsecase: recordingUsecase,
		validator:        validator,
	}
}

// Record captures the caller's side of a video consultation. The request
// stays open for the whole capture; dropping it stops the capture.
// @Summary Record a video consultation
// @Tags Video
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Consultation ID"
// @Param request body dto.RecordRequest false "Capture length"
// @Success 201 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /consultations/{id}/recordings [post]
func (h *RecordingHandler) Record(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	id, ok := consultationID(w, r)
	if !ok {
		return
	}

	var req dto.RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	duration := time.Duration(req.DurationSeconds) * time.Second
	recording, err := h.recordingUsecase.RecordFixedDuration(r.Context(), session, id, duration)
	if err != nil {
		switch {
		case errors.Is(err, media.ErrDeviceUnavailable):
			response.ServiceUnavailable(w, "Capture device is unavailable")
		case errors.Is(err, media.ErrCaptureCancelled):
			response.Error(w, http.StatusRequestTimeout, "Capture was cancelled", nil)
		default:
			writeConsultationError(w, err, "Failed to record")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Recording stored successfully", recording)
}

// GetRecordingStatus reports which sides of the consultation were recorded.
func (h *RecordingHandler) GetRecordingStatus(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	id, ok := consultationID(w, r)
	if !ok {
		return
	}

	status, err := h.recordingUsecase.Status(r.Context(), session, id)
	if err != nil {
		writeConsultationError(w, err, "Failed to get recordings")
		return
	}

	response.Success(w, http.StatusOK, "Recordings retrieved successfully", status)
}

// GetRecording streams one side's recording back, 404 when it was never made.
func (h *RecordingHandler) GetRecording(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	id, ok := consultationID(w, r)
	if !ok {
		return
	}
	role := entity.RecordingRole(mux.Vars(r)["role"])

	recording, err := h.recordingUsecase.FetchIfExists(r.Context(), session, id, role)
	if err != nil {
		writeConsultationError(w, err, "Failed to get recording")
		return
	}
	if recording == nil {
		response.NotFound(w, "No recording yet")
		return
	}

	response.Binary(w, recording.ContentType, recording.Data)
}
