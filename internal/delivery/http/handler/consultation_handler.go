package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"telehealth-consult/internal/delivery/dto"
	"telehealth-consult/internal/delivery/http/middleware"
	"telehealth-consult/internal/domain/entity"
	"telehealth-consult/internal/usecase"
	"telehealth-consult/pkg/response"
	"telehealth-consult/pkg/validator"

	"github.com/gorilla/mux"
)

type ConsultationHandler struct {
	consultationUsecase usecase.ConsultationUsecase
	validator           *validator.CustomValidator
}

func NewConsultationHandler(consultationUsecase usecase.ConsultationUsecase, validator *validator.CustomValidator) *ConsultationHandler {
	return &ConsultationHandler{
		consultationUsecase: consultationUsecase,
		validator:           validator,
	}
}

// CreateConsultation handles a patient's consultation request
// @Summary Request a consultation
// @Tags Consultation
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateConsultationRequest true "Consultation details"
// @Success 201 {object} response.Response
// @Router /patient/consultations [post]
func (h *ConsultationHandler) CreateConsultation(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	var req dto.CreateConsultationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	consultation, err := h.consultationUsecase.CreateConsultation(r.Context(), session, &req)
	if err != nil {
		writeConsultationError(w, err, "Failed to create consultation")
		return
	}

	response.Success(w, http.StatusCreated, "Consultation created successfully", consultation)
}

// ListMyConsultations returns the caller's consultations for ?modality=
func (h *ConsultationHandler) ListMyConsultations(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	consultations, err := h.consultationUsecase.ListByPatient(r.Context(), session, modalityParam(r))
	if err != nil {
		writeConsultationError(w, err, "Failed to get consultations")
		return
	}

	response.Success(w, http.StatusOK, "Consultations retrieved successfully", consultations)
}

// ListConsultations returns every consultation of ?modality= for the doctor view
func (h *ConsultationHandler) ListConsultations(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	consultations, err := h.consultationUsecase.ListByModality(r.Context(), session, modalityParam(r))
	if err != nil {
		writeConsultationError(w, err, "Failed to get consultations")
		return
	}

	response.Success(w, http.StatusOK, "Consultations retrieved successfully", consultations)
}

func (h *ConsultationHandler) GetConsultation(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	id, ok := consultationID(w, r)
	if !ok {
		return
	}

	consultation, err := h.consultationUsecase.GetConsultation(r.Context(), session, id)
	if err != nil {
		writeConsultationError(w, err, "Failed to get consultation")
		return
	}

	response.Success(w, http.StatusOK, "Consultation retrieved successfully", consultation)
}

// UpdateStatus handles the doctor's decision on a consultation
// @Summary Update consultation status
// @Tags Consultation
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Consultation ID"
// @Param request body dto.UpdateConsultationStatusRequest true "New status"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/consultations/{id}/status [put]
func (h *ConsultationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	id, ok := consultationID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateConsultationStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	consultation, err := h.consultationUsecase.UpdateStatus(r.Context(), session, id, &req)
	if err != nil {
		writeConsultationError(w, err, "Failed to update consultation status")
		return
	}

	response.Success(w, http.StatusOK, "Consultation status updated successfully", consultation)
}

func modalityParam(r *http.Request) entity.Modality {
	return entity.Modality(r.URL.Query().Get("modality"))
}

func consultationID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		response.Error(w, http.StatusBadRequest, "Invalid consultation ID", nil)
		return 0, false
	}
	return id, true
}

// writeConsultationError maps the errors shared by every consultation-scoped
// usecase. Anything else becomes a 500 with the fallback message.
func writeConsultationError(w http.ResponseWriter, err error, fallback string) {
	switch err {
	case usecase.ErrForbidden:
		response.Forbidden(w, "You don't have permission to access this consultation")
	case usecase.ErrConsultationNotFound:
		response.NotFound(w, "Consultation not found")
	case usecase.ErrConsultationNotAvailable:
		response.Error(w, http.StatusConflict, "Consultation is not available yet", nil)
	case usecase.ErrInvalidModality, usecase.ErrInvalidStatus, usecase.ErrEmptyMessage, usecase.ErrInvalidRecordingRole:
		response.Error(w, http.StatusBadRequest, err.Error(), nil)
	default:
		response.InternalServerError(w, fallback)
	}
}
