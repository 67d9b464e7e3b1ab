package handler

import (
	"net/http"

	"telehealth-consult/internal/delivery/http/middleware"
	"telehealth-consult/internal/usecase"
	"telehealth-consult/pkg/response"
)

// PatientHandler serves the admin view of registered patients.
type PatientHandler struct {
	authUsecase usecase.AuthUsecase
}

func NewPatientHandler(authUsecase usecase.AuthUsecase) *PatientHandler {
	return &PatientHandler{
		authUsecase: authUsecase,
	}
}

func (h *PatientHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	patients, err := h.authUsecase.ListPatients(r.Context(), session)
	if err != nil {
		switch err {
		case usecase.ErrForbidden:
			response.Forbidden(w, "You don't have permission to access this resource")
		default:
			response.InternalServerError(w, "Failed to get patients")
		}
		return
	}

	response.Success(w, http.StatusOK, "Patients retrieved successfully", patients)
}
