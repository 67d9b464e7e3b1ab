package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"telehealth-consult/internal/delivery/http/middleware"
	"telehealth-consult/internal/usecase"
	"telehealth-consult/pkg/response"
)

type FAQHandler struct {
	faqUsecase usecase.FAQUsecase
}

func NewFAQHandler(faqUsecase usecase.FAQUsecase) *FAQHandler {
	return &FAQHandler{
		faqUsecase: faqUsecase,
	}
}

// Search ranks the FAQ corpus against ?q=, returning ?k= entries
// @Summary Search the FAQ
// @Tags FAQ
// @Produce json
// @Param q query string true "Question"
// @Param k query int false "Number of answers"
// @Success 200 {object} response.Response
// @Router /faq/search [get]
func (h *FAQHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		response.ValidationError(w, map[string]string{"q": "q is required"})
		return
	}

	k := 0
	if v := r.URL.Query().Get("k"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 || parsed > 50 {
			response.ValidationError(w, map[string]string{"k": "k must be between 0 and 50"})
			return
		}
		k = parsed
	}

	results, err := h.faqUsecase.Search(r.Context(), query, k)
	if err != nil {
		if errors.Is(err, usecase.ErrSearchFailed) {
			response.InternalServerError(w, "FAQ search is unavailable")
			return
		}
		response.InternalServerError(w, "Failed to search FAQ")
		return
	}

	response.Success(w, http.StatusOK, "FAQ results retrieved successfully", results)
}

// Reload re-reads the corpus file
func (h *FAQHandler) Reload(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	n, err := h.faqUsecase.Reload(r.Context(), session)
	if err != nil {
		switch err {
		case usecase.ErrForbidden:
			response.Forbidden(w, "You don't have permission to access this resource")
		default:
			response.InternalServerError(w, "Failed to reload FAQ corpus")
		}
		return
	}

	response.Success(w, http.StatusOK, "FAQ corpus reloaded", map[string]int{"entries": n})
}
