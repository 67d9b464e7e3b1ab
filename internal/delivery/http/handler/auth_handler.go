package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"telehealth-consult/internal/delivery/dto"
	"telehealth-consult/internal/delivery/http/middleware"
	"telehealth-consult/internal/domain/entity"
	"telehealth-consult/internal/storage"
	"telehealth-consult/internal/usecase"
	"telehealth-consult/pkg/jwt"
	"telehealth-consult/pkg/response"
	"telehealth-consult/pkg/validator"
)

const maxProfilePictureSize = 5 << 20

type AuthHandler struct {
	authUsecase usecase.AuthUsecase
	validator   *validator.CustomValidator
	jwtService  *jwt.JWTService
}

func NewAuthHandler(authUsecase usecase.AuthUsecase, validator *validator.CustomValidator, jwtService *jwt.JWTService) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		validator:   validator,
		jwtService:  jwtService,
	}
}

// RegisterPatient handles patient signup
// @Summary Register a new patient
// @Tags Auth
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /auth/register/patient [post]
func (h *AuthHandler) RegisterPatient(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, entity.RolePatient)
}

// RegisterAdmin handles doctor signup
// @Summary Register a new admin (doctor)
// @Tags Auth
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /auth/register/admin [post]
func (h *AuthHandler) RegisterAdmin(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, entity.RoleAdmin)
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request, role entity.Role) {
	r.Body = http.MaxBytesReader(w, r.Body, maxProfilePictureSize+1<<20)
	if err := r.ParseMultipartForm(maxProfilePictureSize); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid form data", nil)
		return
	}

	age, err := strconv.Atoi(r.FormValue("age"))
	if err != nil {
		response.ValidationError(w, map[string]string{"age": "age must be a number"})
		return
	}

	req := dto.RegisterRequest{
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
		Name:     r.FormValue("name"),
		Age:      age,
		Gender:   r.FormValue("gender"),
		Address:  r.FormValue("address"),
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	picture, err := readProfilePicture(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid profile picture", nil)
		return
	}

	user, err := h.authUsecase.CreateAccount(r.Context(), &req, role, picture)
	if err != nil {
		switch err {
		case usecase.ErrUsernameAlreadyExists:
			response.Conflict(w, "Username already exists")
		case usecase.ErrAdminSignupDisabled:
			response.Forbidden(w, "Admin signup is disabled")
		case storage.ErrUnsupportedImage:
			response.Error(w, http.StatusBadRequest, err.Error(), nil)
		default:
			response.InternalServerError(w, "Failed to register user")
		}
		return
	}

	response.Success(w, http.StatusCreated, "User registered successfully", user)
}

// readProfilePicture returns nil when no picture was uploaded.
func readProfilePicture(r *http.Request) ([]byte, error) {
	file, _, err := r.FormFile("profile_picture")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(io.LimitReader(file, maxProfilePictureSize))
}

// Login handles user login
// @Summary Login user
// @Description Login with username, password and role
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	tokens, err := h.authUsecase.Login(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrInvalidCredentials:
			response.Error(w, http.StatusUnauthorized, "Invalid username, password or role", nil)
		default:
			response.InternalServerError(w, "Failed to login")
		}
		return
	}

	response.Success(w, http.StatusOK, "Login successful", tokens)
}

// Logout handles user logout
// @Summary Logout user
// @Description Logout and revoke tokens
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	// Get refresh token from request body if provided
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	refreshTokenID := ""
	if req.RefreshToken != "" {
		claims, err := h.jwtService.ValidateToken(req.RefreshToken)
		if err == nil && claims.UserID == session.UserID {
			refreshTokenID = claims.TokenID
		}
	}

	if err := h.authUsecase.Logout(r.Context(), session, refreshTokenID); err != nil {
		response.InternalServerError(w, "Failed to logout")
		return
	}

	response.Success(w, http.StatusOK, "Logout successful", nil)
}

// RefreshToken handles token refresh
// @Summary Refresh access token
// @Description Get new access token using refresh token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh Token Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/refresh-token [post]
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	tokens, err := h.authUsecase.RefreshToken(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrInvalidToken, usecase.ErrTokenRevoked:
			response.Error(w, http.StatusUnauthorized, err.Error(), nil)
		default:
			response.InternalServerError(w, "Failed to refresh token")
		}
		return
	}

	response.Success(w, http.StatusOK, "Token refreshed successfully", tokens)
}

// GetCurrentUser handles getting current user info
// @Summary Get current user
// @Description Get authenticated user information
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/me [get]
func (h *AuthHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	user, err := h.authUsecase.GetCurrentUser(r.Context(), session)
	if err != nil {
		switch err {
		case usecase.ErrUserNotFound:
			response.NotFound(w, "User not found")
		default:
			response.InternalServerError(w, "Failed to get user info")
		}
		return
	}

	response.Success(w, http.StatusOK, "User retrieved successfully", user)
}
