package usecase

import (
	"context"
	"errors"
	"strings"

	"telehealth-consult/internal/converter"
	"telehealth-consult/internal/delivery/dto"
	"telehealth-consult/internal/domain/entity"
	"telehealth-consult/internal/domain/repository"
	"telehealth-consult/internal/service"
	"telehealth-consult/internal/storage"
	"telehealth-consult/pkg/jwt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrInvalidCredentials    = errors.New("invalid username, password or role")
	ErrInvalidToken          = errors.New("invalid or expired token")
	ErrTokenRevoked          = errors.New("token has been revoked")
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidRole           = errors.New("invalid role")
	ErrAdminSignupDisabled   = errors.New("admin signup is disabled")
	ErrForbidden             = errors.New("forbidden")
)

type AuthUsecase interface {
	CreateAccount(ctx context.Context, req *dto.RegisterRequest, role entity.Role, picture []byte) (*dto.UserResponse, error)
	Authenticate(ctx context.Context, username, password string, role entity.Role) (*entity.User, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, session *entity.Session, refreshTokenID string) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	ValidateAccessToken(ctx context.Context, token string) (*entity.Session, error)
	GetCurrentUser(ctx context.Context, session *entity.Session) (*dto.UserResponse, error)
	ListPatients(ctx context.Context, session *entity.Session) (*dto.UserListResponse, error)
}

type AuthOptions struct {
	AllowAdminSignup bool
}

type authUsecase struct {
	log          *logrus.Logger
	userRepo     repository.UserRepository
	profiles     *storage.ProfileStore
	jwtService   *jwt.JWTService
	sessions     service.SessionStore
	auditService service.AuditService
	opts         AuthOptions
}

func NewAuthUsecase(
	log *logrus.Logger,
	userRepo repository.UserRepository,
	profiles *storage.ProfileStore,
	jwtService *jwt.JWTService,
	sessions service.SessionStore,
	auditService service.AuditService,
	opts AuthOptions,
) AuthUsecase {
	return &authUsecase{
		log:          log,
		userRepo:     userRepo,
		profiles:     profiles,
		jwtService:   jwtService,
		sessions:     sessions,
		auditService: auditService,
		opts:         opts,
	}
}

// CreateAccount inserts a new user. Uniqueness of the username is left to the
// unique constraint so two concurrent signups cannot both succeed.
func (u *authUsecase) CreateAccount(ctx context.Context, req *dto.RegisterRequest, role entity.Role, picture []byte) (*dto.UserResponse, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if role == entity.RoleAdmin && !u.opts.AllowAdminSignup {
		return nil, ErrAdminSignupDisabled
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	user := &entity.User{
		Username: req.Username,
		Password: string(hashedPassword),
		Name:     req.Name,
		Age:      req.Age,
		Gender:   req.Gender,
		Address:  req.Address,
		Role:     role,
	}

	var staged *storage.StagedPicture
	if len(picture) > 0 {
		staged, err = u.profiles.Stage(req.Username, picture)
		if err != nil {
			return nil, err
		}
		defer staged.Discard()
		user.ProfilePicture = &staged.FileName
	}

	if err := u.userRepo.Create(ctx, user); err != nil {
		if isDuplicateKeyError(err, "username") {
			return nil, ErrUsernameAlreadyExists
		}
		u.log.Warnf("Failed to create user: %+v", err)
		return nil, err
	}

	// The account already exists at this point, so a picture that cannot be
	// stored is dropped rather than failing the signup.
	if staged != nil {
		if err := staged.Commit(); err != nil {
			u.log.Warnf("Failed to store profile picture for %s: %+v", user.Username, err)
			if err := u.userRepo.ClearProfilePicture(ctx, user.ID); err != nil {
				u.log.Warnf("Failed to clear profile picture for %s: %+v", user.Username, err)
			}
			user.ProfilePicture = nil
		}
	}

	u.auditService.LogCreate(ctx, &user.ID, entity.AuditActionUserRegister, "user", user.ID.String(), map[string]interface{}{
		"username": user.Username,
		"role":     user.Role,
	})

	return converter.UserToResponse(user), nil
}

// Authenticate checks the credentials for the given role. An unknown username,
// a role mismatch and a wrong password are indistinguishable to the caller.
func (u *authUsecase) Authenticate(ctx context.Context, username, password string, role entity.Role) (*entity.User, error) {
	user, err := u.userRepo.FindByUsername(ctx, username)
	if err != nil {
		u.log.Warnf("Failed to find user by username: %+v", err)
		return nil, err
	}
	if user == nil || user.Role != role {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := u.Authenticate(ctx, req.Username, req.Password, entity.Role(req.Role))
	if err != nil {
		return nil, err
	}

	tokens, err := u.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	tokens.User = converter.UserToResponse(user)

	u.auditService.LogEvent(ctx, &user.ID, entity.AuditActionUserLogin, entity.JSON{
		"role": user.Role,
	})

	return tokens, nil
}

func (u *authUsecase) Logout(ctx context.Context, session *entity.Session, refreshTokenID string) error {
	if session == nil {
		return ErrInvalidToken
	}

	if err := u.sessions.Revoke(ctx, service.TokenKindAccess, session.UserID, session.TokenID); err != nil {
		u.log.Warnf("Failed to delete access token: %+v", err)
		return err
	}

	if err := u.sessions.Revoke(ctx, service.TokenKindRefresh, session.UserID, refreshTokenID); err != nil {
		u.log.Warnf("Failed to delete refresh token: %+v", err)
		return err
	}

	u.auditService.LogEvent(ctx, &session.UserID, entity.AuditActionUserLogout, nil)

	return nil
}

func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	exists, err := u.sessions.Exists(ctx, service.TokenKindRefresh, claims.UserID, claims.TokenID)
	if err != nil {
		u.log.Warnf("Failed to check refresh token in Redis: %+v", err)
		return nil, err
	}
	if !exists {
		return nil, ErrTokenRevoked
	}

	if err := u.sessions.Revoke(ctx, service.TokenKindRefresh, claims.UserID, claims.TokenID); err != nil {
		u.log.Warnf("Failed to delete old refresh token: %+v", err)
		return nil, err
	}

	user, err := u.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}

	return u.issueTokens(ctx, user)
}

// ValidateAccessToken turns a bearer token into the caller's session, checking
// that it has not been revoked.
func (u *authUsecase) ValidateAccessToken(ctx context.Context, token string) (*entity.Session, error) {
	claims, err := u.jwtService.ValidateToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != jwt.AccessToken || !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}

	exists, err := u.sessions.Exists(ctx, service.TokenKindAccess, claims.UserID, claims.TokenID)
	if err != nil {
		u.log.Warnf("Failed to check access token in Redis: %+v", err)
		return nil, err
	}
	if !exists {
		return nil, ErrTokenRevoked
	}

	return claims.Session(), nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, session *entity.Session) (*dto.UserResponse, error) {
	if session == nil {
		return nil, ErrForbidden
	}

	user, err := u.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return converter.UserToResponse(user), nil
}

func (u *authUsecase) ListPatients(ctx context.Context, session *entity.Session) (*dto.UserListResponse, error) {
	if !session.IsAdmin() {
		return nil, ErrForbidden
	}

	users, err := u.userRepo.FindAllByRole(ctx, entity.RolePatient)
	if err != nil {
		u.log.Warnf("Failed to find patients: %+v", err)
		return nil, err
	}

	return &dto.UserListResponse{
		Users: converter.UsersToResponses(users),
		Total: len(users),
	}, nil
}

func (u *authUsecase) issueTokens(ctx context.Context, user *entity.User) (*dto.TokenResponse, error) {
	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(user)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(user)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	if err := u.sessions.Store(ctx, service.TokenKindAccess, user.ID, accessTokenID, u.jwtService.GetAccessExpiry()); err != nil {
		u.log.Warnf("Failed to store access token in Redis: %+v", err)
		return nil, err
	}

	if err := u.sessions.Store(ctx, service.TokenKindRefresh, user.ID, refreshTokenID, u.jwtService.GetRefreshExpiry()); err != nil {
		u.log.Warnf("Failed to store refresh token in Redis: %+v", err)
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}

// isDuplicateKeyError checks if the error is a PostgreSQL unique constraint violation
// containing the specified constraint name
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		if pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}
