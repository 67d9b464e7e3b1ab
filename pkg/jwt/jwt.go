package jwt

import (
	"errors"
	"time"

	"telehealth-consult/config"
	"telehealth-consult/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

var ErrInvalidSigningMethod = errors.New("invalid signing method")

type Claims struct {
	UserID    uuid.UUID   `json:"user_id"`
	Username  string      `json:"username"`
	Role      entity.Role `json:"role"`
	TokenType TokenType   `json:"token_type"`
	TokenID   string      `json:"token_id"`
	jwt.RegisteredClaims
}

type JWTService struct {
	config config.JWTConfig
}

func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{config: cfg}
}

// GenerateAccessToken returns the signed token and its id.
func (s *JWTService) GenerateAccessToken(user *entity.User) (string, string, error) {
	return s.generate(user, AccessToken, s.config.AccessExpiry)
}

func (s *JWTService) GenerateRefreshToken(user *entity.User) (string, string, error) {
	return s.generate(user, RefreshToken, s.config.RefreshExpiry)
}

func (s *JWTService) generate(user *entity.User, tokenType TokenType, expiry time.Duration) (string, string, error) {
	tokenID := uuid.New().String()
	now := time.Now()
	claims := Claims{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		TokenType: tokenType,
		TokenID:   tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", "", err
	}

	return signedToken, tokenID, nil
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSigningMethod
		}
		return []byte(s.config.Secret), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// Session turns validated claims into the caller identity passed to usecases.
func (c *Claims) Session() *entity.Session {
	return &entity.Session{
		UserID:   c.UserID,
		Username: c.Username,
		Role:     c.Role,
		TokenID:  c.TokenID,
	}
}

func (s *JWTService) GetAccessExpiry() time.Duration {
	return s.config.AccessExpiry
}

func (s *JWTService) GetRefreshExpiry() time.Duration {
	return s.config.RefreshExpiry
}
