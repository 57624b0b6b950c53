package service

import (
	"context"
	"errors"
	"log"
	"time"

	"projecthub/internal/apperr"
	"projecthub/internal/model"
	"projecthub/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ResetTokenType marks tokens issued after a successful OTP verification;
// only tokens of this type may reset a password.
const ResetTokenType = "OTP_VERIFICATION"

// PermissionClaim is the typed shape of one permission entry flattened
// into an access token.
type PermissionClaim struct {
	Module    string `json:"module"`
	CanView   bool   `json:"canView"`
	CanCreate bool   `json:"canCreate"`
	CanUpdate bool   `json:"canUpdate"`
	CanDelete bool   `json:"canDelete"`
}

// Claims is the full claim set carried by tokens issued here. Access
// tokens fill every field; refresh tokens carry only the registered
// claims; reset tokens carry Email and Type.
type Claims struct {
	ID          uint              `json:"id,omitempty"`
	Email       string            `json:"email,omitempty"`
	Role        string            `json:"role,omitempty"`
	Permissions []PermissionClaim `json:"permissions,omitempty"`
	Type        string            `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// IntrospectResponse reports token validity without exposing the failure.
type IntrospectResponse struct {
	Valid bool `json:"valid"`
}

// TokenService issues and validates HMAC-SHA512 signed tokens. The signing
// key is fixed at construction; issuers and validators must share it.
type TokenService interface {
	GenerateAccessToken(user *model.User) (string, error)
	GenerateRefreshToken(user *model.User) (string, error)
	GenerateResetToken(email string) (string, error)
	ValidateToken(token string) (*Claims, error)
	Introspect(token string) IntrospectResponse
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
}

type tokenService struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	resetTTL   time.Duration
	userRepo   repository.UserRepository
}

// NewTokenService returns a TokenService signing with the given key
func NewTokenService(key []byte, accessTTL, refreshTTL, resetTTL time.Duration, userRepo repository.UserRepository) TokenService {
	return &tokenService{
		key:        key,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		resetTTL:   resetTTL,
		userRepo:   userRepo,
	}
}

// PermissionClaimsFor flattens a role's permission rows into token claims
func PermissionClaimsFor(role model.Role) []PermissionClaim {
	claims := make([]PermissionClaim, 0, len(role.Permissions))
	for _, p := range role.Permissions {
		claims = append(claims, PermissionClaim{
			Module:    p.Module.Name,
			CanView:   p.CanView,
			CanCreate: p.CanCreate,
			CanUpdate: p.CanUpdate,
			CanDelete: p.CanDelete,
		})
	}
	return claims
}

func (s *tokenService) GenerateAccessToken(user *model.User) (string, error) {
	now := time.Now()
	claims := Claims{
		ID:          user.ID,
		Email:       user.Email,
		Role:        user.Role.Name,
		Permissions: PermissionClaimsFor(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(s.key)
	if err != nil {
		return "", apperr.New(apperr.TokenGenerationFailed, "")
	}
	return signed, nil
}

func (s *tokenService) GenerateRefreshToken(user *model.User) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(s.key)
	if err != nil {
		return "", apperr.New(apperr.TokenGenerationFailed, "")
	}
	return signed, nil
}

func (s *tokenService) GenerateResetToken(email string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		Type:  ResetTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.resetTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(s.key)
	if err != nil {
		return "", apperr.New(apperr.TokenGenerationFailed, "")
	}
	return signed, nil
}

// ValidateToken parses and verifies a token, classifying failures by kind.
// It never returns claims alongside an error.
func (s *tokenService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, apperr.New(apperr.TokenExpired, "")
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, apperr.New(apperr.TokenMalformed, "")
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
			return nil, apperr.New(apperr.TokenSignatureInvalid, "")
		default:
			return nil, apperr.New(apperr.TokenInvalid, "")
		}
	}

	return claims, nil
}

// Introspect re-runs validation and reports the outcome instead of failing.
// It is the outer gate of the two-stage check in the auth middleware.
func (s *tokenService) Introspect(tokenString string) IntrospectResponse {
	if _, err := s.ValidateToken(tokenString); err != nil {
		log.Printf("Token introspection failed: %v", err)
		return IntrospectResponse{Valid: false}
	}
	return IntrospectResponse{Valid: true}
}

// RefreshAccessToken validates the refresh token and re-issues an access
// token from the user's current role and permissions. Refresh tokens carry
// no permission claims, so the user is always re-loaded from the store;
// permission changes made after the original login take effect here.
func (s *tokenService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.ValidateToken(refreshToken)
	if err != nil {
		return "", err
	}

	user, err := s.userRepo.GetByEmail(ctx, claims.Subject)
	if err != nil {
		return "", apperr.New(apperr.UserNotFound, "")
	}

	return s.GenerateAccessToken(user)
}
