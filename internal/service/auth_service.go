package service

import (
	"context"
	"errors"
	"log"
	"regexp"

	"projecthub/internal/apperr"
	"projecthub/internal/model"
	"projecthub/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	emailRegex     = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
	hasLetterRegex = regexp.MustCompile(`[A-Za-z]`)
	hasDigitRegex  = regexp.MustCompile(`[0-9]`)
)

func isValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// isValidPassword requires at least 8 characters with at least one letter
// and one number.
func isValidPassword(password string) bool {
	return len(password) >= 8 &&
		hasLetterRegex.MatchString(password) &&
		hasDigitRegex.MatchString(password)
}

// --- DTOs ---

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required"`
}

type VerifyOTPResponse struct {
	Token string `json:"token"` // short-lived reset token, type OTP_VERIFICATION
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type IntrospectRequest struct {
	Token string `json:"token" binding:"required"`
}

type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService covers login, registration and the OTP-backed recovery flow
type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Register(ctx context.Context, req RegisterRequest) error
	VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*VerifyOTPResponse, error)
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
}

type authService struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
	tokens   TokenService
	email    EmailService
}

func NewAuthService(userRepo repository.UserRepository, roleRepo repository.RoleRepository, tokens TokenService, email EmailService) AuthService {
	return &authService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		tokens:   tokens,
		email:    email,
	}
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if !isValidEmail(req.Email) {
		return nil, apperr.New(apperr.InvalidEmailFormat, "")
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperr.New(apperr.UserNotFound, "")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperr.New(apperr.AccountInvalid, "")
	}

	accessToken, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Register creates an unverified DEVELOPER account and sends the
// verification OTP. The account stays unverified until VerifyOTP succeeds.
func (s *authService) Register(ctx context.Context, req RegisterRequest) error {
	if !isValidEmail(req.Email) {
		return apperr.New(apperr.InvalidEmailFormat, "")
	}
	if !isValidPassword(req.Password) {
		return apperr.New(apperr.InvalidPasswordFormat, "")
	}
	if req.Password != req.ConfirmPassword {
		return apperr.New(apperr.InvalidRequest, "Passwords do not match")
	}

	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return apperr.New(apperr.DuplicateEntity, "A user with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.New(apperr.Internal, "")
	}

	role, err := s.roleRepo.GetByName(ctx, model.RoleDeveloper)
	if err != nil {
		return apperr.New(apperr.Internal, "Default role is not seeded")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperr.New(apperr.Internal, "")
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		RoleID:   role.ID,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return apperr.New(apperr.Internal, "")
	}

	log.Printf("Registered new user ID %d (%s)", user.ID, user.Email)

	return s.email.SendOTP(ctx, req.Email)
}

// VerifyOTP consumes the OTP, marks the account verified and returns a
// short-lived reset token for the password-recovery path.
func (s *authService) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*VerifyOTPResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperr.New(apperr.UserNotFound, "")
	}

	if err := s.email.CheckOTP(ctx, req.Email, req.OTP); err != nil {
		return nil, err
	}

	if !user.Verified {
		user.Verified = true
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, apperr.New(apperr.Internal, "")
		}
	}

	token, err := s.tokens.GenerateResetToken(req.Email)
	if err != nil {
		return nil, err
	}
	return &VerifyOTPResponse{Token: token}, nil
}

func (s *authService) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error {
	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err != nil {
		return apperr.New(apperr.UserNotFound, "")
	}
	return s.email.SendOTP(ctx, req.Email)
}

// ResetPassword accepts only tokens minted by VerifyOTP (type
// OTP_VERIFICATION) and updates the password for the token's email.
func (s *authService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	claims, err := s.tokens.ValidateToken(req.Token)
	if err != nil {
		return apperr.New(apperr.PasswordResetFailed, "")
	}

	if claims.Email == "" || claims.Type != ResetTokenType {
		return apperr.New(apperr.TokenInvalid, "")
	}

	if !isValidPassword(req.NewPassword) {
		return apperr.New(apperr.InvalidPasswordFormat, "")
	}

	user, err := s.userRepo.GetByEmail(ctx, claims.Email)
	if err != nil {
		return apperr.New(apperr.UserNotFound, "")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperr.New(apperr.Internal, "")
	}

	user.Password = string(hashed)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return apperr.New(apperr.PasswordResetFailed, "")
	}

	log.Printf("Password reset successful for user %s", claims.Email)
	return nil
}
