package handler

import (
	"net/http"

	"projecthub/internal/service"
	"projecthub/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService  service.AuthService
	tokenService service.TokenService
}

// NewAuthHandler sets up the routing dependencies for auth endpoints
func NewAuthHandler(authService service.AuthService, tokenService service.TokenService) *AuthHandler {
	return &AuthHandler{authService: authService, tokenService: tokenService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/verify-otp", h.VerifyOTP)
		auth.POST("/forgot-password", h.ForgotPassword)
		auth.POST("/reset-password", h.ResetPassword)
		auth.POST("/refresh", h.RefreshToken)
		auth.POST("/introspect", h.Introspect)
	}
}

// Register handles POST /auth/register
// @Summary      Register a new account
// @Description  Creates an unverified developer account and emails a one-time verification code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RegisterRequest  true  "Registration Payload"
// @Success      201      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.authService.Register(c.Request.Context(), req); err != nil {
		status, resp := response.FromError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, "Registration successful. Check your email for the verification code."))
}

// Login handles POST /auth/login
// @Summary      Login
// @Description  Authenticates by email and password, returning access and refresh tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Login Credentials"
// @Success      200      {object}  response.Response{data=service.AuthResponse}
// @Failure      400      {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	tokens, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		status, resp := response.FromError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tokens))
}

// VerifyOTP handles POST /auth/verify-otp
// @Summary      Verify one-time code
// @Description  Verifies the emailed code, marks the account verified and returns a short-lived reset token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.VerifyOTPRequest  true  "OTP Payload"
// @Success      200      {object}  response.Response{data=service.VerifyOTPResponse}
// @Failure      400      {object}  response.Response
// @Router       /auth/verify-otp [post]
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req service.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	res, err := h.authService.VerifyOTP(c.Request.Context(), req)
	if err != nil {
		status, resp := response.FromError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// ForgotPassword handles POST /auth/forgot-password
// @Summary      Request password reset
// @Description  Emails a one-time code used to verify ownership before a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.ForgotPasswordRequest  true  "Forgot Password Payload"
// @Success      200      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req service.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req); err != nil {
		status, resp := response.FromError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Verification code sent"))
}

// ResetPassword handles POST /auth/reset-password
// @Summary      Reset password
// @Description  Sets a new password using the reset token obtained from OTP verification
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.ResetPasswordRequest  true  "Reset Password Payload"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req service.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req); err != nil {
		status, resp := response.FromError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Password reset successful"))
}

// RefreshToken handles POST /auth/refresh
// @Summary      Refresh access token
// @Description  Issues a new access token from a valid refresh token, reflecting current permissions
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RefreshTokenRequest  true  "Refresh Token"
// @Success      200      {object}  response.Response{data=service.AuthResponse}
// @Failure      401      {object}  response.Response
// @Router       /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req service.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	accessToken, err := h.tokenService.RefreshAccessToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		status, resp := response.FromError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, service.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: req.RefreshToken,
	}))
}

// Introspect handles POST /auth/introspect
// @Summary      Introspect token
// @Description  Reports whether a token is currently valid without exposing the failure reason
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.IntrospectRequest  true  "Token"
// @Success      200      {object}  response.Response{data=service.IntrospectResponse}
// @Router       /auth/introspect [post]
func (h *AuthHandler) Introspect(c *gin.Context) {
	var req service.IntrospectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.tokenService.Introspect(req.Token)))
}
