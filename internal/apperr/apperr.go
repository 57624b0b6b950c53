package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a category of application failure. The HTTP layer maps
// each code to a fixed status and returns the message verbatim.
type Code string

const (
	NotFound              Code = "NOT_FOUND"
	UserNotFound          Code = "USER_NOT_FOUND"
	Unauthorized          Code = "UNAUTHORIZED"
	Unauthenticated       Code = "UNAUTHENTICATED"
	InvalidKey            Code = "INVALID_KEY"
	InvalidRequest        Code = "INVALID_REQUEST"
	DuplicateEntity       Code = "DUPLICATE_ENTITY"
	TokenExpired          Code = "TOKEN_EXPIRED"
	TokenMalformed        Code = "TOKEN_MALFORMED"
	TokenSignatureInvalid Code = "TOKEN_SIGNATURE_INVALID"
	TokenInvalid          Code = "TOKEN_INVALID"
	TokenGenerationFailed Code = "TOKEN_GENERATION_FAILED"
	AccountInvalid        Code = "ACCOUNT_INVALID"
	OTPGenerationFailed   Code = "OTP_GENERATION_FAILED"
	OTPExpired            Code = "OTP_EXPIRED"
	OTPInvalid            Code = "OTP_INVALID"
	EmailSendingFailed    Code = "EMAIL_SENDING_FAILED"
	InvalidEmailFormat    Code = "INVALID_EMAIL_FORMAT"
	InvalidPasswordFormat Code = "INVALID_PASSWORD_FORMAT"
	PasswordResetFailed   Code = "PASSWORD_RESET_FAILED"
	Internal              Code = "INTERNAL_ERROR"
)

var defaultMessages = map[Code]string{
	NotFound:              "Resource not found",
	UserNotFound:          "User not found",
	Unauthorized:          "Not authorized to perform this action",
	Unauthenticated:       "Unauthenticated",
	InvalidKey:            "Uncategorized error",
	InvalidRequest:        "Invalid request",
	DuplicateEntity:       "Entity already exists",
	TokenExpired:          "Token has expired",
	TokenMalformed:        "Malformed token",
	TokenSignatureInvalid: "Token signature is invalid",
	TokenInvalid:          "Token is invalid",
	TokenGenerationFailed: "Failed to generate tokens",
	AccountInvalid:        "Email or password invalid",
	OTPGenerationFailed:   "Failed to generate OTP",
	OTPExpired:            "OTP has expired",
	OTPInvalid:            "Invalid OTP",
	EmailSendingFailed:    "Failed to send email",
	InvalidEmailFormat:    "Invalid email format. Please use a valid email address.",
	InvalidPasswordFormat: "Invalid password format. Password must be at least 8 characters long and contain at least one letter and one number.",
	PasswordResetFailed:   "Password reset failed. The token may be invalid or expired.",
	Internal:              "Internal server error",
}

var statuses = map[Code]int{
	NotFound:              http.StatusNotFound,
	UserNotFound:          http.StatusNotFound,
	Unauthorized:          http.StatusForbidden,
	Unauthenticated:       http.StatusUnauthorized,
	InvalidKey:            http.StatusBadRequest,
	InvalidRequest:        http.StatusBadRequest,
	DuplicateEntity:       http.StatusConflict,
	TokenExpired:          http.StatusUnauthorized,
	TokenMalformed:        http.StatusBadRequest,
	TokenSignatureInvalid: http.StatusUnauthorized,
	TokenInvalid:          http.StatusUnauthorized,
	TokenGenerationFailed: http.StatusBadRequest,
	AccountInvalid:        http.StatusBadRequest,
	OTPGenerationFailed:   http.StatusInternalServerError,
	OTPExpired:            http.StatusBadRequest,
	OTPInvalid:            http.StatusBadRequest,
	EmailSendingFailed:    http.StatusInternalServerError,
	InvalidEmailFormat:    http.StatusBadRequest,
	InvalidPasswordFormat: http.StatusBadRequest,
	PasswordResetFailed:   http.StatusBadRequest,
	Internal:              http.StatusInternalServerError,
}

// Error is a typed application failure carrying a human-readable message.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New returns an Error with the given code and message. An empty message
// falls back to the code's default.
func New(code Code, message string) *Error {
	if message == "" {
		message = defaultMessages[code]
	}
	return &Error{Code: code, Message: message}
}

// Newf is New with fmt-style formatting.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Status returns the HTTP status mapped to the error's code.
func (e *Error) Status() int {
	if s, ok := statuses[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Is reports whether err is an application Error with the given code.
func Is(err error, code Code) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// From returns err as an application Error, wrapping unknown errors as
// Internal so callers always have a code and status to map.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return New(Internal, "")
}
