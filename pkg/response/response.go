package response

import (
	"projecthub/internal/apperr"
)

// Response represents a standard API response format
type Response struct {
	Status     string      `json:"status"`      // "success" or "error"
	StatusCode int         `json:"status_code"` // HTTP status code
	Data       interface{} `json:"data,omitempty"`
	Code       string      `json:"code,omitempty"` // application error code
	Error      string      `json:"error,omitempty"`
}

// Paged wraps list data with pagination metadata
type Paged struct {
	Items interface{} `json:"items"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
	Total int64       `json:"total"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// FromError maps an application error to its HTTP status and error code.
// Unknown error types collapse to a generic 500 so internals never leak.
func FromError(err error) (int, Response) {
	appErr := apperr.From(err)
	status := appErr.Status()
	return status, Response{
		Status:     "error",
		StatusCode: status,
		Code:       string(appErr.Code),
		Error:      appErr.Message,
	}
}
