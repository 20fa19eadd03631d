package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ErrorCode string

const (
	CodeUnauthenticated  ErrorCode = "unauthenticated"
	CodeNotFound         ErrorCode = "not_found"
	CodeInvalidOperation ErrorCode = "invalid_operation"
	CodeRateLimited      ErrorCode = "rate_limited"
	CodeValidationFailed ErrorCode = "validation_failed"
	CodeStorageFailure   ErrorCode = "storage_failure"
)

// APIError is the single error shape that crosses the handler boundary.
// Every failure a mutation can produce maps onto one of the codes above
// and is rendered as a {"error": ..., "code": ...} JSON body.
type APIError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

func Unauthenticated(msg string) *APIError {
	return &APIError{Code: CodeUnauthenticated, Message: msg}
}

func NotFoundError(msg string) *APIError {
	return &APIError{Code: CodeNotFound, Message: msg}
}

func InvalidOperation(msg string) *APIError {
	return &APIError{Code: CodeInvalidOperation, Message: msg}
}

func RateLimited(msg string) *APIError {
	return &APIError{Code: CodeRateLimited, Message: msg}
}

func ValidationFailed(msg string) *APIError {
	return &APIError{Code: CodeValidationFailed, Message: msg}
}

func StorageFailure(msg string, err error) *APIError {
	return &APIError{Code: CodeStorageFailure, Message: msg, Err: err}
}

func httpStatus(code ErrorCode) int {
	switch code {
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidOperation:
		return http.StatusForbidden
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeValidationFailed:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes err as a JSON error response. Storage failures
// keep their detail out of the response body outside debug mode so
// database internals never reach clients; the detail goes to the log.
func RespondError(c *gin.Context, err error) {
	apiErr, ok := err.(*APIError)
	if !ok {
		apiErr = StorageFailure("unexpected error", err)
	}

	message := apiErr.Message
	if apiErr.Code == CodeStorageFailure {
		zap.L().Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(apiErr),
		)
		if gin.Mode() == gin.ReleaseMode {
			message = "Something went wrong. Please try again."
		}
	}

	c.JSON(httpStatus(apiErr.Code), gin.H{
		"error": message,
		"code":  apiErr.Code,
	})
}
