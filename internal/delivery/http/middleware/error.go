package middleware

import (
	"errors"
	"log"

	"bluujobs/internal/pkg/response"
	"bluujobs/internal/store"

	"github.com/gofiber/fiber/v3"
)

// AppError is what handlers return for a request that cannot be served.
// Message and Data reach the client; Cause is only logged.
type AppError struct {
	StatusCode int
	Message    string
	Data       interface{}
	Cause      error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func NewAppError(statusCode int, message string, data interface{}, cause error) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Data: data, Cause: cause}
}

func BadRequest(message string, cause error) *AppError {
	return NewAppError(fiber.StatusBadRequest, message, nil, cause)
}

func Unauthorized(message string, cause error) *AppError {
	return NewAppError(fiber.StatusUnauthorized, message, nil, cause)
}

func Forbidden(cause error) *AppError {
	return NewAppError(fiber.StatusForbidden, "Forbidden", nil, cause)
}

func NotFound(message string, cause error) *AppError {
	return NewAppError(fiber.StatusNotFound, message, nil, cause)
}

func Conflict(message string, cause error) *AppError {
	return NewAppError(fiber.StatusConflict, message, nil, cause)
}

func Internal(cause error) *AppError {
	return NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, cause)
}

type ErrorMiddleware struct {
	logger *log.Logger
}

func NewErrorMiddleware(logger *log.Logger) *ErrorMiddleware {
	if logger == nil {
		logger = log.Default()
	}
	return &ErrorMiddleware{logger: logger}
}

func (m *ErrorMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				m.logger.Printf("[HTTP] panic recovered rid=%s path=%s panic=%v", RequestID(c), c.Path(), r)
				err = response.Error(c, fiber.StatusInternalServerError, response.MessageInternalServerError, nil)
			}
		}()

		err = c.Next()
		if err == nil {
			return nil
		}

		status, msg, data := normalizeError(err)
		if status >= 500 {
			m.logger.Printf("[HTTP] request failed rid=%s path=%s status=%d err=%v", RequestID(c), c.Path(), status, err)
		}
		return response.Error(c, status, msg, data)
	}
}

func normalizeError(err error) (int, string, interface{}) {
	if err == nil {
		return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.StatusCode <= 0 || appErr.StatusCode >= 500 {
			status := appErr.StatusCode
			if status <= 0 {
				status = fiber.StatusInternalServerError
			}
			return status, response.DefaultMessage(status), nil
		}
		msg := appErr.Message
		if msg == "" {
			msg = response.DefaultMessage(appErr.StatusCode)
		}
		return appErr.StatusCode, msg, appErr.Data
	}

	if errors.Is(err, store.ErrConflict) {
		return fiber.StatusConflict, "Concurrent update, try again", nil
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status := fiberErr.Code
		if status <= 0 || status >= 500 {
			if status <= 0 {
				status = fiber.StatusInternalServerError
			}
			return status, response.DefaultMessage(status), nil
		}

		msg := fiberErr.Message
		if msg == "" {
			msg = response.DefaultMessage(status)
		}
		return status, msg, nil
	}

	return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
}
