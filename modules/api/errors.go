package api

import (
	"errors"
	"strings"

	"github.com/example/taskflow/modules/task"
	"github.com/gofiber/fiber/v2"
)

// ErrorKind classifies an APIError for translation to an HTTP response.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindValidation
	KindConstraint
)

const invalidInputMessage = "Invalid input provided"

// APIError is a classified failure raised at the HTTP boundary.
type APIError struct {
	Kind    ErrorKind
	Message string
	// Details holds per-field messages, formatted "field: message".
	Details []string
}

func (e *APIError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Details, "; ")
}

func validationError(details ...string) *APIError {
	return &APIError{Kind: KindValidation, Message: invalidInputMessage, Details: details}
}

func constraintError(details ...string) *APIError {
	return &APIError{Kind: KindConstraint, Message: invalidInputMessage, Details: details}
}

// translateError maps err to an HTTP status and error body. path is left
// for the caller to fill in.
func translateError(err error) (int, ErrorResponse) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		apiErr = classify(err)
	}

	status, title := statusFor(apiErr.Kind)
	return status, ErrorResponse{
		Status:           status,
		Error:            title,
		Message:          apiErr.Message,
		ValidationErrors: apiErr.Details,
	}
}

// classify turns an error from the task port or from fiber into an APIError.
func classify(err error) *APIError {
	var fiberErr *fiber.Error
	switch {
	case errors.Is(err, task.ErrTaskNotFound):
		return &APIError{Kind: KindNotFound, Message: err.Error()}
	case errors.Is(err, task.ErrInvalidQuery):
		return constraintError(strings.TrimPrefix(err.Error(), task.ErrInvalidQuery.Error()+": "))
	case errors.As(err, &fiberErr):
		return classifyFiberError(fiberErr)
	default:
		msg := "An unexpected error occurred"
		if err != nil && err.Error() != "" {
			msg = err.Error()
		}
		return &APIError{Kind: KindInternal, Message: msg}
	}
}

func classifyFiberError(err *fiber.Error) *APIError {
	switch err.Code {
	case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
		return &APIError{Kind: KindNotFound, Message: err.Message}
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return validationError("body: " + err.Message)
	default:
		return &APIError{Kind: KindInternal, Message: err.Message}
	}
}

func statusFor(kind ErrorKind) (int, string) {
	switch kind {
	case KindNotFound:
		return fiber.StatusNotFound, "Resource Not Found"
	case KindValidation:
		return fiber.StatusBadRequest, "Validation Failed"
	case KindConstraint:
		return fiber.StatusBadRequest, "Constraint Violation"
	default:
		return fiber.StatusInternalServerError, "Internal Server Error"
	}
}

// errorHandler renders every error returned by a handler, recovered panics
// and routing failures in the common error body.
func (m *APIModule) errorHandler(c *fiber.Ctx, err error) error {
	status, body := translateError(err)
	body.Timestamp = NewLocalDateTime(timeNow())
	body.Path = c.Path()

	if status >= fiber.StatusInternalServerError {
		m.logger.Error("Request failed", "method", c.Method(), "path", c.Path(), "error", err)
	} else {
		m.logger.Debug("Request rejected", "method", c.Method(), "path", c.Path(), "status", status, "error", err)
	}

	return c.Status(status).JSON(body)
}
