package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies an application error so controllers can map it to a
// response without inspecting message text.
type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindValidation      Kind = "validation"
	KindForbidden       Kind = "forbidden"
	KindAuthUnavailable Kind = "authorization_unavailable"
	KindInvalidState    Kind = "invalid_state"
	KindEmptyComment    Kind = "empty_comment"
)

// Error is the structured error returned by every service operation.
// Field is set for validation errors, Entity for not-found errors.
type Error struct {
	Kind   Kind   `json:"kind"`
	Entity string `json:"entity,omitempty"`
	Field  string `json:"field,omitempty"`
	Msg    string `json:"message"`
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func NotFound(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, Msg: fmt.Sprintf("%s %s not found", entity, id)}
}

func Validation(field string) *Error {
	return &Error{Kind: KindValidation, Field: field, Msg: fmt.Sprintf("required field missing or invalid: %s", field)}
}

func ValidationMsg(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Msg: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Msg: msg}
}

// AuthorizationUnavailable wraps a failed or timed-out authorization check.
// It is distinct from Forbidden: callers must not treat it as a denial.
func AuthorizationUnavailable(cause error) *Error {
	return &Error{Kind: KindAuthUnavailable, Msg: "authorization check unavailable", cause: cause}
}

func InvalidState(msg string) *Error {
	return &Error{Kind: KindInvalidState, Msg: msg}
}

func EmptyComment() *Error {
	return &Error{Kind: KindEmptyComment, Msg: "comment text is empty"}
}

// KindOf returns the Kind of err, or empty string for non-application errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error to the status code controllers should respond with.
// Unrecognized errors map to 500 so storage-level detail never leaks as 4xx.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return fiber.StatusNotFound
	case KindValidation, KindEmptyComment:
		return fiber.StatusBadRequest
	case KindForbidden:
		return fiber.StatusForbidden
	case KindAuthUnavailable:
		return fiber.StatusServiceUnavailable
	case KindInvalidState:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// Respond writes the standard error response for err.
func Respond(c *fiber.Ctx, err error) error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return c.Status(HTTPStatus(err)).JSON(fiber.Map{
			"error": appErr.Msg,
			"kind":  appErr.Kind,
			"field": appErr.Field,
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal server error",
	})
}
