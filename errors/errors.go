package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error represents an application error
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrap returns a copy of base carrying the given cause. The base sentinel stays
// in the chain so errors.Is(err, base) keeps working.
func Wrap(base *Error, err error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Err:     &wrapped{base: base, cause: err},
	}
}

// Wrapf is Wrap with a more specific message.
func Wrapf(base *Error, format string, args ...interface{}) *Error {
	return &Error{
		Code:    base.Code,
		Message: fmt.Sprintf(format, args...),
		Err:     base,
	}
}

type wrapped struct {
	base  *Error
	cause error
}

func (w *wrapped) Error() string {
	if w.cause == nil {
		return w.base.Message
	}
	return w.cause.Error()
}

func (w *wrapped) Is(target error) bool { return target == w.base }

func (w *wrapped) Unwrap() error { return w.cause }

// Payment domain error types
var (
	ErrInvalidInput           = New(http.StatusBadRequest, "Invalid input", nil)
	ErrMissingTenant          = New(http.StatusUnauthorized, "Tenant context missing", nil)
	ErrSignatureInvalid       = New(http.StatusBadRequest, "Signature verification failed", nil)
	ErrOrderNotFound          = New(http.StatusNotFound, "Payment order not found", nil)
	ErrInvalidStateTransition = New(http.StatusConflict, "Invalid order state transition", nil)
	ErrGatewayUnavailable     = New(http.StatusServiceUnavailable, "Payment gateway unavailable", nil)
	ErrGatewayRejected        = New(http.StatusUnprocessableEntity, "Payment gateway rejected the request", nil)
	ErrInternalServer         = New(http.StatusInternalServerError, "Internal server error", nil)
)

// Respond writes err as a JSON error response on the gin context.
func Respond(c *gin.Context, err error) {
	var appErr *Error
	if !stderrors.As(err, &appErr) {
		appErr = New(http.StatusInternalServerError, "Internal server error", err)
	}
	c.JSON(appErr.Code, gin.H{"error": appErr.Message})
}
