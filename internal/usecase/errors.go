package usecase

import (
	"errors"
	"net/http"

	"github.com/xavierca1/outreach-dashboard/internal/entity"
)

const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeInvalidStatus     = "INVALID_STATUS"
	CodeInvalidLimit      = "INVALID_LIMIT"
	CodeInvalidOrder      = "INVALID_ORDER"
	CodeInvalidID         = "INVALID_ID"
	CodeLeadNotFound      = "LEAD_NOT_FOUND"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeDatabase          = "DATABASE_ERROR"
)

// DomainError is a caller mistake: safe to show as-is.
type DomainError struct {
	Code    string
	Message string
	Status  int
	Fields  []ValidationError
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError hides the cause from the client; Cause is for logs.
type TechnicalError struct {
	Code    string
	Message string
	Cause   error
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Cause
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

func newValidationError(fields []ValidationError) *DomainError {
	return &DomainError{
		Code:    CodeValidation,
		Message: "invalid lead payload",
		Status:  http.StatusBadRequest,
		Fields:  fields,
	}
}

func invalidStatusError(raw string) *DomainError {
	return &DomainError{
		Code:    CodeInvalidStatus,
		Message: "status must be one of warm_lead, message_sent, sale_closed (got " + quote(raw) + ")",
		Status:  http.StatusBadRequest,
	}
}

// storeError maps repository failures onto the error taxonomy.
func storeError(err error, op string) error {
	var te *entity.TransitionError
	switch {
	case errors.Is(err, entity.ErrLeadNotFound):
		return &DomainError{Code: CodeLeadNotFound, Message: "lead not found", Status: http.StatusNotFound}
	case errors.As(err, &te):
		return &DomainError{Code: CodeInvalidTransition, Message: te.Error(), Status: http.StatusConflict}
	case errors.Is(err, entity.ErrInvalidTransition):
		return &DomainError{Code: CodeInvalidTransition, Message: "invalid status transition", Status: http.StatusConflict}
	default:
		return &TechnicalError{Code: CodeDatabase, Message: "failed to " + op, Cause: err}
	}
}

func quote(s string) string {
	return "\"" + s + "\""
}
