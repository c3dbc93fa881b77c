// Package server provides the HTTP REST API for the agricultural marketplace.
package server

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/kwame/agrimarket/internal/importer"
	"github.com/kwame/agrimarket/internal/payments"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrPasswordMismatch indicates current password is incorrect
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return "current password is incorrect"
}

// ErrNotFound indicates a resource lookup failed
type ErrNotFound struct {
	Resource string
	ID       uuid.UUID
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrForbidden indicates the caller's role does not permit the operation
type ErrForbidden struct {
	Message string
}

func (e *ErrForbidden) Error() string {
	if e.Message == "" {
		return "forbidden"
	}
	return e.Message
}

// ErrQuotaExhausted indicates a buyer has no contact unlocks left this period
type ErrQuotaExhausted struct {
	BuyerID uuid.UUID
}

func (e *ErrQuotaExhausted) Error() string {
	return fmt.Sprintf("contact unlock quota exhausted for buyer %s", e.BuyerID)
}

// ErrPaymentIncomplete indicates a subscription reference has not settled
type ErrPaymentIncomplete struct {
	Reference string
	Status    payments.Status
}

func (e *ErrPaymentIncomplete) Error() string {
	return fmt.Sprintf("payment %s not settled: %s", e.Reference, e.Status)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrEmailAlreadyExists:
		return http.StatusConflict
	case *ErrInvalidCredentials, *ErrPasswordMismatch:
		return http.StatusUnauthorized
	case *ErrForbidden:
		return http.StatusForbidden
	case *ErrNotFound:
		return http.StatusNotFound
	case *ErrValidation:
		return http.StatusBadRequest
	case *ErrQuotaExhausted:
		return http.StatusPaymentRequired
	case *ErrPaymentIncomplete:
		return http.StatusConflict
	case *importer.FileSizeExceededError:
		return http.StatusRequestEntityTooLarge
	case *importer.InvalidFileTypeError, *importer.EmptyTableError:
		return http.StatusBadRequest
	case *importer.MissingRequiredFieldError, *importer.NoValidRecordsError:
		return http.StatusUnprocessableEntity
	case *importer.StateError:
		return http.StatusConflict
	case *payments.UnknownReferenceError:
		return http.StatusNotFound
	case *payments.GatewayError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
