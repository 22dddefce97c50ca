package model

import "fmt"

// Response is the JSON envelope used by every API endpoint.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Standard error codes for domain failures
const (
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeProductNotFound      = "PRODUCT_NOT_FOUND"
	ErrCodeInsufficientStock    = "INSUFFICIENT_STOCK"
	ErrCodeDuplicateOrderNumber = "DUPLICATE_ORDER_NUMBER"
	ErrCodePersistence          = "PERSISTENCE_FAILURE"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeUnauthorised         = "UNAUTHORIZED"
)

// DomainError is a business failure carrying a stable code.
// Two domain errors match under errors.Is when their codes are equal, so
// callers can test against the sentinels below regardless of the message.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying infrastructure error, if any.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrValidation           = NewDomainError(ErrCodeValidation, "Missing required fields")
	ErrProductNotFound      = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrInsufficientStock    = NewDomainError(ErrCodeInsufficientStock, "Insufficient stock")
	ErrDuplicateOrderNumber = NewDomainError(ErrCodeDuplicateOrderNumber, "Order number already exists")
	ErrPersistence          = NewDomainError(ErrCodePersistence, "Failed to create order")
	ErrNotFound             = NewDomainError(ErrCodeNotFound, "Resource not found")
	ErrInvalidCredentials   = NewDomainError(ErrCodeUnauthorised, "Invalid credentials")
)

// ValidationError reports a missing or malformed input.
func ValidationError(format string, args ...any) *DomainError {
	return NewDomainError(ErrCodeValidation, fmt.Sprintf(format, args...))
}

// ProductNotFoundError names the product id that could not be purchased.
func ProductNotFoundError(productID int64) *DomainError {
	return NewDomainError(ErrCodeProductNotFound, fmt.Sprintf("Product with ID %d not found", productID))
}

// InsufficientStockError names the product whose stock cannot cover the request.
func InsufficientStockError(productName string) *DomainError {
	return NewDomainError(ErrCodeInsufficientStock, fmt.Sprintf("Insufficient stock for product %s", productName))
}

// PersistenceError wraps an infrastructure failure.
func PersistenceError(err error) *DomainError {
	return &DomainError{
		Code:    ErrCodePersistence,
		Message: "Failed to create order",
		Err:     err,
	}
}
