package auspost

import (
	"errors"
	"fmt"
)

// APIError represents an error reported by the Australia Post API. When a
// response carries an error list, the first entry becomes the APIError and
// the operation is aborted without partial results.
type APIError struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("auspost error (%s): %s: %v", e.Code, e.Message, e.Cause)
	}
	if e.Code == "" {
		return fmt.Sprintf("auspost error: %s", e.Message)
	}
	return fmt.Sprintf("auspost error (%s): %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching on the error code.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewAPIError creates a new APIError.
func NewAPIError(code, message string) *APIError {
	return &APIError{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *APIError) WithCause(err error) *APIError {
	e.Cause = err
	return e
}

// Sentinel errors for client-side failures.
var (
	// ErrMissingState indicates an address is missing the state field,
	// which the fuel surcharge pricing endpoint requires.
	ErrMissingState = errors.New("state is required to get a quote")

	// ErrMissingAddress indicates the shipment has no from or to address.
	ErrMissingAddress = errors.New("shipment requires from and to addresses")

	// ErrNoParcels indicates the shipment has no parcels.
	ErrNoParcels = errors.New("shipment has no parcels")

	// ErrNotLodged indicates an operation that needs a lodged shipment was
	// called before Lodge.
	ErrNotLodged = errors.New("shipment has not been lodged")

	// ErrNoMerchantAddress indicates the account has no merchant location
	// address.
	ErrNoMerchantAddress = errors.New("no merchant location address on account")

	// ErrNoShipments indicates an empty shipment id list was given.
	ErrNoShipments = errors.New("no shipment ids given")
)

// firstError converts the leading entry of a response error list into an
// *APIError, or returns nil when the list is empty.
func firstError(errs []ResponseError) error {
	if len(errs) == 0 {
		return nil
	}
	return NewAPIError(errs[0].Code, errs[0].Message)
}
