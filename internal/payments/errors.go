package payments

import "fmt"

// GatewayError indicates the payment gateway rejected a request or returned
// an unusable response.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("payment gateway error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("payment gateway error: %s", e.Message)
}

// UnknownReferenceError indicates a verification request for a reference the
// gateway has never issued.
type UnknownReferenceError struct {
	Reference string
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("unknown payment reference: %s", e.Reference)
}
