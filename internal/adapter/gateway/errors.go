package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrGatewayUnavailable marks transient failures worth retrying.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	// ErrGatewayRejected marks requests the gateway refused.
	ErrGatewayRejected = errors.New("payment gateway rejected request")
)

// UnavailableError wraps transport failures, timeouts and 5xx answers.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("gateway unavailable: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrGatewayUnavailable
}

// RejectedError carries the code and message the gateway refused with.
type RejectedError struct {
	Code    int
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("gateway rejected request: code=%d message=%q", e.Code, e.Message)
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrGatewayRejected
}
