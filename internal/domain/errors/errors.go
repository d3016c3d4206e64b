package errors

import "errors"

var (
	ErrAlreadyExists       = errors.New("already exists")
	ErrNotFound            = errors.New("not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidSignature    = errors.New("invalid signature")
	ErrAlreadyFulfilled    = errors.New("order already fulfilled")
	ErrUnknownPackage      = errors.New("unknown package")
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrInvalidPayload      = errors.New("invalid payload")
	ErrInvalidReferrer     = errors.New("invalid referrer")
)
