package status

import "errors"

var (
	// ErrInvalidInput covers caller-supplied values that fail validation,
	// e.g. a negative booking total, an advance percentage outside [0,100]
	// or an unauthenticated webhook body.
	ErrInvalidInput = errors.New("invalid input")

	// ErrGatewayUnavailable means the remote order creation call failed.
	// No local payment state is mutated; the attempt stays retryable.
	ErrGatewayUnavailable = errors.New("gateway: unavailable")

	// ErrGatewayFetch means the server-side payment fetch failed. Local
	// state is left pending so the client can retry.
	ErrGatewayFetch = errors.New("gateway: payment fetch failed")

	// ErrOrderMismatch means the fetched payment belongs to a different
	// order than the callback claimed.
	ErrOrderMismatch = errors.New("payment: order id mismatch")

	// ErrMalformedCallback means the client callback is missing a payment
	// or order identifier.
	ErrMalformedCallback = errors.New("payment: malformed callback")

	// ErrInvalidTransition is returned for a booking status change the
	// state machine does not allow.
	ErrInvalidTransition = errors.New("booking: invalid status transition")

	ErrFailedPayment = errors.New("payment: payment failed")
	ErrNotFound      = errors.New("record not found")
)
