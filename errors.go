package thresholdsig

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a protocol failure kind. Every failure is local and
// non-retriable without fresh input: the orchestrator restarts the affected
// round, the protocol never degrades to accepting unverified data.
type ErrorCode string

const (
	CodeInvalidEncoding          ErrorCode = "INVALID_ENCODING"
	CodeInvalidParameters        ErrorCode = "INVALID_PARAMETERS"
	CodeCommitmentMismatch       ErrorCode = "COMMITMENT_MISMATCH"
	CodeShareVerificationFailed  ErrorCode = "SHARE_VERIFICATION_FAILED"
	CodeInsufficientParticipants ErrorCode = "INSUFFICIENT_PARTICIPANTS"
	CodeChallengeMismatch        ErrorCode = "CHALLENGE_MISMATCH"
	CodeAggregateCheckFailed     ErrorCode = "AGGREGATE_CHECK_FAILED"
	CodeInvalidState             ErrorCode = "INVALID_STATE"
	CodeSessionExists            ErrorCode = "SESSION_EXISTS"
	CodeSessionConsumed          ErrorCode = "SESSION_CONSUMED"
)

// ProtocolError is a structured protocol failure. Party carries the 1-based
// offending index when it is derivable; zero means not attributable (the
// aggregate signature-share check in particular cannot single out a signer).
type ProtocolError struct {
	Code    ErrorCode
	Message string
	Details string
	Party   uint16
	Cause   error
}

func (e *ProtocolError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Party != 0 {
		msg = fmt.Sprintf("%s (party %d)", msg, e.Party)
	}
	if e.Details != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Details)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ProtocolError) Unwrap() error {
	return e.Cause
}

// Is matches on error code, so sentinels compare equal to their decorated
// copies under errors.Is.
func (e *ProtocolError) Is(target error) bool {
	var pe *ProtocolError
	if errors.As(target, &pe) {
		return e.Code == pe.Code
	}
	return false
}

func (e *ProtocolError) clone() *ProtocolError {
	return &ProtocolError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Party:   e.Party,
		Cause:   e.Cause,
	}
}

// WithDetails returns a copy of the error with detail text attached.
func (e *ProtocolError) WithDetails(details string) *ProtocolError {
	c := e.clone()
	c.Details = details
	return c
}

// WithParty returns a copy of the error attributed to the given party index.
func (e *ProtocolError) WithParty(index uint16) *ProtocolError {
	c := e.clone()
	c.Party = index
	return c
}

// WithCause returns a copy of the error wrapping an underlying cause.
func (e *ProtocolError) WithCause(cause error) *ProtocolError {
	c := e.clone()
	c.Cause = cause
	return c
}

func newProtocolError(code ErrorCode, message string) *ProtocolError {
	return &ProtocolError{Code: code, Message: message}
}

var (
	// ErrInvalidEncoding rejects malformed point/scalar/structure bytes
	// before any cryptographic check runs on them.
	ErrInvalidEncoding = newProtocolError(CodeInvalidEncoding,
		"malformed or non-canonical encoding")

	// ErrInvalidParameters rejects impossible (threshold, share count)
	// combinations and malformed party-index sets.
	ErrInvalidParameters = newProtocolError(CodeInvalidParameters,
		"invalid protocol parameters")

	// ErrCommitmentMismatch means a revealed value does not open a prior
	// commitment; the whole round must restart with fresh randomness.
	ErrCommitmentMismatch = newProtocolError(CodeCommitmentMismatch,
		"revealed value does not match commitment")

	// ErrShareVerificationFailed means a received VSS share is inconsistent
	// with the sharer's coefficient commitments.
	ErrShareVerificationFailed = newProtocolError(CodeShareVerificationFailed,
		"secret share does not match its commitments")

	// ErrInsufficientParticipants means fewer than threshold+1 distinct
	// indices were supplied to reconstruction or aggregation.
	ErrInsufficientParticipants = newProtocolError(CodeInsufficientParticipants,
		"not enough distinct participants")

	// ErrChallengeMismatch means contributed local signatures disagree on
	// the Fiat-Shamir challenge, i.e. they signed different messages.
	ErrChallengeMismatch = newProtocolError(CodeChallengeMismatch,
		"local signatures carry different challenges")

	// ErrAggregateCheckFailed means the homomorphic signature-share check
	// failed; the faulty signer is not determinable from the aggregate.
	ErrAggregateCheckFailed = newProtocolError(CodeAggregateCheckFailed,
		"aggregate signature-share check failed")

	// ErrInvalidState means a phase was invoked out of order or twice.
	ErrInvalidState = newProtocolError(CodeInvalidState,
		"protocol phase invoked out of order")

	// ErrSessionExists rejects a second signing session for the same
	// (key, message, party index) triple; reusing one would reuse a nonce.
	ErrSessionExists = newProtocolError(CodeSessionExists,
		"signing session already exists for this message")

	// ErrSessionConsumed rejects reuse of single-use ephemeral key material.
	ErrSessionConsumed = newProtocolError(CodeSessionConsumed,
		"signing session already produced a local signature")
)

// IsCode reports whether err carries the given protocol error code.
func IsCode(err error, code ErrorCode) bool {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}

// OffendingParty extracts the attributed party index from an error, or zero
// when the failure is not attributable.
func OffendingParty(err error) uint16 {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.Party
	}
	return 0
}
