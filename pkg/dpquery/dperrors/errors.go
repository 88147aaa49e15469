// Package dperrors defines the tagged error kinds of the query recovery
// pipeline. Every failure surfaced by pkg/dpquery is distinguishable by
// Kind, not by matching on a message string.
package dperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind tags an Error by origin and recovery policy.
type Kind string

const (
	KindConfigError            Kind = "config_error"
	KindInvalidRequest         Kind = "invalid_request"
	KindTransportTransient     Kind = "transport_transient"
	KindTransportFatal         Kind = "transport_fatal"
	KindDeadline               Kind = "deadline"
	KindServerError            Kind = "server_error"
	KindBufferClosed           Kind = "buffer_closed"
	KindDuplicateSource        Kind = "duplicate_source"
	KindMissingResource        Kind = "missing_resource"
	KindInconsistentColumnSize Kind = "inconsistent_column_size"
	KindUnsupportedType        Kind = "unsupported_type"
	KindOrderingViolation      Kind = "ordering_violation"
	KindDomainCollision        Kind = "domain_collision"
	KindCancelled              Kind = "cancelled"
)

// Error is the single tagged error type pervasive across the pipeline,
// replacing ad-hoc error strings with a single kind-tagged type that
// preserves the originating cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error with no wrapped cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf builds an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error that preserves cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// Is reports whether err is (or wraps) a *Error of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// ServerError is the domain representation of an inbound ExceptionalResult
// (§4.9): it is surfaced unchanged, wrapped as Kind KindServerError.
type ServerError struct {
	ServerKind string
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error [%s]: %s", e.ServerKind, e.Message)
}

// AsServerError wraps a ServerError as a tagged Error.
func AsServerError(kind, message string) *Error {
	return Wrap(KindServerError, message, &ServerError{ServerKind: kind, Message: message})
}

// SubFailure records one sub-request's failure within a RecoveryError.
type SubFailure struct {
	Index   int
	Kind    Kind
	Message string
}

// RecoveryError aggregates per-sub-request failures from the recovery
// channel (§4.2, §7 "Propagation policy"). It is not itself a *Error;
// ToError wraps it in one whose Kind is derived from whether any
// constituent failure was fatal.
type RecoveryError struct {
	Failures []SubFailure
}

func (e *RecoveryError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("sub[%d] %s: %s", f.Index, f.Kind, f.Message))
	}
	return "recovery failed: " + strings.Join(parts, "; ")
}

// Fatal reports whether any constituent failure was fatal (transport-fatal,
// server error, or a protocol-violation kind), as opposed to purely
// cancellation/transient.
func (e *RecoveryError) Fatal() bool {
	for _, f := range e.Failures {
		switch f.Kind {
		case KindTransportFatal, KindServerError, KindDuplicateSource,
			KindMissingResource, KindInconsistentColumnSize, KindUnsupportedType:
			return true
		}
	}
	return false
}

// ToError wraps the RecoveryError as a tagged *Error so callers can use
// dperrors.Is uniformly across the package.
func (e *RecoveryError) ToError() *Error {
	kind := KindTransportTransient
	if e.Fatal() {
		kind = KindTransportFatal
	}
	return Wrap(kind, e.Error(), e)
}
