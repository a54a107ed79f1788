package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a failure reported by the licensing services.
type Kind string

const (
	KindUnauthenticated     Kind = "unauthenticated"
	KindInvalidInput        Kind = "invalid_input"
	KindNotFound            Kind = "not_found"
	KindForbidden           Kind = "forbidden"
	KindInvalidSignature    Kind = "invalid_signature"
	KindMalformedToken      Kind = "malformed_token"
	KindExpired             Kind = "expired"
	KindDeviceMismatch      Kind = "device_mismatch"
	KindRevoked             Kind = "revoked"
	KindInactive            Kind = "inactive"
	KindFingerprintConflict Kind = "fingerprint_conflict"
	KindStoreFailure        Kind = "store_failure"
	KindIssuanceFailed      Kind = "issuance_failed"
)

var (
	ErrUnauthenticated     = &Error{Kind: KindUnauthenticated, Message: "Unauthorized"}
	ErrInvalidInput        = &Error{Kind: KindInvalidInput, Message: "Missing required fields"}
	ErrNotFound            = &Error{Kind: KindNotFound, Message: "Not found"}
	ErrForbidden           = &Error{Kind: KindForbidden, Message: "Forbidden"}
	ErrInvalidSignature    = &Error{Kind: KindInvalidSignature, Message: "Invalid license signature or format"}
	ErrMalformedToken      = &Error{Kind: KindMalformedToken, Message: "Malformed license token"}
	ErrExpired             = &Error{Kind: KindExpired, Message: "License expired"}
	ErrDeviceMismatch      = &Error{Kind: KindDeviceMismatch, Message: "License not bound to this device"}
	ErrRevoked             = &Error{Kind: KindRevoked, Message: "License has been revoked"}
	ErrInactive            = &Error{Kind: KindInactive, Message: "License is inactive or not found"}
	ErrFingerprintConflict = &Error{Kind: KindFingerprintConflict, Message: "Device fingerprint already registered by another user."}
	ErrStoreFailure        = &Error{Kind: KindStoreFailure, Message: "Store failure"}
	ErrIssuanceFailed      = &Error{Kind: KindIssuanceFailed, Message: "Failed to record issued license"}
)

// Error is a classified failure. Two errors match under errors.Is when their
// kinds are equal, so callers compare against the Err* values above.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// Errorf returns a new error of the given kind with a custom message.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches cause to an error of the given kind, keeping the kind's default message.
func Wrap(base *Error, cause error) *Error {
	return &Error{Kind: base.Kind, Message: base.Message, Err: cause}
}

// KindOf reports the kind of err, or the empty kind if err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
