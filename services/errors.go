package services

import "errors"

// Shared service errors mapped to HTTP in handlers.
var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrValidationFailed = errors.New("validation failed")

	// The store is not configured or unreachable; mutating operations fail
	// closed rather than silently no-op.
	ErrStoreUnavailable = errors.New("entity store unavailable")
	// A write in a mutation batch failed; local state was resynchronized
	// from the store and the user action must be re-invoked explicitly.
	ErrStoreWrite = errors.New("store write failed")

	// Admin session gate
	ErrInvalidAdminPassword = errors.New("invalid admin password")
	ErrSessionExpired       = errors.New("admin session expired")
	ErrSessionInvalid       = errors.New("invalid admin session token")

	ErrEventNotFound = errors.New("event not found")

	// Media gallery
	ErrMediaNotConfigured   = errors.New("media storage is not configured")
	ErrUnsupportedPhotoType = errors.New("unsupported photo content type")
)
