// Package common defines shared constants and sentinel errors used across
// the Gatehouse layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrStoreUnavailable = errors.New("store unavailable")

	// Grant-flow errors.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrGrantNotAllowed    = errors.New("grant not allowed")
	ErrScopeDenied        = errors.New("scope denied")
	ErrLoopbackRestricted = errors.New("loopback restricted")
	ErrInvalidGrant       = errors.New("invalid grant")
	ErrUnsupportedGrant   = errors.New("unsupported grant type")
	ErrUsernameConflict   = errors.New("username conflict")

	// Permission errors for management endpoints.
	ErrPermissionDenied = errors.New("permission denied")

	// Token verification errors (resource-server side).
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token invalid")
	ErrTokenMalformed = errors.New("token malformed")

	// Generic/internal flow control. Never carries internal detail outward.
	ErrInternal = errors.New("internal error")
)
