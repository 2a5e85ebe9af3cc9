// Package common defines shared constants and sentinel errors used across
// the Caminho client. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository/API lookup errors.
	ErrNotFound = errors.New("not found")

	// Auth errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrTokenExpired = errors.New("token expired")

	// Media capture errors.
	ErrPermissionDenied  = errors.New("microphone permission denied")
	ErrDeviceUnavailable = errors.New("no audio input device available")

	// File intake errors.
	ErrFileTooLarge = errors.New("file exceeds upload size limit")

	// Transfer and persistence errors.
	ErrUploadFailed      = errors.New("upload failed")
	ErrPersistenceFailed = errors.New("persistence failed")

	// Push subscription errors.
	ErrPermissionBlocked        = errors.New("push permission blocked")
	ErrSubscriptionInconsistent = errors.New("push subscription inconsistent with stored preference")
)
