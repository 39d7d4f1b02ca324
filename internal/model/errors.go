package model

import "errors"

// Common errors used across the application
var (
	// Participant errors
	ErrParticipantNotFound = errors.New("participant not found")

	// Purchase errors
	ErrPurchaseNotFound = errors.New("purchase not found")
	ErrPendingNotFound  = errors.New("pending purchase not found")
	ErrInvalidPrice     = errors.New("price must not be negative")

	// Trophy errors
	ErrDuplicateTrophy    = errors.New("trophy already recorded for this period and position")
	ErrMonthAlreadyClosed = errors.New("month has already been closed")
	ErrInvalidPeriod      = errors.New("invalid month or year")

	// Configuration errors
	ErrCatalogNotConfigured = errors.New("steam catalog is not configured")
)
