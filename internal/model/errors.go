package model

import "errors"

var (
	// Authentication / authorization
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidToken    = errors.New("invalid token")
	ErrForbidden       = errors.New("forbidden")

	// Account related errors
	ErrAccountNotFound = errors.New("account not found")
	ErrAdminExists     = errors.New("an admin already exists")

	// Payment related errors
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrPaymentNotVerified = errors.New("payment not verified")

	// Class / selection related errors
	ErrClassNotFound     = errors.New("class not found")
	ErrSelectionNotFound = errors.New("selection not found")

	// Collaborator failures
	ErrUpstream = errors.New("upstream failure")
	ErrTimeout  = errors.New("timeout")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
