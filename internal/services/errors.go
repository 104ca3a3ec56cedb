package services

import "errors"

var (
	ErrForbidden              = errors.New("forbidden")
	ErrConflict               = errors.New("conflict")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidStatus          = errors.New("invalid status")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrCoachNotFound          = errors.New("coach not found")
	ErrNotFound               = errors.New("not found")
	ErrAIUnavailable          = errors.New("ai planner unavailable")
	ErrBillingUnavailable     = errors.New("billing unavailable")
	ErrPlatformUnavailable    = errors.New("platform unavailable")
)
