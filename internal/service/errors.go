package service

import (
	"errors"
	"fmt"
)

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")
)

// Entity errors. Each wraps one of the common errors so handlers can map them by kind.
var (
	ErrConsultantNotFound     = fmt.Errorf("consultant %w", ErrNotFound)
	ErrTenderNotFound         = fmt.Errorf("tender %w", ErrNotFound)
	ErrMatchNotFound          = fmt.Errorf("match %w", ErrNotFound)
	ErrCriterionNotFound      = fmt.Errorf("criterion %w", ErrNotFound)
	ErrCompetenceNotFound     = fmt.Errorf("competence %w", ErrNotFound)
	ErrNotificationNotFound   = fmt.Errorf("notification %w", ErrNotFound)
	ErrStandardizedCVNotFound = fmt.Errorf("standardized CV %w", ErrNotFound)

	ErrDuplicateCompetence = fmt.Errorf("competence already exists for consultant: %w", ErrConflict)
	ErrDuplicateCriterion  = fmt.Errorf("criterion already exists for tender: %w", ErrConflict)
	ErrDuplicateEmail      = fmt.Errorf("email already registered: %w", ErrConflict)

	ErrInvalidMissionDates  = fmt.Errorf("mission start date is after end date: %w", ErrInvalidInput)
	ErrInvalidAvailability  = fmt.Errorf("availability start must be before end: %w", ErrInvalidInput)
	ErrInvalidPhone         = fmt.Errorf("invalid phone number: %w", ErrInvalidInput)
	ErrInvalidLevel         = fmt.Errorf("competence level must be between 1 and 5: %w", ErrInvalidInput)
	ErrInvalidWeight        = fmt.Errorf("criterion weight must be positive: %w", ErrInvalidInput)
	ErrConsultantIncomplete = fmt.Errorf("consultant has no parsed CV: %w", ErrInvalidInput)
)
