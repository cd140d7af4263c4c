package application

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidID        = errors.New("invalid ID")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrConflictDeclined = errors.New("newer catalog price declined")
	ErrQueryTooShort    = errors.New("query too short")
)

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// MoveError represents a move-related failure
type MoveError struct {
	SourceID string
	DestID   string
	Reason   string
	Err      error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("cannot move %s to %s: %s", e.SourceID, e.DestID, e.Reason)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}

// ConflictError reports a catalog entry effective after the reference date
type ConflictError struct {
	Code          string
	EntryDate     string
	ReferenceDate string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("entry %s is priced at %s, after the project reference date %s", e.Code, e.EntryDate, e.ReferenceDate)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflictDeclined
}
