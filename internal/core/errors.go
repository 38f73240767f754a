package core

import "errors"

// Domain-level errors. Every mutating operation that returns one of these
// leaves both the in-memory state and the backing file unchanged.
var (
	ErrNotFound                 = errors.New("not_found")
	ErrDuplicateCode            = errors.New("duplicate_code")
	ErrDuplicateName            = errors.New("duplicate_name")
	ErrInvalidInput             = errors.New("invalid_input")
	ErrInUse                    = errors.New("in_use")
	ErrUnlinked                 = errors.New("unlinked")
	ErrAlreadyAssignedElsewhere = errors.New("already_assigned_elsewhere")
	ErrAlreadyAssignedHere      = errors.New("already_assigned_here")
	ErrAlreadyPresent           = errors.New("already_present")
	ErrIntegrityViolation       = errors.New("integrity_violation")
)
