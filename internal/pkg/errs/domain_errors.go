package errs

import "errors"

// Domain-specific sentinel errors shared across usecase layers
var (
	// Member errors
	ErrMemberNotFound   = errors.New("member not found")
	ErrMemberDeleted    = errors.New("member deleted")
	ErrDuplicateMember  = errors.New("duplicate member email")
	ErrMemberNotOnTrial = errors.New("member is not on a trial")

	// Prompt errors
	ErrPromptNotFound   = errors.New("prompt not found")
	ErrNoPromptForDate  = errors.New("no prompt scheduled for date")
	ErrDuplicateContent = errors.New("duplicate prompt content")

	// Job errors
	ErrUnknownJobKind    = errors.New("unknown job kind")
	ErrInvalidJobPayload = errors.New("invalid job payload")
	ErrInvalidCursor     = errors.New("invalid batch cursor")
	ErrJobNotFound       = errors.New("job not found")

	// Validation errors
	ErrDomainValidation = errors.New("domain validation error")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
