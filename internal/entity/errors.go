package entity

import "errors"

// Domain errors
var (
	// Configuration errors are fatal at startup
	ErrConfiguration = errors.New("invalid configuration")

	// Collaborator errors are absorbed by the state machine
	ErrCollaborator       = errors.New("collaborator call failed")
	ErrUnparseableOutput  = errors.New("unparseable collaborator output")
	ErrPersistenceFailure = errors.New("failed to persist answers")

	// Session errors
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionCompleted = errors.New("session is already completed")
	ErrInvalidState     = errors.New("invalid session state")
	ErrQuestionNotFound = errors.New("question not found")
	ErrNoResult         = errors.New("session result not available")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// LocalizedError attaches a message in the session language to a domain error
type LocalizedError struct {
	Err     error
	Message string
}

func (e *LocalizedError) Error() string {
	return e.Err.Error()
}

func (e *LocalizedError) Unwrap() error {
	return e.Err
}

// UserMessage returns the localized message carried by err, or fallback
func UserMessage(err error, fallback string) string {
	var localized *LocalizedError
	if errors.As(err, &localized) && localized.Message != "" {
		return localized.Message
	}
	return fallback
}
