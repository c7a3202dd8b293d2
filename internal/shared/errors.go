package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrInvalidState     = fmt.Errorf("invalid oauth state")
	ErrUnknownProvider  = fmt.Errorf("unknown auth provider")

	// Persistence errors
	ErrNotFound      = fmt.Errorf("record not found")
	ErrDuplicateVote = fmt.Errorf("user has already voted for this work")
	ErrDuplicateUser = fmt.Errorf("user already exists for provider")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
