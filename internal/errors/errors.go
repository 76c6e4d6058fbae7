package errors

import (
	"errors"
	"fmt"
)

// Exit statuses returned by the okta-assume binary.
const (
	ExitOK       = 0
	ExitInternal = 1
	ExitUsage    = 2
)

// Failure classes. Every error produced by the pipeline wraps exactly one of these.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrAssertion     = errors.New("assertion error")
	ErrAmbiguity     = errors.New("ambiguity error")
	ErrIO            = errors.New("i/o error")
	ErrValidation    = errors.New("validation error")
)

var (
	ErrAssertionNotFound = fmt.Errorf("%w: no SAML assertion found in response", ErrAssertion)
	ErrNoRolesFound      = fmt.Errorf("%w: no IAM roles found in SAML assertion", ErrAssertion)
	ErrAmbiguousRole     = fmt.Errorf("%w: multiple roles match the selected profile", ErrAmbiguity)
	ErrRoleNotFound      = fmt.Errorf("%w: role does not exist", ErrConfiguration)
	ErrAppURLNotFound    = fmt.Errorf("%w: AWS app URL not found", ErrConfiguration)
	ErrInterrupted       = errors.New("operation interrupted")
)

// ExitCode maps an error onto the exit status class it belongs to.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrIO):
		return ExitInternal
	case errors.Is(err, ErrConfiguration),
		errors.Is(err, ErrAssertion),
		errors.Is(err, ErrAmbiguity),
		errors.Is(err, ErrValidation):
		return ExitUsage
	default:
		return ExitInternal
	}
}

// Wrap attaches a failure class to err, keeping err in the chain.
func Wrap(class error, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, class) {
		return err
	}
	return fmt.Errorf("%w: %w", class, err)
}
