package command

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-verify/core"
)

func commandDependencyError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.VerifyErrorInternal)
}

func commandValidationError(field string, message string) error {
	return goerrors.NewValidation("command: validation failed", goerrors.FieldError{
		Field:   field,
		Message: message,
	}).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.VerifyErrorBadInput).
		WithSeverity(goerrors.SeverityError)
}

// commandAuthError renders classified resend failures as go-errors envelopes
// and leaves other errors untouched.
func commandAuthError(err error) error {
	if authErr, ok := core.AsAuthError(err); ok {
		return authErr.ToServiceError()
	}
	return err
}
