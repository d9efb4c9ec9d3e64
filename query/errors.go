package query

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-verify/core"
)

const TextCodeAttemptNotFound = "VERIFY_ATTEMPT_NOT_FOUND"

func queryDependencyError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.VerifyErrorInternal)
}

func queryValidationError(field string, message string) error {
	return goerrors.NewValidation("query: validation failed", goerrors.FieldError{
		Field:   field,
		Message: message,
	}).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.VerifyErrorBadInput).
		WithSeverity(goerrors.SeverityError)
}

func queryNotFoundError(err error, attribute string) error {
	return goerrors.Wrap(err, goerrors.CategoryNotFound, "query: no delivery attempt recorded").
		WithCode(http.StatusNotFound).
		WithTextCode(TextCodeAttemptNotFound).
		WithMetadata(map[string]any{"attribute": attribute})
}
