package transport

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-verify/core"
)

// failure is a transport error before it is rendered into the go-errors
// envelope used across the module.
type failure struct {
	category goerrors.Category
	status   int
	message  string
	cause    error
	metadata map[string]any
}

func (f failure) err() error {
	var out *goerrors.Error
	if f.cause != nil {
		out = goerrors.Wrap(f.cause, f.category, f.message)
	} else {
		out = goerrors.New(f.message, f.category)
	}
	out = out.WithCode(f.status).WithTextCode(textCodeFor(f.category))
	if len(f.metadata) > 0 {
		out.WithMetadata(f.metadata)
	}
	return out
}

func badInput(message string, cause error, metadata map[string]any) error {
	return failure{goerrors.CategoryBadInput, http.StatusBadRequest, message, cause, metadata}.err()
}

// upstream reports a failure talking to, or reading from, the remote endpoint.
func upstream(message string, cause error, metadata map[string]any) error {
	return failure{goerrors.CategoryExternal, http.StatusBadGateway, message, cause, metadata}.err()
}

func internal(status int, message string, metadata map[string]any) error {
	return failure{goerrors.CategoryInternal, status, message, nil, metadata}.err()
}

func textCodeFor(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return core.VerifyErrorBadInput
	case goerrors.CategoryExternal:
		return core.VerifyErrorExternalFailure
	default:
		return core.VerifyErrorInternal
	}
}
