package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	VerifyErrorBadInput              = "VERIFY_BAD_INPUT"
	VerifyErrorInternal              = "VERIFY_INTERNAL_ERROR"
	VerifyErrorExternalFailure       = "VERIFY_EXTERNAL_FAILURE"
	VerifyErrorUnknown               = "VERIFY_UNKNOWN"
	VerifyErrorNotAuthorized         = "VERIFY_NOT_AUTHORIZED"
	VerifyErrorCodeDeliveryFailed    = "VERIFY_CODE_DELIVERY_FAILED"
	VerifyErrorInvalidParameter      = "VERIFY_INVALID_PARAMETER"
	VerifyErrorLimitExceeded         = "VERIFY_LIMIT_EXCEEDED"
	VerifyErrorPasswordResetRequired = "VERIFY_PASSWORD_RESET_REQUIRED"
	VerifyErrorResourceNotFound      = "VERIFY_RESOURCE_NOT_FOUND"
	VerifyErrorRequestLimitExceeded  = "VERIFY_REQUEST_LIMIT_EXCEEDED"
	VerifyErrorUserNotConfirmed      = "VERIFY_USER_NOT_CONFIRMED"
	VerifyErrorUserNotFound          = "VERIFY_USER_NOT_FOUND"
)

// ToServiceError renders the failure as a go-errors envelope for command,
// query and HTTP surfaces.
func (e *AuthError) ToServiceError() *goerrors.Error {
	if e == nil {
		return nil
	}
	category, textCode, status := authErrorEnvelope(e.kind, e.detail)
	var out *goerrors.Error
	if e.underlying != nil {
		out = goerrors.Wrap(e.underlying, category, e.message)
	} else {
		out = goerrors.New(e.message, category)
	}
	out = out.WithCode(status).WithTextCode(textCode)
	metadata := map[string]any{
		"auth_error_kind": string(e.kind),
	}
	if e.detail != DetailNone {
		metadata["auth_error_detail"] = string(e.detail)
	}
	if e.recoverySuggestion != "" {
		metadata["recovery_suggestion"] = e.recoverySuggestion
	}
	if svcErr, ok := e.ServiceException(); ok {
		metadata["exception_kind"] = string(svcErr.Kind)
		if svcErr.RequestID != "" {
			metadata["request_id"] = svcErr.RequestID
		}
	}
	out.WithMetadata(metadata)
	return out
}

func authErrorEnvelope(kind AuthErrorKind, detail ServiceErrorDetail) (goerrors.Category, string, int) {
	switch kind {
	case AuthErrorNotAuthorized:
		return goerrors.CategoryAuth, VerifyErrorNotAuthorized, http.StatusUnauthorized
	case AuthErrorService:
		switch detail {
		case DetailCodeDelivery:
			return goerrors.CategoryExternal, VerifyErrorCodeDeliveryFailed, http.StatusBadGateway
		case DetailInvalidParameter:
			return goerrors.CategoryBadInput, VerifyErrorInvalidParameter, http.StatusBadRequest
		case DetailLimitExceeded:
			return goerrors.CategoryRateLimit, VerifyErrorLimitExceeded, http.StatusTooManyRequests
		case DetailPasswordResetRequired:
			return goerrors.CategoryAuth, VerifyErrorPasswordResetRequired, http.StatusUnauthorized
		case DetailResourceNotFound:
			return goerrors.CategoryNotFound, VerifyErrorResourceNotFound, http.StatusNotFound
		case DetailRequestLimitExceeded:
			return goerrors.CategoryRateLimit, VerifyErrorRequestLimitExceeded, http.StatusTooManyRequests
		case DetailUserNotConfirmed:
			return goerrors.CategoryAuthz, VerifyErrorUserNotConfirmed, http.StatusForbidden
		case DetailUserNotFound:
			return goerrors.CategoryNotFound, VerifyErrorUserNotFound, http.StatusNotFound
		}
	}
	return goerrors.CategoryInternal, VerifyErrorUnknown, http.StatusInternalServerError
}

func verifyErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if authErr, ok := AsAuthError(err); ok {
		return authErr.ToServiceError()
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureVerifyErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return ensureVerifyErrorEnvelope(
			goerrors.New(err.Error(), goerrors.CategoryBadInput).WithTextCode(VerifyErrorBadInput),
		)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureVerifyErrorEnvelope(mapped)
}

func ensureVerifyErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = verifyHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultVerifyTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultVerifyTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return VerifyErrorBadInput
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return VerifyErrorNotAuthorized
	case goerrors.CategoryRateLimit:
		return VerifyErrorRequestLimitExceeded
	case goerrors.CategoryExternal:
		return VerifyErrorExternalFailure
	default:
		return VerifyErrorInternal
	}
}

func verifyHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
