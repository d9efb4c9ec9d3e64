package core

import (
	"errors"
	"fmt"
	"strings"
)

// ServiceExceptionKind names a typed failure raised by the identity provider.
// The vendor may add kinds over time; unknown names are kept verbatim.
type ServiceExceptionKind string

const (
	ExceptionCodeDeliveryFailure   ServiceExceptionKind = "CodeDeliveryFailureException"
	ExceptionInternalError         ServiceExceptionKind = "InternalErrorException"
	ExceptionInvalidParameter      ServiceExceptionKind = "InvalidParameterException"
	ExceptionLimitExceeded         ServiceExceptionKind = "LimitExceededException"
	ExceptionNotAuthorized         ServiceExceptionKind = "NotAuthorizedException"
	ExceptionPasswordResetRequired ServiceExceptionKind = "PasswordResetRequiredException"
	ExceptionResourceNotFound      ServiceExceptionKind = "ResourceNotFoundException"
	ExceptionTooManyRequests       ServiceExceptionKind = "TooManyRequestsException"
	ExceptionUserNotConfirmed      ServiceExceptionKind = "UserNotConfirmedException"
	ExceptionUserNotFound          ServiceExceptionKind = "UserNotFoundException"
)

// KnownServiceExceptionKinds lists every kind with an explicit mapping.
func KnownServiceExceptionKinds() []ServiceExceptionKind {
	return []ServiceExceptionKind{
		ExceptionCodeDeliveryFailure,
		ExceptionInternalError,
		ExceptionInvalidParameter,
		ExceptionLimitExceeded,
		ExceptionNotAuthorized,
		ExceptionPasswordResetRequired,
		ExceptionResourceNotFound,
		ExceptionTooManyRequests,
		ExceptionUserNotConfirmed,
		ExceptionUserNotFound,
	}
}

// ServiceException is a typed failure returned by the identity provider.
type ServiceException struct {
	Kind       ServiceExceptionKind
	Message    string
	RequestID  string
	StatusCode int
}

func NewServiceException(kind ServiceExceptionKind, message string) *ServiceException {
	return &ServiceException{Kind: kind, Message: message}
}

func (e *ServiceException) Error() string {
	if e == nil {
		return "<nil>"
	}
	kind := strings.TrimSpace(string(e.Kind))
	if kind == "" {
		kind = "UnknownException"
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		return kind + ": " + msg
	}
	return kind
}

type AuthErrorKind string

const (
	AuthErrorUnknown       AuthErrorKind = "unknown"
	AuthErrorNotAuthorized AuthErrorKind = "not_authorized"
	AuthErrorService       AuthErrorKind = "service"
)

// ServiceErrorDetail refines an AuthErrorService failure.
type ServiceErrorDetail string

const (
	DetailNone                  ServiceErrorDetail = ""
	DetailCodeDelivery          ServiceErrorDetail = "code_delivery"
	DetailInvalidParameter      ServiceErrorDetail = "invalid_parameter"
	DetailLimitExceeded         ServiceErrorDetail = "limit_exceeded"
	DetailPasswordResetRequired ServiceErrorDetail = "password_reset_required"
	DetailResourceNotFound      ServiceErrorDetail = "resource_not_found"
	DetailRequestLimitExceeded  ServiceErrorDetail = "request_limit_exceeded"
	DetailUserNotConfirmed      ServiceErrorDetail = "user_not_confirmed"
	DetailUserNotFound          ServiceErrorDetail = "user_not_found"
)

// AuthError is the caller-facing failure of a resend invocation. Values are
// built by the constructors in this package and never mutated afterwards.
type AuthError struct {
	kind               AuthErrorKind
	message            string
	recoverySuggestion string
	detail             ServiceErrorDetail
	underlying         error
}

func newUnknownError(message string, underlying error) *AuthError {
	return &AuthError{
		kind:               AuthErrorUnknown,
		message:            message,
		recoverySuggestion: recoveryUnknown,
		underlying:         underlying,
	}
}

func newNotAuthorizedError(message string, underlying error) *AuthError {
	return &AuthError{
		kind:               AuthErrorNotAuthorized,
		message:            message,
		recoverySuggestion: recoveryNotAuthorized,
		underlying:         underlying,
	}
}

func newServiceError(detail ServiceErrorDetail, message string, recovery string, underlying error) *AuthError {
	return &AuthError{
		kind:               AuthErrorService,
		message:            message,
		recoverySuggestion: recovery,
		detail:             detail,
		underlying:         underlying,
	}
}

func (e *AuthError) Kind() AuthErrorKind {
	if e == nil {
		return AuthErrorUnknown
	}
	return e.kind
}

func (e *AuthError) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *AuthError) RecoverySuggestion() string {
	if e == nil {
		return ""
	}
	return e.recoverySuggestion
}

// Detail is DetailNone unless Kind is AuthErrorService.
func (e *AuthError) Detail() ServiceErrorDetail {
	if e == nil {
		return DetailNone
	}
	return e.detail
}

// Underlying is the service exception or transport error the failure was
// classified from. It is nil for failures raised by this package itself.
func (e *AuthError) Underlying() error {
	if e == nil {
		return nil
	}
	return e.underlying
}

// ServiceException returns the vendor exception behind the failure, if any.
func (e *AuthError) ServiceException() (*ServiceException, bool) {
	if e == nil || e.underlying == nil {
		return nil, false
	}
	var svcErr *ServiceException
	if errors.As(e.underlying, &svcErr) && svcErr != nil {
		return svcErr, true
	}
	return nil, false
}

func (e *AuthError) Error() string {
	if e == nil {
		return "<nil>"
	}
	label := string(e.kind)
	if e.detail != DetailNone {
		label += "(" + string(e.detail) + ")"
	}
	if e.underlying != nil {
		return fmt.Sprintf("auth: %s: %s: %v", label, e.message, e.underlying)
	}
	return fmt.Sprintf("auth: %s: %s", label, e.message)
}

func (e *AuthError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.underlying
}

// Is matches on kind and, when the target carries one, on detail. Sentinels
// such as ErrNotAuthorized can be used with errors.Is.
func (e *AuthError) Is(target error) bool {
	other, ok := target.(*AuthError)
	if !ok || e == nil || other == nil {
		return false
	}
	if e.kind != other.kind {
		return false
	}
	return other.detail == DetailNone || e.detail == other.detail
}

var (
	ErrUnknown       = &AuthError{kind: AuthErrorUnknown}
	ErrNotAuthorized = &AuthError{kind: AuthErrorNotAuthorized}
	ErrService       = &AuthError{kind: AuthErrorService}
)

// ServiceErrorOf returns a matcher for a service failure with the given detail.
func ServiceErrorOf(detail ServiceErrorDetail) *AuthError {
	return &AuthError{kind: AuthErrorService, detail: detail}
}

// AsAuthError extracts an AuthError from err.
func AsAuthError(err error) (*AuthError, bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) && authErr != nil {
		return authErr, true
	}
	return nil, false
}
