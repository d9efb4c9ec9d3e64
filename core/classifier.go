package core

import (
	"errors"
	"strings"
)

const (
	messageInvalidPayload    = "identity provider returned incomplete code delivery details"
	messageInconsistentState = "resend produced neither a payload nor an error"
	messageInternalError     = "identity provider reported an internal error"
	messageUnrecognized      = "identity provider returned an unrecognized error"
	messageTransportFailure  = "identity provider call failed"
	messageNotAuthorized     = "the user session is not authorized for this operation"
	messageCodeDelivery      = "the verification code could not be delivered"
	messageInvalidParameter  = "the identity provider rejected a request parameter"
	messageLimitExceeded     = "the attribute verification limit was exceeded"
	messagePasswordReset     = "a password reset is required before continuing"
	messageResourceNotFound  = "the identity provider could not find a required resource"
	messageRequestLimit      = "too many requests were sent to the identity provider"
	messageUserNotConfirmed  = "the user account is not confirmed"
	messageUserNotFound      = "the user does not exist"
	recoveryUnknown          = "retry the operation; if it keeps failing inspect the underlying error"
	recoveryNotAuthorized    = "sign in again and retry"
	recoveryCodeDelivery     = "check the destination attribute and retry later"
	recoveryInvalidParameter = "check the attribute name and client metadata"
	recoveryLimitExceeded    = "wait before requesting another code"
	recoveryPasswordReset    = "reset the password and sign in again"
	recoveryResourceNotFound = "check the user pool and app client configuration"
	recoveryRequestLimit     = "reduce the request rate and retry later"
	recoveryUserNotConfirmed = "confirm the user account first"
	recoveryUserNotFound     = "check that the user is signed in with an existing account"
)

// Classify reduces a raw provider outcome to a Result. It has no side effects
// and returns the same Result for the same input.
func Classify(outcome RawOutcome) Result {
	switch {
	case outcome.Err != nil:
		return Failure(classifyError(outcome.Err))
	case outcome.Payload != nil:
		return classifyPayload(*outcome.Payload)
	default:
		return Failure(newUnknownError(messageInconsistentState, nil))
	}
}

func classifyPayload(details CodeDeliveryDetails) Result {
	if details.DeliveryMedium == nil || details.Destination == nil {
		return Failure(newUnknownError(messageInvalidPayload, nil))
	}
	destination := *details.Destination
	var resolved DeliveryDestination
	switch details.DeliveryMedium.normalized() {
	case DeliveryMediumEmail:
		resolved = EmailDestination(destination)
	case DeliveryMediumSMS:
		resolved = PhoneDestination(destination)
	default:
		resolved = UnknownDestination(destination)
	}

	value := AttributeCodeDelivery{Destination: resolved}
	if details.AttributeName != nil {
		value.AttributeKey = AttributeKey(strings.TrimSpace(*details.AttributeName))
	}
	return Success(value)
}

func classifyError(err error) *AuthError {
	if authErr, ok := AsAuthError(err); ok {
		return authErr
	}
	var svcErr *ServiceException
	if !errors.As(err, &svcErr) || svcErr == nil {
		return newUnknownError(messageTransportFailure, err)
	}
	return ClassifyServiceException(svcErr)
}

// ClassifyServiceException maps one provider exception to its AuthError.
// Kinds without an explicit branch map to AuthErrorUnknown.
func ClassifyServiceException(svcErr *ServiceException) *AuthError {
	if svcErr == nil {
		return newUnknownError(messageInconsistentState, nil)
	}
	switch svcErr.Kind {
	case ExceptionCodeDeliveryFailure:
		return newServiceError(DetailCodeDelivery, messageCodeDelivery, recoveryCodeDelivery, svcErr)
	case ExceptionInternalError:
		return newUnknownError(messageInternalError, svcErr)
	case ExceptionInvalidParameter:
		return newServiceError(DetailInvalidParameter, messageInvalidParameter, recoveryInvalidParameter, svcErr)
	case ExceptionLimitExceeded:
		return newServiceError(DetailLimitExceeded, messageLimitExceeded, recoveryLimitExceeded, svcErr)
	case ExceptionNotAuthorized:
		return newNotAuthorizedError(messageNotAuthorized, svcErr)
	case ExceptionPasswordResetRequired:
		return newServiceError(DetailPasswordResetRequired, messagePasswordReset, recoveryPasswordReset, svcErr)
	case ExceptionResourceNotFound:
		return newServiceError(DetailResourceNotFound, messageResourceNotFound, recoveryResourceNotFound, svcErr)
	case ExceptionTooManyRequests:
		return newServiceError(DetailRequestLimitExceeded, messageRequestLimit, recoveryRequestLimit, svcErr)
	case ExceptionUserNotConfirmed:
		return newServiceError(DetailUserNotConfirmed, messageUserNotConfirmed, recoveryUserNotConfirmed, svcErr)
	case ExceptionUserNotFound:
		return newServiceError(DetailUserNotFound, messageUserNotFound, recoveryUserNotFound, svcErr)
	default:
		return newUnknownError(messageUnrecognized, svcErr)
	}
}
