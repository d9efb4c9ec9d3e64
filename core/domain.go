package core

import (
	"strings"
)

// AttributeKey identifies the user attribute a verification code targets.
type AttributeKey string

const (
	AttributeEmail       AttributeKey = "email"
	AttributePhoneNumber AttributeKey = "phone_number"
)

// CustomAttribute returns the provider form of a custom attribute name.
func CustomAttribute(name string) AttributeKey {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "custom:") {
		return AttributeKey(name)
	}
	return AttributeKey("custom:" + name)
}

func (k AttributeKey) String() string {
	return string(k)
}

type DeliveryMedium string

const (
	DeliveryMediumEmail DeliveryMedium = "EMAIL"
	DeliveryMediumSMS   DeliveryMedium = "SMS"
)

func (m DeliveryMedium) normalized() DeliveryMedium {
	return DeliveryMedium(strings.ToUpper(strings.TrimSpace(string(m))))
}

type DestinationKind string

const (
	DestinationKindEmail   DestinationKind = "email"
	DestinationKindPhone   DestinationKind = "phone"
	DestinationKindUnknown DestinationKind = "unknown"
)

// DeliveryDestination is where a verification code was sent.
type DeliveryDestination struct {
	Kind  DestinationKind
	Value string
}

func EmailDestination(value string) DeliveryDestination {
	return DeliveryDestination{Kind: DestinationKindEmail, Value: value}
}

func PhoneDestination(value string) DeliveryDestination {
	return DeliveryDestination{Kind: DestinationKindPhone, Value: value}
}

func UnknownDestination(value string) DeliveryDestination {
	return DeliveryDestination{Kind: DestinationKindUnknown, Value: value}
}

func (d DeliveryDestination) IsEmail() bool { return d.Kind == DestinationKindEmail }

func (d DeliveryDestination) IsPhone() bool { return d.Kind == DestinationKindPhone }

// CodeDeliveryDetails is the payload returned by the identity provider on a
// successful call. Every field may be absent.
type CodeDeliveryDetails struct {
	AttributeName  *string
	DeliveryMedium *DeliveryMedium
	Destination    *string
}

// AttributeCodeDelivery is the success value delivered to callers.
type AttributeCodeDelivery struct {
	AttributeKey AttributeKey
	Destination  DeliveryDestination
}

type GetAttributeVerificationCodeInput struct {
	AccessToken    string
	AttributeName  string
	ClientMetadata map[string]string
}

type GetAttributeVerificationCodeOutput struct {
	CodeDeliveryDetails *CodeDeliveryDetails
}

type ResendConfirmationCodeRequest struct {
	Attribute      AttributeKey
	ClientMetadata map[string]string
}

// RawOutcome holds what the identity provider produced for one call: either a
// payload or an error. The zero value carries neither and classifies as unknown.
type RawOutcome struct {
	Payload *CodeDeliveryDetails
	Err     error
}

func PayloadOutcome(details CodeDeliveryDetails) RawOutcome {
	return RawOutcome{Payload: &details}
}

func ErrorOutcome(err error) RawOutcome {
	return RawOutcome{Err: err}
}

// Result is the terminal value of a resend invocation. Exactly one of value or
// err is meaningful.
type Result struct {
	value AttributeCodeDelivery
	err   *AuthError
}

func Success(value AttributeCodeDelivery) Result {
	return Result{value: value}
}

func Failure(err *AuthError) Result {
	if err == nil {
		err = newUnknownError(messageInconsistentState, nil)
	}
	return Result{err: err}
}

func (r Result) IsSuccess() bool { return r.err == nil }

func (r Result) Value() (AttributeCodeDelivery, bool) {
	if r.err != nil {
		return AttributeCodeDelivery{}, false
	}
	return r.value, true
}

func (r Result) Err() *AuthError { return r.err }

// Unpack returns the result in the usual (value, error) shape.
func (r Result) Unpack() (AttributeCodeDelivery, error) {
	if r.err != nil {
		return AttributeCodeDelivery{}, r.err
	}
	return r.value, nil
}

// Ptr returns a pointer to value, for building payloads with optional fields.
func Ptr[T any](value T) *T {
	return &value
}
