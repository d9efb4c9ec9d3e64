package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// ErrAttemptNotFound is returned by AttemptReader.Latest when no attempt exists
// for the attribute.
var ErrAttemptNotFound = errors.New("core: delivery attempt not found")

type AttemptStatus string

const (
	AttemptStatusSuccess AttemptStatus = "success"
	AttemptStatusFailure AttemptStatus = "failure"
)

// DeliveryAttempt is the audit record of one resend invocation. It never
// carries the unmasked destination.
type DeliveryAttempt struct {
	ID                string
	Attribute         AttributeKey
	Status            AttemptStatus
	ErrorKind         AuthErrorKind
	ErrorDetail       ServiceErrorDetail
	ExceptionKind     ServiceExceptionKind
	DestinationKind   DestinationKind
	MaskedDestination string
	DurationMS        int64
	CreatedAt         time.Time
}

// NewDeliveryAttempt builds the audit record for a classified result.
func NewDeliveryAttempt(attribute AttributeKey, result Result, startedAt time.Time) DeliveryAttempt {
	attempt := DeliveryAttempt{
		Attribute:  attribute,
		CreatedAt:  startedAt.UTC(),
		DurationMS: time.Since(startedAt).Milliseconds(),
	}
	if value, ok := result.Value(); ok {
		attempt.Status = AttemptStatusSuccess
		attempt.DestinationKind = value.Destination.Kind
		attempt.MaskedDestination = MaskDestination(value.Destination)
		if value.AttributeKey != "" {
			attempt.Attribute = value.AttributeKey
		}
		return attempt
	}
	authErr := result.Err()
	attempt.Status = AttemptStatusFailure
	attempt.ErrorKind = authErr.Kind()
	attempt.ErrorDetail = authErr.Detail()
	if svcErr, ok := authErr.ServiceException(); ok {
		attempt.ExceptionKind = svcErr.Kind
	}
	return attempt
}

// MaskDestination hides all but the edges of a destination. Providers usually
// mask destinations already; masking again is idempotent for those values.
func MaskDestination(destination DeliveryDestination) string {
	value := strings.TrimSpace(destination.Value)
	if value == "" {
		return ""
	}
	switch destination.Kind {
	case DestinationKindEmail:
		return maskEmail(value)
	case DestinationKindPhone:
		return maskPhone(value)
	default:
		return maskTail(value, 2)
	}
}

func maskEmail(value string) string {
	at := strings.LastIndex(value, "@")
	if at <= 0 {
		return maskTail(value, 1)
	}
	local, domain := value[:at], value[at:]
	first, size := utf8.DecodeRuneInString(local)
	return string(first) + strings.Repeat("*", max(utf8.RuneCountInString(local[size:]), 3)) + domain
}

func maskPhone(value string) string {
	keep := 4
	if len(value) <= keep {
		return strings.Repeat("*", len(value))
	}
	prefix := ""
	rest := value
	if strings.HasPrefix(value, "+") {
		prefix = "+"
		rest = value[1:]
	}
	if len(rest) <= keep {
		return prefix + strings.Repeat("*", len(rest))
	}
	return prefix + strings.Repeat("*", len(rest)-keep) + rest[len(rest)-keep:]
}

func maskTail(value string, keep int) string {
	runes := []rune(value)
	if len(runes) <= keep {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:keep]) + strings.Repeat("*", len(runes)-keep)
}
