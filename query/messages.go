package query

import (
	"strings"

	"github.com/goliatone/go-verify/core"
)

const (
	TypeListDeliveryAttempts  = "verify.query.delivery_attempts.list"
	TypeLatestDeliveryAttempt = "verify.query.delivery_attempts.latest"
)

const maxPerPage = 200

type ListDeliveryAttemptsMessage struct {
	Filter core.AttemptFilter
}

func (ListDeliveryAttemptsMessage) Type() string { return TypeListDeliveryAttempts }

func (m ListDeliveryAttemptsMessage) Validate() error {
	if m.Filter.Page < 0 {
		return queryValidationError("page", "page must be >= 0")
	}
	if m.Filter.PerPage < 0 || m.Filter.PerPage > maxPerPage {
		return queryValidationError("per_page", "per_page must be between 0 and 200")
	}
	switch m.Filter.Status {
	case "", core.AttemptStatusSuccess, core.AttemptStatusFailure:
	default:
		return queryValidationError("status", "status must be success or failure")
	}
	return nil
}

type LatestDeliveryAttemptMessage struct {
	Attribute core.AttributeKey
}

func (LatestDeliveryAttemptMessage) Type() string { return TypeLatestDeliveryAttempt }

func (m LatestDeliveryAttemptMessage) Validate() error {
	if strings.TrimSpace(string(m.Attribute)) == "" {
		return queryValidationError("attribute", "attribute is required")
	}
	return nil
}
