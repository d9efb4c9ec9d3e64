package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-verify/core"
)

var (
	_ gocmd.Querier[ListDeliveryAttemptsMessage, core.AttemptPage]      = (*ListDeliveryAttemptsQuery)(nil)
	_ gocmd.Querier[LatestDeliveryAttemptMessage, core.DeliveryAttempt] = (*LatestDeliveryAttemptQuery)(nil)
)
