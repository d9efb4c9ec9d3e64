package query

import (
	"context"
	"errors"

	"github.com/goliatone/go-verify/core"
)

type ListDeliveryAttemptsQuery struct {
	reader core.AttemptReader
}

func NewListDeliveryAttemptsQuery(reader core.AttemptReader) *ListDeliveryAttemptsQuery {
	return &ListDeliveryAttemptsQuery{reader: reader}
}

func (q *ListDeliveryAttemptsQuery) Query(
	ctx context.Context,
	msg ListDeliveryAttemptsMessage,
) (core.AttemptPage, error) {
	if q == nil || q.reader == nil {
		return core.AttemptPage{}, queryDependencyError("query: delivery attempt reader is required")
	}
	if err := msg.Validate(); err != nil {
		return core.AttemptPage{}, err
	}
	return q.reader.List(ctx, msg.Filter)
}

type LatestDeliveryAttemptQuery struct {
	reader core.AttemptReader
}

func NewLatestDeliveryAttemptQuery(reader core.AttemptReader) *LatestDeliveryAttemptQuery {
	return &LatestDeliveryAttemptQuery{reader: reader}
}

func (q *LatestDeliveryAttemptQuery) Query(
	ctx context.Context,
	msg LatestDeliveryAttemptMessage,
) (core.DeliveryAttempt, error) {
	if q == nil || q.reader == nil {
		return core.DeliveryAttempt{}, queryDependencyError("query: delivery attempt reader is required")
	}
	if err := msg.Validate(); err != nil {
		return core.DeliveryAttempt{}, err
	}
	attempt, err := q.reader.Latest(ctx, msg.Attribute)
	if errors.Is(err, core.ErrAttemptNotFound) {
		return core.DeliveryAttempt{}, queryNotFoundError(err, string(msg.Attribute))
	}
	return attempt, err
}
