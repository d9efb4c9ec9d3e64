package sqlstore

import (
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const attemptIDColumn = "id"

type deliveryAttemptRecord struct {
	bun.BaseModel `bun:"table:verify_delivery_attempts,alias:vda"`

	ID                string    `bun:"id,pk"`
	Attribute         string    `bun:"attribute,notnull"`
	Status            string    `bun:"status,notnull"`
	ErrorKind         string    `bun:"error_kind,notnull"`
	ErrorDetail       string    `bun:"error_detail,notnull"`
	ExceptionKind     string    `bun:"exception_kind,notnull"`
	DestinationKind   string    `bun:"destination_kind,notnull"`
	MaskedDestination string    `bun:"masked_destination,notnull"`
	DurationMS        int64     `bun:"duration_ms,notnull"`
	CreatedAt         time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// parsedID returns uuid.Nil for nil records and ids that are not UUIDs.
func (r *deliveryAttemptRecord) parsedID() uuid.UUID {
	if r == nil {
		return uuid.Nil
	}
	parsed, err := uuid.Parse(strings.TrimSpace(r.ID))
	if err != nil {
		return uuid.Nil
	}
	return parsed
}

func (r *deliveryAttemptRecord) identifier() string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(r.ID)
}

func deliveryAttemptHandlers() repository.ModelHandlers[*deliveryAttemptRecord] {
	return repository.ModelHandlers[*deliveryAttemptRecord]{
		NewRecord:          func() *deliveryAttemptRecord { return new(deliveryAttemptRecord) },
		GetID:              (*deliveryAttemptRecord).parsedID,
		GetIdentifier:      func() string { return attemptIDColumn },
		GetIdentifierValue: (*deliveryAttemptRecord).identifier,
		SetID: func(record *deliveryAttemptRecord, id uuid.UUID) {
			if record != nil {
				record.ID = id.String()
			}
		},
	}
}
