package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-verify/core"
)

const (
	defaultAttemptsPerPage = 25
	maxAttemptsPerPage     = 200
)

// AttemptStore persists delivery attempts in verify_delivery_attempts.
type AttemptStore struct {
	db   *bun.DB
	repo repository.Repository[*deliveryAttemptRecord]
}

func NewAttemptStore(db *bun.DB) (*AttemptStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*deliveryAttemptRecord](db, deliveryAttemptHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid delivery attempt repository wiring: %w", err)
		}
	}
	return &AttemptStore{db: db, repo: repo}, nil
}

func (s *AttemptStore) Record(ctx context.Context, attempt core.DeliveryAttempt) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("sqlstore: attempt store is not configured")
	}
	attribute := strings.TrimSpace(string(attempt.Attribute))
	if attribute == "" {
		return fmt.Errorf("sqlstore: delivery attempt attribute is required")
	}
	status := strings.TrimSpace(string(attempt.Status))
	if status == "" {
		return fmt.Errorf("sqlstore: delivery attempt status is required")
	}
	id := strings.TrimSpace(attempt.ID)
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := attempt.CreatedAt.UTC()
	if attempt.CreatedAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.repo.Create(ctx, &deliveryAttemptRecord{
		ID:                id,
		Attribute:         attribute,
		Status:            status,
		ErrorKind:         string(attempt.ErrorKind),
		ErrorDetail:       string(attempt.ErrorDetail),
		ExceptionKind:     string(attempt.ExceptionKind),
		DestinationKind:   string(attempt.DestinationKind),
		MaskedDestination: attempt.MaskedDestination,
		DurationMS:        attempt.DurationMS,
		CreatedAt:         createdAt,
	})
	return err
}

func (s *AttemptStore) List(ctx context.Context, filter core.AttemptFilter) (core.AttemptPage, error) {
	if s == nil || s.repo == nil {
		return core.AttemptPage{}, fmt.Errorf("sqlstore: attempt store is not configured")
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = defaultAttemptsPerPage
	}
	if perPage > maxAttemptsPerPage {
		perPage = maxAttemptsPerPage
	}
	offset := (page - 1) * perPage

	selectors := []repository.SelectCriteria{
		repository.OrderBy("created_at DESC"),
		repository.SelectPaginate(perPage, offset),
	}
	if attribute := strings.TrimSpace(string(filter.Attribute)); attribute != "" {
		selectors = append(selectors, repository.SelectBy("attribute", "=", attribute))
	}
	if status := strings.TrimSpace(string(filter.Status)); status != "" {
		selectors = append(selectors, repository.SelectBy("status", "=", status))
	}

	records, total, err := s.repo.List(ctx, selectors...)
	if err != nil {
		return core.AttemptPage{}, err
	}
	items := make([]core.DeliveryAttempt, 0, len(records))
	for _, record := range records {
		items = append(items, attemptRecordToDomain(record))
	}
	return core.AttemptPage{
		Items:   items,
		Page:    page,
		PerPage: perPage,
		Total:   total,
		HasNext: offset+len(items) < total,
	}, nil
}

func (s *AttemptStore) Latest(ctx context.Context, attribute core.AttributeKey) (core.DeliveryAttempt, error) {
	if s == nil || s.repo == nil {
		return core.DeliveryAttempt{}, fmt.Errorf("sqlstore: attempt store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("attribute", "=", strings.TrimSpace(string(attribute))),
		repository.OrderBy("created_at DESC"),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return core.DeliveryAttempt{}, err
	}
	if len(records) == 0 {
		return core.DeliveryAttempt{}, core.ErrAttemptNotFound
	}
	return attemptRecordToDomain(records[0]), nil
}

// Prune deletes attempts recorded before cutoff and returns how many rows went.
func (s *AttemptStore) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: attempt store is not configured")
	}
	res, err := s.db.NewDelete().
		Model((*deliveryAttemptRecord)(nil)).
		Where("created_at < ?", cutoff.UTC()).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

func attemptRecordToDomain(record *deliveryAttemptRecord) core.DeliveryAttempt {
	if record == nil {
		return core.DeliveryAttempt{}
	}
	return core.DeliveryAttempt{
		ID:                record.ID,
		Attribute:         core.AttributeKey(record.Attribute),
		Status:            core.AttemptStatus(record.Status),
		ErrorKind:         core.AuthErrorKind(record.ErrorKind),
		ErrorDetail:       core.ServiceErrorDetail(record.ErrorDetail),
		ExceptionKind:     core.ServiceExceptionKind(record.ExceptionKind),
		DestinationKind:   core.DestinationKind(record.DestinationKind),
		MaskedDestination: record.MaskedDestination,
		DurationMS:        record.DurationMS,
		CreatedAt:         record.CreatedAt.UTC(),
	}
}

var (
	_ core.AttemptRecorder = (*AttemptStore)(nil)
	_ core.AttemptReader   = (*AttemptStore)(nil)
)
