package devkit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-verify/core"
)

func ValidateTransportAdapterConformance(
	ctx context.Context,
	adapter core.TransportAdapter,
	request core.TransportRequest,
) error {
	if adapter == nil {
		return fmt.Errorf("devkit: transport adapter is required")
	}
	if strings.TrimSpace(adapter.Kind()) == "" {
		return fmt.Errorf("devkit: transport adapter kind is required")
	}
	_, err := adapter.Do(ctx, request)
	return err
}

// ValidateExactlyOnceCompletion issues calls concurrent resends and checks that
// every completion callback fires exactly once.
func ValidateExactlyOnceCompletion(
	ctx context.Context,
	svc *core.Service,
	req core.ResendConfirmationCodeRequest,
	calls int,
	timeout time.Duration,
) error {
	if svc == nil {
		return fmt.Errorf("devkit: service is required")
	}
	if calls <= 0 {
		calls = 1
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	counts := make([]int, calls)
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(calls)
	for i := 0; i < calls; i++ {
		index := i
		if err := svc.ResendConfirmationCode(ctx, req, func(core.Result) {
			mu.Lock()
			counts[index]++
			first := counts[index] == 1
			mu.Unlock()
			if first {
				wg.Done()
			}
		}); err != nil {
			return err
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		return fmt.Errorf("devkit: completions did not arrive within %s", timeout)
	}

	mu.Lock()
	defer mu.Unlock()
	for index, count := range counts {
		if count != 1 {
			return fmt.Errorf("devkit: call %d completed %d times", index, count)
		}
	}
	return nil
}

// ValidateAttemptStoreConformance records three attempts into an empty store
// and checks ordering, filtering and the not-found contract of the reader.
func ValidateAttemptStoreConformance(
	ctx context.Context,
	recorder core.AttemptRecorder,
	reader core.AttemptReader,
) error {
	if recorder == nil || reader == nil {
		return fmt.Errorf("devkit: attempt recorder and reader are required")
	}
	base := time.Now().UTC().Truncate(time.Second)
	attempts := []core.DeliveryAttempt{
		{
			Attribute:         core.AttributeEmail,
			Status:            core.AttemptStatusSuccess,
			DestinationKind:   core.DestinationKindEmail,
			MaskedDestination: "a****@example.com",
			CreatedAt:         base,
		},
		{
			Attribute:     core.AttributeEmail,
			Status:        core.AttemptStatusFailure,
			ErrorKind:     core.AuthErrorService,
			ErrorDetail:   core.DetailLimitExceeded,
			ExceptionKind: core.ExceptionLimitExceeded,
			CreatedAt:     base.Add(time.Second),
		},
		{
			Attribute:         core.AttributePhoneNumber,
			Status:            core.AttemptStatusSuccess,
			DestinationKind:   core.DestinationKindPhone,
			MaskedDestination: "+*******1234",
			CreatedAt:         base.Add(2 * time.Second),
		},
	}
	for _, attempt := range attempts {
		if err := recorder.Record(ctx, attempt); err != nil {
			return fmt.Errorf("devkit: record attempt: %w", err)
		}
	}

	latest, err := reader.Latest(ctx, core.AttributeEmail)
	if err != nil {
		return fmt.Errorf("devkit: latest email attempt: %w", err)
	}
	if latest.Status != core.AttemptStatusFailure || latest.ErrorDetail != core.DetailLimitExceeded {
		return fmt.Errorf("devkit: expected newest email attempt, got %#v", latest)
	}
	if strings.TrimSpace(latest.ID) == "" {
		return fmt.Errorf("devkit: expected recorded attempt to carry an id")
	}

	page, err := reader.List(ctx, core.AttemptFilter{Attribute: core.AttributeEmail})
	if err != nil {
		return fmt.Errorf("devkit: list email attempts: %w", err)
	}
	if page.Total != 2 || len(page.Items) != 2 {
		return fmt.Errorf("devkit: expected 2 email attempts, got total=%d items=%d", page.Total, len(page.Items))
	}
	if !page.Items[0].CreatedAt.After(page.Items[1].CreatedAt) {
		return fmt.Errorf("devkit: expected attempts newest first")
	}

	failures, err := reader.List(ctx, core.AttemptFilter{Status: core.AttemptStatusFailure})
	if err != nil {
		return fmt.Errorf("devkit: list failures: %w", err)
	}
	if failures.Total != 1 {
		return fmt.Errorf("devkit: expected 1 failure, got %d", failures.Total)
	}

	if _, err := reader.Latest(ctx, core.CustomAttribute("missing")); !errors.Is(err, core.ErrAttemptNotFound) {
		return fmt.Errorf("devkit: expected ErrAttemptNotFound for unknown attribute, got %v", err)
	}
	return nil
}
