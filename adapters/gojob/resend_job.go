package gojob

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	verifycommand "github.com/goliatone/go-verify/command"
	"github.com/goliatone/go-verify/core"
)

const (
	paramAttribute      = "attribute"
	paramClientMetadata = "client_metadata"

	defaultThrottleDelay = 30 * time.Second
)

const (
	reasonInvalidMessage = "invalid_message"
	reasonUnknown        = "unknown"
)

// NewResendJobMessage builds the queue payload for a deferred resend. The
// access token is never queued; workers resolve it through the service.
func NewResendJobMessage(req core.ResendConfirmationCodeRequest, idempotencyKey string) *core.JobExecutionMessage {
	params := map[string]any{paramAttribute: string(req.Attribute)}
	if len(req.ClientMetadata) > 0 {
		metadata := make(map[string]any, len(req.ClientMetadata))
		for key, value := range req.ClientMetadata {
			metadata[key] = value
		}
		params[paramClientMetadata] = metadata
	}
	return &core.JobExecutionMessage{
		JobID:          JobIDResendConfirmationCode,
		ScriptPath:     verifycommand.TypeResendConfirmationCode,
		Parameters:     params,
		IdempotencyKey: strings.TrimSpace(idempotencyKey),
	}
}

// ResendRequestFromMessage decodes a queued resend. Metadata values that went
// through a JSON round trip arrive as map[string]any and are accepted.
func ResendRequestFromMessage(msg *core.JobExecutionMessage) (core.ResendConfirmationCodeRequest, error) {
	if msg == nil {
		return core.ResendConfirmationCodeRequest{}, fmt.Errorf("gojob: execution message is required")
	}
	if strings.TrimSpace(msg.JobID) != JobIDResendConfirmationCode {
		return core.ResendConfirmationCodeRequest{}, fmt.Errorf("gojob: unexpected job id %q", msg.JobID)
	}
	attribute, _ := msg.Parameters[paramAttribute].(string)
	if strings.TrimSpace(attribute) == "" {
		return core.ResendConfirmationCodeRequest{}, fmt.Errorf("gojob: resend job is missing %s", paramAttribute)
	}
	req := core.ResendConfirmationCodeRequest{Attribute: core.AttributeKey(strings.TrimSpace(attribute))}

	switch metadata := msg.Parameters[paramClientMetadata].(type) {
	case nil:
	case map[string]string:
		req.ClientMetadata = make(map[string]string, len(metadata))
		for key, value := range metadata {
			req.ClientMetadata[key] = value
		}
	case map[string]any:
		req.ClientMetadata = make(map[string]string, len(metadata))
		for key, value := range metadata {
			text, ok := value.(string)
			if !ok {
				return core.ResendConfirmationCodeRequest{}, fmt.Errorf("gojob: client metadata %q must be a string", key)
			}
			req.ClientMetadata[key] = text
		}
	default:
		return core.ResendConfirmationCodeRequest{}, fmt.Errorf("gojob: client metadata has unsupported type %T", metadata)
	}
	return req, nil
}

// ResendJobHandler runs queued resends through the service and settles the
// delivery. Throttled requests are requeued; every other failure goes to the
// dead letter queue.
type ResendJobHandler struct {
	service       verifycommand.ResendService
	logger        glog.Logger
	throttleDelay time.Duration
}

type ResendJobOption func(*ResendJobHandler)

func WithJobLogger(logger glog.Logger) ResendJobOption {
	return func(h *ResendJobHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithThrottleDelay sets the nack delay used when the provider throttles.
func WithThrottleDelay(delay time.Duration) ResendJobOption {
	return func(h *ResendJobHandler) {
		if delay >= 0 {
			h.throttleDelay = delay
		}
	}
}

func NewResendJobHandler(service verifycommand.ResendService, opts ...ResendJobOption) *ResendJobHandler {
	h := &ResendJobHandler{
		service:       service,
		logger:        glog.Nop(),
		throttleDelay: defaultThrottleDelay,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

type attemptNacker interface {
	NackForAttempt(ctx context.Context, opts core.JobNackOptions, attempt int) error
}

// Handle settles the delivery before returning. The returned error is the
// resend failure, or the ack/nack failure when settling did not succeed.
func (h *ResendJobHandler) Handle(ctx context.Context, delivery core.JobDelivery, attempt int) error {
	if h == nil || h.service == nil {
		return fmt.Errorf("gojob: resend service is required")
	}
	if delivery == nil {
		return fmt.Errorf("gojob: delivery is required")
	}

	msg := delivery.Message()
	req, err := ResendRequestFromMessage(msg)
	if err != nil {
		var keys []string
		if msg != nil {
			keys = sortedParameterKeys(msg.Parameters)
		}
		h.logger.Warn("resend job rejected", "reason", reasonInvalidMessage, "parameters", keys, "error", err)
		if nackErr := nack(ctx, delivery, core.JobNackOptions{DeadLetter: true, Reason: reasonInvalidMessage}, attempt); nackErr != nil {
			return nackErr
		}
		return err
	}

	out, err := h.service.ResendConfirmationCodeSync(ctx, req)
	if err == nil {
		if ackErr := delivery.Ack(ctx); ackErr != nil {
			return ackErr
		}
		h.logger.Debug("resend job delivered",
			"attribute", string(out.AttributeKey),
			"destination_kind", string(out.Destination.Kind),
			"attempt", attempt,
		)
		return nil
	}

	opts := h.nackOptionsFor(err)
	h.logger.Warn("resend job failed",
		"attribute", string(req.Attribute),
		"reason", opts.Reason,
		"requeue", opts.Requeue,
		"attempt", attempt,
	)
	if nackErr := nack(ctx, delivery, opts, attempt); nackErr != nil {
		return nackErr
	}
	return err
}

func (h *ResendJobHandler) nackOptionsFor(err error) core.JobNackOptions {
	authErr, ok := core.AsAuthError(err)
	if !ok {
		return core.JobNackOptions{DeadLetter: true, Reason: reasonUnknown}
	}
	reason := string(authErr.Kind())
	if detail := authErr.Detail(); detail != core.DetailNone {
		reason = string(detail)
	}
	switch authErr.Detail() {
	case core.DetailLimitExceeded, core.DetailRequestLimitExceeded:
		return core.JobNackOptions{Requeue: true, Delay: h.throttleDelay, Reason: reason}
	default:
		return core.JobNackOptions{DeadLetter: true, Reason: reason}
	}
}

func nack(ctx context.Context, delivery core.JobDelivery, opts core.JobNackOptions, attempt int) error {
	if bounded, ok := delivery.(attemptNacker); ok {
		return bounded.NackForAttempt(ctx, opts, attempt)
	}
	return delivery.Nack(ctx, opts)
}

func sortedParameterKeys(params map[string]any) []string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
