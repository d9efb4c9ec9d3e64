package gojob

import (
	"context"
	"fmt"
	"strings"
	"time"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"

	"github.com/goliatone/go-verify/core"
)

const JobIDResendConfirmationCode = "verify.confirmation_code.resend"

const (
	MetricResendJobEvents   = "verify.resend_job.events"
	MetricResendJobDuration = "verify.resend_job.duration_ms"
)

// RetryPolicy bounds how a nacked resend is redelivered.
type RetryPolicy struct {
	MaxAttempts     int
	MaxDelay        time.Duration
	DeadLetterOnMax bool
}

// DefaultRetryPolicy stops redelivering a throttled resend after five
// attempts and caps the delay at five minutes.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 5, MaxDelay: 5 * time.Minute, DeadLetterOnMax: true}
}

// NormalizeAttempt applies the policy to a nack issued on the given attempt.
// The result always either requeues or dead-letters.
func (p RetryPolicy) NormalizeAttempt(opts core.JobNackOptions, attempt int) core.JobNackOptions {
	out := core.JobNackOptions{
		Delay:      max(opts.Delay, 0),
		Requeue:    opts.Requeue && !opts.DeadLetter,
		DeadLetter: opts.DeadLetter,
		Reason:     strings.TrimSpace(opts.Reason),
	}
	if p.MaxDelay > 0 {
		out.Delay = min(out.Delay, p.MaxDelay)
	}

	if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
		out.Requeue = false
		out.DeadLetter = out.DeadLetter || p.DeadLetterOnMax
	}
	if !out.Requeue && !out.DeadLetter {
		out.Requeue = true
	}
	return out
}

// ToExecutionMessage converts a queued verify job into the go-job envelope.
func ToExecutionMessage(msg *core.JobExecutionMessage) *job.ExecutionMessage {
	if msg == nil {
		return nil
	}
	trimmed := trimJobMessage(*msg)
	return &job.ExecutionMessage{
		JobID:          trimmed.JobID,
		ScriptPath:     trimmed.ScriptPath,
		Parameters:     trimmed.Parameters,
		IdempotencyKey: trimmed.IdempotencyKey,
		DedupPolicy:    job.DeduplicationPolicy(trimmed.DedupPolicy),
	}
}

// FromExecutionMessage converts a go-job envelope back into a verify job.
func FromExecutionMessage(msg *job.ExecutionMessage) *core.JobExecutionMessage {
	if msg == nil {
		return nil
	}
	out := trimJobMessage(core.JobExecutionMessage{
		JobID:          msg.JobID,
		ScriptPath:     msg.ScriptPath,
		Parameters:     msg.Parameters,
		IdempotencyKey: msg.IdempotencyKey,
		DedupPolicy:    string(msg.DedupPolicy),
	})
	return &out
}

func trimJobMessage(msg core.JobExecutionMessage) core.JobExecutionMessage {
	params := make(map[string]any, len(msg.Parameters))
	for key, value := range msg.Parameters {
		params[key] = value
	}
	return core.JobExecutionMessage{
		JobID:          strings.TrimSpace(msg.JobID),
		ScriptPath:     strings.TrimSpace(msg.ScriptPath),
		Parameters:     params,
		IdempotencyKey: strings.TrimSpace(msg.IdempotencyKey),
		DedupPolicy:    strings.TrimSpace(msg.DedupPolicy),
	}
}

func ToNackOptions(opts core.JobNackOptions) queue.NackOptions {
	return queue.NackOptions{Delay: opts.Delay, Requeue: opts.Requeue, DeadLetter: opts.DeadLetter, Reason: opts.Reason}
}

func FromNackOptions(opts queue.NackOptions) core.JobNackOptions {
	return core.JobNackOptions{Delay: opts.Delay, Requeue: opts.Requeue, DeadLetter: opts.DeadLetter, Reason: opts.Reason}
}

// EnqueuerAdapter publishes verify jobs to a go-job queue.
type EnqueuerAdapter struct {
	enqueuer queue.Enqueuer
}

func NewEnqueuerAdapter(enqueuer queue.Enqueuer) *EnqueuerAdapter {
	return &EnqueuerAdapter{enqueuer: enqueuer}
}

func (a *EnqueuerAdapter) Enqueue(ctx context.Context, msg *core.JobExecutionMessage) error {
	if a == nil || a.enqueuer == nil {
		return fmt.Errorf("gojob: enqueuer is not configured")
	}
	if msg == nil {
		return fmt.Errorf("gojob: execution message is required")
	}
	if strings.TrimSpace(msg.JobID) == "" {
		return fmt.Errorf("gojob: job id is required")
	}
	return a.enqueuer.Enqueue(ctx, ToExecutionMessage(msg))
}

// EnqueueResend queues a deferred resend for req.
func (a *EnqueuerAdapter) EnqueueResend(
	ctx context.Context,
	req core.ResendConfirmationCodeRequest,
	idempotencyKey string,
) error {
	if strings.TrimSpace(string(req.Attribute)) == "" {
		return fmt.Errorf("gojob: resend attribute is required")
	}
	return a.Enqueue(ctx, NewResendJobMessage(req, idempotencyKey))
}

// DeliveryAdapter settles a go-job delivery under a RetryPolicy.
type DeliveryAdapter struct {
	delivery queue.Delivery
	policy   RetryPolicy
}

func NewDeliveryAdapter(delivery queue.Delivery, policy RetryPolicy) *DeliveryAdapter {
	return &DeliveryAdapter{delivery: delivery, policy: policy}
}

func (d *DeliveryAdapter) Message() *core.JobExecutionMessage {
	if !d.configured() {
		return nil
	}
	return FromExecutionMessage(d.delivery.Message())
}

func (d *DeliveryAdapter) Ack(ctx context.Context) error {
	if !d.configured() {
		return errDeliveryMissing
	}
	return d.delivery.Ack(ctx)
}

// Nack settles without attempt information, so only the delay cap applies.
func (d *DeliveryAdapter) Nack(ctx context.Context, opts core.JobNackOptions) error {
	return d.NackForAttempt(ctx, opts, 0)
}

func (d *DeliveryAdapter) NackForAttempt(ctx context.Context, opts core.JobNackOptions, attempt int) error {
	if !d.configured() {
		return errDeliveryMissing
	}
	return d.delivery.Nack(ctx, ToNackOptions(d.policy.NormalizeAttempt(opts, attempt)))
}

func (d *DeliveryAdapter) configured() bool {
	return d != nil && d.delivery != nil
}

var errDeliveryMissing = fmt.Errorf("gojob: delivery is not configured")

// DequeuerAdapter hands out deliveries that share one RetryPolicy.
type DequeuerAdapter struct {
	dequeuer queue.Dequeuer
	policy   RetryPolicy
}

func NewDequeuerAdapter(dequeuer queue.Dequeuer, policy RetryPolicy) *DequeuerAdapter {
	return &DequeuerAdapter{dequeuer: dequeuer, policy: policy}
}

func (a *DequeuerAdapter) Dequeue(ctx context.Context) (core.JobDelivery, error) {
	if a == nil || a.dequeuer == nil {
		return nil, fmt.Errorf("gojob: dequeuer is not configured")
	}
	delivery, err := a.dequeuer.Dequeue(ctx)
	if err != nil {
		return nil, err
	}
	return NewDeliveryAdapter(delivery, a.policy), nil
}

type hookPhase string

const (
	phaseStart   hookPhase = "start"
	phaseSuccess hookPhase = "success"
	phaseFailure hookPhase = "failure"
	phaseRetry   hookPhase = "retry"
)

// WorkerHookAdapter counts go-job worker events and forwards them to an
// optional verify hook. Failures and retries are also logged.
type WorkerHookAdapter struct {
	hook    core.JobWorkerHook
	metrics core.MetricsRecorder
	logger  core.Logger
}

type WorkerHookOption func(*WorkerHookAdapter)

func WithHookMetrics(recorder core.MetricsRecorder) WorkerHookOption {
	return func(a *WorkerHookAdapter) {
		if recorder != nil {
			a.metrics = recorder
		}
	}
}

func WithHookLogger(logger core.Logger) WorkerHookOption {
	return func(a *WorkerHookAdapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func NewWorkerHookAdapter(hook core.JobWorkerHook, opts ...WorkerHookOption) *WorkerHookAdapter {
	adapter := &WorkerHookAdapter{hook: hook, metrics: core.NopMetricsRecorder{}}
	for _, opt := range opts {
		if opt != nil {
			opt(adapter)
		}
	}
	return adapter
}

func (a *WorkerHookAdapter) OnStart(ctx context.Context, event worker.Event) {
	a.observe(ctx, phaseStart, event)
}

func (a *WorkerHookAdapter) OnSuccess(ctx context.Context, event worker.Event) {
	a.observe(ctx, phaseSuccess, event)
}

func (a *WorkerHookAdapter) OnFailure(ctx context.Context, event worker.Event) {
	a.observe(ctx, phaseFailure, event)
}

func (a *WorkerHookAdapter) OnRetry(ctx context.Context, event worker.Event) {
	a.observe(ctx, phaseRetry, event)
}

func (a *WorkerHookAdapter) observe(ctx context.Context, phase hookPhase, event worker.Event) {
	if a == nil {
		return
	}
	mapped := mapWorkerEvent(event)
	jobID := ""
	if mapped.Message != nil {
		jobID = mapped.Message.JobID
	}
	tags := map[string]string{"phase": string(phase), "job_id": jobID}

	if a.metrics != nil {
		a.metrics.IncCounter(ctx, MetricResendJobEvents, 1, tags)
		if phase == phaseSuccess || phase == phaseFailure {
			a.metrics.ObserveHistogram(ctx, MetricResendJobDuration, float64(mapped.Duration.Milliseconds()), tags)
		}
	}
	if a.logger != nil && (phase == phaseFailure || phase == phaseRetry) {
		a.logger.Warn("resend job "+string(phase),
			"job_id", jobID,
			"attempt", mapped.Attempt,
			"delay_ms", mapped.Delay.Milliseconds(),
			"error", errorText(mapped.Err),
		)
	}

	if a.hook == nil {
		return
	}
	switch phase {
	case phaseStart:
		a.hook.OnStart(ctx, mapped)
	case phaseSuccess:
		a.hook.OnSuccess(ctx, mapped)
	case phaseFailure:
		a.hook.OnFailure(ctx, mapped)
	case phaseRetry:
		a.hook.OnRetry(ctx, mapped)
	}
}

func mapWorkerEvent(event worker.Event) core.JobWorkerEvent {
	message := event.Message
	if message == nil && event.Delivery != nil {
		message = event.Delivery.Message()
	}
	return core.JobWorkerEvent{
		Message:   FromExecutionMessage(message),
		Attempt:   event.Attempt,
		Delay:     event.Delay,
		Err:       event.Err,
		StartedAt: event.StartedAt,
		Duration:  event.Duration,
	}
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

var (
	_ core.JobEnqueuer = (*EnqueuerAdapter)(nil)
	_ core.JobDelivery = (*DeliveryAdapter)(nil)
	_ core.JobDequeuer = (*DequeuerAdapter)(nil)
	_ worker.Hook      = (*WorkerHookAdapter)(nil)
)
