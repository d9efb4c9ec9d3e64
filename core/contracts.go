package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// IdentityProvider is the remote identity service that issues verification codes.
type IdentityProvider interface {
	GetUserAttributeVerificationCode(
		ctx context.Context,
		in GetAttributeVerificationCodeInput,
	) (GetAttributeVerificationCodeOutput, error)
}

// IdentityProviderFunc adapts a function to IdentityProvider.
type IdentityProviderFunc func(
	ctx context.Context,
	in GetAttributeVerificationCodeInput,
) (GetAttributeVerificationCodeOutput, error)

func (f IdentityProviderFunc) GetUserAttributeVerificationCode(
	ctx context.Context,
	in GetAttributeVerificationCodeInput,
) (GetAttributeVerificationCodeOutput, error) {
	return f(ctx, in)
}

type AccessTokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// Executor runs one unit of asynchronous work.
type Executor interface {
	Go(task func())
}

type AttemptRecorder interface {
	Record(ctx context.Context, attempt DeliveryAttempt) error
}

type AttemptFilter struct {
	Attribute AttributeKey
	Status    AttemptStatus
	Page      int
	PerPage   int
}

type AttemptPage struct {
	Items   []DeliveryAttempt
	Page    int
	PerPage int
	Total   int
	HasNext bool
}

// AttemptReader lists recorded attempts newest first.
type AttemptReader interface {
	List(ctx context.Context, filter AttemptFilter) (AttemptPage, error)
	Latest(ctx context.Context, attribute AttributeKey) (DeliveryAttempt, error)
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type TransportRequest struct {
	Method               string
	URL                  string
	Headers              map[string]string
	Query                map[string]string
	Body                 []byte
	Metadata             map[string]any
	Timeout              time.Duration
	MaxResponseBodyBytes int64
}

type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

type JobExecutionMessage struct {
	JobID          string
	ScriptPath     string
	Parameters     map[string]any
	IdempotencyKey string
	DedupPolicy    string
}

type JobNackOptions struct {
	Delay      time.Duration
	Requeue    bool
	DeadLetter bool
	Reason     string
}

type JobEnqueuer interface {
	Enqueue(ctx context.Context, msg *JobExecutionMessage) error
}

type JobDelivery interface {
	Message() *JobExecutionMessage
	Ack(ctx context.Context) error
	Nack(ctx context.Context, opts JobNackOptions) error
}

type JobDequeuer interface {
	Dequeue(ctx context.Context) (JobDelivery, error)
}

type JobWorkerHook interface {
	OnStart(ctx context.Context, event JobWorkerEvent)
	OnSuccess(ctx context.Context, event JobWorkerEvent)
	OnFailure(ctx context.Context, event JobWorkerEvent)
	OnRetry(ctx context.Context, event JobWorkerEvent)
}

type JobWorkerEvent struct {
	Message   *JobExecutionMessage
	Attempt   int
	Delay     time.Duration
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}
