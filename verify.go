package verify

import "github.com/goliatone/go-verify/core"

type Config = core.Config

type ProviderConfig = core.ProviderConfig

type RecordingConfig = core.RecordingConfig

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies
type IdentityProvider = core.IdentityProvider
type AccessTokenProvider = core.AccessTokenProvider
type Executor = core.Executor
type AttemptRecorder = core.AttemptRecorder
type AttemptReader = core.AttemptReader

type AttributeKey = core.AttributeKey
type ResendConfirmationCodeRequest = core.ResendConfirmationCodeRequest
type AttributeCodeDelivery = core.AttributeCodeDelivery
type DeliveryDestination = core.DeliveryDestination
type Result = core.Result
type RawOutcome = core.RawOutcome

type AuthError = core.AuthError
type AuthErrorKind = core.AuthErrorKind
type ServiceErrorDetail = core.ServiceErrorDetail
type ServiceException = core.ServiceException

var (
	WithLogger              = core.WithLogger
	WithLoggerProvider      = core.WithLoggerProvider
	WithMetricsRecorder     = core.WithMetricsRecorder
	WithErrorMapper         = core.WithErrorMapper
	WithConfigProvider      = core.WithConfigProvider
	WithOptionsResolver     = core.WithOptionsResolver
	WithIdentityProvider    = core.WithIdentityProvider
	WithAccessTokenProvider = core.WithAccessTokenProvider
	WithExecutor            = core.WithExecutor
	WithAttemptRecorder     = core.WithAttemptRecorder
)

var (
	ErrUnknown            = core.ErrUnknown
	ErrNotAuthorized      = core.ErrNotAuthorized
	ErrService            = core.ErrService
	ErrCompletionRequired = core.ErrCompletionRequired
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return core.Setup(cfg, opts...)
}

// Classify maps a raw provider outcome to a delivery or an AuthError.
func Classify(outcome RawOutcome) Result {
	return core.Classify(outcome)
}
