package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

const operationResendConfirmationCode = "resend_confirmation_code"

const (
	messageServiceNotConfigured  = "resend service is not configured"
	messageProviderNotConfigured = "identity provider is not configured"
	messageAccessTokenFailed     = "could not resolve the access token for the signed in user"
	messageProviderPanic         = "identity provider call panicked"
)

var ErrCompletionRequired = errors.New("core: completion callback is required")

type Service struct {
	config           Config
	logger           Logger
	loggerProvider   LoggerProvider
	metricsRecorder  MetricsRecorder
	errorMapper      ErrorMapper
	configProvider   ConfigProvider
	optionsResolver  OptionsResolver
	identityProvider IdentityProvider
	tokenProvider    AccessTokenProvider
	executor         Executor
	attemptRecorder  AttemptRecorder
}

type ServiceDependencies struct {
	Logger           Logger
	LoggerProvider   LoggerProvider
	MetricsRecorder  MetricsRecorder
	ErrorMapper      ErrorMapper
	ConfigProvider   ConfigProvider
	OptionsResolver  OptionsResolver
	IdentityProvider IdentityProvider
	TokenProvider    AccessTokenProvider
	Executor         Executor
	AttemptRecorder  AttemptRecorder
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	builder := newServiceBuilder(cfg, opts)

	provider, logger := glog.Resolve("verify", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("verify"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	return &Service{
		config:           finalConfig,
		logger:           logger,
		loggerProvider:   provider,
		metricsRecorder:  builder.metricsRecorder,
		errorMapper:      builder.errorMapper,
		configProvider:   builder.configProvider,
		optionsResolver:  builder.optionsResolver,
		identityProvider: builder.identityProvider,
		tokenProvider:    builder.tokenProvider,
		executor:         builder.executor,
		attemptRecorder:  builder.attemptRecorder,
	}, nil
}

// Setup builds a service and requires an identity provider to be wired.
func Setup(cfg Config, opts ...Option) (*Service, error) {
	svc, err := NewService(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if svc.identityProvider == nil {
		return nil, mapBuildError(svc.errorMapper, fmt.Errorf("core: identity provider is required"))
	}
	return svc, nil
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:           s.logger,
		LoggerProvider:   s.loggerProvider,
		MetricsRecorder:  s.metricsRecorder,
		ErrorMapper:      s.errorMapper,
		ConfigProvider:   s.configProvider,
		OptionsResolver:  s.optionsResolver,
		IdentityProvider: s.identityProvider,
		TokenProvider:    s.tokenProvider,
		Executor:         s.executor,
		AttemptRecorder:  s.attemptRecorder,
	}
}

// ResendConfirmationCode asks the identity provider to send a new verification
// code for req.Attribute and reports the classified outcome to completion.
//
// completion runs exactly once. Failures detected before the provider call are
// delivered on the calling goroutine; otherwise completion runs on the
// executor. The only returned error is ErrCompletionRequired.
func (s *Service) ResendConfirmationCode(
	ctx context.Context,
	req ResendConfirmationCodeRequest,
	completion func(Result),
) error {
	if completion == nil {
		return ErrCompletionRequired
	}
	if ctx == nil {
		ctx = context.Background()
	}
	deliver := completeOnce(completion)
	if s == nil {
		deliver(Failure(newUnknownError(messageServiceNotConfigured, nil)))
		return nil
	}

	startedAt := time.Now()
	input, authErr := s.prepareInput(ctx, req)
	if authErr != nil {
		result := Failure(authErr)
		s.finish(ctx, req, result, startedAt)
		deliver(result)
		return nil
	}

	s.executor.Go(func() {
		result := s.invoke(ctx, req, input)
		s.finish(ctx, req, result, startedAt)
		deliver(result)
	})
	return nil
}

// ResendConfirmationCodeSync blocks until the resend completes. A non-nil
// error is always an *AuthError.
func (s *Service) ResendConfirmationCodeSync(
	ctx context.Context,
	req ResendConfirmationCodeRequest,
) (AttributeCodeDelivery, error) {
	done := make(chan Result, 1)
	if err := s.ResendConfirmationCode(ctx, req, func(result Result) {
		done <- result
	}); err != nil {
		return AttributeCodeDelivery{}, newUnknownError(messageServiceNotConfigured, err)
	}
	return (<-done).Unpack()
}

// MapError renders err through the configured error mapper.
func (s *Service) MapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	mapped := s.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) prepareInput(
	ctx context.Context,
	req ResendConfirmationCodeRequest,
) (GetAttributeVerificationCodeInput, *AuthError) {
	if s.identityProvider == nil {
		return GetAttributeVerificationCodeInput{}, newUnknownError(messageProviderNotConfigured, nil)
	}
	input := GetAttributeVerificationCodeInput{
		AttributeName:  string(req.Attribute),
		ClientMetadata: copyStringMap(req.ClientMetadata),
	}
	if s.tokenProvider != nil {
		token, err := s.tokenProvider.AccessToken(ctx)
		if err != nil {
			if authErr, ok := AsAuthError(err); ok {
				return GetAttributeVerificationCodeInput{}, authErr
			}
			return GetAttributeVerificationCodeInput{}, newUnknownError(messageAccessTokenFailed, err)
		}
		input.AccessToken = token
	}
	return input, nil
}

func (s *Service) invoke(
	ctx context.Context,
	req ResendConfirmationCodeRequest,
	input GetAttributeVerificationCodeInput,
) (result Result) {
	defer func() {
		if recovered := recover(); recovered != nil {
			result = Failure(newUnknownError(
				messageProviderPanic,
				fmt.Errorf("core: identity provider panic: %v", recovered),
			))
		}
	}()

	out, err := s.identityProvider.GetUserAttributeVerificationCode(ctx, input)
	if err != nil {
		return Classify(ErrorOutcome(err))
	}
	details := CodeDeliveryDetails{}
	if out.CodeDeliveryDetails != nil {
		details = *out.CodeDeliveryDetails
	}
	result = Classify(PayloadOutcome(details))
	if result.IsSuccess() && result.value.AttributeKey == "" {
		result.value.AttributeKey = req.Attribute
	}
	return result
}

func (s *Service) finish(
	ctx context.Context,
	req ResendConfirmationCodeRequest,
	result Result,
	startedAt time.Time,
) {
	attempt := NewDeliveryAttempt(req.Attribute, result, startedAt)
	if s.attemptRecorder != nil && !s.config.Recording.Disabled {
		if err := s.attemptRecorder.Record(context.WithoutCancel(ctx), attempt); err != nil {
			s.log(ctx, levelError, "resend attempt recording failed", map[string]any{
				"attribute": string(req.Attribute),
				"error":     err.Error(),
			})
		}
	}
	s.observeResend(ctx, attempt, result.Err())
}

func completeOnce(completion func(Result)) func(Result) {
	var once sync.Once
	return func(result Result) {
		once.Do(func() {
			completion(result)
		})
	}
}

func copyStringMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
