package core

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/goliatone/go-config/cfgx"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"
)

type ErrorMapper func(err error) *goerrors.Error

// ConfigProvider loads host configuration on top of defaults.
type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

// OptionsResolver merges the three config layers; runtime wins.
type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type serviceBuilder struct {
	runtimeConfig    Config
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

type Option func(*serviceBuilder)

func WithLogger(logger Logger) Option {
	return func(b *serviceBuilder) { b.logger = logger }
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *serviceBuilder) { b.loggerProvider = provider }
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *serviceBuilder) { b.metricsRecorder = recorder }
}

func WithErrorMapper(mapper ErrorMapper) Option {
	return func(b *serviceBuilder) { b.errorMapper = mapper }
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *serviceBuilder) { b.configProvider = provider }
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *serviceBuilder) { b.optionsResolver = resolver }
}

// WithIdentityProvider wires the vendor client that issues verification codes.
func WithIdentityProvider(provider IdentityProvider) Option {
	return func(b *serviceBuilder) { b.identityProvider = provider }
}

// WithAccessTokenProvider supplies the signed-in user's access token when a
// request does not carry one.
func WithAccessTokenProvider(provider AccessTokenProvider) Option {
	return func(b *serviceBuilder) { b.tokenProvider = provider }
}

func WithExecutor(executor Executor) Option {
	return func(b *serviceBuilder) { b.executor = executor }
}

func WithAttemptRecorder(recorder AttemptRecorder) Option {
	return func(b *serviceBuilder) { b.attemptRecorder = recorder }
}

func newServiceBuilder(runtime Config, options []Option) serviceBuilder {
	loggerProvider, logger := glog.Resolve("verify", nil, nil)
	b := serviceBuilder{
		runtimeConfig:  runtime,
		loggerProvider: loggerProvider,
		logger:         logger,
	}
	for _, opt := range options {
		if opt != nil {
			opt(&b)
		}
	}
	b.fillDefaults()
	return b
}

// fillDefaults restores collaborators an option reset to nil.
func (b *serviceBuilder) fillDefaults() {
	if b.metricsRecorder == nil {
		b.metricsRecorder = NopMetricsRecorder{}
	}
	if b.errorMapper == nil {
		b.errorMapper = defaultErrorMapper
	}
	if b.configProvider == nil {
		b.configProvider = NewCfgxConfigProvider(nil)
	}
	if b.optionsResolver == nil {
		b.optionsResolver = GoOptionsResolver{}
	}
	if b.executor == nil {
		b.executor = GoroutineExecutor{}
	}
}

func defaultErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	return verifyErrorMapper(err)
}

// StaticRawConfigLoader serves a fixed raw configuration map.
type StaticRawConfigLoader struct {
	Values map[string]any
}

func (l StaticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if l.Values == nil {
		return map[string]any{}, nil
	}
	return maps.Clone(l.Values), nil
}

// CfgxConfigProvider decodes raw values into Config with cfgx. A nil Loader
// yields the defaults unchanged.
type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil || p.Loader == nil {
		return buildConfig(map[string]any{}, defaults)
	}
	raw, err := p.Loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	return buildConfig(raw, defaults)
}

func buildConfig(raw map[string]any, defaults Config) (Config, error) {
	return cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
}

// GoOptionsResolver layers defaults < loaded config < runtime config with
// go-options and decodes the merged snapshot through cfgx.
type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	stack, err := opts.NewStack(
		opts.NewLayer(opts.NewScope("defaults", 0), layerValues(defaults, true),
			opts.WithSnapshotID[map[string]any]("defaults")),
		opts.NewLayer(opts.NewScope("config", 10), layerValues(loaded, false),
			opts.WithSnapshotID[map[string]any]("config")),
		opts.NewLayer(opts.NewScope("runtime", 20), layerValues(runtime, false),
			opts.WithSnapshotID[map[string]any]("runtime")),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: build config layers: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: merge config layers: %w", err)
	}
	return buildConfig(merged.Value, defaults)
}

// layerValues keeps only the fields a layer sets, unless it is the base layer,
// so unset fields never shadow a lower layer.
func layerValues(cfg Config, base bool) map[string]any {
	values := map[string]any{}
	setString(values, "service_name", cfg.ServiceName, base)

	provider := map[string]any{}
	setString(provider, "region", cfg.Provider.Region, base)
	setString(provider, "endpoint", cfg.Provider.Endpoint, base)
	setString(provider, "client_id", cfg.Provider.ClientID, base)
	if len(provider) > 0 {
		values["provider"] = provider
	}

	if base || cfg.Recording.Disabled {
		values["recording"] = map[string]any{"disabled": cfg.Recording.Disabled}
	}
	return values
}

func setString(values map[string]any, key string, value string, always bool) {
	if always || strings.TrimSpace(value) != "" {
		values[key] = value
	}
}
