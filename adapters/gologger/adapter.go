// Package gologger resolves one go-logger setup and shares it with the verify
// service and its go-job workers.
package gologger

import (
	"strings"

	job "github.com/goliatone/go-job"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-verify/adapters/gojob"
	"github.com/goliatone/go-verify/core"
)

const DefaultLoggerName = "verify"

// Bundle is a resolved provider and its root logger. Components ask it for
// loggers named after themselves.
type Bundle struct {
	Provider glog.LoggerProvider
	Logger   glog.Logger
}

// NewBundle resolves provider > logger > nop under DefaultLoggerName.
func NewBundle(provider glog.LoggerProvider, logger glog.Logger) Bundle {
	resolvedProvider, resolvedLogger := Resolve(DefaultLoggerName, provider, logger)
	return Bundle{Provider: resolvedProvider, Logger: glog.Ensure(resolvedLogger)}
}

// Named returns the provider's logger for name, or the root logger when the
// bundle has no provider.
func (b Bundle) Named(name string) glog.Logger {
	name = strings.TrimSpace(name)
	if b.Provider != nil && name != "" {
		if named := b.Provider.GetLogger(name); named != nil {
			return named
		}
	}
	return glog.Ensure(b.Logger)
}

func (b Bundle) ServiceOptions() []core.Option {
	return []core.Option{
		core.WithLoggerProvider(b.Provider),
		core.WithLogger(b.Logger),
	}
}

// JobHandlerOption names the resend handler's logger after the job id.
func (b Bundle) JobHandlerOption() gojob.ResendJobOption {
	return gojob.WithJobLogger(b.Named(gojob.JobIDResendConfirmationCode))
}

func (b Bundle) WorkerHookOption() gojob.WorkerHookOption {
	return gojob.WithHookLogger(b.Named(gojob.JobIDResendConfirmationCode))
}

func (b Bundle) JobProvider() job.LoggerProvider {
	if b.Provider == nil {
		return nil
	}
	return job.GoLoggerProvider(b.Provider)
}

func (b Bundle) JobLogger() job.Logger {
	if b.Logger == nil {
		return nil
	}
	return job.GoLogger(b.Logger)
}

// Resolve applies provider > logger > nop, defaulting an empty name to
// DefaultLoggerName.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	if name = strings.TrimSpace(name); name == "" {
		name = DefaultLoggerName
	}
	return glog.Resolve(name, provider, logger)
}

func ServiceOptions(provider glog.LoggerProvider, logger glog.Logger) []core.Option {
	return NewBundle(provider, logger).ServiceOptions()
}

func JobHandlerOption(provider glog.LoggerProvider, logger glog.Logger) gojob.ResendJobOption {
	return NewBundle(provider, logger).JobHandlerOption()
}

// ResolveForJob resolves under name and also returns the go-job views of the
// result.
func ResolveForJob(
	name string,
	provider glog.LoggerProvider,
	logger glog.Logger,
) (glog.LoggerProvider, glog.Logger, job.LoggerProvider, job.Logger) {
	resolvedProvider, resolvedLogger := Resolve(name, provider, logger)
	bundle := Bundle{Provider: resolvedProvider, Logger: resolvedLogger}
	return resolvedProvider, resolvedLogger, bundle.JobProvider(), bundle.JobLogger()
}
