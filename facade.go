package verify

import (
	"fmt"

	verifycommand "github.com/goliatone/go-verify/command"
	"github.com/goliatone/go-verify/core"
	verifyquery "github.com/goliatone/go-verify/query"
)

type Commands struct {
	ResendConfirmationCode *verifycommand.ResendConfirmationCodeCommand
}

type Queries struct {
	ListDeliveryAttempts  *verifyquery.ListDeliveryAttemptsQuery
	LatestDeliveryAttempt *verifyquery.LatestDeliveryAttemptQuery
}

type Facade struct {
	service  verifycommand.ResendService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	attemptReader core.AttemptReader
}

func WithAttemptReader(reader core.AttemptReader) FacadeOption {
	return func(options *facadeOptions) {
		options.attemptReader = reader
	}
}

// NewFacade builds the command and query handlers for a service. Without an
// explicit reader, the service's attempt recorder is used when it can also read.
func NewFacade(service verifycommand.ResendService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("verify: resend service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	reader := cfg.attemptReader
	if reader == nil {
		reader = resolveAttemptReader(service)
	}

	return &Facade{
		service: service,
		commands: Commands{
			ResendConfirmationCode: verifycommand.NewResendConfirmationCodeCommand(service),
		},
		queries: Queries{
			ListDeliveryAttempts:  verifyquery.NewListDeliveryAttemptsQuery(reader),
			LatestDeliveryAttempt: verifyquery.NewLatestDeliveryAttemptQuery(reader),
		},
	}, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() verifycommand.ResendService {
	if f == nil {
		return nil
	}
	return f.service
}

func resolveAttemptReader(service verifycommand.ResendService) core.AttemptReader {
	if reader, ok := service.(core.AttemptReader); ok {
		return reader
	}
	provider, ok := service.(interface {
		Dependencies() core.ServiceDependencies
	})
	if !ok {
		return nil
	}
	reader, _ := provider.Dependencies().AttemptRecorder.(core.AttemptReader)
	return reader
}
