package gocommand

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"

	verifycommand "github.com/goliatone/go-verify/command"
	"github.com/goliatone/go-verify/core"
	verifyquery "github.com/goliatone/go-verify/query"
)

// ValidateMessageContract enforces Type() plus optional Validate() contract.
func ValidateMessageContract(msg any) error {
	if err := command.ValidateMessage(msg); err != nil {
		return err
	}
	m, ok := msg.(command.Message)
	if !ok {
		return fmt.Errorf("gocommand: message must implement Type() string")
	}
	if strings.TrimSpace(m.Type()) == "" {
		return fmt.Errorf("gocommand: message type is required")
	}
	return nil
}

type RegistryAdapter struct {
	registry *command.Registry
}

func NewRegistryAdapter(registry *command.Registry) *RegistryAdapter {
	if registry == nil {
		registry = command.NewRegistry()
	}
	return &RegistryAdapter{registry: registry}
}

func (a *RegistryAdapter) Registry() *command.Registry {
	if a == nil {
		return nil
	}
	return a.registry
}

func (a *RegistryAdapter) register(handler any) error {
	if a == nil || a.registry == nil {
		return errRegistryMissing
	}
	return a.registry.RegisterCommand(handler)
}

// AddQueueResolver mirrors registered handlers into a go-job queue registry so
// resends can run from a worker.
func (a *RegistryAdapter) AddQueueResolver(key string, queueRegistry *jobqueuecommand.Registry) error {
	if a == nil || a.registry == nil {
		return errRegistryMissing
	}
	if queueRegistry == nil {
		return fmt.Errorf("gocommand: queue registry is required")
	}
	return a.registry.AddResolver(strings.TrimSpace(key), jobqueuecommand.QueueResolver(queueRegistry))
}

func (a *RegistryAdapter) HasResolver(key string) bool {
	if a == nil || a.registry == nil {
		return false
	}
	return a.registry.HasResolver(strings.TrimSpace(key))
}

func (a *RegistryAdapter) Initialize() error {
	if a == nil || a.registry == nil {
		return errRegistryMissing
	}
	return a.registry.Initialize()
}

var errRegistryMissing = fmt.Errorf("gocommand: registry is not configured")

// Bindings holds the dispatcher subscriptions created by Bind.
type Bindings struct {
	subscriptions []commanddispatcher.Subscription
}

func (b *Bindings) Len() int {
	if b == nil {
		return 0
	}
	return len(b.subscriptions)
}

// Close removes every dispatcher subscription. It is safe to call twice.
func (b *Bindings) Close() {
	if b == nil {
		return
	}
	for _, subscription := range b.subscriptions {
		if subscription != nil {
			subscription.Unsubscribe()
		}
	}
	b.subscriptions = nil
}

// Bind registers the resend command and, when a reader is given, the delivery
// attempt queries, and subscribes them to the global dispatcher.
func Bind(
	adapter *RegistryAdapter,
	service verifycommand.ResendService,
	reader core.AttemptReader,
	runnerOpts ...runner.Option,
) (*Bindings, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, errRegistryMissing
	}
	if service == nil {
		return nil, fmt.Errorf("gocommand: resend service is required")
	}

	bindings := &Bindings{}
	resend := verifycommand.NewResendConfirmationCodeCommand(service)
	if err := subscribeCommand(adapter, bindings, resend, runnerOpts...); err != nil {
		bindings.Close()
		return nil, err
	}
	if reader == nil {
		return bindings, nil
	}

	list := verifyquery.NewListDeliveryAttemptsQuery(reader)
	if err := subscribeQuery(adapter, bindings, list, runnerOpts...); err != nil {
		bindings.Close()
		return nil, err
	}
	latest := verifyquery.NewLatestDeliveryAttemptQuery(reader)
	if err := subscribeQuery(adapter, bindings, latest, runnerOpts...); err != nil {
		bindings.Close()
		return nil, err
	}
	return bindings, nil
}

func subscribeCommand[T any](
	adapter *RegistryAdapter,
	bindings *Bindings,
	cmd command.Commander[T],
	runnerOpts ...runner.Option,
) error {
	subscription := commanddispatcher.SubscribeCommand(cmd, runnerOpts...)
	bindings.subscriptions = append(bindings.subscriptions, subscription)
	return adapter.register(cmd)
}

func subscribeQuery[T any, R any](
	adapter *RegistryAdapter,
	bindings *Bindings,
	qry command.Querier[T, R],
	runnerOpts ...runner.Option,
) error {
	subscription := commanddispatcher.SubscribeQuery(qry, runnerOpts...)
	bindings.subscriptions = append(bindings.subscriptions, subscription)
	return adapter.register(qry)
}

// ResendConfirmationCode dispatches a resend command and returns the delivery
// stored by its handler.
func ResendConfirmationCode(
	ctx context.Context,
	req core.ResendConfirmationCodeRequest,
) (core.AttributeCodeDelivery, error) {
	collector := command.NewResult[core.AttributeCodeDelivery]()
	ctx = command.ContextWithResult(ctx, collector)
	if err := commanddispatcher.Dispatch(ctx, verifycommand.ResendConfirmationCodeMessage{Request: req}); err != nil {
		return core.AttributeCodeDelivery{}, err
	}
	out, _ := collector.Load()
	return out, nil
}

func ListDeliveryAttempts(ctx context.Context, filter core.AttemptFilter) (core.AttemptPage, error) {
	return commanddispatcher.Query[verifyquery.ListDeliveryAttemptsMessage, core.AttemptPage](
		ctx,
		verifyquery.ListDeliveryAttemptsMessage{Filter: filter},
	)
}

func LatestDeliveryAttempt(ctx context.Context, attribute core.AttributeKey) (core.DeliveryAttempt, error) {
	return commanddispatcher.Query[verifyquery.LatestDeliveryAttemptMessage, core.DeliveryAttempt](
		ctx,
		verifyquery.LatestDeliveryAttemptMessage{Attribute: attribute},
	)
}
