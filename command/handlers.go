package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-verify/core"
)

type ResendService interface {
	ResendConfirmationCodeSync(
		ctx context.Context,
		req core.ResendConfirmationCodeRequest,
	) (core.AttributeCodeDelivery, error)
}

// ResendConfirmationCodeCommand runs a resend to completion and stores the
// delivery in the go-command result collector, when one is on the context.
type ResendConfirmationCodeCommand struct {
	service ResendService
}

func NewResendConfirmationCodeCommand(service ResendService) *ResendConfirmationCodeCommand {
	return &ResendConfirmationCodeCommand{service: service}
}

func (c *ResendConfirmationCodeCommand) Execute(ctx context.Context, msg ResendConfirmationCodeMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: resend service is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	out, err := c.service.ResendConfirmationCodeSync(ctx, msg.Request)
	if err != nil {
		return commandAuthError(err)
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
