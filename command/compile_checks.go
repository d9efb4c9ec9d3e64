package command

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-verify/core"
)

var (
	_ gocmd.Commander[ResendConfirmationCodeMessage] = (*ResendConfirmationCodeCommand)(nil)
	_ ResendService                                  = (*core.Service)(nil)
)
