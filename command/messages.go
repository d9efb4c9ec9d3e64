package command

import (
	"strings"

	"github.com/goliatone/go-verify/core"
)

const TypeResendConfirmationCode = "verify.command.confirmation_code.resend"

// ResendConfirmationCodeMessage asks for a new verification code for one user
// attribute of the signed in user.
type ResendConfirmationCodeMessage struct {
	Request core.ResendConfirmationCodeRequest
}

func (ResendConfirmationCodeMessage) Type() string { return TypeResendConfirmationCode }

func (m ResendConfirmationCodeMessage) Validate() error {
	attribute := strings.TrimSpace(string(m.Request.Attribute))
	if attribute == "" {
		return commandValidationError("attribute", "attribute is required")
	}
	if attribute != string(m.Request.Attribute) {
		return commandValidationError("attribute", "attribute must not contain surrounding whitespace")
	}
	if strings.HasPrefix(attribute, "custom:") && strings.TrimPrefix(attribute, "custom:") == "" {
		return commandValidationError("attribute", "custom attribute name is required")
	}
	for key := range m.Request.ClientMetadata {
		if strings.TrimSpace(key) == "" {
			return commandValidationError("client_metadata", "client metadata keys must not be empty")
		}
	}
	return nil
}
