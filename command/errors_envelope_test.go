package command

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-verify/core"
)

func TestResendConfirmationCodeMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request core.ResendConfirmationCodeRequest
		wantErr bool
	}{
		{"email", core.ResendConfirmationCodeRequest{Attribute: core.AttributeEmail}, false},
		{"custom", core.ResendConfirmationCodeRequest{Attribute: core.CustomAttribute("pager")}, false},
		{"missing", core.ResendConfirmationCodeRequest{}, true},
		{"blank", core.ResendConfirmationCodeRequest{Attribute: "  "}, true},
		{"padded", core.ResendConfirmationCodeRequest{Attribute: " email"}, true},
		{"empty custom", core.ResendConfirmationCodeRequest{Attribute: "custom:"}, true},
		{
			"empty metadata key",
			core.ResendConfirmationCodeRequest{Attribute: core.AttributeEmail, ClientMetadata: map[string]string{"": "x"}},
			true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := (ResendConfirmationCodeMessage{Request: tc.request}).Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("expected error=%t, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestResendConfirmationCodeMessage_ValidateReturnsRichError(t *testing.T) {
	err := (ResendConfirmationCodeMessage{}).Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryValidation {
		t.Fatalf("expected validation category, got %q", rich.Category)
	}
	if rich.TextCode != core.VerifyErrorBadInput {
		t.Fatalf("expected %q text code, got %q", core.VerifyErrorBadInput, rich.TextCode)
	}
}

func TestResendConfirmationCodeCommand_NilServiceReturnsRichError(t *testing.T) {
	var cmd *ResendConfirmationCodeCommand
	err := cmd.Execute(context.Background(), ResendConfirmationCodeMessage{})
	if err == nil {
		t.Fatalf("expected command dependency error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryInternal {
		t.Fatalf("expected internal category, got %q", rich.Category)
	}
}

func TestResendConfirmationCodeMessage_Type(t *testing.T) {
	if got := (ResendConfirmationCodeMessage{}).Type(); got != "verify.command.confirmation_code.resend" {
		t.Fatalf("unexpected message type %q", got)
	}
}
