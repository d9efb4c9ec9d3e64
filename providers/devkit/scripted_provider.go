package devkit

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-verify/core"
)

// IdentityScript is one scripted identity provider outcome. Panic, when set,
// is raised instead of returning.
type IdentityScript struct {
	Output core.GetAttributeVerificationCodeOutput
	Err    error
	Panic  any
}

// ScriptedIdentityProvider replays IdentityScripts in order and records every
// input. Calls past the end of the script repeat the last entry.
type ScriptedIdentityProvider struct {
	mu      sync.Mutex
	scripts []IdentityScript
	inputs  []core.GetAttributeVerificationCodeInput
}

func NewScriptedIdentityProvider(scripts ...IdentityScript) *ScriptedIdentityProvider {
	return &ScriptedIdentityProvider{scripts: append([]IdentityScript(nil), scripts...)}
}

// DeliversTo scripts a single successful delivery.
func DeliversTo(attribute core.AttributeKey, medium core.DeliveryMedium, destination string) IdentityScript {
	return IdentityScript{Output: DeliveryOutput(attribute, medium, destination)}
}

// FailsWith scripts a single service exception.
func FailsWith(kind core.ServiceExceptionKind, message string) IdentityScript {
	return IdentityScript{Err: core.NewServiceException(kind, message)}
}

func (p *ScriptedIdentityProvider) GetUserAttributeVerificationCode(
	_ context.Context,
	in core.GetAttributeVerificationCodeInput,
) (core.GetAttributeVerificationCodeOutput, error) {
	if p == nil {
		return core.GetAttributeVerificationCodeOutput{}, fmt.Errorf("devkit: scripted identity provider is nil")
	}
	p.mu.Lock()
	p.inputs = append(p.inputs, cloneInput(in))
	index := len(p.inputs) - 1
	var script IdentityScript
	switch {
	case index < len(p.scripts):
		script = p.scripts[index]
	case len(p.scripts) > 0:
		script = p.scripts[len(p.scripts)-1]
	default:
		script = DeliversTo(core.AttributeKey(in.AttributeName), core.DeliveryMediumEmail, "a***@e***.com")
	}
	p.mu.Unlock()

	if script.Panic != nil {
		panic(script.Panic)
	}
	return script.Output, script.Err
}

func (p *ScriptedIdentityProvider) Calls() int {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.inputs)
}

func (p *ScriptedIdentityProvider) Inputs() []core.GetAttributeVerificationCodeInput {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]core.GetAttributeVerificationCodeInput, 0, len(p.inputs))
	for _, in := range p.inputs {
		out = append(out, cloneInput(in))
	}
	return out
}

func cloneInput(in core.GetAttributeVerificationCodeInput) core.GetAttributeVerificationCodeInput {
	out := in
	if in.ClientMetadata != nil {
		out.ClientMetadata = make(map[string]string, len(in.ClientMetadata))
		for key, value := range in.ClientMetadata {
			out.ClientMetadata[key] = value
		}
	}
	return out
}

var _ core.IdentityProvider = (*ScriptedIdentityProvider)(nil)
