package verify

import (
	"github.com/goliatone/go-verify/core"
	"github.com/goliatone/go-verify/providers/cognito"
)

// CognitoProvider builds the Cognito identity provider from the provider
// section of cfg. A nil adapter uses the default REST transport.
func CognitoProvider(cfg Config, adapter core.TransportAdapter) (IdentityProvider, error) {
	return cognito.NewClient(cognito.ConfigFromCore(cfg), adapter)
}

// SetupCognito wires a Cognito client as the identity provider and builds the
// service.
func SetupCognito(
	cfg Config,
	adapter core.TransportAdapter,
	tokens AccessTokenProvider,
	opts ...Option,
) (*Service, error) {
	provider, err := CognitoProvider(cfg, adapter)
	if err != nil {
		return nil, err
	}
	all := make([]Option, 0, len(opts)+2)
	all = append(all, WithIdentityProvider(provider), WithAccessTokenProvider(tokens))
	all = append(all, opts...)
	return Setup(cfg, all...)
}
