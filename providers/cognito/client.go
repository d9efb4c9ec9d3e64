package cognito

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-verify/core"
	"github.com/goliatone/go-verify/transport"
)

const (
	ServiceTarget                         = "AWSCognitoIdentityProviderService"
	OperationGetAttributeVerificationCode = ServiceTarget + ".GetUserAttributeVerificationCode"
	ContentType                           = "application/x-amz-json-1.1"
)

type Config struct {
	Region   string
	Endpoint string
}

// ConfigFromCore derives the client configuration from the service config.
func ConfigFromCore(cfg core.Config) Config {
	return Config{
		Region:   strings.TrimSpace(cfg.Provider.Region),
		Endpoint: cfg.ProviderEndpoint(),
	}
}

// Client calls GetUserAttributeVerificationCode. The operation is authorized by
// the user's access token, so requests are not SigV4 signed.
type Client struct {
	endpoint  string
	transport core.TransportAdapter
}

func NewClient(cfg Config, adapter core.TransportAdapter) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		region := strings.TrimSpace(cfg.Region)
		if region == "" {
			return nil, fmt.Errorf("providers/cognito: region or endpoint is required")
		}
		endpoint = core.Config{Provider: core.ProviderConfig{Region: region}}.ProviderEndpoint()
	}
	if adapter == nil {
		adapter = transport.NewRESTAdapter(nil)
	}
	return &Client{endpoint: endpoint, transport: adapter}, nil
}

// NewClientFromRegistry resolves the transport adapter of the given kind from
// registry. An empty kind selects the REST adapter.
func NewClientFromRegistry(cfg Config, registry *transport.Registry, kind string) (*Client, error) {
	if registry == nil {
		registry = transport.NewDefaultRegistry()
	}
	if strings.TrimSpace(kind) == "" {
		kind = transport.KindREST
	}
	adapter, err := registry.Build(kind, nil)
	if err != nil {
		return nil, fmt.Errorf("providers/cognito: resolve transport %q: %w", kind, err)
	}
	return NewClient(cfg, adapter)
}

func (c *Client) Endpoint() string {
	if c == nil {
		return ""
	}
	return c.endpoint
}

type getAttributeVerificationCodeRequest struct {
	AccessToken    string            `json:"AccessToken"`
	AttributeName  string            `json:"AttributeName"`
	ClientMetadata map[string]string `json:"ClientMetadata,omitempty"`
}

type codeDeliveryDetailsBody struct {
	AttributeName  *string `json:"AttributeName"`
	DeliveryMedium *string `json:"DeliveryMedium"`
	Destination    *string `json:"Destination"`
}

type getAttributeVerificationCodeResponse struct {
	CodeDeliveryDetails *codeDeliveryDetailsBody `json:"CodeDeliveryDetails"`
}

func (c *Client) GetUserAttributeVerificationCode(
	ctx context.Context,
	in core.GetAttributeVerificationCodeInput,
) (core.GetAttributeVerificationCodeOutput, error) {
	if c == nil || c.transport == nil {
		return core.GetAttributeVerificationCodeOutput{}, fmt.Errorf("providers/cognito: client is not configured")
	}
	body, err := json.Marshal(getAttributeVerificationCodeRequest{
		AccessToken:    in.AccessToken,
		AttributeName:  in.AttributeName,
		ClientMetadata: in.ClientMetadata,
	})
	if err != nil {
		return core.GetAttributeVerificationCodeOutput{}, fmt.Errorf("providers/cognito: encode request: %w", err)
	}

	res, err := c.transport.Do(ctx, core.TransportRequest{
		Method: http.MethodPost,
		URL:    c.endpoint,
		Headers: map[string]string{
			"Content-Type": ContentType,
			"X-Amz-Target": OperationGetAttributeVerificationCode,
		},
		Body: body,
	})
	if err != nil {
		return core.GetAttributeVerificationCodeOutput{}, err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return core.GetAttributeVerificationCodeOutput{}, decodeServiceException(res)
	}

	var decoded getAttributeVerificationCodeResponse
	if len(res.Body) > 0 {
		if err := json.Unmarshal(res.Body, &decoded); err != nil {
			return core.GetAttributeVerificationCodeOutput{}, fmt.Errorf("providers/cognito: decode response: %w", err)
		}
	}
	out := core.GetAttributeVerificationCodeOutput{}
	if details := decoded.CodeDeliveryDetails; details != nil {
		out.CodeDeliveryDetails = &core.CodeDeliveryDetails{
			AttributeName: details.AttributeName,
			Destination:   details.Destination,
		}
		if details.DeliveryMedium != nil {
			out.CodeDeliveryDetails.DeliveryMedium = core.Ptr(core.DeliveryMedium(*details.DeliveryMedium))
		}
	}
	return out, nil
}

var _ core.IdentityProvider = (*Client)(nil)
