package cognito

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goliatone/go-verify/core"
	"github.com/goliatone/go-verify/providers/devkit"
	"github.com/goliatone/go-verify/transport"
)

func TestNewClient_ResolvesEndpoint(t *testing.T) {
	client, err := NewClient(Config{Region: "eu-central-1"}, devkit.NewFakeTransportAdapter("rest"))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if got := client.Endpoint(); got != "https://cognito-idp.eu-central-1.amazonaws.com/" {
		t.Fatalf("unexpected endpoint %q", got)
	}

	client, err = NewClient(Config{Endpoint: "http://localhost:9229/"}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if got := client.Endpoint(); got != "http://localhost:9229/" {
		t.Fatalf("expected explicit endpoint, got %q", got)
	}

	if _, err := NewClient(Config{}, nil); err == nil {
		t.Fatalf("expected error without region or endpoint")
	}
}

func TestClient_SendsJSONRequest(t *testing.T) {
	adapter := devkit.NewFakeTransportAdapter("rest", devkit.TransportScript{
		Response: devkit.CognitoDeliveryResponse(core.AttributeEmail, core.DeliveryMediumEmail, "a***@e***.com"),
	})
	client, err := NewClient(Config{Region: "us-east-1"}, adapter)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	out, err := client.GetUserAttributeVerificationCode(context.Background(), core.GetAttributeVerificationCodeInput{
		AccessToken:    "access-token",
		AttributeName:  "email",
		ClientMetadata: map[string]string{"locale": "en"},
	})
	if err != nil {
		t.Fatalf("get code: %v", err)
	}
	details := out.CodeDeliveryDetails
	if details == nil || details.DeliveryMedium == nil || *details.DeliveryMedium != core.DeliveryMediumEmail {
		t.Fatalf("unexpected details %#v", details)
	}
	if *details.Destination != "a***@e***.com" || *details.AttributeName != "email" {
		t.Fatalf("unexpected details %#v", details)
	}

	req, ok := adapter.LastRequest()
	if !ok {
		t.Fatalf("expected captured request")
	}
	if req.Method != http.MethodPost || req.URL != "https://cognito-idp.us-east-1.amazonaws.com/" {
		t.Fatalf("unexpected request target %s %s", req.Method, req.URL)
	}
	if req.Headers["X-Amz-Target"] != OperationGetAttributeVerificationCode {
		t.Fatalf("unexpected target header %q", req.Headers["X-Amz-Target"])
	}
	if req.Headers["Content-Type"] != ContentType {
		t.Fatalf("unexpected content type %q", req.Headers["Content-Type"])
	}
	var body map[string]any
	if err := json.Unmarshal(req.Body, &body); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	if body["AccessToken"] != "access-token" || body["AttributeName"] != "email" {
		t.Fatalf("unexpected request body %#v", body)
	}
	metadata, ok := body["ClientMetadata"].(map[string]any)
	if !ok || metadata["locale"] != "en" {
		t.Fatalf("expected client metadata in body, got %#v", body["ClientMetadata"])
	}
}

func TestClient_PartialPayloadKeepsMissingFields(t *testing.T) {
	adapter := devkit.NewFakeTransportAdapter("rest", devkit.TransportScript{
		Response: core.TransportResponse{
			StatusCode: http.StatusOK,
			Body:       []byte(`{"CodeDeliveryDetails":{"DeliveryMedium":"SMS"}}`),
		},
	})
	client, _ := NewClient(Config{Region: "us-east-1"}, adapter)

	out, err := client.GetUserAttributeVerificationCode(context.Background(), core.GetAttributeVerificationCodeInput{})
	if err != nil {
		t.Fatalf("get code: %v", err)
	}
	if out.CodeDeliveryDetails.Destination != nil || out.CodeDeliveryDetails.AttributeName != nil {
		t.Fatalf("expected missing fields to stay nil, got %#v", out.CodeDeliveryDetails)
	}
	result := core.Classify(core.PayloadOutcome(*out.CodeDeliveryDetails))
	if result.IsSuccess() {
		t.Fatalf("expected partial payload to classify as failure")
	}
}

func TestClient_DecodesServiceExceptions(t *testing.T) {
	tests := []struct {
		name     string
		response core.TransportResponse
		wantKind core.ServiceExceptionKind
		wantMsg  string
	}{
		{
			name:     "body type with namespace",
			response: devkit.CognitoErrorResponse(http.StatusBadRequest, core.ExceptionLimitExceeded, "Attempt limit exceeded"),
			wantKind: core.ExceptionLimitExceeded,
			wantMsg:  "Attempt limit exceeded",
		},
		{
			name: "header type with suffix",
			response: core.TransportResponse{
				StatusCode: http.StatusBadRequest,
				Headers:    map[string]string{"X-Amzn-Errortype": "NotAuthorizedException:http://internal.amazon.com/coral/"},
				Body:       []byte(`{"message":"Access Token has been revoked"}`),
			},
			wantKind: core.ExceptionNotAuthorized,
			wantMsg:  "Access Token has been revoked",
		},
		{
			name: "capitalized message field",
			response: core.TransportResponse{
				StatusCode: http.StatusBadRequest,
				Body:       []byte(`{"__type":"UserNotFoundException","Message":"User does not exist."}`),
			},
			wantKind: core.ExceptionUserNotFound,
			wantMsg:  "User does not exist.",
		},
		{
			name: "undecodable body",
			response: core.TransportResponse{
				StatusCode: http.StatusServiceUnavailable,
				Body:       []byte("<html>upstream unavailable</html>"),
			},
			wantKind: core.ServiceExceptionKind("Service Unavailable"),
			wantMsg:  "<html>upstream unavailable</html>",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			adapter := devkit.NewFakeTransportAdapter("rest", devkit.TransportScript{Response: tc.response})
			client, _ := NewClient(Config{Region: "us-east-1"}, adapter)

			_, err := client.GetUserAttributeVerificationCode(context.Background(), core.GetAttributeVerificationCodeInput{})
			var svcErr *core.ServiceException
			if !errors.As(err, &svcErr) {
				t.Fatalf("expected service exception, got %T %v", err, err)
			}
			if svcErr.Kind != tc.wantKind {
				t.Fatalf("expected kind %q, got %q", tc.wantKind, svcErr.Kind)
			}
			if svcErr.Message != tc.wantMsg {
				t.Fatalf("expected message %q, got %q", tc.wantMsg, svcErr.Message)
			}
			if svcErr.StatusCode != tc.response.StatusCode {
				t.Fatalf("expected status %d, got %d", tc.response.StatusCode, svcErr.StatusCode)
			}
		})
	}
}

func TestClient_TransportFailureIsNotAServiceException(t *testing.T) {
	adapter := devkit.NewFakeTransportAdapter("rest", devkit.TransportScript{Err: errors.New("connection reset by peer")})
	client, _ := NewClient(Config{Region: "us-east-1"}, adapter)

	_, err := client.GetUserAttributeVerificationCode(context.Background(), core.GetAttributeVerificationCodeInput{})
	if err == nil {
		t.Fatalf("expected transport error")
	}
	var svcErr *core.ServiceException
	if errors.As(err, &svcErr) {
		t.Fatalf("expected transport error not to be a service exception")
	}
	if got := core.Classify(core.ErrorOutcome(err)).Err().Kind(); got != core.AuthErrorUnknown {
		t.Fatalf("expected unknown classification, got %q", got)
	}
}

func TestClient_EndToEndThroughService(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		_ = json.Unmarshal(body, &req)
		w.Header().Set("Content-Type", ContentType)
		w.Header().Set("X-Amzn-Requestid", "req-e2e")
		if req["AccessToken"] != "good-token" {
			w.Header().Set("X-Amzn-Errortype", "NotAuthorizedException")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"__type":"NotAuthorizedException","message":"Invalid Access Token"}`))
			return
		}
		_, _ = w.Write([]byte(`{"CodeDeliveryDetails":{"AttributeName":"email","DeliveryMedium":"EMAIL","Destination":"a***@e***.com"}}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{Endpoint: server.URL}, transport.NewRESTAdapter(server.Client()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "success", token: "good-token"},
		{name: "not authorized", token: "revoked-token", wantErr: core.ErrNotAuthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, err := core.Setup(core.DefaultConfig(),
				core.WithIdentityProvider(client),
				core.WithAccessTokenProvider(core.StaticAccessToken(tc.token)),
			)
			if err != nil {
				t.Fatalf("setup: %v", err)
			}
			delivery, err := svc.ResendConfirmationCodeSync(context.Background(), core.ResendConfirmationCodeRequest{
				Attribute: core.AttributeEmail,
			})
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				authErr, _ := core.AsAuthError(err)
				svcErr, ok := authErr.ServiceException()
				if !ok || svcErr.RequestID != "req-e2e" {
					t.Fatalf("expected request id on service exception, got %#v", svcErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("resend: %v", err)
			}
			if delivery.AttributeKey != core.AttributeEmail || !delivery.Destination.IsEmail() {
				t.Fatalf("unexpected delivery %#v", delivery)
			}
		})
	}
}

func TestNewClientFromRegistry_ResolvesAdapterKind(t *testing.T) {
	registry := transport.NewRegistry()
	fake := devkit.NewFakeTransportAdapter("fake", devkit.TransportScript{
		Response: devkit.CognitoDeliveryResponse(core.AttributeEmail, core.DeliveryMediumEmail, "a***@e***.com"),
	})
	if err := registry.Register(fake); err != nil {
		t.Fatalf("register: %v", err)
	}

	client, err := NewClientFromRegistry(Config{Region: "us-east-1"}, registry, "FAKE")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.GetUserAttributeVerificationCode(context.Background(), core.GetAttributeVerificationCodeInput{
		AccessToken:   "access-token",
		AttributeName: "email",
	}); err != nil {
		t.Fatalf("get code: %v", err)
	}
	if len(fake.Requests()) != 1 {
		t.Fatalf("expected registry adapter to receive the call, got %d", len(fake.Requests()))
	}
}

func TestNewClientFromRegistry_UnknownKindIsUnsupported(t *testing.T) {
	client, err := NewClientFromRegistry(Config{Region: "us-east-1"}, nil, "grpc")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.GetUserAttributeVerificationCode(context.Background(), core.GetAttributeVerificationCodeInput{
		AccessToken:   "access-token",
		AttributeName: "email",
	})
	if err == nil {
		t.Fatalf("expected unsupported transport to fail")
	}
	var svcErr *core.ServiceException
	if errors.As(err, &svcErr) {
		t.Fatalf("expected transport failure, not a service exception")
	}
}
