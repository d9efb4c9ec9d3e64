package devkit

import (
	"encoding/json"
	"net/http"

	"github.com/goliatone/go-verify/core"
)

const cognitoContentType = "application/x-amz-json-1.1"

// DeliveryOutput builds a complete provider payload.
func DeliveryOutput(
	attribute core.AttributeKey,
	medium core.DeliveryMedium,
	destination string,
) core.GetAttributeVerificationCodeOutput {
	return core.GetAttributeVerificationCodeOutput{
		CodeDeliveryDetails: &core.CodeDeliveryDetails{
			AttributeName:  core.Ptr(string(attribute)),
			DeliveryMedium: core.Ptr(medium),
			Destination:    core.Ptr(destination),
		},
	}
}

// CognitoDeliveryResponse is the wire response for a successful
// GetUserAttributeVerificationCode call.
func CognitoDeliveryResponse(attribute core.AttributeKey, medium core.DeliveryMedium, destination string) core.TransportResponse {
	body, _ := json.Marshal(map[string]any{
		"CodeDeliveryDetails": map[string]string{
			"AttributeName":  string(attribute),
			"DeliveryMedium": string(medium),
			"Destination":    destination,
		},
	})
	return core.TransportResponse{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{"Content-Type": cognitoContentType},
		Body:       body,
		Metadata:   map[string]any{"request_id": "devkit-request"},
	}
}

// CognitoErrorResponse is the wire response for a vendor exception, with the
// type carried in the body the way the service reports it.
func CognitoErrorResponse(status int, kind core.ServiceExceptionKind, message string) core.TransportResponse {
	body, _ := json.Marshal(map[string]string{
		"__type":  "com.amazonaws.cognito.identity.idp.model#" + string(kind),
		"message": message,
	})
	return core.TransportResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": cognitoContentType},
		Body:       body,
		Metadata:   map[string]any{"request_id": "devkit-request"},
	}
}
