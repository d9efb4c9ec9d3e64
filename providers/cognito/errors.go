package cognito

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/goliatone/go-verify/core"
)

const maxErrorMessageLength = 256

type errorBody struct {
	Type         string `json:"__type"`
	Message      string `json:"message"`
	MessageUpper string `json:"Message"`
}

// decodeServiceException reads the vendor error type from the X-Amzn-ErrorType
// header or the body __type field. Bodies that cannot be decoded produce an
// exception named after the HTTP status.
func decodeServiceException(res core.TransportResponse) *core.ServiceException {
	svcErr := &core.ServiceException{StatusCode: res.StatusCode}
	if res.Metadata != nil {
		if requestID, ok := res.Metadata["request_id"].(string); ok {
			svcErr.RequestID = requestID
		}
	}

	var body errorBody
	decodeErr := json.Unmarshal(res.Body, &body)
	if decodeErr == nil {
		svcErr.Message = firstNonEmpty(body.Message, body.MessageUpper)
	}

	kind := errorTypeFromHeader(headerValue(res.Headers, "X-Amzn-Errortype"))
	if kind == "" && decodeErr == nil {
		kind = sanitizeErrorType(body.Type)
	}
	if kind == "" {
		svcErr.Kind = core.ServiceExceptionKind(statusText(res.StatusCode))
		if svcErr.Message == "" {
			svcErr.Message = truncate(strings.TrimSpace(string(res.Body)), maxErrorMessageLength)
		}
		return svcErr
	}
	svcErr.Kind = core.ServiceExceptionKind(kind)
	return svcErr
}

func errorTypeFromHeader(value string) string {
	value = strings.TrimSpace(value)
	if idx := strings.Index(value, ":"); idx >= 0 {
		value = value[:idx]
	}
	return sanitizeErrorType(value)
}

func sanitizeErrorType(value string) string {
	value = strings.TrimSpace(value)
	if idx := strings.LastIndex(value, "#"); idx >= 0 {
		value = value[idx+1:]
	}
	if idx := strings.Index(value, ":"); idx >= 0 {
		value = value[:idx]
	}
	return strings.TrimSpace(value)
}

func headerValue(headers map[string]string, name string) string {
	if value, ok := headers[name]; ok {
		return value
	}
	for key, value := range headers {
		if strings.EqualFold(key, name) {
			return value
		}
	}
	return ""
}

func statusText(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return "UnknownStatus"
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit]
}
