package core

import (
	"context"
	"sort"
)

type logLevel int

const (
	levelInfo logLevel = iota
	levelWarn
	levelError
)

// observeResend logs and meters one finished invocation. Only the masked
// destination reaches the log.
func (s *Service) observeResend(ctx context.Context, attempt DeliveryAttempt, authErr *AuthError) {
	if s == nil {
		return
	}
	s.recordAttemptMetrics(ctx, attempt)

	fields := map[string]any{
		"event_type":  operationResendConfirmationCode,
		"attribute":   string(attempt.Attribute),
		"status":      string(attempt.Status),
		"duration_ms": attempt.DurationMS,
	}
	if authErr == nil {
		fields["destination_kind"] = string(attempt.DestinationKind)
		fields["destination"] = attempt.MaskedDestination
		s.log(ctx, levelInfo, operationResendConfirmationCode+" succeeded", fields)
		return
	}

	fields["error_kind"] = string(attempt.ErrorKind)
	fields["error"] = authErr.Error()
	if attempt.ErrorDetail != DetailNone {
		fields["error_detail"] = string(attempt.ErrorDetail)
	}
	if attempt.ExceptionKind != "" {
		fields["exception_kind"] = string(attempt.ExceptionKind)
	}
	s.log(ctx, levelError, operationResendConfirmationCode+" failed", fields)
}

func (s *Service) log(ctx context.Context, level logLevel, message string, fields map[string]any) {
	if s == nil || s.logger == nil {
		return
	}
	logger := s.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		logger = fieldsLogger.WithFields(cloneFields(fields))
	}
	args := flattenFields(fields)
	switch level {
	case levelError:
		logger.Error(message, args...)
	case levelWarn:
		logger.Warn(message, args...)
	default:
		logger.Info(message, args...)
	}
}

func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for key, value := range fields {
		out[key] = value
	}
	return out
}

// flattenFields renders fields as sorted key/value pairs.
func flattenFields(fields map[string]any) []any {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}
