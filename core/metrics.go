package core

import "context"

const (
	MetricResendTotal    = "verify." + operationResendConfirmationCode + ".total"
	MetricResendDuration = "verify." + operationResendConfirmationCode + ".duration_ms"
)

type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string) {}

func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

// attemptTags keeps metric cardinality bounded: the attribute, status and the
// classification only. Destinations never become tags.
func attemptTags(attempt DeliveryAttempt) map[string]string {
	tags := map[string]string{
		"operation": operationResendConfirmationCode,
		"attribute": string(attempt.Attribute),
		"status":    string(attempt.Status),
	}
	if attempt.ErrorKind != "" {
		tags["error_kind"] = string(attempt.ErrorKind)
	}
	if attempt.ErrorDetail != DetailNone {
		tags["error_detail"] = string(attempt.ErrorDetail)
	}
	return tags
}

func (s *Service) recordAttemptMetrics(ctx context.Context, attempt DeliveryAttempt) {
	if s == nil || s.metricsRecorder == nil {
		return
	}
	s.metricsRecorder.IncCounter(ctx, MetricResendTotal, 1, attemptTags(attempt))
	s.metricsRecorder.ObserveHistogram(ctx, MetricResendDuration, float64(attempt.DurationMS), attemptTags(attempt))
}

func cloneTags(tags map[string]string) map[string]string {
	out := make(map[string]string, len(tags))
	for key, value := range tags {
		out[key] = value
	}
	return out
}

var _ MetricsRecorder = NopMetricsRecorder{}
