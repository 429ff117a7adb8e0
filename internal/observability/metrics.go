package observability

const (
	MUsecaseRequests      MetricKey = "usecase_requests_total"
	MUsecaseDuration      MetricKey = "usecase_duration_seconds"
	MHTTPRequests         MetricKey = "http_requests_total"
	MHTTPRequestDuration  MetricKey = "http_request_duration_seconds"
	MEventPublishFailures MetricKey = "order_event_publish_failed_total"
	MPaidOrderCancelled   MetricKey = "paid_order_cancelled_total"
)
