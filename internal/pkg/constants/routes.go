package constants

// Route constants shared by the router, the OpenAPI document and tests
const (
	APIRoute            = "/api"
	PingRoute           = "/ping"
	PaymentWebhookRoute = "/payment/webhook"
	MetricsRoute        = "/metrics"
	WebhookStatsRoute   = "/webhooks"
	DocsBasePath        = "/docs/api/"
	// OpenAPI document path relative to the project root
	OpenAPIFile = "public/docs/v1/openapi.yml"
)
