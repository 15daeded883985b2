package constants

// Route constants
const (
	APIRoute      = "/api"
	APIV1Route    = "/v1"
	InternalRoute = "/internal"
	HealthRoute   = "/health"
	MetricsRoute  = "/metrics"
	// Swagger UI is served at DocsBasePath + DocsVersion
	DocsBasePath = "/docs/api/"
	DocsVersion  = "v1"
	OpenAPIFile  = "public/docs/v1/openapi.yml"
)
