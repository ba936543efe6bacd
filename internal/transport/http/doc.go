// Package http implements the HTTP handlers of the product dashboard. Handlers
// stay thin: they parse and validate the request, call a service and render
// the result. Business rules live in the services package.
//
// # Routes
//
//	/api/data/*       DataHandler: upload, sheets import and selection queries
//	/api/auth/*       AuthHandler: login, logout and the current user
//	/api/health/*     HealthHandler: health, readiness and liveness probes
//	/api/logs         ClientLogHandler: dashboard log entries
//	/metrics          MetricsHandler: Prometheus scrape endpoint
//	/login, /product-dashboard, /static/*   PageHandler
//
// # Request Flow
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Store
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Error Handling
//
// Service errors are mapped to API errors and written by the shared
// ErrorHandler as RFC 7807 problems:
//
//	{
//	    "type": "/errors/data/no-valid-data",
//	    "title": "Bad Request",
//	    "status": 400,
//	    "detail": "No valid data found in file",
//	    "instance": "/api/data/upload",
//	    "error_code": "NO_VALID_DATA",
//	    "trace_id": "…"
//	}
//
// # Selections
//
// Query endpoints read the product and day selection from the products and
// days parameters, either repeated or comma separated. Missing lists select
// every product or day of the current dataset.
//
// # Testing
//
// Handlers are tested with httptest and testify mocks of the service
// interfaces in data_service_interface.go.
package http
