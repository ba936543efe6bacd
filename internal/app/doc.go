// Package app wires the product dashboard together and runs it.
//
// # Initialization Flow
//
//  1. Load configuration (defaults, YAML file, environment)
//  2. Initialize logging and OpenTelemetry
//  3. Open the observation store and load the last dataset
//  4. Create the websocket hub, data, auth and health services
//  5. Build the chi router and the HTTP server
//
// # Middleware
//
// Every request passes RequestID and RealIP. The /ws upgrade only adds
// tracing and panic recovery so the connection can be hijacked. All other
// routes run through OpenTelemetry, request logging, error recovery,
// security headers, CORS, rate limiting and the auth gate. API routes add a
// request timeout, JSON body validation and an audit log for mutations.
//
// # Lifecycle
//
// Run serves until its context is canceled, then shuts the server down
// within the configured timeout and releases storage and telemetry:
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	application, err := app.NewApplication(ctx)
//	if err != nil {
//		return err
//	}
//	return application.Run(ctx)
package app
