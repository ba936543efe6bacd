// Package services implements the business logic layer of Product Pulse.
// It sits between the HTTP handlers and the storage, decoding and auth
// packages so that handlers only translate requests and errors.
//
// # Available Services
//
//   - DataService: ingests workbooks and sheets, answers dataset queries
//   - AuthService: verifies credentials and session tokens
//   - HealthService: reports liveness, readiness and runtime statistics
//
// # Error Handling
//
// Services return the sentinel errors declared in errors.go, usually wrapped
// with fmt.Errorf and %w. Handlers test for them with errors.Is and map them
// onto API errors:
//
//	result, err := dataService.Upload(ctx, file, "upload")
//	switch {
//	case errors.Is(err, services.ErrNoValidData):
//	    // 400 NO_VALID_DATA
//	case errors.Is(err, services.ErrDecodeFailed):
//	    // 422 DECODE_FAILED
//	}
//
// # Testing
//
// Services are tested against the in-memory store and user store; the
// websocket hub is replaced by a testify mock of Broadcaster:
//
//	hub := &MockBroadcaster{}
//	hub.On("Broadcast", mock.Anything, websocket.TypeDatasetReplaced, mock.Anything).Return()
//	service := NewDataService(storage.NewMemoryStore(), hub, nil, logger)
package services
