package config

import "time"

// Application constants
const (
	// Application Info
	AppName     = "Product Pulse"
	AppVersion  = "1.0.0"
	ServiceName = "productpulse"

	// EnvPrefix namespaces every environment variable, e.g. PULSE_SERVER_PORT
	EnvPrefix = "PULSE"

	// Auth
	SessionTimeout     = 24 * time.Hour
	DefaultCookieName  = "token"
	DefaultBcryptCost  = 12
	MinBcryptCost      = 4
	MaxBcryptCost      = 31
	MinJWTSecretLength = 32

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Uploads
	DefaultMaxUploadBytes = 10 << 20 // 10MB

	// Network Timeouts
	DefaultHTTPTimeout    = 30 * time.Second
	DefaultRequestTimeout = 60 * time.Second
	WebSocketPingPeriod   = 30 * time.Second
	WebSocketPongWait     = 60 * time.Second
)
