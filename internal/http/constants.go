package http

import "time"

const (
	HTTPErrorInvalidJSONText = "invalid JSON"
	HTTPErrorForbiddenText   = "forbidden"
	HTTPErrorTimeoutText     = "request timed out"
	HTTPErrorUnavailableText = "background process is shutting down"
)

const (
	DefaultUIOrigin = "http://localhost:3000"

	requestTimeout    = 30 * time.Second
	eventBuffer       = 256
	sseEventName      = "message"
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)
