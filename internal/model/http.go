package model

import (
	"net/http"
	"time"
)

// Request is a transport-agnostic HTTP request passed to a WikiClient.
type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
	// Options carries backend-specific knobs (e.g. a custom user agent).
	Options map[string]string
}

// Response is the result of executing a Request.
type Response struct {
	Request    *Request
	Headers    http.Header
	Body       []byte
	StatusCode int
	FetchedAt  time.Time
}
