package session

import "net/http"

// Request describes an outbound HTTP request made through a Session.
type Request struct {
	// Method is the HTTP method. Defaults to GET.
	Method string
	// Path is resolved against the session origin, so "/health" on a
	// session built from https://api.example.com/v1 targets
	// https://api.example.com/health. Absolute URLs are used as-is.
	Path string
	// Headers are request-specific headers, merged over the session defaults.
	Headers map[string]string
	// Query are URL query parameters.
	Query map[string]string
	// Body is the request body. Accepts io.Reader, []byte, string, or any
	// value that will be JSON-encoded.
	Body any
}

// Response is the result of an HTTP request.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// URL is the fully resolved request URL.
	URL string
	// Headers are the response headers, first value per key.
	Headers map[string]string
	// Body is the raw response body.
	Body []byte
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func flattenHeaders(h http.Header) map[string]string {
	result := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			result[k] = v[0]
		}
	}
	return result
}
