// Package api is the single chokepoint for every call the client makes to the
// fitness-studio backend. It attaches the bearer token, normalizes success and
// failure into Response and typed errors, and binds each backend resource to
// its method and path.
//
// Quick start:
//
//	client := api.NewClient(api.WithStore(store))
//
//	resp, err := client.Resource(api.Classes).List(ctx)
//	if err != nil {
//	    var failed *api.RequestFailedError
//	    if errors.As(err, &failed) {
//	        fmt.Println(failed.StatusCode, failed.Message)
//	    }
//	}
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// DefaultBaseURL is the canonical, /api prefixed origin of the backend.
const DefaultBaseURL = "https://fitness-app-0zk0.onrender.com/api"

// Method is an HTTP method accepted by Call.
type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodDelete Method = http.MethodDelete
)

// CallOptions describes one request. The zero value is an authenticated GET
// with no body.
type CallOptions struct {
	// Method defaults to GET.
	Method Method

	// Headers are merged over the JSON defaults. They cannot remove the
	// bearer token; use SkipAuth for that.
	Headers map[string]string

	// Body is JSON-encoded unless it is already []byte or json.RawMessage.
	Body any

	// SkipAuth suppresses the Authorization header. Login, registration,
	// password reset and the public contact form use it.
	SkipAuth bool
}

// Response is a successful (2xx) backend response.
type Response struct {
	StatusCode int
	Header     http.Header

	// Body is the raw response body.
	Body []byte

	// Data is the decoded JSON value when the response is JSON, nil otherwise.
	// Numbers are decoded as json.Number.
	Data any
}

// IsJSON reports whether the response declared a JSON content type.
func (r *Response) IsJSON() bool {
	return isJSONContentType(r.Header.Get("Content-Type"))
}

// Text returns the raw body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return fmt.Errorf("decode response: empty body")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func isJSONContentType(ct string) bool {
	if ct == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.Contains(strings.ToLower(ct), "application/json")
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
