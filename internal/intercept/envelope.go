package intercept

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Request is an intercepted call after route matching.
type Request struct {
	Method string
	Path   string

	// Params holds pattern parameters (e.g. {id: "doc-1"} for /documents/:id).
	Params map[string]string

	// Query holds the parsed query string.
	Query url.Values

	// Body is the raw request body, if any.
	Body []byte
}

// DecodeBody unmarshals the JSON request body into v.
func (r *Request) DecodeBody(v any) error {
	if len(r.Body) == 0 {
		return fmt.Errorf("empty request body")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("malformed request body: %w", err)
	}
	return nil
}

// QueryInt returns a query parameter as an int, or def when absent or
// unparsable (matching the real backend's lenient query parsing).
func (r *Request) QueryInt(key string, def int) int {
	s := r.Query.Get(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// Response is the simulated backend's answer to an intercepted call.
type Response struct {
	Status  int               `json:"status"`
	Body    any               `json:"body,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// ErrorBody is the error envelope shared by every failed call, matching
// the shape a real backend returns so the client under test cannot tell
// simulation from production.
type ErrorBody struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Pagination describes a page of a listing response.
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// ListBody is the success envelope for listing endpoints.
type ListBody struct {
	Items      any        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// SuccessBody is the envelope for operations with no payload (deletes,
// requeues).
type SuccessBody struct {
	Success bool `json:"success"`
}

// OK returns a 200 response with the given body.
func OK(body any) *Response {
	return &Response{Status: 200, Body: body, Headers: jsonHeaders()}
}

// Created returns a 201 response with the created record.
func Created(body any) *Response {
	return &Response{Status: 201, Body: body, Headers: jsonHeaders()}
}

// Deleted returns the {success:true} envelope.
func Deleted() *Response {
	return OK(SuccessBody{Success: true})
}

// Fail returns an error envelope with the given status.
func Fail(code int, message string, now time.Time) *Response {
	return &Response{
		Status:  code,
		Body:    ErrorBody{Code: code, Message: message, Timestamp: now.UTC().Format(time.RFC3339)},
		Headers: jsonHeaders(),
	}
}

// NotFound returns the 404 envelope.
func NotFound(message string, now time.Time) *Response {
	return Fail(404, message, now)
}

// Conflict returns the 409 envelope (duplicate unique field etc.).
func Conflict(message string, now time.Time) *Response {
	return Fail(409, message, now)
}

// BadRequest returns the 400 envelope (malformed body, bad parameters).
func BadRequest(message string, now time.Time) *Response {
	return Fail(400, message, now)
}

// Unauthorized returns the 401 envelope.
func Unauthorized(message string, now time.Time) *Response {
	return Fail(401, message, now)
}

func jsonHeaders() map[string]string {
	return map[string]string{"Content-Type": "application/json"}
}
