// Package http provides HTTP server and handler implementations.
//
// This file implements a small builder for redirect and error responses so
// handlers attach flash notices and status codes the same way everywhere.

package http

import (
	"net/http"
)

// FlashCategory selects how a flash notice is styled.
type FlashCategory string

const (
	FlashSuccess FlashCategory = "success"
	FlashDanger  FlashCategory = "danger"
	FlashWarning FlashCategory = "warning"
	FlashInfo    FlashCategory = "info"
)

// Flash is a one-shot notice shown on the next rendered page.
type Flash struct {
	Category FlashCategory `json:"c"`
	Message  string        `json:"m"`
}

// ResponseBuilder provides a fluent API for building responses.
type ResponseBuilder struct {
	statusCode int
	location   string
	body       []byte
	headers    map[string]string
	flashes    []Flash
}

// NewResponse creates a new response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Redirect creates a 303 See Other response to location.
func Redirect(location string) *ResponseBuilder {
	return NewResponse().Status(http.StatusSeeOther).Location(location)
}

// Status sets the HTTP status code for the response.
func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// Location sets the redirect target.
func (b *ResponseBuilder) Location(url string) *ResponseBuilder {
	b.location = url
	return b
}

// Flash queues a notice for the next rendered page.
func (b *ResponseBuilder) Flash(category FlashCategory, message string) *ResponseBuilder {
	b.flashes = append(b.flashes, Flash{Category: category, Message: message})
	return b
}

// Success is Flash with FlashSuccess.
func (b *ResponseBuilder) Success(message string) *ResponseBuilder {
	return b.Flash(FlashSuccess, message)
}

// Danger is Flash with FlashDanger.
func (b *ResponseBuilder) Danger(message string) *ResponseBuilder {
	return b.Flash(FlashDanger, message)
}

// Header adds a custom header to the response.
func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// BodyString sets a plain text body.
func (b *ResponseBuilder) BodyString(content string) *ResponseBuilder {
	b.headers["Content-Type"] = "text/plain; charset=utf-8"
	b.body = []byte(content)
	return b
}

// Write sends the built response. Queued flashes are appended to any the
// client has not seen yet.
func (b *ResponseBuilder) Write(w http.ResponseWriter, r *http.Request) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if len(b.flashes) > 0 {
		setFlashes(w, append(readFlashes(r), b.flashes...))
	}
	if b.location != "" {
		w.Header().Set("Location", b.location)
	}

	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse creates a plain text error response.
func ErrorResponse(statusCode int, message string) *ResponseBuilder {
	return NewResponse().
		Status(statusCode).
		Header("X-Content-Type-Options", "nosniff").
		BodyString(message + "\n")
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}
