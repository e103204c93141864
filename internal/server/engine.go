// Package server exposes an annotation index over HTTP. Routes are written
// once against RequestContext and mounted on echo, gin or fiber.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// HandlerFunc handles a request on any engine.
type HandlerFunc func(ctx RequestContext) error

// MiddlewareFunc wraps a handler.
type MiddlewareFunc func(next HandlerFunc) HandlerFunc

// RequestContext is the part of a framework context the routes rely on.
type RequestContext interface {
	Method() string
	Path() string
	QueryParam(key string) string
	Header(key string) string
	SetHeader(key, value string)
	Body() ([]byte, error)
	JSON(code int, v any) error
	Get(key string) any
	Set(key string, val any)
}

// Engine adapts a web framework.
type Engine interface {
	RegisterRoute(method, path string, handler HandlerFunc, middlewares ...MiddlewareFunc)
	Use(middleware MiddlewareFunc)
	// Handler serves requests without a listener, e.g. under httptest.
	Handler() http.Handler
	Start(addr string) error
	Stop(ctx context.Context) error
	Name() string
}

// NewEngine returns the adapter registered under name.
func NewEngine(name string) (Engine, error) {
	switch strings.ToLower(name) {
	case "", "echo":
		return NewEchoEngine(), nil
	case "gin":
		return NewGinEngine(), nil
	case "fiber":
		return NewFiberEngine(), nil
	default:
		return nil, fmt.Errorf("unknown server engine %q", name)
	}
}

// HTTPError is returned by handlers to answer with a status other than 500.
type HTTPError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{StatusCode: statusCode, Message: message}
}

func NewHTTPErrorWithDetails(statusCode int, message string, details any) *HTTPError {
	return &HTTPError{StatusCode: statusCode, Message: message, Details: details}
}

// respondError writes err as a JSON error body.
func respondError(ctx RequestContext, err error) error {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		httpErr = NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return ctx.JSON(httpErr.StatusCode, httpErr)
}
