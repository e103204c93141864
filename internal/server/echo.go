package server

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

// EchoEngine mounts routes on Echo v4.
type EchoEngine struct {
	engine *echo.Echo
}

func NewEchoEngine() *EchoEngine {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	return &EchoEngine{engine: e}
}

func (ee *EchoEngine) RegisterRoute(method, path string, handler HandlerFunc, middlewares ...MiddlewareFunc) {
	echoMiddlewares := make([]echo.MiddlewareFunc, len(middlewares))
	for i, mw := range middlewares {
		echoMiddlewares[i] = ee.convertMiddleware(mw)
	}
	ee.engine.Add(method, path, ee.convertHandler(handler), echoMiddlewares...)
}

func (ee *EchoEngine) Use(middleware MiddlewareFunc) {
	ee.engine.Use(ee.convertMiddleware(middleware))
}

func (ee *EchoEngine) Handler() http.Handler { return ee.engine }

func (ee *EchoEngine) Start(addr string) error {
	if err := ee.engine.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (ee *EchoEngine) Stop(ctx context.Context) error {
	return ee.engine.Shutdown(ctx)
}

func (ee *EchoEngine) Name() string { return "Echo" }

func (ee *EchoEngine) convertHandler(handler HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := &echoContext{context: c}
		if err := handler(ctx); err != nil {
			return respondError(ctx, err)
		}
		return nil
	}
}

func (ee *EchoEngine) convertMiddleware(middleware MiddlewareFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := &echoContext{context: c}
			wrapped := middleware(func(RequestContext) error { return next(c) })
			if err := wrapped(ctx); err != nil {
				return respondError(ctx, err)
			}
			return nil
		}
	}
}

type echoContext struct {
	context echo.Context
}

func (ec *echoContext) Method() string { return ec.context.Request().Method }

func (ec *echoContext) Path() string { return ec.context.Request().URL.Path }

func (ec *echoContext) QueryParam(key string) string { return ec.context.QueryParam(key) }

func (ec *echoContext) Header(key string) string { return ec.context.Request().Header.Get(key) }

func (ec *echoContext) SetHeader(key, value string) {
	ec.context.Response().Header().Set(key, value)
}

func (ec *echoContext) Body() ([]byte, error) {
	return io.ReadAll(ec.context.Request().Body)
}

func (ec *echoContext) JSON(code int, v any) error { return ec.context.JSON(code, v) }

func (ec *echoContext) Get(key string) any { return ec.context.Get(key) }

func (ec *echoContext) Set(key string, val any) { ec.context.Set(key, val) }
