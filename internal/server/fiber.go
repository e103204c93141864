package server

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// FiberEngine mounts routes on Fiber v2.
type FiberEngine struct {
	app *fiber.App
}

func NewFiberEngine() *FiberEngine {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(NewHTTPError(code, err.Error()))
		},
	})
	app.Use(recover.New())
	return &FiberEngine{app: app}
}

func (fe *FiberEngine) RegisterRoute(method, path string, handler HandlerFunc, middlewares ...MiddlewareFunc) {
	handlers := make([]fiber.Handler, 0, len(middlewares)+1)
	for _, mw := range middlewares {
		handlers = append(handlers, convertFiberMiddleware(mw))
	}
	handlers = append(handlers, convertFiberHandler(handler))
	fe.app.Add(method, path, handlers...)
}

func (fe *FiberEngine) Use(middleware MiddlewareFunc) {
	fe.app.Use(convertFiberMiddleware(middleware))
}

// Handler bridges the fasthttp based app to net/http.
func (fe *FiberEngine) Handler() http.Handler { return adaptor.FiberApp(fe.app) }

func (fe *FiberEngine) Start(addr string) error { return fe.app.Listen(addr) }

func (fe *FiberEngine) Stop(ctx context.Context) error {
	return fe.app.ShutdownWithContext(ctx)
}

func (fe *FiberEngine) Name() string { return "Fiber" }

func (fe *FiberEngine) App() *fiber.App { return fe.app }

func convertFiberHandler(handler HandlerFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := &fiberContext{ctx: c}
		if err := handler(ctx); err != nil {
			return respondError(ctx, err)
		}
		return nil
	}
}

func convertFiberMiddleware(middleware MiddlewareFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := &fiberContext{ctx: c}
		wrapped := middleware(func(RequestContext) error { return c.Next() })
		if err := wrapped(ctx); err != nil {
			return respondError(ctx, err)
		}
		return nil
	}
}

type fiberContext struct {
	ctx *fiber.Ctx
}

func (fc *fiberContext) Method() string { return fc.ctx.Method() }

func (fc *fiberContext) Path() string { return fc.ctx.Path() }

func (fc *fiberContext) QueryParam(key string) string { return fc.ctx.Query(key) }

func (fc *fiberContext) Header(key string) string { return fc.ctx.Get(key) }

func (fc *fiberContext) SetHeader(key, value string) { fc.ctx.Set(key, value) }

// Body copies the request body; fasthttp reuses the underlying buffer.
func (fc *fiberContext) Body() ([]byte, error) {
	return append([]byte(nil), fc.ctx.Body()...), nil
}

func (fc *fiberContext) JSON(code int, v any) error {
	return fc.ctx.Status(code).JSON(v)
}

func (fc *fiberContext) Get(key string) any { return fc.ctx.Locals(key) }

func (fc *fiberContext) Set(key string, val any) { fc.ctx.Locals(key, val) }
