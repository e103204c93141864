package server

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// GinEngine mounts routes on Gin. Gin has no server of its own, so Start
// and Stop manage an http.Server around the engine.
type GinEngine struct {
	engine *gin.Engine
	mu     sync.Mutex
	server *http.Server
}

func NewGinEngine() *GinEngine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	return &GinEngine{engine: engine}
}

func (ge *GinEngine) RegisterRoute(method, path string, handler HandlerFunc, middlewares ...MiddlewareFunc) {
	handlers := make([]gin.HandlerFunc, 0, len(middlewares)+1)
	for _, mw := range middlewares {
		handlers = append(handlers, ge.convertMiddleware(mw))
	}
	handlers = append(handlers, ge.convertHandler(handler))
	ge.engine.Handle(method, path, handlers...)
}

func (ge *GinEngine) Use(middleware MiddlewareFunc) {
	ge.engine.Use(ge.convertMiddleware(middleware))
}

func (ge *GinEngine) Handler() http.Handler { return ge.engine }

func (ge *GinEngine) Start(addr string) error {
	ge.mu.Lock()
	ge.server = &http.Server{Addr: addr, Handler: ge.engine}
	srv := ge.server
	ge.mu.Unlock()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (ge *GinEngine) Stop(ctx context.Context) error {
	ge.mu.Lock()
	srv := ge.server
	ge.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (ge *GinEngine) Name() string { return "Gin" }

func (ge *GinEngine) convertHandler(handler HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := &ginContext{ctx: c}
		if err := handler(ctx); err != nil {
			_ = respondError(ctx, err)
		}
	}
}

// convertMiddleware stops the chain when the middleware neither calls next
// nor fails, since gin would otherwise continue on its own.
func (ge *GinEngine) convertMiddleware(middleware MiddlewareFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := &ginContext{ctx: c}
		called := false
		next := func(RequestContext) error {
			called = true
			c.Next()
			return nil
		}
		if err := middleware(next)(ctx); err != nil {
			c.Abort()
			_ = respondError(ctx, err)
			return
		}
		if !called {
			c.Abort()
		}
	}
}

type ginContext struct {
	ctx *gin.Context
}

func (gc *ginContext) Method() string { return gc.ctx.Request.Method }

func (gc *ginContext) Path() string { return gc.ctx.Request.URL.Path }

func (gc *ginContext) QueryParam(key string) string { return gc.ctx.Query(key) }

func (gc *ginContext) Header(key string) string { return gc.ctx.GetHeader(key) }

func (gc *ginContext) SetHeader(key, value string) { gc.ctx.Header(key, value) }

func (gc *ginContext) Body() ([]byte, error) { return gc.ctx.GetRawData() }

func (gc *ginContext) JSON(code int, v any) error {
	gc.ctx.JSON(code, v)
	return nil
}

func (gc *ginContext) Get(key string) any {
	v, _ := gc.ctx.Get(key)
	return v
}

func (gc *ginContext) Set(key string, val any) { gc.ctx.Set(key, val) }
