package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/toyz/docblock/internal/utils"
	"github.com/toyz/docblock/pkg/annotation"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	maxSuggestions  = 5
)

// Lookup resolves targets to their annotations.
type Lookup interface {
	Lookup(target string) (*annotation.Collection, bool)
	Targets() []string
}

type Server struct {
	engine Engine
	parser *annotation.Parser
	log    *utils.DiagnosticSystem

	mu     sync.RWMutex
	lookup Lookup
}

// New registers the lookup routes on engine.
func New(engine Engine, parser *annotation.Parser, lookup Lookup, log *utils.DiagnosticSystem) *Server {
	if log == nil {
		log = utils.NewQuietDiagnostics()
	}
	s := &Server{engine: engine, parser: parser, lookup: lookup, log: log}

	engine.Use(s.requestID)
	engine.RegisterRoute(http.MethodGet, "/health", s.health)
	engine.RegisterRoute(http.MethodGet, "/targets", s.targets)
	engine.RegisterRoute(http.MethodGet, "/annotations", s.annotations)
	engine.RegisterRoute(http.MethodPost, "/parse", s.parse)
	return s
}

// SetLookup swaps the index served, e.g. after a rescan.
func (s *Server) SetLookup(lookup Lookup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookup = lookup
}

func (s *Server) current() Lookup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookup
}

func (s *Server) Engine() Engine { return s.engine }

func (s *Server) Handler() http.Handler { return s.engine.Handler() }

// Start blocks serving addr until Stop is called.
func (s *Server) Start(addr string) error {
	s.log.Info("serving annotations on %s (%s)", addr, s.engine.Name())
	return s.engine.Start(addr)
}

func (s *Server) Stop(ctx context.Context) error {
	return s.engine.Stop(ctx)
}

func (s *Server) requestID(next HandlerFunc) HandlerFunc {
	return func(ctx RequestContext) error {
		id := ctx.Header(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		ctx.SetHeader(RequestIDHeader, id)
		ctx.Set(requestIDKey, id)
		s.log.Debug("%s %s [%s]", ctx.Method(), ctx.Path(), id)
		return next(ctx)
	}
}

func (s *Server) health(ctx RequestContext) error {
	return ctx.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"engine":  s.engine.Name(),
		"targets": len(s.current().Targets()),
	})
}

func (s *Server) targets(ctx RequestContext) error {
	prefix := ctx.QueryParam("prefix")
	targets := make([]string, 0)
	for _, t := range s.current().Targets() {
		if strings.HasPrefix(t, prefix) {
			targets = append(targets, t)
		}
	}
	return ctx.JSON(http.StatusOK, map[string]any{"targets": targets})
}

func (s *Server) annotations(ctx RequestContext) error {
	target := ctx.QueryParam("target")
	if target == "" {
		return NewHTTPError(http.StatusBadRequest, "missing target parameter")
	}

	lookup := s.current()
	col, ok := lookup.Lookup(target)
	if !ok {
		return NewHTTPErrorWithDetails(http.StatusNotFound,
			fmt.Sprintf("unknown target %s", target),
			map[string]any{"suggestions": nonNil(utils.Suggest(target, lookup.Targets(), maxSuggestions))})
	}

	typ := ctx.QueryParam("type")
	if typ == "" {
		return ctx.JSON(http.StatusOK, col)
	}
	if _, err := col.FirstNamed(typ); err != nil {
		return NewHTTPErrorWithDetails(http.StatusNotFound, err.Error(),
			map[string]any{"suggestions": nonNil(utils.Suggest(typ, col.Types(), maxSuggestions))})
	}
	return ctx.JSON(http.StatusOK, map[string]any{
		"target":      target,
		"annotations": col.Named(typ),
	})
}

type parseRequest struct {
	Target string `json:"target"`
	Doc    string `json:"doc"`
}

func (s *Server) parse(ctx RequestContext) error {
	body, err := ctx.Body()
	if err != nil {
		return NewHTTPError(http.StatusBadRequest, "failed to read request body")
	}
	var req parseRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return NewHTTPError(http.StatusBadRequest, "invalid JSON body: "+err.Error())
	}
	if req.Target == "" {
		return NewHTTPError(http.StatusBadRequest, "missing target")
	}

	collections, err := s.parser.Parse(req.Doc, req.Target)
	if err != nil {
		var perr *annotation.ParseError
		if stderrors.As(err, &perr) {
			return NewHTTPErrorWithDetails(http.StatusUnprocessableEntity, perr.Error(), map[string]any{
				"kind":    perr.Kind.String(),
				"context": perr.Context,
				"literal": perr.Literal,
			})
		}
		return err
	}
	return ctx.JSON(http.StatusOK, map[string]any{"collections": collections})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
