// Package server exposes the frozen route registry over HTTP using the
// Echo framework. It mounts the dispatcher behind a catch-all route and
// serves the generated API document and its documentation UI.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/celsowm/adorn-api-sub006/config"
	"github.com/celsowm/adorn-api-sub006/logger"
	"github.com/celsowm/adorn-api-sub006/registry"
	"github.com/celsowm/adorn-api-sub006/schema"
)

// Server wraps Echo with the dispatcher, configuration and logger.
type Server struct {
	echo       *echo.Echo
	cfg        *config.Config
	log        logger.Logger
	dispatcher *registry.Dispatcher
	basePath   string
}

// New creates a server with the full middleware chain installed.
func New(cfg *config.Config, log logger.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	setupMiddlewares(e, log, cfg)

	s := &Server{
		echo:     e,
		cfg:      cfg,
		log:      log,
		basePath: normalizeBasePath(cfg.Server.BasePath),
	}

	e.GET(s.fullPath("/health"), s.healthCheck)
	return s
}

// normalizeBasePath ensures the base path starts with "/" and has no
// trailing "/". Empty stays empty (no prefix).
func normalizeBasePath(basePath string) string {
	if basePath == "" {
		return ""
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	if len(basePath) > 1 {
		basePath = strings.TrimRight(basePath, "/")
	}
	return basePath
}

func (s *Server) fullPath(route string) string {
	if s.basePath == "" || s.basePath == "/" {
		return route
	}
	if route == "/" {
		return s.basePath
	}
	return s.basePath + route
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Mount attaches a frozen registry and its generated document. The
// registry must already be frozen; all route matching happens inside
// the dispatcher, not in Echo's router.
func (s *Server) Mount(reg *registry.Registry, doc *schema.Document) error {
	if !reg.Frozen() {
		return fmt.Errorf("server: registry must be frozen before mounting")
	}
	s.dispatcher = registry.NewDispatcher(reg, s.log)

	if doc != nil {
		payload, err := doc.JSON()
		if err != nil {
			return fmt.Errorf("server: render api document: %w", err)
		}
		s.echo.GET(s.fullPath(s.cfg.Docs.SpecPath), func(c echo.Context) error {
			return c.Blob(http.StatusOK, "application/json", payload)
		})
		if s.cfg.Docs.Enabled {
			s.serveDocs()
		}
	}

	s.echo.Any(s.fullPath("/*"), s.dispatch)
	return nil
}

// dispatch translates an Echo request into the transport-independent
// form, runs the pipeline and writes the outcome.
func (s *Server) dispatch(c echo.Context) error {
	req := c.Request()

	var body []byte
	if req.Body != nil {
		data, err := io.ReadAll(req.Body)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "failed to read request body")
		}
		body = data
	}

	path := req.URL.Path
	if s.basePath != "" && s.basePath != "/" {
		path = strings.TrimPrefix(path, s.basePath)
	}

	resp := s.dispatcher.Dispatch(req.Context(), &registry.Request{
		Method:  req.Method,
		Path:    path,
		Query:   c.QueryParams(),
		Headers: req.Header,
		Body:    body,
	})

	// A cancelled request gets no response body written.
	if err := req.Context().Err(); err != nil {
		return err
	}

	for key, values := range resp.Headers {
		for _, value := range values {
			c.Response().Header().Add(key, value)
		}
	}
	if resp.Body == nil {
		return c.NoContent(resp.Status)
	}
	return c.JSON(resp.Status, resp.Body)
}

// Start begins accepting requests. It blocks until shutdown or error.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)

	s.log.Info().
		Str("service", s.cfg.App.Name).
		Str("version", s.cfg.App.Version).
		Str("env", s.cfg.App.Env).
		Str("address", addr).
		Msg("Starting server")

	server := &http.Server{
		Addr:         addr,
		ReadTimeout:  s.cfg.Server.Timeout.Read,
		WriteTimeout: s.cfg.Server.Timeout.Write,
		IdleTimeout:  s.cfg.Server.Timeout.Idle,
	}
	return s.echo.StartServer(server)
}

// Shutdown drains connections within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
