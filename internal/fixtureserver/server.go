// Package fixtureserver is a local stand-in for the billing service. It replays recorded
// payloads listed in a YAML manifest and answers everything else with the service's XML
// error shape.
package fixtureserver

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/r9s-ai/open-billing-client/internal/logx"
)

type Server struct {
	dir          string
	manifestPath string
	logger       logx.Logger

	mu    sync.RWMutex
	table *Table
}

// New loads the manifest once. Relative manifest paths are resolved against dir.
func New(dir, manifest string, logger logx.Logger) (*Server, error) {
	if logger == nil {
		logger = logx.Nop()
	}
	if manifest != "" && !filepath.IsAbs(manifest) {
		manifest = filepath.Join(dir, manifest)
	}
	s := &Server{dir: dir, manifestPath: manifest, logger: logger}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the manifest. On failure the previous routes stay in place.
func (s *Server) Reload() error {
	t, err := LoadManifest(s.manifestPath)
	if err != nil {
		return fmt.Errorf("load manifest %q: %w", s.manifestPath, err)
	}
	s.mu.Lock()
	s.table = t
	s.mu.Unlock()
	return nil
}

func (s *Server) Routes() *Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

func (s *Server) Dir() string { return s.dir }

func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(requestLogger(s.logger))
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "routes": s.Routes().Len()})
	})
	r.NoRoute(s.serveFixture)
	return r
}

func (s *Server) serveFixture(c *gin.Context) {
	route, ok := s.Routes().Match(c.Request.Method, c.Request.URL.Path)
	if !ok {
		writeServiceError(c, http.StatusNotFound, "", "No fixture for "+c.Request.Method+" "+c.Request.URL.Path)
		return
	}
	c.Set("fixture.file", route.File)
	// #nosec G304 -- fixture files come from the operator's manifest.
	b, err := os.ReadFile(filepath.Join(s.dir, route.File))
	if err != nil {
		writeServiceError(c, http.StatusInternalServerError, "fixture:Unreadable", err.Error())
		return
	}
	c.Data(route.Status, route.ContentType, b)
}

// writeServiceError answers in the service's own error markup.
func writeServiceError(c *gin.Context, status int, auxCode, msg string) {
	body := fmt.Sprintf(
		"<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<error id=\"0\" code=\"%d\" auxCode=\"%s\">%s</error>\n",
		status, html.EscapeString(auxCode), html.EscapeString(msg),
	)
	c.Data(status, "application/xml; charset=utf-8", []byte(body))
}

func requestLogger(l logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := map[string]any{}
		if v := c.GetString("fixture.file"); v != "" {
			fields["file"] = v
		}
		latency := time.Since(start)
		l.Info(logx.FormatRequestLine(time.Now(), c.Writer.Status(), latency, c.Request.Method, c.Request.URL.Path, fields))
	}
}

// ListenAndServe runs until ctx is done, then shuts down gracefully. With autoReload the
// manifest is re-read whenever the fixtures dir changes.
func (s *Server) ListenAndServe(ctx context.Context, addr string, autoReload bool, debounce time.Duration) error {
	if autoReload {
		closer, err := s.installAutoReload(debounce)
		if err != nil {
			return fmt.Errorf("install auto-reload: %w", err)
		}
		defer func() { _ = closer.Close() }()
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("fixture server listening", "addr", addr, "dir", s.dir, "routes", s.Routes().Len())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("run: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
