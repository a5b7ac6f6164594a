// Package server exposes the bootstrap group, message template and PNG
// codec operations over HTTP.
package server

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-kafkaforms/internal/metrics"
	"github.com/goliatone/go-kafkaforms/internal/service"
	"github.com/goliatone/go-kafkaforms/pkg/render"
)

const (
	groupPrefix    = "/kafka-client-service/bootstrap-group"
	templatePrefix = "/kafka-client-service/message-template"
	codecPrefix    = "/web/app/kafka/rest/api/v1"
)

// Options wires the server's dependencies. Forms renders the HTML form
// pages; MetricsPath empty disables /metrics.
type Options struct {
	Groups      *service.Groups
	Templates   *service.Templates
	Forms       render.Renderer
	Logger      *zap.Logger
	MetricsPath string

	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Server is the HTTP API.
type Server struct {
	opts    Options
	logger  *zap.Logger
	handler http.Handler
}

// New validates opts and builds the route table.
func New(opts Options) (*Server, error) {
	if opts.Groups == nil || opts.Templates == nil {
		return nil, errors.New("server: groups and templates services are required")
	}
	if opts.Forms == nil {
		return nil, errors.New("server: form renderer is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	opts.ReadHeaderTimeout = cmp.Or(opts.ReadHeaderTimeout, 3*time.Second)
	opts.ShutdownTimeout = cmp.Or(opts.ShutdownTimeout, 5*time.Second)

	s := &Server{opts: opts, logger: logger}
	s.handler = chain(s.routes(), RequestID, AccessLog(logger))
	return s, nil
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET "+groupPrefix+"/{$}", s.listGroups)
	mux.HandleFunc("POST "+groupPrefix+"/{$}", s.createGroup)
	mux.HandleFunc("GET "+groupPrefix+"/{id}", s.getGroup)
	mux.HandleFunc("PUT "+groupPrefix+"/{id}", s.updateGroup)
	mux.HandleFunc("DELETE "+groupPrefix+"/{id}", s.deleteGroup)
	mux.HandleFunc("GET "+groupPrefix+"/{id}/topics", s.groupTopics)
	mux.HandleFunc("POST "+groupPrefix+"/{id}/topics/{topic}/publish", s.publish)
	mux.HandleFunc("POST "+groupPrefix+"/{id}/topics/{topic}/consume", s.consume)

	mux.HandleFunc("GET "+templatePrefix+"/{$}", s.listTemplates)
	mux.HandleFunc("POST "+templatePrefix+"/{$}", s.createTemplate)
	mux.HandleFunc("GET "+templatePrefix+"/engines", s.listEngines)
	mux.HandleFunc("GET "+templatePrefix+"/{id}", s.getTemplate)
	mux.HandleFunc("PUT "+templatePrefix+"/{id}", s.updateTemplate)
	mux.HandleFunc("DELETE "+templatePrefix+"/{id}", s.deleteTemplate)
	mux.HandleFunc("GET "+templatePrefix+"/{id}/schema", s.templateSchema)
	mux.HandleFunc("POST "+templatePrefix+"/{id}/render", s.renderTemplate)
	mux.HandleFunc("POST "+templatePrefix+"/{id}/send", s.sendTemplate)
	mux.HandleFunc("GET "+templatePrefix+"/{id}/form", s.showForm)
	mux.HandleFunc("POST "+templatePrefix+"/{id}/form", s.submitForm)

	mux.HandleFunc("POST "+codecPrefix+"/encode", s.encodePNG)
	mux.HandleFunc("POST "+codecPrefix+"/decode", s.decodePNG)

	if s.opts.MetricsPath != "" {
		mux.Handle("GET "+s.opts.MetricsPath, metrics.Handler())
	}
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: s.opts.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
