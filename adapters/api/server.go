// Package api serves rendered summary tables over HTTP for quick preview
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tabreport/adapters/render"
	"tabreport/domain/table"
	"tabreport/internal"
	"tabreport/internal/errors"
)

// Config holds preview server configuration
type Config struct {
	Port string
}

// Server exposes a finished table as HTML, markdown, and JSON
type Server struct {
	router *chi.Mux
	config Config
	table  *table.Table
}

// NewServer creates a preview server for a table
func NewServer(config Config, tbl *table.Table) (*Server, error) {
	if tbl == nil {
		return nil, errors.InvalidArgument("table is required")
	}
	s := &Server{
		router: chi.NewRouter(),
		config: config,
		table:  tbl,
	}
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	s.router.Get("/", s.handleHTML)
	s.router.Get("/table.md", s.handleMarkdown)
	s.router.Get("/table.json", s.handleJSON)
	return s, nil
}

// Start blocks serving HTTP on the configured port
func (s *Server) Start() error {
	addr := ":" + s.config.Port
	internal.DefaultLogger.Info("preview server listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// Handler returns the underlying router for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHTML(w http.ResponseWriter, r *http.Request) {
	body, err := render.HTML(s.table)
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!DOCTYPE html>\n<html><head><title>Summary table</title></head><body>\n%s</body></html>\n", body)
}

func (s *Server) handleMarkdown(w http.ResponseWriter, r *http.Request) {
	body, err := render.Markdown(s.table)
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	fmt.Fprint(w, body)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.table); err != nil {
		internal.DefaultLogger.Error("encode table: %v", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	internal.DefaultLogger.Error("render failed: %v", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{
		"code":  errors.GetCode(err),
		"error": err.Error(),
	})
}
