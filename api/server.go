// Package api provides the HTTP REST API server for quarterdash.
//
// It exposes the company picker backing, revenue tag resolution, the tidy
// quarter table (JSON or CSV), QoQ/YoY changes, and recent filings.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ishavarrier/quarterdash/internal/config"
	"github.com/ishavarrier/quarterdash/internal/edgar"
	"github.com/ishavarrier/quarterdash/internal/report"
	"github.com/ishavarrier/quarterdash/pkg/models"
)

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	cfg    *config.Config
	client *edgar.Client
	svc    *report.Service
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, client *edgar.Client, svc *report.Service) *Server {
	srv := &Server{
		cfg:    cfg,
		client: client,
		svc:    svc,
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/companies", s.handleCompanies)
		r.Get("/companies/resolve", s.handleResolve)
		r.Get("/companies/{cik}/table", s.handleTable)
		r.Get("/companies/{cik}/changes", s.handleChanges)
		r.Get("/companies/{cik}/filings", s.handleFilings)
	})

	return r
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ResolveResponse is the payload of GET /api/v1/companies/resolve.
type ResolveResponse struct {
	Name       string `json:"name"`
	CIK        string `json:"cik"`
	RevenueTag string `json:"revenue_tag"`
}

// TableResponse is the payload of GET /api/v1/companies/{cik}/table.
// Message is set when the company has no reportable quarters.
type TableResponse struct {
	CIK     string            `json:"cik"`
	Name    string            `json:"name,omitempty"`
	Table   *models.TidyTable `json:"table"`
	Message string            `json:"message,omitempty"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":  "ok",
			"version": "dev",
		},
	})
}

// handleCompanies backs the company picker: with q, a substring search over
// the registry; without, the default shortlist.
func (s *Server) handleCompanies(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	q := r.URL.Query().Get("q")
	limit := parseLimit(r.URL.Query().Get("limit"), 25)

	if q != "" {
		results, err := s.client.Search(ctx, q, limit)
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: results})
		return
	}

	companies, err := s.client.CompanyList(ctx)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	byName := make(map[string]models.Company, len(companies))
	for _, co := range companies {
		byName[co.Name] = co
	}
	shortlist := make([]models.Company, 0, len(report.DefaultCompanies))
	for _, name := range report.DefaultCompanies {
		if co, ok := byName[name]; ok {
			shortlist = append(shortlist, co)
		}
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: shortlist})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	cik, err := s.client.ResolveCIK(ctx, name)
	if err != nil {
		var notFound *edgar.ErrCompanyNotFound
		if errors.As(err, &notFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ResolveResponse{
			Name:       name,
			CIK:        cik,
			RevenueTag: s.svc.ResolveRevenueTag(ctx, name, cik),
		},
	})
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	cik := chi.URLParam(r, "cik")
	name := r.URL.Query().Get("name")

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	table, err := s.svc.Table(ctx, name, cik)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		var buf bytes.Buffer
		if err := report.WriteCSV(&buf, table); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="financials.csv"`)
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes()) //nolint:errcheck
		return
	}

	resp := TableResponse{CIK: cik, Name: name, Table: table}
	if table.Empty() {
		resp.Message = "no quarterly financial data available for this company"
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}

func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request) {
	cik := chi.URLParam(r, "cik")
	name := r.URL.Query().Get("name")
	quarter := r.URL.Query().Get("quarter")
	if quarter == "" {
		writeError(w, http.StatusBadRequest, "quarter is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	changes, err := s.svc.Changes(ctx, name, cik, quarter)
	if err != nil {
		var notFound *report.ErrQuarterNotFound
		if errors.As(err, &notFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: changes})
}

func (s *Server) handleFilings(w http.ResponseWriter, r *http.Request) {
	cik := chi.URLParam(r, "cik")
	limit := parseLimit(r.URL.Query().Get("limit"), 20)

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	filings, err := s.client.LatestFilings(ctx, cik, limit)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: filings})
}

// ============================================================
// Helpers
// ============================================================

func parseLimit(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
