package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server represents the HTTP API server.
type Server struct {
	router  *chi.Mux
	handler *Handler
	server  *http.Server
	config  domain.ServerConfig
}

// NewServer creates a new API server.
func NewServer(cfg domain.ServerConfig, svc Services) *Server {
	handler := NewHandler(svc)
	router := chi.NewRouter()

	// Global middleware stack. Recover sits inside tracing and logging so a
	// panic is still recorded as a 500 on the span and in the log.
	router.Use(CORSMiddleware(cfg.AllowedOrigins))
	router.Use(TracingMiddleware)
	router.Use(RequestIDMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(RecoverMiddleware)
	router.Use(middleware.RealIP)
	router.Use(middleware.Compress(5))

	router.Get("/health", handler.Health)
	router.Get("/ready", handler.Ready)

	// Pricing and pay
	router.Get("/prices/{code}", handler.GetPrice)
	router.Post("/prices", handler.SavePriceEntry)
	router.Post("/support-items", handler.SaveSupportItem)
	router.Post("/pay-rates/calculate", handler.CalculatePayRate)

	// Shifts
	router.Route("/shifts", func(r chi.Router) {
		r.Post("/", handler.ScheduleShift)
		r.Get("/{id}", handler.GetShift)
		r.Post("/{id}/check-in", handler.CheckIn)
		r.Post("/{id}/check-out", handler.CheckOut)
	})

	// Compliance
	router.Post("/staff", handler.SaveStaffMember)
	router.Post("/referrals", handler.SaveReferral)
	router.Post("/service-agreements", handler.SaveServiceAgreement)
	router.Post("/compliance/{entityType}/{id}", handler.RunCompliance)
	router.Get("/compliance/{entityType}/{id}/history", handler.ComplianceHistory)

	// Incidents
	router.Route("/incidents", func(r chi.Router) {
		r.Post("/", handler.ReportIncident)
		r.Post("/classify", handler.ClassifyIncident)
		r.Get("/overdue", handler.OverdueIncidents)
		r.Get("/{id}", handler.GetIncident)
		r.Post("/{id}/notified", handler.MarkIncidentNotified)
	})

	// Recruitment
	router.Post("/candidates", handler.CreateCandidate)
	router.Post("/jobs", handler.CreateJob)
	router.Route("/applications", func(r chi.Router) {
		r.Post("/", handler.CreateApplication)
		r.Get("/{id}", handler.GetApplication)
		r.Post("/{id}/screen", handler.ScreenApplication)
		r.Put("/{id}/status", handler.UpdateApplicationStatus)
	})

	// Integration reconciliation
	router.Get("/integrations/sync", handler.ListSyncRecords)
	router.Post("/integrations/sync/retry", handler.RetrySync)

	return &Server{
		router:  router,
		handler: handler,
		config:  cfg,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.WriteTimeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the Chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
