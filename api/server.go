// Package api exposes the raffle over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"raffler/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Server hosts the HTTP surface: entries, the eligibility probe, the draw
// trigger, state reads and ledger funding. The oracle callback is not
// exposed here; it arrives through the in-process oracle interface.
type Server struct {
	raffle service.RaffleService
	ledger service.LedgerService
	http   *http.Server
}

// NewServer creates a new HTTP server
func NewServer(addr string, raffle service.RaffleService, ledger service.LedgerService) *Server {
	s := &Server{
		raffle: raffle,
		ledger: ledger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/raffle", func(r chi.Router) {
		r.Get("/", s.handleGetRaffle)
		r.Get("/eligibility", s.handleEligibility)
		r.Post("/entries", s.handleEnter)
		r.Post("/draws", s.handleTrigger)
		r.Get("/entrants/{index}", s.handleGetEntrant)
	})

	r.Route("/accounts", func(r chi.Router) {
		r.Get("/{id}", s.handleGetAccount)
		r.Post("/{id}/deposits", s.handleDeposit)
	})

	s.http = &http.Server{
		Addr:    addr,
		Handler: r,
	}

	return s
}

// Handler exposes the router, used by tests
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start begins serving. It blocks until the server is shut down.
func (s *Server) Start() error {
	log.WithField("addr", s.http.Addr).Info("HTTP server listening")
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
