// Package httpapi exposes the lease ledger over an HTTP JSON surface.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/openlease/leasehold/internal/api/httpapi/middleware"
	"github.com/openlease/leasehold/internal/ledger/clock"
	"github.com/openlease/leasehold/internal/ledger/domain"
	"github.com/openlease/leasehold/internal/ledger/engine"
	"github.com/openlease/leasehold/internal/ledger/party"
	"github.com/openlease/leasehold/internal/metrics"
)

// Options tune the HTTP server.
type Options struct {
	Addr string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// RateLimitPerSecond enables the rate limiter when positive.
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// Server serves the lease ledger API.
type Server struct {
	router     *mux.Router
	httpServer *http.Server
	engine     *engine.Engine
	clock      *clock.Manual
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewServer builds the API server and registers all routes.
func NewServer(opts Options, eng *engine.Engine, clk *clock.Manual, m *metrics.Metrics, logger *zap.Logger) (*Server, error) {
	if eng == nil {
		return nil, errors.New("engine is required")
	}
	if clk == nil {
		return nil, errors.New("clock is required")
	}
	if m == nil {
		m = metrics.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	router := mux.NewRouter()
	s := &Server{
		router:  router,
		engine:  eng,
		clock:   clk,
		metrics: m,
		logger:  logger,
		httpServer: &http.Server{
			Addr:         opts.Addr,
			Handler:      otelhttp.NewHandler(router, "leasehold.http"),
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
			IdleTimeout:  opts.IdleTimeout,
		},
	}
	s.setupRoutes(opts)
	return s, nil
}

func (s *Server) setupRoutes(opts Options) {
	chain := []func(http.Handler) http.Handler{
		middleware.Recovery(s.logger),
		middleware.RequestID,
		middleware.Logging(s.logger),
		middleware.Metrics(s.metrics),
	}
	if opts.RateLimitPerSecond > 0 {
		limiter := middleware.NewRateLimiter(opts.RateLimitPerSecond, opts.RateLimitBurst, s.logger)
		chain = append(chain, limiter.Limit)
	}
	wrapped := middleware.Chain(chain...)
	s.router.Use(func(next http.Handler) http.Handler {
		return wrapped(next)
	})

	s.router.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
	s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	v1 := s.router.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/leases", s.createLease).Methods(http.MethodPost)
	v1.HandleFunc("/leases/count", s.leaseCount).Methods(http.MethodGet)
	v1.HandleFunc("/leases/{id}", s.getLease).Methods(http.MethodGet)
	v1.HandleFunc("/leases/{id}", s.amendLease).Methods(http.MethodPatch)
	v1.HandleFunc("/leases/{id}/amendment", s.getAmendment).Methods(http.MethodGet)
	v1.HandleFunc("/locations/{location}/leases", s.leasesByLocation).Methods(http.MethodGet)

	v1.HandleFunc("/leases/{id}/activate", s.transitionHandler("activate",
		func(r *http.Request, caller party.ID, id uint64) (domain.Lease, error) {
			return s.engine.Activate(r.Context(), caller, id)
		})).Methods(http.MethodPost)
	v1.HandleFunc("/leases/{id}/end", s.transitionHandler("end",
		func(r *http.Request, caller party.ID, id uint64) (domain.Lease, error) {
			return s.engine.End(r.Context(), caller, id)
		})).Methods(http.MethodPost)
	v1.HandleFunc("/leases/{id}/dispute", s.transitionHandler("file_dispute",
		func(r *http.Request, caller party.ID, id uint64) (domain.Lease, error) {
			return s.engine.FileDispute(r.Context(), caller, id)
		})).Methods(http.MethodPost)
	v1.HandleFunc("/leases/{id}/resolve", s.resolveDispute).Methods(http.MethodPost)
	v1.HandleFunc("/leases/{id}/renew", s.transitionHandler("renew",
		func(r *http.Request, caller party.ID, id uint64) (domain.Lease, error) {
			return s.engine.Renew(r.Context(), caller, id)
		})).Methods(http.MethodPost)
	v1.HandleFunc("/leases/{id}/payments", s.recordPayment).Methods(http.MethodPost)

	v1.HandleFunc("/leases/{id}/escrow-check", s.integrationHandler("escrow_check",
		func(r *http.Request, caller party.ID, id uint64) error {
			return s.engine.IntegrateWithEscrow(r.Context(), caller, id)
		})).Methods(http.MethodPost)
	v1.HandleFunc("/leases/{id}/verifier-check", s.integrationHandler("verifier_check",
		func(r *http.Request, caller party.ID, id uint64) error {
			return s.engine.IntegrateWithVerifier(r.Context(), caller, id)
		})).Methods(http.MethodPost)

	gov := v1.PathPrefix("/governance").Subrouter()
	gov.HandleFunc("", s.getGovernance).Methods(http.MethodGet)
	gov.HandleFunc("/authority", s.addressHandler("set_authority", s.engine.Governance().SetAuthority)).Methods(http.MethodPost)
	gov.HandleFunc("/creation-fee", s.setCreationFee).Methods(http.MethodPost)
	gov.HandleFunc("/payment-address", s.addressHandler("set_payment_address", s.engine.Governance().SetPaymentAddress)).Methods(http.MethodPost)
	gov.HandleFunc("/escrow-address", s.addressHandler("set_escrow_address", s.engine.Governance().SetEscrowAddress)).Methods(http.MethodPost)
	gov.HandleFunc("/verifier-address", s.addressHandler("set_verifier_address", s.engine.Governance().SetVerifierAddress)).Methods(http.MethodPost)
	gov.HandleFunc("/arbiter-address", s.addressHandler("set_arbiter_address", s.engine.Governance().SetArbiterAddress)).Methods(http.MethodPost)

	v1.HandleFunc("/clock", s.getClock).Methods(http.MethodGet)
	v1.HandleFunc("/clock/advance", s.advanceClock).Methods(http.MethodPost)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeErrorResponse(w, r, http.StatusNotFound, errorCodeInvalidRequest, "endpoint not found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeErrorResponse(w, r, http.StatusMethodNotAllowed, errorCodeInvalidRequest, "method not allowed")
	})
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting http server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve http: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.httpServer.Shutdown(ctx)
}
