// Package app wires the lease ledger runtime and HTTP lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/openlease/leasehold/internal/api/httpapi"
	"github.com/openlease/leasehold/internal/ledger/clock"
	"github.com/openlease/leasehold/internal/ledger/engine"
	"github.com/openlease/leasehold/internal/ledger/governance"
	"github.com/openlease/leasehold/internal/ledger/storage"
	"github.com/openlease/leasehold/internal/ledger/storage/memory"
	"github.com/openlease/leasehold/internal/ledger/storage/sqlite"
	"github.com/openlease/leasehold/internal/ledger/treasury"
	"github.com/openlease/leasehold/internal/metrics"
	"github.com/openlease/leasehold/internal/platform/config"
)

const shutdownTimeout = 10 * time.Second

type serverEnv struct {
	// DBPath selects the SQLite registry file. Empty runs on the in-memory
	// store.
	DBPath             string  `env:"LEASEHOLD_DB_PATH"`
	MaxLeases          uint64  `env:"LEASEHOLD_MAX_LEASES"`
	CreationFee        int64   `env:"LEASEHOLD_CREATION_FEE" envDefault:"-1"`
	ClockStart         int64   `env:"LEASEHOLD_CLOCK_START"`
	RateLimitPerSecond float64 `env:"LEASEHOLD_RATE_LIMIT_RPS"`
	RateLimitBurst     int     `env:"LEASEHOLD_RATE_LIMIT_BURST" envDefault:"10"`
}

func loadServerEnv() serverEnv {
	var cfg serverEnv
	_ = config.ParseEnv(&cfg)
	return cfg
}

// registryStore is the combined persistence surface the runtime needs.
type registryStore interface {
	storage.RegistryStore
	storage.TransferLog
}

// Server owns the ledger runtime: store, engine, clock, and HTTP surface.
type Server struct {
	api    *httpapi.Server
	store  registryStore
	closer func() error
	logger *zap.Logger
}

// New creates a configured ledger server listening on the provided port.
func New(port int) (*Server, error) {
	return NewWithAddr(fmt.Sprintf(":%d", port))
}

// NewWithAddr creates a configured ledger server for the provided address.
func NewWithAddr(addr string) (*Server, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	env := loadServerEnv()
	store, closer, err := openRegistryStore(env.DBPath)
	if err != nil {
		return nil, err
	}

	clk := clock.NewManual(env.ClockStart)
	gov := governance.New(env.MaxLeases, env.CreationFee)
	fees, err := treasury.New(store, clk)
	if err != nil {
		closeStore(closer)
		return nil, err
	}
	eng, err := engine.New(store, gov, clk, fees)
	if err != nil {
		closeStore(closer)
		return nil, err
	}

	api, err := httpapi.NewServer(httpapi.Options{
		Addr:               addr,
		ReadTimeout:        15 * time.Second,
		WriteTimeout:       15 * time.Second,
		IdleTimeout:        60 * time.Second,
		RateLimitPerSecond: env.RateLimitPerSecond,
		RateLimitBurst:     env.RateLimitBurst,
	}, eng, clk, metrics.New(), logger)
	if err != nil {
		closeStore(closer)
		return nil, err
	}

	return &Server{api: api, store: store, closer: closer, logger: logger}, nil
}

// Run creates and serves a ledger server until context cancellation.
func Run(ctx context.Context, port int) error {
	server, err := New(port)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the HTTP server until context cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.api.Start()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.api.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return <-serveErr
	case err := <-serveErr:
		return err
	}
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	closeStore(s.closer)
	if s.logger != nil {
		_ = s.logger.Sync()
	}
}

// openRegistryStore selects SQLite when a path is configured, the in-memory
// store otherwise.
func openRegistryStore(path string) (registryStore, func() error, error) {
	if strings.TrimSpace(path) == "" {
		return memory.New(), nil, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := sqlite.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open registry sqlite store: %w", err)
	}
	return store, store.Close, nil
}

func closeStore(closer func() error) {
	if closer == nil {
		return
	}
	if err := closer(); err != nil {
		log.Printf("close registry store: %v", err)
	}
}
