// Package app wires the shipping runtime and HTTP lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/louisbranch/fulfillment/internal/events"
	"github.com/louisbranch/fulfillment/internal/events/rabbit"
	"github.com/louisbranch/fulfillment/internal/platform/config"
	"github.com/louisbranch/fulfillment/internal/platform/resilience"
	"github.com/louisbranch/fulfillment/internal/platform/timeouts"
	"github.com/louisbranch/fulfillment/internal/services/shipping/api/httpapi"
	"github.com/louisbranch/fulfillment/internal/services/shipping/service"
	shippingsqlite "github.com/louisbranch/fulfillment/internal/services/shipping/storage/sqlite"
	amqp "github.com/rabbitmq/amqp091-go"
)

type serverEnv struct {
	DBPath    string            `env:"FULFILLMENT_SHIPPING_DB_PATH"`
	BrokerURL string            `env:"FULFILLMENT_BROKER_URL"`
	Policies  resilience.Config `envPrefix:"FULFILLMENT_SHIPPING_"`
}

func loadServerEnv() (serverEnv, error) {
	var cfg serverEnv
	if err := config.ParseEnv(&cfg); err != nil {
		return serverEnv{}, err
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "shipments.db")
	}
	return cfg, nil
}

// Server hosts the shipping HTTP API and storage lifecycle.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	store      *shippingsqlite.Store
	brokerConn *amqp.Connection
}

// New creates a configured shipping server listening on the provided port.
func New(port int) (*Server, error) {
	return NewWithAddr(fmt.Sprintf(":%d", port))
}

// NewWithAddr creates a configured shipping server for the provided address.
func NewWithAddr(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	srvEnv, err := loadServerEnv()
	if err != nil {
		_ = listener.Close()
		return nil, err
	}
	store, err := openShipmentStore(srvEnv.DBPath)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	var publisher events.Publisher = events.Nop{}
	var brokerConn *amqp.Connection
	if strings.TrimSpace(srvEnv.BrokerURL) != "" {
		conn, rabbitPublisher, err := rabbit.Connect(srvEnv.BrokerURL)
		if err != nil {
			_ = listener.Close()
			_ = store.Close()
			return nil, fmt.Errorf("connect event broker: %w", err)
		}
		brokerConn = conn
		publisher = rabbitPublisher
	}

	svc := service.New(store, publisher, resilience.NewGroup("shipping", srvEnv.Policies))
	mux := http.NewServeMux()
	httpapi.New(svc).Register(mux)

	return &Server{
		listener: listener,
		httpServer: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		store:      store,
		brokerConn: brokerConn,
	}, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a shipping server until context cancellation.
func Run(ctx context.Context, port int) error {
	server, err := New(port)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// RunWithAddr creates and serves a shipping server on addr until context
// cancellation.
func RunWithAddr(ctx context.Context, addr string) error {
	server, err := NewWithAddr(addr)
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

	log.Printf("shipping server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown shipping server: %w", err)
		}
		err := <-serveErr
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve shipping API: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve shipping API: %w", err)
	}
}

// Close releases shipping server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.brokerConn != nil {
		_ = s.brokerConn.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close shipping store: %v", err)
		}
	}
}

func openShipmentStore(path string) (*shippingsqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := shippingsqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open shipping sqlite store: %w", err)
	}
	return store, nil
}
