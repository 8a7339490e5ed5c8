package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"sync"

	"github.com/hdwhdw/pathmap/pkg/gnoi/server/services/file"
	"github.com/hdwhdw/pathmap/pkg/pathutil"
	gnoi_file "github.com/openconfig/gnoi/file"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/reflection"
	"k8s.io/klog/v2"
)

// DefaultAddress is used when Config.Address is empty
const DefaultAddress = "localhost:8080"

// Server represents the gNOI server
type Server struct {
	address    string
	grpcServer *grpc.Server
	listener   net.Listener
	fileServer *file.Service
	rule       pathutil.Rule
	mu         sync.RWMutex
}

// Config holds server configuration
type Config struct {
	Address string
	// Rule maps request paths onto the local file system.
	// FSSeparator is always replaced by the OS separator.
	Rule pathutil.Rule
}

// NewServer creates a new gNOI server
func NewServer(cfg Config) (*Server, error) {
	// Default address
	if cfg.Address == "" {
		cfg.Address = DefaultAddress
	}

	rule := cfg.Rule
	rule.FSSeparator = string(filepath.Separator)

	translator, err := pathutil.NewTranslator(rule)
	if err != nil {
		return nil, fmt.Errorf("failed to create path translator: %w", err)
	}

	return &Server{
		address:    cfg.Address,
		fileServer: file.NewService(translator),
		rule:       translator.Rule(),
	}, nil
}

// Start starts the gRPC server
func (s *Server) Start(ctx context.Context) error {
	klog.InfoS("Starting gNOI server",
		"address", s.address,
		"logicalBase", s.rule.LogicalBase,
		"fsBase", s.rule.FSBase)

	// Create listener
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}

	// Create gRPC server with insecure credentials
	grpcServer := grpc.NewServer(
		grpc.Creds(insecure.NewCredentials()),
	)

	// Register services
	gnoi_file.RegisterFileServer(grpcServer, s.fileServer)

	// Enable reflection for debugging with grpcurl
	reflection.Register(grpcServer)

	s.mu.Lock()
	s.listener = listener
	s.grpcServer = grpcServer
	s.mu.Unlock()

	// Start serving in goroutine
	errCh := make(chan error, 1)
	go func() {
		klog.InfoS("gNOI server listening", "address", listener.Addr().String())
		if err := grpcServer.Serve(listener); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for context cancellation or server error
	select {
	case <-ctx.Done():
		klog.InfoS("Shutting down gNOI server")
		s.Stop()
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("gRPC server error: %w", err)
		}
		return nil
	}
}

// Stop gracefully stops the server
func (s *Server) Stop() error {
	s.mu.RLock()
	grpcServer, listener := s.grpcServer, s.listener
	s.mu.RUnlock()

	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	if listener != nil {
		if err := listener.Close(); err != nil && !isClosedErr(err) {
			return err
		}
	}
	return nil
}

// GetAddress returns the server's listening address
func (s *Server) GetAddress() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.address
}

// GetFileService returns the file service (for testing)
func (s *Server) GetFileService() *file.Service {
	return s.fileServer
}

// GetRule returns the mapping rule the server resolves paths with
func (s *Server) GetRule() pathutil.Rule {
	return s.rule
}

// isClosedErr reports a listener already closed by GracefulStop
func isClosedErr(err error) bool {
	return errors.Is(err, net.ErrClosed)
}
