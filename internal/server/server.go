// Package server provides the gRPC API for the umekomi sidecar.
package server

import (
	"context"
	"fmt"
	"net"

	"github.com/hyperjump/umekomi/internal/config"
	"github.com/hyperjump/umekomi/internal/server/pb"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// Server hosts the sidecar.LLMService on a TCP listener.
type Server struct {
	service *Service
	config  *config.ServerConfig
	logger  *zap.Logger
	grpc    *grpc.Server
}

// NewServer creates a server for the given service facade.
func NewServer(service *Service, cfg *config.ServerConfig, logger *zap.Logger) *Server {
	return &Server{
		service: service,
		config:  cfg,
		logger:  logger,
	}
}

// Start binds the listener and serves until Stop is called. It blocks.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", addr, err)
	}

	s.grpc = grpc.NewServer()
	pb.RegisterLLMServiceServer(s.grpc, s.service)

	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.grpc.Serve(lis)
}

// Stop drains in-flight RPCs and shuts the server down. If ctx expires
// before the drain completes, remaining RPCs are aborted.
func (s *Server) Stop(ctx context.Context) error {
	if s.grpc == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.grpc.Stop()
		return ctx.Err()
	}
}
