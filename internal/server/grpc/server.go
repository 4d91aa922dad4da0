// Package grpc exposes the postbox services over gRPC: the Postbox service
// (CBOR codec) plus the standard health service.
package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/dmitrijs2005/postbox/internal/api"
	"github.com/dmitrijs2005/postbox/internal/logging"
	"github.com/dmitrijs2005/postbox/internal/server/auth"
	"github.com/dmitrijs2005/postbox/internal/server/models"
	"github.com/dmitrijs2005/postbox/internal/server/services"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// UserService is the part of services.UserService the transport needs.
type UserService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refresh *auth.Claims) (string, error)
	Logout(ctx context.Context, access *auth.Claims, refreshToken string) error
	Authenticate(ctx context.Context, token string, kind auth.TokenKind) (*auth.Claims, error)
}

// MessageService is the part of services.MessageService the transport needs.
type MessageService interface {
	Send(ctx context.Context, sender, receiverName, subject, content string) (*models.Message, error)
	Fetch(ctx context.Context, id int64, username string) (*models.Message, bool, error)
	List(ctx context.Context, username string) (*models.Mailbox, error)
	ListUnread(ctx context.Context, username string) ([]models.MessageSummary, error)
	Delete(ctx context.Context, id int64, username string) (bool, error)
}

type GRPCServer struct {
	api.UnimplementedPostboxServer
	address  string
	users    UserService
	messages MessageService
	logger   logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, us UserService, ms MessageService) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		users:    us,
		messages: ms,
	}
}

// newServer builds the grpc.Server with tracing, request logging and the
// auth interceptor, and registers the Postbox and health services.
func (s *GRPCServer) newServer() (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.authInterceptor),
	)

	api.RegisterPostboxServer(srv, s)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)

	return srv, hs
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled, then stops
// gracefully. lis is closed on return.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv, hs := s.newServer()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info(ctx, "Stopping gRPC server...")
		hs.Shutdown()
		srv.GracefulStop()
		err := <-serveErr
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}
}
