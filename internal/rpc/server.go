package rpc

import (
	"context"
	"errors"
	"log"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/BrandonDHaskell/permwatch/internal/permwatch/service"
	"github.com/BrandonDHaskell/permwatch/internal/wire"
)

type Dependencies struct {
	Logger     *log.Logger
	Addr       string
	LogService *service.LogService
}

type Server struct {
	grpcServer *grpc.Server
	logger     *log.Logger
	addr       string
	logService *service.LogService
}

func NewServer(d Dependencies) *Server {
	s := &Server{
		logger:     d.Logger,
		addr:       d.Addr,
		logService: d.LogService,
	}
	s.grpcServer = grpc.NewServer(grpc.UnaryInterceptor(loggingInterceptor(d.Logger)))
	RegisterUsageLogServer(s.grpcServer, s)
	return s
}

// Start listens on the configured address and blocks until the server stops.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(lis)
}

func (s *Server) Serve(lis net.Listener) error {
	err := s.grpcServer.Serve(lis)
	if errors.Is(err, grpc.ErrServerStopped) {
		return nil
	}
	return err
}

// Shutdown drains in-flight calls, falling back to a hard stop when ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.grpcServer.Stop()
		return ctx.Err()
	}
}

func (s *Server) Submit(ctx context.Context, in *structpb.Struct) (*emptypb.Empty, error) {
	if err := s.logService.Submit(ctx, wire.UsageEventFromProto(in)); err != nil {
		return nil, s.toStatus("submit", err)
	}
	return &emptypb.Empty{}, nil
}

func (s *Server) Fetch(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	recs, err := s.logService.Fetch(ctx)
	if err != nil {
		return nil, s.toStatus("fetch", err)
	}
	return wire.UsageRecordsToProto(recs), nil
}

func (s *Server) Clear(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	if err := s.logService.Clear(ctx); err != nil {
		return nil, s.toStatus("clear", err)
	}
	return &emptypb.Empty{}, nil
}

func (s *Server) GetSettings(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	settings, err := s.logService.GetSettings(ctx)
	if err != nil {
		return nil, s.toStatus("get settings", err)
	}
	return wire.SettingsToProto(settings), nil
}

func (s *Server) UpdateSettings(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	settings := wire.SettingsFromProto(in)
	if err := s.logService.UpdateSettings(ctx, settings); err != nil {
		return nil, s.toStatus("update settings", err)
	}
	return wire.SettingsToProto(settings), nil
}

func (s *Server) toStatus(op string, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidKind), errors.Is(err, service.ErrInvalidAction):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		s.logger.Printf("rpc %s error: %v", op, err)
		return status.Error(codes.Internal, "unexpected server error")
	}
}

func loggingInterceptor(logger *log.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now().UTC()
		resp, err := handler(ctx, req)
		logger.Printf("rpc %s code=%s dur=%s", info.FullMethod, status.Code(err), time.Since(start))
		return resp, err
	}
}

var _ UsageLogServer = (*Server)(nil)
