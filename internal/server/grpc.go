package server

import (
	handler_grpc "escrow-core/internal/handler/grpc"
	"escrow-core/internal/service/escrow"

	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
)

// NewGRPCServer 初始化并注册 gRPC 服务
func NewGRPCServer(escrowSvc *escrow.Service) *grpc.Server {
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(handler_grpc.LoggingInterceptor()))

	handler_grpc.RegisterEscrowServer(s, handler_grpc.NewEscrowHandler(escrowSvc))

	// Enable reflection for debugging (grpcurl)
	reflection.Register(s)

	return s
}
