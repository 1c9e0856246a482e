package grpc

import (
	"context"
	"time"

	"escrow-core/pkg/logger"

	"go.uber.org/zap"
	ggrpc "google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// LoggingInterceptor 记录每个 unary 调用的方法、耗时和状态码
func LoggingInterceptor() ggrpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *ggrpc.UnaryServerInfo, handler ggrpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info("[gRPC]",
			zap.String("method", info.FullMethod),
			zap.Duration("latency", time.Since(start)),
			zap.String("code", status.Code(err).String()),
		)
		return resp, err
	}
}
