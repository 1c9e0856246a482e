package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"escrow-core/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

type Config struct {
	HttpPort        string
	GrpcPort        string
	ShutdownTimeout time.Duration
}

// App 同一进程内运行 HTTP 与 gRPC 两个入口
type App struct {
	httpServer      *http.Server
	httpListener    net.Listener
	grpcServer      *grpc.Server
	grpcListener    net.Listener
	shutdownTimeout time.Duration
}

func New(cfg Config, httpHandler *gin.Engine, grpcServer *grpc.Server) (*App, error) {
	httpLis, err := net.Listen("tcp", ":"+cfg.HttpPort)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on http port %s: %w", cfg.HttpPort, err)
	}

	grpcLis, err := net.Listen("tcp", ":"+cfg.GrpcPort)
	if err != nil {
		httpLis.Close()
		return nil, fmt.Errorf("failed to listen on grpc port %s: %w", cfg.GrpcPort, err)
	}

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &App{
		httpServer:      &http.Server{Handler: httpHandler, ReadHeaderTimeout: 10 * time.Second},
		httpListener:    httpLis,
		grpcServer:      grpcServer,
		grpcListener:    grpcLis,
		shutdownTimeout: timeout,
	}, nil
}

// HTTPAddr 实际监听的 HTTP 地址 (端口配置为 0 时由系统分配)
func (a *App) HTTPAddr() string {
	return a.httpListener.Addr().String()
}

// GRPCAddr 实际监听的 gRPC 地址
func (a *App) GRPCAddr() string {
	return a.grpcListener.Addr().String()
}

// Run 启动服务并阻塞, 直到收到关闭信号或 ctx 结束
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)

	// 1. Start HTTP
	go func() {
		logger.Info("Starting HTTP Server", zap.String("addr", a.HTTPAddr()))
		if err := a.httpServer.Serve(a.httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	// 2. Start gRPC
	go func() {
		logger.Info("Starting gRPC Server", zap.String("addr", a.GRPCAddr()))
		if err := a.grpcServer.Serve(a.grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	// 3. Wait
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down server...")
	case runErr = <-errCh:
		logger.Error("Server failure, shutting down", zap.Error(runErr))
	}

	// 4. Graceful Shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP Server forced to shutdown", zap.Error(err))
	}

	a.grpcServer.GracefulStop()
	logger.Info("Server exited properly")
	return runErr
}
