package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"testimonials/internal/app"
	"testimonials/internal/grpcserver"
	"testimonials/pkg/logging"
	"testimonials/pkg/utils"
)

func main() {
	configPath := flag.String("config", "", "config file (default ./testimonials.yaml)")
	flag.Parse()

	cfg, err := utils.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	a, err := app.New(context.Background(), cfg, logger, nil)
	if err != nil {
		logger.Fatal("open app", zap.Error(err))
	}
	defer a.Close()

	listener, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		logger.Fatal("grpc listen failed", zap.Error(err))
	}

	grpcServer := grpc.NewServer()
	grpcserver.RegisterReviewServiceServer(grpcServer, grpcserver.NewServer(a.Service))

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("stopping grpc server")
		grpcServer.GracefulStop()
	}()

	logger.Info("grpc server listening", zap.String("addr", cfg.GRPC.Addr))
	if err := grpcServer.Serve(listener); err != nil {
		logger.Error("grpc server stopped", zap.Error(err))
	}
}
