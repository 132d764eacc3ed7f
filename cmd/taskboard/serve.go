package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	grpcapi "github.com/clintrovert/taskboard/internal/api/grpc"
	"github.com/clintrovert/taskboard/internal/api/rest"
	"github.com/clintrovert/taskboard/internal/app"
)

const (
	healthInterval  = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API and the gRPC health service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(v)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			st, err := app.OpenStore(ctx, cfg.Store, logger)
			if err != nil {
				return err
			}
			a, err := app.New(ctx, st, logger)
			if err != nil {
				st.Close()
				return err
			}
			defer a.Close()

			restListener, grpcListener, err := listen(cfg.RESTAddr(), cfg.GRPCAddr())
			if err != nil {
				return err
			}

			// Setup REST API
			restServer := &http.Server{
				Handler:           rest.NewRouter(rest.NewHandler(a, logger.Named("rest"))),
				ReadHeaderTimeout: 5 * time.Second,
			}
			go func() {
				logger.Info("starting REST API server", zap.String("address", restListener.Addr().String()))
				if err := restServer.Serve(restListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("REST server failed", zap.Error(err))
					stop()
				}
			}()

			// Start gRPC server
			healthServer := grpcapi.NewServer(st, logger.Named("grpc"))
			grpcSrv := grpc.NewServer()
			healthServer.Register(grpcSrv)
			go healthServer.Watch(ctx, healthInterval)
			go func() {
				logger.Info("starting gRPC server", zap.String("address", grpcListener.Addr().String()))
				if err := grpcSrv.Serve(grpcListener); err != nil {
					logger.Error("gRPC server failed", zap.Error(err))
					stop()
				}
			}()

			<-ctx.Done()
			logger.Info("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := restServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("REST shutdown incomplete", zap.Error(err))
			}
			grpcSrv.GracefulStop()

			logger.Info("shutdown complete")
			return nil
		},
	}
}

// listen binds both server addresses before either server starts, so a
// failure leaves nothing running.
func listen(restAddr, grpcAddr string) (net.Listener, net.Listener, error) {
	restListener, err := net.Listen("tcp", restAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to listen for REST on %s: %w", restAddr, err)
	}
	grpcListener, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		restListener.Close()
		return nil, nil, fmt.Errorf("failed to listen for gRPC on %s: %w", grpcAddr, err)
	}
	return restListener, grpcListener, nil
}
