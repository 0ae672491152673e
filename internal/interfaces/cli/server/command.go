package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"paybridge/internal/domain/order"
	"paybridge/internal/infrastructure/config"
	"paybridge/internal/infrastructure/database"
	"paybridge/internal/infrastructure/gateway/ecpay"
	"paybridge/internal/infrastructure/invoice/ezpay"
	"paybridge/internal/infrastructure/repository"
	httpRouter "paybridge/internal/interfaces/http"
	"paybridge/internal/shared/biztime"
	"paybridge/internal/shared/goroutine"
	"paybridge/internal/shared/logger"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the payment gateway HTTP server",
		Long:  `Start the HTTP server hosting the checkout page, the gateway callback listener and the merchant API.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Server.Mode = mapEnvToGinMode(env)

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := biztime.Init(""); err != nil {
		return fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	log := logger.NewLogger()
	logger.Info("starting server", "environment", env)

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard

	// Commit subscribers fire on every terminal order commit. The archive
	// write runs off the callback path so a slow disk cannot delay the
	// gateway acknowledgement.
	var subscribers []order.CommitSubscriber
	if cfg.Database.Enabled {
		if err := database.Init(&cfg.Database); err != nil {
			logger.Fatal("failed to initialize archive database", "error", err)
		}
		defer database.Close()

		archiveRepo := repository.NewOrderArchiveRepository(database.Get())
		subscribers = append(subscribers, func(o *order.Order) {
			goroutine.SafeGo(log, "archive-committed-order", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := archiveRepo.Save(ctx, o); err != nil {
					log.Errorw("failed to archive committed order", "order_id", o.ID(), "error", err)
				}
			})
		})
	}

	paymentGateway := ecpay.New(cfg.ECPay, log, subscribers...)
	defer paymentGateway.Close()

	invoiceGateway := ezpay.New(cfg.EZPay, log)
	defer invoiceGateway.Close()

	router := httpRouter.NewRouter(httpRouter.RouterDeps{
		PaymentGateway: paymentGateway,
		InvoiceGateway: invoiceGateway,
		Logger:         log,
		Mode:           cfg.Server.Mode,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "address", srv.Addr, "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited")

	return nil
}

func mapEnvToGinMode(env string) string {
	switch env {
	case "production":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
