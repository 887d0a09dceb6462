package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lendborrow/lendborrow-api/internal/client/blockchain"
	"github.com/lendborrow/lendborrow-api/internal/config"
	"github.com/lendborrow/lendborrow-api/internal/logger"
	"github.com/lendborrow/lendborrow-api/internal/middleware"
	"github.com/lendborrow/lendborrow-api/internal/server"
	"github.com/lendborrow/lendborrow-api/internal/services"
	"go.uber.org/zap"
)

func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.InitLoggerWithConfig(logger.LoggerConfig{
		Level:       cfg.LogLevel,
		Stage:       cfg.Stage,
		EnableJSON:  !cfg.IsDevelopment(),
		EnableColor: cfg.IsDevelopment(),
	})
	defer logger.Sync()

	dialCtx, cancelDial := context.WithTimeout(context.Background(), 10*time.Second)
	chain, err := blockchain.Dial(dialCtx, cfg.RPCURL, logger.ForComponent(logger.ComponentChain))
	cancelDial()
	if err != nil {
		logger.Fatal("Unable to connect to chain", zap.String("rpc_url", cfg.RPCURL), zap.Error(err))
	}
	defer chain.Close()

	registry := blockchain.NewRegistry(cfg.ArtifactsDir, logger.ForComponent(logger.ComponentChain))
	classifier := services.NewContractWalletClassifier(chain, registry, cfg.ContractName, logger.ForComponent(logger.ComponentGate))
	sessions := services.NewSessionService(classifier, cfg.ClassifyTimeout, logger.ForComponent(logger.ComponentSession))

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer limiter.Stop()

	router := server.NewRouter(cfg, sessions, limiter)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second, // Prevent Slowloris attacks
	}

	go func() {
		logger.Info("Server starting",
			zap.String("port", cfg.Port),
			zap.String("stage", cfg.Stage),
			zap.String("contract", cfg.ContractName),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	sessions.Close()

	logger.Info("Server exiting")
}
