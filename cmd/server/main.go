package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"knowledge-rag/internal/api"
	"knowledge-rag/internal/config"
	"knowledge-rag/internal/db"
	"knowledge-rag/internal/llmservice"
	"knowledge-rag/internal/logger"
	"knowledge-rag/internal/rag"
)

const serviceName = "knowledge-rag"

func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Serve the knowledge base question answering API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Setup(cfg.App.LogLevel)

			if err := cfg.ValidateServer(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")

	if err := cmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	bunDB, err := db.Open(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer bunDB.Close()

	store := db.NewStore(bunDB)
	if _, err := store.DetectTextIndex(ctx); err != nil {
		log.Warn().Err(err).Msg("Could not check for the full-text index")
	}

	llm, err := llmservice.NewClient(&cfg.LLM)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	handler := api.NewHandler(rag.NewRAG(store, llm), store, serviceName, cfg.App.Version)
	router := api.NewRouter(handler, api.RouterOptions{CORSAllowOrigins: cfg.Server.CORSAllowOrigins})

	srv := &http.Server{
		Addr:    net.JoinHostPort("0.0.0.0", cfg.Server.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Query service listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
