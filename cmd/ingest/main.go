package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"knowledge-rag/internal/config"
	"knowledge-rag/internal/db"
	"knowledge-rag/internal/ingest"
	"knowledge-rag/internal/logger"
)

func main() {
	var (
		configPath string
		filePath   string
		chunkSize  int
		dryRun     bool
		atomic     bool
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Chunk a document and store it in the knowledge base",
		Long:  "Reads one source document, splits it into fixed-size word chunks and inserts each chunk into the context_store table.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Setup(cfg.App.LogLevel)

			if cmd.Flags().Changed("chunk-size") {
				cfg.RAG.ChunkSize = chunkSize
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, filePath, ingest.Options{
				ChunkSize: cfg.RAG.ChunkSize,
				DryRun:    dryRun,
				Atomic:    atomic,
			})
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Path to the source document")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", config.DefaultChunkSize, "Words per chunk")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print chunks without writing to the database")
	cmd.Flags().BoolVar(&atomic, "atomic", false, "Insert all chunks in a single transaction")
	_ = cmd.MarkFlagRequired("file")

	if err := cmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("Ingestion failed")
	}
}

func run(ctx context.Context, cfg *config.Config, filePath string, opts ingest.Options) error {
	if opts.DryRun {
		n, err := ingest.NewIngestor(nil, opts).Run(ctx, filePath)
		if err != nil {
			return err
		}
		log.Info().Int("chunks", n).Msg("Dry run complete")
		return nil
	}

	if err := cfg.ValidateIngest(); err != nil {
		return err
	}

	bunDB, err := db.Open(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer bunDB.Close()

	if err := db.InitDB(ctx, bunDB); err != nil {
		return err
	}

	n, err := ingest.NewIngestor(db.NewStore(bunDB), opts).Run(ctx, filePath)
	if err != nil {
		if n > 0 {
			log.Error().Int("inserted", n).Str("file", filePath).Msg("Ingestion stopped after a partial write")
		}
		return err
	}
	log.Info().Int("chunks", n).Str("file", filePath).Msg("Ingestion complete")
	return nil
}
