package ingest

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"knowledge-rag/internal/chunker"
	"knowledge-rag/internal/helper"
	"knowledge-rag/internal/models"
	"knowledge-rag/internal/parser"
)

// ChunkWriter persists chunks in the order given.
type ChunkWriter interface {
	Insert(ctx context.Context, chunk models.Chunk) error
	InsertAll(ctx context.Context, chunks []models.Chunk) error
}

type Options struct {
	ChunkSize int
	DryRun    bool
	// Atomic writes every chunk in a single transaction instead of one
	// insert per chunk.
	Atomic bool
}

type Ingestor struct {
	store ChunkWriter
	opts  Options
	parse func(string) ([]string, error)
}

func NewIngestor(store ChunkWriter, opts Options) *Ingestor {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = chunker.DefaultChunkSize
	}
	return &Ingestor{store: store, opts: opts, parse: parser.ParseParagraphs}
}

// Run chunks the document at path and stores the chunks, returning how many
// were written. Nothing is written when the document cannot be read.
func (in *Ingestor) Run(ctx context.Context, path string) (int, error) {
	paragraphs, err := in.parse(path)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}

	flat := chunker.FlattenParagraphs(paragraphs)
	log.Info().Int("characters", len(flat)).Int("words", len(chunker.SplitWords(flat))).Msg("Read document")

	chunks := chunker.Build(paragraphs, in.opts.ChunkSize, filepath.Base(path))

	if in.opts.DryRun {
		helper.PrettyPrint(chunks)
		return len(chunks), nil
	}

	if in.opts.Atomic {
		if err := in.store.InsertAll(ctx, chunks); err != nil {
			return 0, fmt.Errorf("insert chunks: %w", err)
		}
		log.Info().Int("chunks", len(chunks)).Msg("Inserted chunks")
		return len(chunks), nil
	}

	for i, c := range chunks {
		if err := in.store.Insert(ctx, c); err != nil {
			return i, fmt.Errorf("inserted %d of %d chunks: %w", i, len(chunks), err)
		}
	}
	log.Info().Int("chunks", len(chunks)).Msg("Inserted chunks")
	return len(chunks), nil
}
