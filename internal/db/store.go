package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	"knowledge-rag/internal/models"
)

const (
	ChunkTable     = "context_store"
	textSearchLang = "english"

	// textIndexRecheck is how long a missing full-text index is trusted
	// before pg_indexes is asked again.
	textIndexRecheck = time.Minute
)

// anyTermQuery turns the question into a tsquery matching any of its
// lexemes rather than all of them.
const anyTermQuery = "replace(plainto_tsquery(?, ?)::text, ' & ', ' | ')::tsquery"

// textIndexPattern matches the pg_indexes definition of an index that can
// serve to_tsvector('english', content).
var textIndexPattern = "%to_tsvector('" + textSearchLang + "'::regconfig, content)%"

type ChunkRecord struct {
	bun.BaseModel `bun:"table:context_store,alias:c"`
	ID            int64  `bun:"id,pk,autoincrement"`
	Title         string `bun:"title,notnull"`
	Content       string `bun:"content,notnull"`
	SourceFile    string `bun:"source_file,notnull"`
}

func toRecord(c models.Chunk) ChunkRecord {
	return ChunkRecord{Title: c.Title, Content: c.Content, SourceFile: c.SourceFile}
}

func (r ChunkRecord) Chunk() models.Chunk {
	return models.Chunk{Title: r.Title, Content: r.Content, SourceFile: r.SourceFile}
}

// Store is the chunk collection in Postgres. Full-text search is only used
// when the text index was found by DetectTextIndex. A missing index is
// checked again every textIndexRecheck, so an index created while the
// service runs is picked up.
type Store struct {
	db *bun.DB

	mu        sync.Mutex
	fullText  bool
	checkedAt time.Time
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db, fullText: true}
}

func (s *Store) FullTextEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fullText
}

// DetectTextIndex queries pg_indexes for an english to_tsvector index on the
// content column and switches full-text search off when there is none.
func (s *Store) DetectTextIndex(ctx context.Context) (bool, error) {
	ok, err := s.HasTextIndex(ctx)
	if err != nil {
		s.mu.Lock()
		s.checkedAt = time.Now()
		s.mu.Unlock()
		return false, err
	}

	s.mu.Lock()
	was := s.fullText
	s.fullText = ok
	s.checkedAt = time.Now()
	s.mu.Unlock()

	switch {
	case !ok:
		log.Warn().Str("table", ChunkTable).Msg("No full-text index found, every question will use substring search")
	case !was:
		log.Info().Str("table", ChunkTable).Msg("Full-text index found, full-text search enabled")
	}
	return ok, nil
}

// needsIndexRecheck reports whether a disabled full-text search is due for
// another index check at now.
func (s *Store) needsIndexRecheck(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.fullText && now.Sub(s.checkedAt) >= textIndexRecheck
}

func (s *Store) textSearchReady(ctx context.Context) bool {
	if s.needsIndexRecheck(time.Now()) {
		if _, err := s.DetectTextIndex(ctx); err != nil {
			log.Warn().Err(err).Msg("Could not check for the full-text index")
		}
	}
	return s.FullTextEnabled()
}

func (s *Store) HasTextIndex(ctx context.Context) (bool, error) {
	return s.textIndexQuery().Exists(ctx)
}

func (s *Store) textIndexQuery() *bun.SelectQuery {
	return s.db.NewSelect().
		Table("pg_indexes").
		ColumnExpr("1").
		Where("tablename = ?", ChunkTable).
		Where("indexdef ILIKE ?", textIndexPattern)
}

// Insert writes one chunk.
func (s *Store) Insert(ctx context.Context, chunk models.Chunk) error {
	rec := toRecord(chunk)
	if _, err := s.db.NewInsert().Model(&rec).Exec(ctx); err != nil {
		return fmt.Errorf("insert %s: %w", chunk.Title, err)
	}
	return nil
}

// InsertAll writes every chunk in one transaction.
func (s *Store) InsertAll(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	recs := make([]ChunkRecord, len(chunks))
	for i, c := range chunks {
		recs[i] = toRecord(c)
	}
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(&recs).Exec(ctx)
		return err
	})
}

// TextSearch returns up to limit chunks matching any term of query in the
// store's full-text relevance order. A question made only of stop words
// matches nothing.
func (s *Store) TextSearch(ctx context.Context, query string, limit int) ([]models.Chunk, error) {
	if !s.textSearchReady(ctx) {
		return nil, nil
	}
	var recs []ChunkRecord
	if err := s.textSearchQuery(&recs, query, limit).Scan(ctx); err != nil {
		return nil, fmt.Errorf("full-text search: %w", err)
	}
	return toChunks(recs), nil
}

func (s *Store) textSearchQuery(dest *[]ChunkRecord, query string, limit int) *bun.SelectQuery {
	return s.db.NewSelect().
		Model(dest).
		Where("numnode(plainto_tsquery(?, ?)) > 0", textSearchLang, query).
		Where("to_tsvector(?, c.content) @@ "+anyTermQuery, textSearchLang, textSearchLang, query).
		OrderExpr("ts_rank(to_tsvector(?, c.content), "+anyTermQuery+") DESC", textSearchLang, textSearchLang, query).
		Limit(limit)
}

// SubstringSearch returns up to limit chunks whose content contains query,
// ignoring case. The query is matched literally.
func (s *Store) SubstringSearch(ctx context.Context, query string, limit int) ([]models.Chunk, error) {
	var recs []ChunkRecord
	if err := s.substringQuery(&recs, query, limit).Scan(ctx); err != nil {
		return nil, fmt.Errorf("substring search: %w", err)
	}
	return toChunks(recs), nil
}

func (s *Store) substringQuery(dest *[]ChunkRecord, query string, limit int) *bun.SelectQuery {
	return s.db.NewSelect().
		Model(dest).
		Where("strpos(lower(c.content), lower(?)) > 0", query).
		Order("c.id").
		Limit(limit)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func toChunks(recs []ChunkRecord) []models.Chunk {
	chunks := make([]models.Chunk, 0, len(recs))
	for _, r := range recs {
		chunks = append(chunks, r.Chunk())
	}
	return chunks
}
