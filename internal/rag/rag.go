package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"knowledge-rag/internal/llmservice"
	"knowledge-rag/internal/models"
)

// Retriever is the keyword search surface of the chunk store.
type Retriever interface {
	TextSearch(ctx context.Context, query string, limit int) ([]models.Chunk, error)
	SubstringSearch(ctx context.Context, query string, limit int) ([]models.Chunk, error)
}

type Generator interface {
	Generate(ctx context.Context, prompt string) llmservice.Result
}

type RAG struct {
	store Retriever
	llm   Generator
}

func NewRAG(store Retriever, llm Generator) *RAG {
	return &RAG{store: store, llm: llm}
}

// Query answers question from stored chunks. Store failures are returned;
// inference failures become the answer text.
func (r *RAG) Query(ctx context.Context, question string) (*models.PromptResponse, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return &models.PromptResponse{Answer: models.InvalidQuestionAnswer}, nil
	}

	chunks, err := r.retrieve(ctx, question)
	if err != nil {
		return nil, err
	}

	context := BuildContext(chunks)
	prompt := BuildPrompt(context, question)

	res := r.llm.Generate(ctx, prompt)
	answer := res.Text
	if !res.OK() {
		log.Warn().Err(res.Err).Msg("Inference call failed")
		answer = fmt.Sprintf(models.InferenceErrorFormat, res.Err.Error())
	}

	return &models.PromptResponse{
		Question: question,
		Context:  context,
		Answer:   answer,
	}, nil
}

// retrieve runs full-text search and falls back to substring search only
// when it finds nothing.
func (r *RAG) retrieve(ctx context.Context, question string) ([]models.Chunk, error) {
	chunks, err := r.store.TextSearch(ctx, question, models.MaxContextChunks)
	if err != nil {
		return nil, err
	}
	if len(chunks) > 0 {
		log.Debug().Int("chunks", len(chunks)).Msg("Full-text search matched")
		return capChunks(chunks), nil
	}

	chunks, err = r.store.SubstringSearch(ctx, question, models.MaxContextChunks)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("chunks", len(chunks)).Msg("Substring search matched")
	return capChunks(chunks), nil
}

func capChunks(chunks []models.Chunk) []models.Chunk {
	if len(chunks) > models.MaxContextChunks {
		return chunks[:models.MaxContextChunks]
	}
	return chunks
}

// BuildContext joins chunk contents with single spaces, substituting the
// placeholder when nothing usable was retrieved.
func BuildContext(chunks []models.Chunk) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Content
	}
	context := strings.Join(parts, " ")
	if strings.TrimSpace(context) == "" {
		return models.NoContextPlaceholder
	}
	return context
}

func BuildPrompt(context, question string) string {
	return fmt.Sprintf(models.AnswerPromptTemplate, context, question)
}
