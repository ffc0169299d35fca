package chunker

import (
	"strconv"
	"strings"

	"knowledge-rag/internal/models"
)

const DefaultChunkSize = 400

// FlattenParagraphs joins the non-blank paragraphs, each trimmed and followed
// by a single space.
func FlattenParagraphs(paragraphs []string) string {
	var text strings.Builder
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		text.WriteString(p)
		text.WriteString(" ")
	}
	return text.String()
}

// SplitWords splits text on runs of whitespace.
func SplitWords(text string) []string {
	return strings.Fields(text)
}

// ChunkWords groups words into consecutive runs of size words. The last run
// holds the remainder. A non-positive size uses DefaultChunkSize.
func ChunkWords(words []string, size int) [][]string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if len(words) == 0 {
		return nil
	}

	groups := make([][]string, 0, (len(words)+size-1)/size)
	for start := 0; start < len(words); start += size {
		end := min(start+size, len(words))
		groups = append(groups, words[start:end])
	}
	return groups
}

// Build turns a document's paragraphs into titled chunks ready for storage.
func Build(paragraphs []string, size int, sourceFile string) []models.Chunk {
	groups := ChunkWords(SplitWords(FlattenParagraphs(paragraphs)), size)

	chunks := make([]models.Chunk, 0, len(groups))
	for i, group := range groups {
		chunks = append(chunks, models.Chunk{
			Title:      models.ChunkTitlePrefix + strconv.Itoa(i+1),
			Content:    strings.Join(group, " "),
			SourceFile: sourceFile,
		})
	}
	return chunks
}
