package models

// Chunk is one fixed-size slice of a source document's words.
type Chunk struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	SourceFile string `json:"source_file"`
}

type PromptResponse struct {
	Question string
	Context  string
	Answer   string
}
