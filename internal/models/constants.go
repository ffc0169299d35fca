package models

const (
	// InferenceModel is the hosted chat model every question is sent to.
	InferenceModel = "deepseek-ai/DeepSeek-V3-0324:cheapest"

	// MaxContextChunks caps how many stored chunks feed one answer.
	MaxContextChunks = 3

	ChunkTitlePrefix = "Context_"

	InvalidQuestionAnswer = "Please ask a valid question."
	NoContextPlaceholder  = "No relevant information found in the database."
	InferenceErrorFormat  = "Error from HuggingFace API: %s"

	AnswerPromptTemplate = `Answer the following question using ONLY the context below.
Context:
%s

Question: %s`
)
