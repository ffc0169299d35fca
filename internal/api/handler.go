package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"knowledge-rag/internal/api/middleware"
	"knowledge-rag/internal/models"
)

type ChatRequest struct {
	Question string `json:"question"`
}

type ChatResponse struct {
	Answer string `json:"answer"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	DB        string    `json:"db"`
	FullText  bool      `json:"full_text"`
}

// Answerer runs the question answering pipeline.
type Answerer interface {
	Query(ctx context.Context, question string) (*models.PromptResponse, error)
}

// StoreStatus reports store reachability for the health endpoint.
type StoreStatus interface {
	Ping(ctx context.Context) error
	FullTextEnabled() bool
}

type Handler struct {
	rag         Answerer
	store       StoreStatus
	serviceName string
	version     string
}

func NewHandler(rag Answerer, store StoreStatus, serviceName, version string) *Handler {
	return &Handler{
		rag:         rag,
		store:       store,
		serviceName: serviceName,
		version:     version,
	}
}

func (h *Handler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{"service": h.serviceName})
}

// Chat answers with 200 for every outcome the pipeline anticipates. Bad JSON
// and store failures are the only non-200 responses.
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	res, err := h.rag.Query(c.Request.Context(), req.Question)
	if err != nil {
		log.Error().Err(err).Str("request_id", middleware.GetRequestID(c.Request.Context())).Msg("Chat request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ChatResponse{Answer: res.Answer})
}

func (h *Handler) HealthCheck(c *gin.Context) {
	dbStatus := "disabled"
	fullText := false
	if h.store != nil {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		if err := h.store.Ping(pingCtx); err != nil {
			dbStatus = "down"
		} else {
			dbStatus = "up"
		}
		fullText = h.store.FullTextEnabled()
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		DB:        dbStatus,
		FullText:  fullText,
	})
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/", h.Home)
	r.POST("/chat", h.Chat)
	r.GET("/health", h.HealthCheck)
}
