package api

import (
	"embed"
	"html/template"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"knowledge-rag/internal/api/middleware"
)

//go:embed templates/*.html
var templatesFS embed.FS

type RouterOptions struct {
	CORSAllowOrigins []string
}

// NewRouter builds the gin engine serving the page and the chat API.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())

	if len(opts.CORSAllowOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSAllowOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-Id"},
			ExposeHeaders:    []string{"X-Request-Id"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))
	h.RegisterRoutes(r)
	return r
}
