// Package server exposes GoMedic over HTTP with gin.
package server

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Skufu/GoMedic/internal/analyze"
)

//go:embed templates/*.html
var templatesFS embed.FS

const defaultMaxUploadBytes = 10 << 20

type HealthChecker interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to HealthChecker.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type Options struct {
	Service        *analyze.Service
	MaxUploadBytes int64
	CORSOrigins    []string
	// Checks are pinged by /readyz, keyed by the name reported in the response.
	Checks      map[string]HealthChecker
	IdleTimeout time.Duration
	Now         func() time.Time
}

type handlers struct {
	svc  *analyze.Service
	idle time.Duration
	now  func() time.Time
}

func NewRouter(opts Options) *gin.Engine {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	router := gin.New()
	router.Use(
		gin.Logger(),
		gin.Recovery(),
		limitBodySize(opts.MaxUploadBytes),
		cors.New(cors.Config{
			AllowOrigins: opts.CORSOrigins,
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
			MaxAge:       12 * time.Hour,
		}),
	)
	router.SetHTMLTemplate(template.Must(template.New("").ParseFS(templatesFS, "templates/*.html")))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/readyz", readyHandler(opts.Checks))

	h := &handlers{svc: opts.Service, idle: opts.IdleTimeout, now: opts.Now}

	router.GET("/", h.index)
	router.POST("/analyze", h.analyze)

	router.GET("/chat", h.chatPage)
	router.POST("/chat", h.chatSubmit)
	router.POST("/chat/clear", h.chatClear)

	router.GET("/diagnosis", h.diagnosisPage)
	router.POST("/diagnosis", h.diagnosisSubmit)
	router.POST("/diagnosis/clear", h.diagnosisClear)
	router.GET("/reports/:file", h.downloadReport)

	api := router.Group("/api")
	api.GET("/chat/history", h.chatHistory)
	api.GET("/diagnosis/history", h.diagnosisHistory)
	api.POST("/diagnosis", h.diagnosisJSON)
	api.GET("/catalog", h.catalog)

	return router
}

func readyHandler(checks map[string]HealthChecker) gin.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c *gin.Context) {
		body := gin.H{"status": "ok"}
		if _, ok := checks["db"]; !ok {
			body["db"] = "disabled"
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		code := http.StatusOK
		for _, name := range names {
			status := "ok"
			if err := checks[name].Ping(ctx); err != nil {
				status = fmt.Sprintf("unhealthy: %v", err)
				code = http.StatusServiceUnavailable
				body["status"] = "degraded"
			}
			body[name] = status
		}
		c.JSON(code, body)
	}
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
