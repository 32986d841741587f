package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/tilsley/repotext/pkg/ingest"
)

// Handler translates HTTP requests into calls on the ingest.Service.
type Handler struct {
	svc           *ingest.Service
	log           *slog.Logger
	defaultBranch string
	openapi       []byte
}

// Options carries the settings RegisterRoutes needs beyond the service.
type Options struct {
	// DefaultBranch is the redirect target when a request names no branch.
	DefaultBranch string
	// OpenAPIJSON is served verbatim at /openapi.json.
	OpenAPIJSON []byte
}

// RegisterRoutes mounts the repotext API onto the given Gin engine.
func RegisterRoutes(r *gin.Engine, svc *ingest.Service, log *slog.Logger, opts Options) {
	if opts.DefaultBranch == "" {
		opts.DefaultBranch = ingest.DefaultBranch
	}
	h := &Handler{svc: svc, log: log, defaultBranch: opts.DefaultBranch, openapi: opts.OpenAPIJSON}

	r.GET("/openapi.json", h.OpenAPI)

	// Usage hints for incomplete paths
	r.GET("/", h.Usage)
	r.GET("/:owner", h.MissingRepository)

	r.GET("/:owner/:repo", h.RedirectToDefaultBranch)
	r.GET("/:owner/:repo/:branch", h.RepositoryFiles)
	// Segments after the branch are ignored.
	r.GET("/:owner/:repo/:branch/*rest", h.RepositoryFiles)
}
