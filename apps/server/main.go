package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tilsley/repotext/apps/server/internal/handler"
	"github.com/tilsley/repotext/apps/server/internal/platform/config"
	"github.com/tilsley/repotext/apps/server/internal/platform/logger"
	"github.com/tilsley/repotext/apps/server/internal/platform/telemetry"
	"github.com/tilsley/repotext/apps/server/internal/platform/validation"
	"github.com/tilsley/repotext/pkg/ingest"
	"github.com/tilsley/repotext/pkg/ingest/adapters"
	"github.com/tilsley/repotext/schemas"
)

func main() {
	slog := logger.New()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	// --- Observability ---

	ctx := context.Background()
	tel, err := telemetry.New(ctx, cfg.OTelEnabled)
	if err != nil {
		slog.Error("telemetry init failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Error("telemetry shutdown failed", "error", err)
		}
	}()

	// --- Adapters ---

	httpClient := &http.Client{
		Timeout:   60 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	var fetcher ingest.ArchiveFetcher
	switch cfg.ArchiveSource {
	case config.SourceAPI:
		fetcher = adapters.NewAPIClient(adapters.NewGitHubClient(cfg.GitHubAPIURL, httpClient))
	default:
		fetcher = adapters.NewArchiveClient(cfg.ArchiveBaseURL, httpClient)
	}

	// --- Service + HTTP ---

	svc := ingest.NewService(fetcher, slog)

	openapiJSON, err := schemas.JSON()
	if err != nil {
		slog.Error("openapi document render failed", "error", err)
		os.Exit(1)
	}
	validator, err := validation.New(schemas.OpenAPISpec)
	if err != nil {
		slog.Error("openapi validation middleware init failed", "error", err)
		os.Exit(1)
	}

	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(telemetry.ServiceName()), logger.Middleware(slog), validator)
	handler.RegisterRoutes(router, svc, slog, handler.Options{
		DefaultBranch: cfg.DefaultBranch,
		OpenAPIJSON:   openapiJSON,
	})

	slog.Info("starting repotext", "port", cfg.Port, "source", cfg.ArchiveSource)
	if err := router.Run(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
