// Package bootstrap assembles the application from configuration.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"imagelens-backend/internal/analysis"
	msauth "imagelens-backend/internal/auth"
	"imagelens-backend/internal/llm"
	"imagelens-backend/internal/llm/gemini"
	"imagelens-backend/internal/llm/openai"
	"imagelens-backend/internal/search/duckduckgo"
	"imagelens-backend/internal/shared/config"
	"imagelens-backend/internal/shared/server"
	"imagelens-backend/internal/shared/storage/db"
	"imagelens-backend/internal/usage"
)

// App holds shared dependencies.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	LLM             llm.Client
	UsageService    *usage.Service
	AnalysisService *analysis.Service
	AnalysisHandler *analysis.Handler
	UsageHandler    *usage.Handler
	MicrosoftAuth   *msauth.MicrosoftService
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	llmClient, err := buildLLM(cfg)
	if err != nil {
		return nil, err
	}

	var usageSvc *usage.Service
	if sqlDB != nil {
		usageSvc = usage.NewPostgresService(usage.NewPGStore(sqlDB))
	} else {
		usageSvc = usage.NewService()
	}

	searchClient := duckduckgo.NewClient(cfg.SearchEndpoint)
	analysisSvc := analysis.NewService(llmClient, searchClient, cfg.MaxTokens, usageSvc)

	app := &App{
		Config:          cfg,
		DB:              sqlDB,
		LLM:             llmClient,
		UsageService:    usageSvc,
		AnalysisService: analysisSvc,
		AnalysisHandler: analysis.NewHandler(analysisSvc),
		UsageHandler:    usage.NewHandler(usageSvc),
		MicrosoftAuth: msauth.NewMicrosoftService(
			cfg.MicrosoftClientID,
			cfg.MicrosoftSecret,
			cfg.MicrosoftRedirect,
			cfg.UIRedirectURL,
		),
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		AnalysisHandler: app.AnalysisHandler,
		UsageHandler:    app.UsageHandler,
		MicrosoftAuth:   app.MicrosoftAuth,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory usage store")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory usage store: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildLLM(cfg config.Config) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "gemini":
		return gemini.NewClient(config.Secret("gemini_api_key"), cfg.CompletionModel)
	default:
		return openai.NewClient(config.Secret("open_api_key"), cfg.CompletionModel)
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
