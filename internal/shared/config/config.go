package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds application configuration.
type Config struct {
	Port              string
	CORSAllowOrigin   []string
	Env               string
	LLMProvider       string
	CompletionModel   string
	MaxTokens         int
	DatabaseURL       string
	MicrosoftClientID string
	MicrosoftSecret   string
	MicrosoftRedirect string
	UIRedirectURL     string
	SearchEndpoint    string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	provider := normalizeProvider(getEnv("LLM_PROVIDER", "openai"))

	return Config{
		Port:              getEnv("PORT", "8080"),
		CORSAllowOrigin:   splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		Env:               env,
		LLMProvider:       provider,
		CompletionModel:   getEnv("COMPLETION_MODEL", defaultModel(provider)),
		MaxTokens:         getEnvInt("MAX_TOKENS", 100),
		DatabaseURL:       dbURL,
		MicrosoftClientID: getEnv("MS_CLIENT_ID", ""),
		MicrosoftSecret:   getEnv("MS_CLIENT_SECRET", ""),
		MicrosoftRedirect: getEnv("MS_REDIRECT_URL", ""),
		UIRedirectURL:     getEnv("UI_REDIRECT_URL", ""),
		SearchEndpoint:    getEnv("SEARCH_ENDPOINT", ""),
	}
}

// Secret resolves a named secret, preferring mounted secret files over env vars.
// Docker and Cloud Run mount secrets under /run/secrets.
func Secret(name string) string {
	path := filepath.Join("/run/secrets", name)
	if data, err := os.ReadFile(path); err == nil {
		if val := strings.TrimSpace(string(data)); val != "" {
			return val
		}
	}
	if val := strings.TrimSpace(os.Getenv(strings.ToUpper(name))); val != "" {
		return val
	}
	return strings.TrimSpace(os.Getenv(name))
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		log.Printf("config: %s invalid int %q, using %d", key, raw, def)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "gemini":
		return "gemini"
	default:
		return "openai"
	}
}

func defaultModel(provider string) string {
	if provider == "gemini" {
		return "gemini-1.5-flash"
	}
	return "gpt-4o-mini"
}
