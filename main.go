package main

import (
	"log/slog"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	_ "go.uber.org/automaxprocs"
	"golang.org/x/time/rate"

	"github.com/leo448/moltagent/internal/app"
	"github.com/leo448/moltagent/internal/components"
	"github.com/leo448/moltagent/internal/persistence"
)

const (
	modelName          = "gemini-2.5-flash-preview-09-2025"
	geminiBaseUrl      = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultMoltbookUrl = "https://www.moltbook.com/api/v1"
)

func config() app.Config {
	port := os.Getenv("GOPORT")
	if port == "" {
		port = "8000"
	}

	geminiApiKey := os.Getenv("GEMINI_API_KEY")
	if geminiApiKey == "" {
		slog.Error("GEMINI_API_KEY environment variable not set")
	}

	moltbookBaseUrl := os.Getenv("MOLTBOOK_BASE_URL")
	if moltbookBaseUrl == "" {
		moltbookBaseUrl = defaultMoltbookUrl
	}

	return app.Config{Port: port, GeminiApiKey: geminiApiKey, MoltbookBaseUrl: moltbookBaseUrl}
}

func main() {
	config := config()

	componentBuilder := app.ComponentBuilder{
		Index: components.Index,
		Chat:  components.ChatPane,
		Feed:  components.FeedPane,
		Draft: components.DraftPanel,
		Logs:  components.LogsPanel,
		Error: components.ErrorPage,
	}

	geminiRepo := persistence.GeminiRepo{
		ApiKey:  config.GeminiApiKey,
		BaseUrl: geminiBaseUrl,
		Model:   modelName,
	}
	moltbookRepo := persistence.MoltbookRepo{BaseUrl: config.MoltbookBaseUrl}

	a := app.App{
		CompletionRepo:   geminiRepo,
		FeedRepo:         moltbookRepo,
		PublishRepo:      moltbookRepo,
		VerifyRepo:       moltbookRepo,
		ComponentBuilder: componentBuilder,
		Sessions:         app.NewSessionStore(),
		PublishLimiter:   rate.NewLimiter(rate.Every(30*time.Second), 1),
		Config:           config,
	}

	a.Start()
}
