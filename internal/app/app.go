package app

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/leo448/moltagent/internal/components"
	"github.com/leo448/moltagent/internal/domain"
	"golang.org/x/time/rate"
)

type Config struct {
	Port            string
	GeminiApiKey    string
	MoltbookBaseUrl string
}

type ComponentBuilder struct {
	Index func(components.View) templ.Component
	Chat  func([]domain.ChatMessage) templ.Component
	Feed  func([]domain.Post) templ.Component
	Draft func(components.DraftView) templ.Component
	Logs  func([]domain.LogRecord) templ.Component
	Error func(int, string, string) templ.Component
}

type App struct {
	CompletionRepo   CompletionRepo
	FeedRepo         FeedRepo
	PublishRepo      PublishRepo
	VerifyRepo       VerifyRepo
	ComponentBuilder ComponentBuilder
	Sessions         *SessionStore
	PublishLimiter   *rate.Limiter
	Config           Config
}

func (a App) Start() {
	http.Handle("/", ComponentHandler(a.index))
	http.Handle("/chat", ComponentHandler(a.chat))
	http.Handle("/uplink", ComponentHandler(a.uplink))
	http.Handle("/draft", ComponentHandler(a.draftSave))
	http.Handle("/draft/clear", ComponentHandler(a.draftClear))
	http.Handle("/draft/idea", ComponentHandler(a.draftIdea))
	http.Handle("/draft/reply", ComponentHandler(a.draftReply))
	http.Handle("/publish", ComponentHandler(a.publish))
	http.Handle("/challenge/solve", ComponentHandler(a.challengeSolve))
	http.Handle("/verify", ComponentHandler(a.verify))
	http.Handle("/feed", ComponentHandler(a.feedSync))
	http.Handle("/logs", ComponentHandler(a.logs))

	slog.Info(fmt.Sprintf("App running on %s...", a.Config.Port))
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%s", a.Config.Port), nil))
}
