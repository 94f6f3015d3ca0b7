package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/leo448/moltagent/internal/app"
)

const generateTimeout = 30 * time.Second

// backoffTable is the fixed delay schedule for transiently failing
// generation calls. Each call starts a fresh budget.
var backoffTable = []time.Duration{
	1 * time.Second,
	2 * time.Second,
	4 * time.Second,
	8 * time.Second,
	16 * time.Second,
}

type GeminiRepo struct {
	ApiKey  string
	BaseUrl string
	Model   string

	// Sleep defaults to time.Sleep; tests swap it to observe the schedule.
	Sleep func(time.Duration)
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"topP"`
	TopK             int     `json:"topK"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type generateRequest struct {
	Contents          []geminiContent  `json:"contents"`
	SystemInstruction geminiContent    `json:"systemInstruction"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func retryable(status int) bool {
	return status == 429 || status == 500 || status == 503
}

// Complete sends one generation request and walks the backoff table on
// transient failures. It never returns an error: every ending is a typed
// outcome the caller can show the operator.
func (r GeminiRepo) Complete(ctx context.Context, prompt string, persona string, temperature float64, wantJSON bool) app.CompletionResult {
	if stripCredential(r.ApiKey) == "" {
		return app.CompletionResult{
			Kind: app.CompletionUnconfigured,
			Text: "GEMINI_API_KEY is not set. Configure the cloud brain before calling it.",
		}
	}

	config := generationConfig{Temperature: temperature, TopP: 0.95, TopK: 64, MaxOutputTokens: 1024}
	if wantJSON {
		config.ResponseMimeType = "application/json"
	}

	body, err := json.Marshal(generateRequest{
		Contents:          []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		SystemInstruction: geminiContent{Parts: []geminiPart{{Text: persona}}},
		GenerationConfig:  config,
	})
	if err != nil {
		return app.CompletionResult{Kind: app.CompletionMalformed, Text: "Could not encode the generation request."}
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s", r.BaseUrl, r.Model, url.QueryEscape(stripCredential(r.ApiKey)))

	sleep := r.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	for _, delay := range backoffTable {
		content, status, err := send(ctx, reqConfig{
			Method:  "POST",
			Url:     endpoint,
			Headers: []string{"Content-Type: application/json"},
			Body:    body,
			Timeout: generateTimeout,
		})

		if err != nil {
			sleep(delay)
			continue
		}

		if status == 200 {
			result, err := app.ReadJSON[generateResponse](content)
			if err != nil || result == nil || len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
				return app.CompletionResult{
					Kind:   app.CompletionMalformed,
					Text:   "The cloud brain answered in an unknown dialect. Try again.",
					Status: status,
				}
			}
			return app.CompletionResult{Kind: app.CompletionOK, Text: result.Candidates[0].Content.Parts[0].Text, Status: status}
		}

		if retryable(status) {
			sleep(delay)
			continue
		}

		return app.CompletionResult{
			Kind:   app.CompletionRejected,
			Text:   fmt.Sprintf("Cloud API Error: %d", status),
			Status: status,
		}
	}

	return app.CompletionResult{
		Kind: app.CompletionExhausted,
		Text: "The brain is currently disconnected. Please check your internet or API limits.",
	}
}
