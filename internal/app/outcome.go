package app

import (
	"context"
	"fmt"

	"github.com/leo448/moltagent/internal/domain"
)

// CallLogger receives one diagnostic record per outbound platform call. The
// clients stay stateless; the session owns the log.
type CallLogger func(record domain.LogRecord)

type CompletionKind int

const (
	CompletionOK CompletionKind = iota
	// CompletionUnconfigured means the provider credential is missing.
	// Reported once, never retried.
	CompletionUnconfigured
	// CompletionRejected is a non-retryable status from the provider.
	CompletionRejected
	// CompletionExhausted means the retry budget ran out on transient
	// failures (transport errors, 429/500/503).
	CompletionExhausted
	// CompletionMalformed is a 200 whose body misses the candidate text.
	CompletionMalformed
)

// CompletionResult is the outcome of one generation call. Text carries the
// generated span on CompletionOK and an operator-facing message otherwise.
type CompletionResult struct {
	Kind   CompletionKind
	Text   string
	Status int
}

func (r CompletionResult) OK() bool {
	return r.Kind == CompletionOK
}

type CompletionRepo interface {
	Complete(ctx context.Context, prompt string, persona string, temperature float64, wantJSON bool) CompletionResult
}

type Verification struct {
	Challenge string `json:"challenge"`
	Code      string `json:"code"`
}

// PostResponse is the post-create endpoint's body, decoded once at the
// client boundary.
type PostResponse struct {
	Success              bool          `json:"success"`
	Error                string        `json:"error"`
	Message              string        `json:"message"`
	VerificationRequired bool          `json:"verification_required"`
	Verification         *Verification `json:"verification"`
	RetryAfterMinutes    int           `json:"retry_after_minutes"`
}

type FeedRepo interface {
	Feed(ctx context.Context, credential string, log CallLogger) []domain.Post
}

type PublishRepo interface {
	Publish(ctx context.Context, credential string, title string, content string, log CallLogger) (*PostResponse, int)
}

type VerifyRepo interface {
	Verify(ctx context.Context, credential string, code string, answer string, log CallLogger) (bool, string)
}

type PublishKind int

const (
	PublishAccepted PublishKind = iota
	PublishRateLimited
	PublishChallengeIssued
	PublishRejected
	PublishUnreachable
)

type PublishOutcome struct {
	Kind              PublishKind
	RetryAfterMinutes int
	Challenge         domain.Challenge
	Message           string
}

// InterpretPublish maps a decoded post-create response onto the publish flow
// states. Status 0 marks a call that never reached the platform.
func InterpretPublish(res *PostResponse, status int) PublishOutcome {
	if status == 0 {
		return PublishOutcome{Kind: PublishUnreachable, Message: "Could not reach Moltbook. Check the uplink and try again."}
	}
	if status == 429 {
		return PublishOutcome{Kind: PublishRateLimited, RetryAfterMinutes: res.RetryAfterMinutes}
	}
	if res.VerificationRequired && res.Verification != nil {
		return PublishOutcome{
			Kind:      PublishChallengeIssued,
			Challenge: domain.Challenge{Code: res.Verification.Code, Prompt: res.Verification.Challenge},
		}
	}
	if res.Success {
		return PublishOutcome{Kind: PublishAccepted}
	}

	msg := res.Error
	if msg == "" {
		msg = res.Message
	}
	if msg == "" {
		msg = "the platform rejected the post"
	}
	return PublishOutcome{Kind: PublishRejected, Message: fmt.Sprintf("Failed: %s", msg)}
}
