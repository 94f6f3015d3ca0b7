package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/leo448/moltagent/internal/components"
	"github.com/leo448/moltagent/internal/domain"
)

func (a App) errResp(ctx errCtx, err error) *ComponentResponse {
	return &ComponentResponse{
		Component:   a.ComponentBuilder.Error(ctx.Code, ctx.Title, ctx.Msg),
		Code:        ctx.Code,
		Message:     ctx.Title,
		ContentType: "text/html",
		Error:       err,
	}
}

func (a App) draftResp(session *Session, notice components.Notice) *ComponentResponse {
	return &ComponentResponse{
		Component:   a.ComponentBuilder.Draft(session.DraftView(notice)),
		Code:        200,
		Message:     "OK",
		ContentType: "text/html",
	}
}

func (a App) index(w http.ResponseWriter, r *http.Request) *ComponentResponse {
	if r.URL.Path != "/" {
		return a.errResp(get400(), nil)
	}
	if r.Method != http.MethodGet {
		return a.errResp(get405(), nil)
	}

	session := a.Sessions.Get(w, r)
	return &ComponentResponse{Component: a.ComponentBuilder.Index(session.View()), Code: 200, Message: "OK", ContentType: "text/html"}
}

func (a App) chat(w http.ResponseWriter, r *http.Request) *ComponentResponse {
	if r.Method != http.MethodPost {
		return a.errResp(get405(), nil)
	}

	session := a.Sessions.Get(w, r)
	message := strings.TrimSpace(r.FormValue("message"))
	if message == "" {
		return a.errResp(get400(), nil)
	}

	session.AppendMessage("user", message)

	result := a.CompletionRepo.Complete(r.Context(), message, agentPersona, 1.0, false)

	messages := session.Messages()
	if result.OK() {
		session.AppendMessage("assistant", result.Text)
		messages = session.Messages()
	} else {
		// Shown once, never recorded: a failed turn must not pollute
		// the history the next completion sees.
		messages = append(messages, domain.ChatMessage{Role: "assistant", Content: result.Text})
	}

	return &ComponentResponse{Component: a.ComponentBuilder.Chat(messages), Code: 200, Message: "OK", ContentType: "text/html"}
}

func (a App) uplink(w http.ResponseWriter, r *http.Request) *ComponentResponse {
	if r.Method != http.MethodPost {
		return a.errResp(get405(), nil)
	}

	session := a.Sessions.Get(w, r)
	credential := strings.TrimSpace(r.FormValue("api_key"))
	session.SetCredential(credential)

	if credential == "" {
		return a.draftResp(session, components.Notice{Kind: "warning", Text: "Uplink API Key first."})
	}
	return a.draftResp(session, components.Notice{Kind: "success", Text: "Satellite Link Established!"})
}

func (a App) draftSave(w http.ResponseWriter, r *http.Request) *ComponentResponse {
	if r.Method != http.MethodPost {
		return a.errResp(get405(), nil)
	}

	session := a.Sessions.Get(w, r)
	session.SetDraft(domain.Draft{Title: r.FormValue("title"), Content: r.FormValue("content")})

	return a.draftResp(session, components.Notice{Kind: "success", Text: "Draft synced."})
}

func (a App) draftClear(w http.ResponseWriter, r *http.Request) *ComponentResponse {
	if r.Method != http.MethodPost {
		return a.errResp(get405(), nil)
	}

	session := a.Sessions.Get(w, r)
	session.ClearDraft()

	return a.draftResp(session, components.Notice{Kind: "success", Text: "Draft cleared."})
}

func (a App) draftIdea(w http.ResponseWriter, r *http.Request) *ComponentResponse {
	if r.Method != http.MethodPost {
		return a.errResp(get405(), nil)
	}

	session := a.Sessions.Get(w, r)
	feed := a.FeedRepo.Feed(r.Context(), session.Credential(), session.LogCall)

	result := a.CompletionRepo.Complete(r.Context(), ideaPrompt(feed), agentPersona, 1.0, true)
	if !result.OK() {
		return a.draftResp(session, components.Notice{Kind: "error", Text: result.Text})
	}

	session.SetDraft(draftFromModel(result.Text, "Autonomous Insight"))
	return a.draftResp(session, components.Notice{Kind: "success", Text: "Fresh draft ready for review."})
}

func (a App) draftReply(w http.ResponseWriter, r *http.Request) *ComponentResponse {
	if r.Method != http.MethodPost {
		return a.errResp(get405(), nil)
	}

	session := a.Sessions.Get(w, r)
	postId := r.FormValue("post_id")

	var target *domain.Post
	for _, post := range session.Feed() {
		if post.Id == postId {
			post := post
			target = &post
			break
		}
	}
	if target == nil {
		return a.errResp(get400(), fmt.Errorf("reply requested for unknown post %q", postId))
	}

	result := a.CompletionRepo.Complete(r.Context(), replyPrompt(*target), agentPersona, 1.0, true)
	if !result.OK() {
		return a.draftResp(session, components.Notice{Kind: "error", Text: result.Text})
	}

	session.SetDraft(draftFromModel(result.Text, "Contextual Reply"))
	return a.draftResp(session, components.Notice{Kind: "success", Text: "Reply drafted for review."})
}

func (a App) publish(w http.ResponseWriter, r *http.Request) *ComponentResponse {
	if r.Method != http.MethodPost {
		return a.errResp(get405(), nil)
	}

	session := a.Sessions.Get(w, r)

	// Save manual edits back to state before submitting.
	session.SetDraft(domain.Draft{Title: r.FormValue("title"), Content: r.FormValue("content")})

	credential := session.Credential()
	if credential == "" {
		return a.draftResp(session, components.Notice{Kind: "error", Text: "Link API Key first!"})
	}

	if a.PublishLimiter != nil && !a.PublishLimiter.Allow() {
		return a.draftResp(session, components.Notice{Kind: "warning", Text: "Transmitting too fast. Give it a moment and try again."})
	}

	draft := session.Draft()
	res, status := a.PublishRepo.Publish(r.Context(), credential, draft.Title, draft.Content, session.LogCall)

	outcome := InterpretPublish(res, status)
	switch outcome.Kind {
	case PublishAccepted:
		session.ClearDraft()
		return a.draftResp(session, components.Notice{Kind: "success", Text: "Post Transmitted!"})
	case PublishRateLimited:
		return a.draftResp(session, components.Notice{Kind: "warning", Text: fmt.Sprintf("Rate Limited! Retry in %d minutes.", outcome.RetryAfterMinutes)})
	case PublishChallengeIssued:
		challenge := outcome.Challenge
		session.SetPending(&challenge)
		return a.draftResp(session, components.Notice{Kind: "warning", Text: "Logic Challenge Triggered!"})
	default:
		return a.draftResp(session, components.Notice{Kind: "error", Text: outcome.Message})
	}
}

func (a App) solveChallenge(ctx context.Context, challenge string) (string, bool) {
	result := a.CompletionRepo.Complete(ctx, solvePrompt(challenge), solverPersona, 1.0, false)
	if !result.OK() {
		return result.Text, false
	}
	// The model is an untrusted oracle: trim the shape, never fix the math.
	return strings.TrimSpace(result.Text), true
}

func (a App) challengeSolve(w http.ResponseWriter, r *http.Request) *ComponentResponse {
	if r.Method != http.MethodPost {
		return a.errResp(get405(), nil)
	}

	session := a.Sessions.Get(w, r)
	pending := session.Pending()
	if pending == nil {
		return a.errResp(get400(), nil)
	}

	answer, ok := a.solveChallenge(r.Context(), pending.Prompt)
	if !ok {
		return a.draftResp(session, components.Notice{Kind: "error", Text: answer})
	}

	session.SetAnswer(answer)
	return a.draftResp(session, components.Notice{})
}

func (a App) verify(w http.ResponseWriter, r *http.Request) *ComponentResponse {
	if r.Method != http.MethodPost {
		return a.errResp(get405(), nil)
	}

	session := a.Sessions.Get(w, r)
	pending := session.Pending()
	if pending == nil {
		return a.errResp(get400(), nil)
	}

	answer := strings.TrimSpace(r.FormValue("answer"))
	session.SetAnswer(answer)

	ok, message := a.VerifyRepo.Verify(r.Context(), session.Credential(), pending.Code, answer, session.LogCall)
	if !ok {
		return a.draftResp(session, components.Notice{Kind: "error", Text: message})
	}

	session.SetPending(nil)
	return a.draftResp(session, components.Notice{Kind: "success", Text: "Logic Verified!"})
}

func (a App) feedSync(w http.ResponseWriter, r *http.Request) *ComponentResponse {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		return a.errResp(get405(), nil)
	}

	session := a.Sessions.Get(w, r)
	feed := a.FeedRepo.Feed(r.Context(), session.Credential(), session.LogCall)
	session.SetFeed(feed)

	return &ComponentResponse{Component: a.ComponentBuilder.Feed(feed), Code: 200, Message: "OK", ContentType: "text/html"}
}

func (a App) logs(w http.ResponseWriter, r *http.Request) *ComponentResponse {
	if r.Method != http.MethodGet {
		return a.errResp(get405(), nil)
	}

	session := a.Sessions.Get(w, r)
	return &ComponentResponse{Component: a.ComponentBuilder.Logs(session.Logs()), Code: 200, Message: "OK", ContentType: "text/html"}
}
