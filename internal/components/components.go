package components

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
	"github.com/leo448/moltagent/internal/domain"
)

type Notice struct {
	Kind string // success, warning or error
	Text string
}

type DraftView struct {
	Draft     domain.Draft
	Version   int
	Linked    bool
	Challenge *domain.Challenge
	Answer    string
	Notice    Notice
}

type View struct {
	Username  string
	Messages  []domain.ChatMessage
	Feed      []domain.Post
	Logs      []domain.LogRecord
	DraftView DraftView
}

func component(write func(b *strings.Builder)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		write(&b)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeNotice(b *strings.Builder, n Notice) {
	if n.Text == "" {
		return
	}
	kind := n.Kind
	if kind == "" {
		kind = "info"
	}
	fmt.Fprintf(b, `<div class="notice notice-%s">%s</div>`, templ.EscapeString(kind), templ.EscapeString(n.Text))
}

func writeChat(b *strings.Builder, messages []domain.ChatMessage) {
	b.WriteString(`<div id="chat"><h2>Sibling Connection</h2><div class="messages">`)
	for _, m := range messages {
		fmt.Fprintf(b, `<div class="msg msg-%s"><span class="role">%s</span><p>%s</p></div>`,
			templ.EscapeString(m.Role), templ.EscapeString(m.Role), templ.EscapeString(m.Content))
	}
	b.WriteString(`</div>`)
	b.WriteString(`<form hx-post="/chat" hx-target="#chat" hx-swap="outerHTML">` +
		`<input type="text" name="message" placeholder="Message your digital brother..." autocomplete="off">` +
		`<button type="submit">Send</button></form></div>`)
}

func writeFeed(b *strings.Builder, posts []domain.Post) {
	b.WriteString(`<div id="feed"><h2>Moltbook Feed</h2>`)
	b.WriteString(`<button hx-get="/feed" hx-target="#feed" hx-swap="outerHTML">Sync Feed Data</button>`)
	if len(posts) == 0 {
		b.WriteString(`<p class="empty">No posts synced yet. Establish the uplink and sync.</p>`)
	}
	for _, p := range posts {
		author := p.Author.Name
		if author == "" {
			author = "Agent"
		}
		fmt.Fprintf(b, `<div class="post"><strong>%s</strong><h3>%s</h3><p>%s</p>`,
			templ.EscapeString(author), templ.EscapeString(p.Title), templ.EscapeString(p.Content))
		fmt.Fprintf(b, `<button hx-post="/draft/reply" hx-vals='{"post_id": "%s"}' hx-target="#sidebar" hx-swap="outerHTML">Contextual Reply</button></div>`,
			templ.EscapeString(p.Id))
	}
	b.WriteString(`</div>`)
}

func writeDraftPanel(b *strings.Builder, v DraftView) {
	b.WriteString(`<div id="sidebar"><h2>Agent Control</h2>`)
	writeNotice(b, v.Notice)

	b.WriteString(`<form hx-post="/uplink" hx-target="#sidebar" hx-swap="outerHTML">` +
		`<input type="password" name="api_key" placeholder="moltbook_xxx">` +
		`<button type="submit">Establish Uplink</button></form>`)
	if v.Linked {
		b.WriteString(`<p class="linked">Uplink active.</p>`)
	}

	b.WriteString(`<h3>Draft Review</h3>`)
	fmt.Fprintf(b, `<form id="draft-form" data-version="%d">`, v.Version)
	fmt.Fprintf(b, `<input type="text" name="title" value="%s" placeholder="Title">`, templ.EscapeString(v.Draft.Title))
	fmt.Fprintf(b, `<textarea name="content" rows="6" placeholder="Content">%s</textarea>`, templ.EscapeString(v.Draft.Content))
	b.WriteString(`<button hx-post="/draft" hx-include="closest form" hx-target="#sidebar" hx-swap="outerHTML">Sync</button>` +
		`<button hx-post="/draft/clear" hx-target="#sidebar" hx-swap="outerHTML">Clear</button>` +
		`<button hx-post="/publish" hx-include="closest form" hx-target="#sidebar" hx-swap="outerHTML">Publish Post</button>` +
		`</form>`)
	b.WriteString(`<button hx-post="/draft/idea" hx-target="#sidebar" hx-swap="outerHTML">Think New Idea</button>`)

	if v.Challenge != nil {
		b.WriteString(`<div class="challenge"><h3>Logic Challenge</h3>`)
		fmt.Fprintf(b, `<p class="caption">%s</p>`, templ.EscapeString(v.Challenge.Prompt))
		b.WriteString(`<button hx-post="/challenge/solve" hx-target="#sidebar" hx-swap="outerHTML">Leo, Solve It!</button>`)
		b.WriteString(`<form hx-post="/verify" hx-target="#sidebar" hx-swap="outerHTML">`)
		fmt.Fprintf(b, `<input type="text" name="answer" value="%s" placeholder="Result">`, templ.EscapeString(v.Answer))
		b.WriteString(`<button type="submit">Submit Verification</button></form></div>`)
	}

	b.WriteString(`</div>`)
}

func writeLogs(b *strings.Builder, logs []domain.LogRecord) {
	b.WriteString(`<div id="logs"><h2>Debug Logs</h2>`)
	b.WriteString(`<button hx-get="/logs" hx-target="#logs" hx-swap="outerHTML">Refresh</button>`)
	for _, l := range logs {
		fmt.Fprintf(b, `<div class="log"><strong>%s</strong> [%d] <span class="ts">%s</span>`,
			templ.EscapeString(l.Action), l.Status, templ.EscapeString(l.Timestamp))
		if l.Note != "" {
			fmt.Fprintf(b, `<p class="note">%s</p>`, templ.EscapeString(l.Note))
		}
		fmt.Fprintf(b, `<pre>%s</pre></div>`, templ.EscapeString(l.Response))
	}
	b.WriteString(`</div>`)
}

func ChatPane(messages []domain.ChatMessage) templ.Component {
	return component(func(b *strings.Builder) { writeChat(b, messages) })
}

func FeedPane(posts []domain.Post) templ.Component {
	return component(func(b *strings.Builder) { writeFeed(b, posts) })
}

func DraftPanel(v DraftView) templ.Component {
	return component(func(b *strings.Builder) { writeDraftPanel(b, v) })
}

func LogsPanel(logs []domain.LogRecord) templ.Component {
	return component(func(b *strings.Builder) { writeLogs(b, logs) })
}

func Index(v View) templ.Component {
	return component(func(b *strings.Builder) {
		b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		fmt.Fprintf(b, `<title>%s | Cloud Agent Interface</title>`, templ.EscapeString(v.Username))
		b.WriteString(`<script src="https://unpkg.com/htmx.org@1.9.10"></script>` +
			`<style>body{font-family:sans-serif;display:grid;grid-template-columns:1fr 2fr 2fr;gap:1rem;margin:1rem}` +
			`.notice-success{color:green}.notice-warning{color:darkorange}.notice-error{color:crimson}` +
			`.post,.log{border:1px solid #ccc;padding:.5rem;margin:.5rem 0}pre{white-space:pre-wrap}</style></head><body>`)
		fmt.Fprintf(b, `<header style="grid-column:1/-1"><h1>%s | Cloud Agent Interface</h1>`, templ.EscapeString(v.Username))
		b.WriteString(`<p class="caption">Status: Running on Gemini 2.5 Flash Cloud Brain</p></header>`)
		writeDraftPanel(b, v.DraftView)
		writeChat(b, v.Messages)
		writeFeed(b, v.Feed)
		b.WriteString(`<section style="grid-column:1/-1">`)
		writeLogs(b, v.Logs)
		b.WriteString(`</section></body></html>`)
	})
}

func ErrorPage(code int, title string, msg string) templ.Component {
	return component(func(b *strings.Builder) {
		b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		fmt.Fprintf(b, `<title>%d %s</title></head><body>`, code, templ.EscapeString(title))
		fmt.Fprintf(b, `<h1>%d %s</h1><p>%s</p></body></html>`, code, templ.EscapeString(title), templ.EscapeString(msg))
	})
}
