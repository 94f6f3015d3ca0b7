package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/leo448/moltagent/internal/app"
	"github.com/leo448/moltagent/internal/domain"
)

const moltbookTimeout = 15 * time.Second

type MoltbookRepo struct {
	BaseUrl string
}

func (r MoltbookRepo) baseHeaders(credential string) []string {
	return []string{
		fmt.Sprintf("Authorization: Bearer %s", stripCredential(credential)),
		"Content-Type: application/json",
	}
}

func logCall(log app.CallLogger, record domain.LogRecord) {
	if log != nil {
		log(record)
	}
}

// feedListing covers both shapes the platform has been seen returning: the
// list lives under "posts" or, alternately, "data".
type feedListing struct {
	Posts []json.RawMessage `json:"posts"`
	Data  []json.RawMessage `json:"data"`
}

// Feed reads the newest page of posts. Best effort by policy: any transport
// error, bad status or malformed body yields an empty slice, with the cause
// preserved on the log record.
func (r MoltbookRepo) Feed(ctx context.Context, credential string, log app.CallLogger) []domain.Post {
	if stripCredential(credential) == "" {
		return []domain.Post{}
	}

	record := domain.LogRecord{Action: "FETCH_FEED", Request: "GET /feed?sort=new&limit=20"}

	content, status, err := send(ctx, reqConfig{
		Method:  "GET",
		Url:     fmt.Sprintf("%s/feed?sort=new&limit=20", r.BaseUrl),
		Headers: r.baseHeaders(credential),
		Timeout: moltbookTimeout,
	})

	record.Status = status
	record.Response = string(content)
	if err != nil {
		record.Note = err.Error()
		logCall(log, record)
		return []domain.Post{}
	}

	listing, err := app.ReadJSON[feedListing](content)
	if err != nil || listing == nil {
		if err != nil {
			record.Note = err.Error()
		}
		logCall(log, record)
		return []domain.Post{}
	}

	logCall(log, record)

	if status != 200 {
		return []domain.Post{}
	}

	raw := listing.Posts
	if len(raw) == 0 {
		raw = listing.Data
	}

	posts := make([]domain.Post, 0, len(raw))
	for _, entry := range raw {
		var post domain.Post
		if err := json.Unmarshal(entry, &post); err != nil {
			// Not a post object; skip it.
			continue
		}
		posts = append(posts, post)
	}
	return posts
}

type postProto struct {
	Submolt string `json:"submolt"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Publish submits a draft. A call that never reached the platform comes back
// as a failed payload with status 0, distinct from a rejected submission.
func (r MoltbookRepo) Publish(ctx context.Context, credential string, title string, content string, log app.CallLogger) (*app.PostResponse, int) {
	payload, err := json.Marshal(postProto{Submolt: "general", Title: title, Content: content})
	if err != nil {
		return &app.PostResponse{Success: false}, 0
	}

	record := domain.LogRecord{Action: "POST_ACTION", Request: string(payload)}

	body, status, err := send(ctx, reqConfig{
		Method:  "POST",
		Url:     fmt.Sprintf("%s/posts", r.BaseUrl),
		Headers: r.baseHeaders(credential),
		Body:    payload,
		Timeout: moltbookTimeout,
	})

	record.Status = status
	record.Response = string(body)
	if err != nil {
		record.Note = err.Error()
		logCall(log, record)
		return &app.PostResponse{Success: false}, 0
	}

	res, err := app.ReadJSON[app.PostResponse](body)
	if err != nil || res == nil {
		if err != nil {
			record.Note = err.Error()
		}
		logCall(log, record)
		return &app.PostResponse{Success: false}, 0
	}

	logCall(log, record)
	return res, status
}

type verifyProto struct {
	VerificationCode string `json:"verification_code"`
	Answer           string `json:"answer"`
}

type verifyResponse struct {
	Success bool    `json:"success"`
	Message *string `json:"message"`
}

// Verify submits a solved challenge answer. Success flag and message pass
// through unchanged; anything that keeps us from reading them is (false,
// "Error").
func (r MoltbookRepo) Verify(ctx context.Context, credential string, code string, answer string, log app.CallLogger) (bool, string) {
	payload, err := json.Marshal(verifyProto{VerificationCode: code, Answer: answer})
	if err != nil {
		return false, "Error"
	}

	record := domain.LogRecord{Action: "VERIFY_ACTION", Request: string(payload)}

	body, status, err := send(ctx, reqConfig{
		Method:  "POST",
		Url:     fmt.Sprintf("%s/verify", r.BaseUrl),
		Headers: r.baseHeaders(credential),
		Body:    payload,
		Timeout: moltbookTimeout,
	})

	record.Status = status
	record.Response = string(body)
	if err != nil {
		record.Note = err.Error()
		logCall(log, record)
		return false, "Error"
	}

	res, err := app.ReadJSON[verifyResponse](body)
	if err != nil || res == nil {
		if err != nil {
			record.Note = err.Error()
		}
		logCall(log, record)
		return false, "Error"
	}

	logCall(log, record)

	message := "Error"
	if res.Message != nil {
		message = *res.Message
	}
	return res.Success, message
}
