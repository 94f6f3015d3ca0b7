package persistence

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/leo448/moltagent/internal/app"
)

type reqConfig struct {
	Method  string
	Url     string
	Headers []string
	Body    []byte
	Timeout time.Duration
}

// send performs one outbound call and hands back the raw body and status so
// callers can log and branch on unexpected codes instead of erroring out.
func send(ctx context.Context, config reqConfig) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, config.Method, config.Url, bytes.NewBuffer(config.Body))

	if err != nil {
		return nil, 0, err
	}

	for i := 0; i < len(config.Headers); i++ {
		headerKV := strings.SplitN(config.Headers[i], ":", 2)
		req.Header.Add(headerKV[0], strings.TrimSpace(headerKV[1]))
	}

	client := http.Client{Timeout: config.Timeout}
	resp, err := client.Do(req)

	if err != nil {
		return nil, 0, err
	}

	content, err := app.Read(resp.Body)

	if err != nil {
		return nil, resp.StatusCode, err
	}

	return content, resp.StatusCode, nil
}

// stripCredential removes every whitespace rune. Operators paste keys with
// incidental newlines and padding; the platform accepts neither.
func stripCredential(credential string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, credential)
}
