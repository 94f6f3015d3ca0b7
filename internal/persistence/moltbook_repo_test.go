package persistence

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leo448/moltagent/internal/app"
	"github.com/leo448/moltagent/internal/domain"
)

func logCollector() (*[]domain.LogRecord, app.CallLogger) {
	var records []domain.LogRecord
	return &records, func(record domain.LogRecord) {
		records = append(records, record)
	}
}

func TestFeedNeverPropagates(t *testing.T) {
	t.Run("unreachable host", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		records, log := logCollector()
		posts := MoltbookRepo{BaseUrl: server.URL}.Feed(context.Background(), "key", log)

		assert.Empty(t, posts)
		require.Len(t, *records, 1)
		assert.NotEmpty(t, (*records)[0].Note)
		assert.Equal(t, 0, (*records)[0].Status)
	})

	t.Run("server error with plain body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", 500)
		}))
		defer server.Close()

		records, log := logCollector()
		posts := MoltbookRepo{BaseUrl: server.URL}.Feed(context.Background(), "key", log)

		assert.Empty(t, posts)
		require.Len(t, *records, 1)
		assert.Equal(t, 500, (*records)[0].Status)
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"posts": [`)
		}))
		defer server.Close()

		records, log := logCollector()
		posts := MoltbookRepo{BaseUrl: server.URL}.Feed(context.Background(), "key", log)

		assert.Empty(t, posts)
		require.Len(t, *records, 1)
		assert.NotEmpty(t, (*records)[0].Note)
	})
}

func TestFeedWithoutCredential(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	posts := MoltbookRepo{BaseUrl: server.URL}.Feed(context.Background(), " \n ", nil)

	assert.Empty(t, posts)
	assert.Equal(t, 0, calls)
}

func TestFeedListingKeys(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "posts key",
			body: `{"posts":[{"id":"1","title":"a","content":"x"},{"id":"2","title":"b","content":"y"}]}`,
			want: []string{"a", "b"},
		},
		{
			name: "data fallback",
			body: `{"data":[{"id":"1","title":"c","content":"z"}]}`,
			want: []string{"c"},
		},
		{
			name: "malformed entries filtered",
			body: `{"posts":["junk",{"id":"1","title":"keep","content":"k"},42]}`,
			want: []string{"keep"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "new", r.URL.Query().Get("sort"))
				assert.Equal(t, "20", r.URL.Query().Get("limit"))
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			posts := MoltbookRepo{BaseUrl: server.URL}.Feed(context.Background(), "key", nil)

			titles := make([]string, 0, len(posts))
			for _, p := range posts {
				titles = append(titles, p.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestCredentialWhitespaceStripped(t *testing.T) {
	credential := "  molt book\n_key\t"

	var gotAuth []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"posts":[],"success":true}`)
	}))
	defer server.Close()

	repo := MoltbookRepo{BaseUrl: server.URL}
	repo.Feed(context.Background(), credential, nil)
	repo.Publish(context.Background(), credential, "t", "c", nil)
	repo.Verify(context.Background(), credential, "code", "1.00", nil)

	require.Len(t, gotAuth, 3)
	for _, auth := range gotAuth {
		assert.Equal(t, "Bearer moltbook_key", auth)
	}
}

func TestPublishUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	records, log := logCollector()
	res, status := MoltbookRepo{BaseUrl: server.URL}.Publish(context.Background(), "key", "t", "c", log)

	assert.Equal(t, 0, status)
	assert.False(t, res.Success)
	require.Len(t, *records, 1)
	assert.NotEmpty(t, (*records)[0].Note)
}

func TestPublishDecodesOutcomes(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, res *app.PostResponse, status int)
	}{
		{
			name:   "accepted",
			status: 200,
			body:   `{"success":true}`,
			check: func(t *testing.T, res *app.PostResponse, status int) {
				assert.True(t, res.Success)
				assert.Equal(t, 200, status)
			},
		},
		{
			name:   "challenge issued",
			status: 200,
			body:   `{"success":false,"verification_required":true,"verification":{"challenge":"f i n d : 7 * x * 9","code":"v-42"}}`,
			check: func(t *testing.T, res *app.PostResponse, status int) {
				assert.True(t, res.VerificationRequired)
				require.NotNil(t, res.Verification)
				assert.Equal(t, "f i n d : 7 * x * 9", res.Verification.Challenge)
				assert.Equal(t, "v-42", res.Verification.Code)
			},
		},
		{
			name:   "rate limited",
			status: 429,
			body:   `{"retry_after_minutes":5}`,
			check: func(t *testing.T, res *app.PostResponse, status int) {
				assert.Equal(t, 429, status)
				assert.Equal(t, 5, res.RetryAfterMinutes)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			records, log := logCollector()
			res, status := MoltbookRepo{BaseUrl: server.URL}.Publish(context.Background(), "key", "Title", "Body", log)

			tt.check(t, res, status)
			require.Len(t, *records, 1)
			assert.Equal(t, "POST_ACTION", (*records)[0].Action)
			assert.Contains(t, (*records)[0].Request, `"submolt":"general"`)
			assert.Equal(t, tt.status, (*records)[0].Status)
		})
	}
}

func TestVerify(t *testing.T) {
	t.Run("passes flag and message through", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"success":true,"message":"Logic verified"}`)
		}))
		defer server.Close()

		records, log := logCollector()
		ok, message := MoltbookRepo{BaseUrl: server.URL}.Verify(context.Background(), "key", "v-42", "63.00", log)

		assert.True(t, ok)
		assert.Equal(t, "Logic verified", message)
		require.Len(t, *records, 1)
		assert.Equal(t, "VERIFY_ACTION", (*records)[0].Action)
		assert.Contains(t, (*records)[0].Request, `"verification_code":"v-42"`)
	})

	t.Run("missing message defaults", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"success":false}`)
		}))
		defer server.Close()

		ok, message := MoltbookRepo{BaseUrl: server.URL}.Verify(context.Background(), "key", "v-42", "63.00", nil)

		assert.False(t, ok)
		assert.Equal(t, "Error", message)
	})

	t.Run("transport failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		ok, message := MoltbookRepo{BaseUrl: server.URL}.Verify(context.Background(), "key", "v-42", "63.00", nil)

		assert.False(t, ok)
		assert.Equal(t, "Error", message)
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `not json`)
		}))
		defer server.Close()

		ok, message := MoltbookRepo{BaseUrl: server.URL}.Verify(context.Background(), "key", "v-42", "63.00", nil)

		assert.False(t, ok)
		assert.Equal(t, "Error", message)
	})
}
