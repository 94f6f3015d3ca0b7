package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leo448/moltagent/internal/components"
	"github.com/leo448/moltagent/internal/domain"
)

func TestLogCallIsNewestFirst(t *testing.T) {
	session := &Session{}

	session.LogCall(domain.LogRecord{Action: "FETCH_FEED", Status: 200})
	session.LogCall(domain.LogRecord{Action: "POST_ACTION", Status: 429})

	logs := session.Logs()
	require.Len(t, logs, 2)
	assert.Equal(t, "POST_ACTION", logs[0].Action)
	assert.Equal(t, "FETCH_FEED", logs[1].Action)
	assert.NotEmpty(t, logs[0].Timestamp)
}

func TestSetPendingResetsAnswer(t *testing.T) {
	session := &Session{}
	session.SetAnswer("63.00")

	challenge := challengeFixture()
	session.SetPending(&challenge)

	view := session.DraftView(components.Notice{})
	assert.Empty(t, view.Answer)
	require.NotNil(t, view.Challenge)
	assert.Equal(t, "v-42", view.Challenge.Code)
}

func TestClearDraftBumpsVersion(t *testing.T) {
	session := &Session{}
	session.SetDraft(domain.Draft{Title: "T", Content: "C"})
	before := session.DraftView(components.Notice{}).Version

	session.ClearDraft()

	view := session.DraftView(components.Notice{})
	assert.True(t, view.Draft.Empty())
	assert.Equal(t, before+1, view.Version)
}

func TestSessionStoreRoundTrip(t *testing.T) {
	store := NewSessionStore()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	created := store.Get(rec, req)

	messages := created.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "assistant", messages[0].Role)
	assert.Contains(t, messages[0].Content, "Elder Bro")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	again := httptest.NewRequest("GET", "/", nil)
	again.AddCookie(cookies[0])
	assert.Same(t, created, store.Get(httptest.NewRecorder(), again))
}

func TestUnknownCookieGetsFreshSession(t *testing.T) {
	store := NewSessionStore()

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "expired"})

	session := store.Get(httptest.NewRecorder(), req)
	require.NotNil(t, session)
	assert.NotEqual(t, "expired", session.Id)
}
