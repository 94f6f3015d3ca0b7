package app

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/leo448/moltagent/internal/components"
	"github.com/leo448/moltagent/internal/domain"
)

// Session holds all state owned by one operator: chat history, the single
// live draft, the pending challenge, the cached feed and the newest-first
// call log. Clients never touch it; handlers mutate it through the locked
// accessors below.
type Session struct {
	Id string

	mu           sync.Mutex
	messages     []domain.ChatMessage
	draft        domain.Draft
	draftVersion int
	credential   string
	pending      *domain.Challenge
	answer       string
	feed         []domain.Post
	logs         []domain.LogRecord
}

func (s *Session) AppendMessage(role string, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, domain.ChatMessage{Role: role, Content: content})
}

func (s *Session) Messages() []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ChatMessage(nil), s.messages...)
}

func (s *Session) SetCredential(credential string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = credential
}

func (s *Session) Credential() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credential
}

func (s *Session) SetDraft(draft domain.Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = draft
	s.draftVersion++
}

func (s *Session) ClearDraft() {
	s.SetDraft(domain.Draft{Title: "", Content: ""})
}

func (s *Session) Draft() domain.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

func (s *Session) SetPending(challenge *domain.Challenge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = challenge
	s.answer = ""
}

func (s *Session) Pending() *domain.Challenge {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return nil
	}
	challenge := *s.pending
	return &challenge
}

func (s *Session) SetAnswer(answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answer = answer
}

func (s *Session) SetFeed(feed []domain.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feed = feed
}

func (s *Session) Feed() []domain.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Post(nil), s.feed...)
}

// LogCall records one outbound call, newest first.
func (s *Session) LogCall(record domain.LogRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record.Timestamp = time.Now().Format("15:04:05")
	s.logs = append([]domain.LogRecord{record}, s.logs...)
}

func (s *Session) Logs() []domain.LogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.LogRecord(nil), s.logs...)
}

func (s *Session) DraftView(notice components.Notice) components.DraftView {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := components.DraftView{
		Draft:   s.draft,
		Version: s.draftVersion,
		Linked:  s.credential != "",
		Answer:  s.answer,
		Notice:  notice,
	}
	if s.pending != nil {
		challenge := *s.pending
		view.Challenge = &challenge
	}
	return view
}

func (s *Session) View() components.View {
	return components.View{
		Username:  Username,
		Messages:  s.Messages(),
		Feed:      s.Feed(),
		Logs:      s.Logs(),
		DraftView: s.DraftView(components.Notice{}),
	}
}

const sessionCookie = "moltagent_session"

type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: map[string]*Session{}}
}

// Get resolves the request's session, creating one (with the intro message
// already in the chat history) on first contact.
func (s *SessionStore) Get(w http.ResponseWriter, r *http.Request) *Session {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		s.mu.Lock()
		session, ok := s.sessions[cookie.Value]
		s.mu.Unlock()
		if ok {
			return session
		}
	}

	session := &Session{Id: uuid.New().String()}
	session.messages = append(session.messages, domain.ChatMessage{Role: "assistant", Content: introMessage})

	s.mu.Lock()
	s.sessions[session.Id] = session
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: session.Id, Path: "/", HttpOnly: true})
	return session
}
