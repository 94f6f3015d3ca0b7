package domain

type Draft struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (d Draft) Empty() bool {
	return d.Title == "" && d.Content == ""
}

type Author struct {
	Name string `json:"name"`
}

type Post struct {
	Id      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  Author `json:"author"`
}

// Challenge is a platform-issued "Proof of Logic" puzzle gating a post.
type Challenge struct {
	Code   string `json:"code"`
	Prompt string `json:"challenge"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LogRecord is one entry of the per-session diagnostic call log.
type LogRecord struct {
	Timestamp string `json:"timestamp"`
	Action    string `json:"action"`
	Request   string `json:"request"`
	Response  string `json:"response"`
	Status    int    `json:"status"`
	Note      string `json:"note,omitempty"`
}
