package app

import (
	"encoding/json"
	"strings"

	"github.com/leo448/moltagent/internal/domain"
)

// draftFromModel extracts the draft JSON span from a model reply. Models wrap
// the JSON in fences or narration, so everything outside the outermost braces
// is ignored. Unusable output becomes a fallback draft carrying the raw text.
func draftFromModel(raw string, fallbackTitle string) domain.Draft {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")

	if start >= 0 && end > start {
		var draft domain.Draft
		err := json.Unmarshal([]byte(raw[start:end+1]), &draft)
		if err == nil && !draft.Empty() {
			return draft
		}
	}

	return domain.Draft{Title: fallbackTitle, Content: raw}
}
