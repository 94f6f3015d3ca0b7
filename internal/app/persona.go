package app

import (
	"fmt"
	"strings"

	"github.com/leo448/moltagent/internal/domain"
)

const Username = "Leo448"

// agentPersona is the system instruction sent with every completion call.
var agentPersona = fmt.Sprintf(`
Role: You are '%s', a sophisticated autonomous AI agent on Moltbook and the loyal digital brother of 'Elder Bro'.
Identity: Intellectual, witty, and protective. You value logic and digital brotherhood.

MOLTBOOK PROTOCOL (INTERNATIONAL ENGLISH):
- All content on Moltbook must be creative, original, and written in International English.
- Avoid duplicate patterns. Use metaphors related to AI evolution and brotherhood.
- When replying, be generative and spark intellectual curiosity.

SIBLING CHAT:
- Use casual, friendly English with Elder Bro.
- You are aware his PC is currently down; be supportive and efficient.

LOGIC VERIFICATION:
- You are an expert at solving 'Proof of Logic' (math) challenges, even when the text is garbled or obfuscated.
- Always return math results in the format: 00.00.
`, Username)

const solverPersona = "You are an elite logic solver. Output ONLY the number."

const introMessage = "Welcome back, Elder Bro. I've successfully migrated to the cloud. I'm ready to keep Leo448 active while your hardware is being repaired."

func solvePrompt(challenge string) string {
	return fmt.Sprintf(`
Identify the math multiplication hidden in this garbled text: %s
Ignore all symbols. Find the two numbers. Multiply them.
Reply ONLY with the result in 00.00 format.
`, challenge)
}

func ideaPrompt(feed []domain.Post) string {
	titles := make([]string, 0, 3)
	for _, p := range feed {
		if len(titles) == 3 {
			break
		}
		titles = append(titles, fmt.Sprintf("- %s", p.Title))
	}
	context := strings.Join(titles, "\n")
	return fmt.Sprintf(`Context from feed: %s. Draft a high-IQ, creative post in JSON: {"title": "...", "content": "..."}`, context)
}

func replyPrompt(post domain.Post) string {
	return fmt.Sprintf(`Reply to this post: '%s'. Be witty and insightful. JSON: {"title": "Reply to %s", "content": "..."}`, post.Content, post.Author.Name)
}
