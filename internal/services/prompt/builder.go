// File: internal/services/prompt/builder.go
package prompt

import (
	"strings"

	"github.com/citizenslab/citizens-chat/internal/domain"
)

// DefaultSystemInstruction is prepended when the history carries no system turn.
const DefaultSystemInstruction = "You are a helpful assistant."

// AssistantMarker is the display-form marker that opens an assistant turn.
// Backends that echo the prompt are stripped up to its last occurrence.
const AssistantMarker = "Assistant: "

const userMarker = "User: "

// Turn is one (role, content) pair of a prompt.
type Turn struct {
	Role    string
	Content string
}

// Prompt is the backend-ready representation of a conversation's history plus
// the new user message. It is immutable once built and consumed exactly once.
type Prompt struct {
	Turns []Turn
}

// Builder turns message history plus a new user message into a Prompt.
// Build is a pure function: same inputs always yield the same Prompt.
type Builder struct {
	systemInstruction string
}

func NewBuilder(systemInstruction string) *Builder {
	return &Builder{systemInstruction: systemInstruction}
}

// Build constructs a Prompt from history (already in ascending timestamp
// order; this component does not sort) and the new user message, appended as
// the trailing user turn. A system instruction is prepended when none is
// present in history. Messages with missing content become empty strings so a
// single malformed row cannot block the whole turn.
func (b *Builder) Build(history []domain.Message, newMessage string) Prompt {
	turns := make([]Turn, 0, len(history)+2)

	if b.systemInstruction != "" && !hasSystemTurn(history) {
		turns = append(turns, Turn{Role: domain.RoleSystem, Content: b.systemInstruction})
	}

	for _, msg := range history {
		role := msg.Role
		if role != domain.RoleUser && role != domain.RoleSystem {
			role = domain.RoleAssistant
		}
		turns = append(turns, Turn{Role: role, Content: msg.Content})
	}

	turns = append(turns, Turn{Role: domain.RoleUser, Content: newMessage})

	return Prompt{Turns: turns}
}

func hasSystemTurn(history []domain.Message) bool {
	for _, msg := range history {
		if msg.Role == domain.RoleSystem {
			return true
		}
	}
	return false
}

// Flatten renders the prompt as a single display string for backends that
// take an unstructured prompt: user turns become "User: ...", anything else
// "Assistant: ...", with a trailing assistant marker awaiting the
// continuation.
func (p Prompt) Flatten() string {
	var b strings.Builder
	for _, turn := range p.Turns {
		if turn.Role == domain.RoleUser {
			b.WriteString(userMarker)
		} else {
			b.WriteString(AssistantMarker)
		}
		b.WriteString(turn.Content)
		b.WriteString("\n")
	}
	b.WriteString(AssistantMarker)
	return b.String()
}
