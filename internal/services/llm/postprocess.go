// File: internal/services/llm/postprocess.go
package llm

import (
	"strings"

	"github.com/citizenslab/citizens-chat/internal/services/prompt"
)

// ExtractReply normalizes raw backend output. Local and self-hosted models
// often return prompt+continuation; everything up to and including the last
// assistant-turn marker is stripped so only the continuation remains. Output
// without a marker is returned verbatim, trimmed of surrounding whitespace.
func ExtractReply(raw string) string {
	marker := strings.TrimSpace(prompt.AssistantMarker)
	if idx := strings.LastIndex(raw, marker); idx >= 0 {
		return strings.TrimSpace(raw[idx+len(marker):])
	}
	return strings.TrimSpace(raw)
}
