package schemas

import (
	"regexp"
	"strings"
)

var reasoningBlockRegex = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripReasoning removes <think>...</think> blocks emitted by reasoning models and trims the rest.
func StripReasoning(text string) string {
	return strings.TrimSpace(reasoningBlockRegex.ReplaceAllString(text, ""))
}
