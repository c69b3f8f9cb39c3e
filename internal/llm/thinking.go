package llm

import (
	"regexp"
	"strings"
)

var thinkPattern = regexp.MustCompile(`(?s)<think>(.*?)</think>`)

// SplitThinking separates <think>...</think> sections emitted by reasoning
// models from the visible answer. The returned text has the tags removed;
// each thinking section is returned trimmed, in order.
func SplitThinking(content string) (string, []string) {
	matches := thinkPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return content, nil
	}

	thinking := make([]string, 0, len(matches))
	for _, m := range matches {
		thinking = append(thinking, strings.TrimSpace(m[1]))
	}

	text := strings.TrimSpace(thinkPattern.ReplaceAllString(content, ""))
	return text, thinking
}
