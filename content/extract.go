package content

import (
	"strings"
)

const (
	TagGenerated = "ai-generated"
	TagManual    = "manual"
)

// ExtractTitle returns the first non-empty line of generated text with any
// leading heading markers removed. Text without a usable line falls back to
// "Blog about {word}".
func ExtractTitle(text, word string) string {
	for _, line := range strings.Split(text, "\n") {
		title := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#"))
		if title != "" {
			return title
		}
	}
	return "Blog about " + word
}

// GeneratedTags are the tags of a post produced from word.
func GeneratedTags(word string) []string {
	return []string{strings.ToLower(word), TagGenerated}
}

// ManualTags cleans user supplied tags and appends the manual marker once.
func ManualTags(tags []string) []string {
	out := make([]string, 0, len(tags)+1)
	seen := make(map[string]struct{}, len(tags)+1)
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if _, ok := seen[TagManual]; !ok {
		out = append(out, TagManual)
	}
	return out
}

// SplitTags splits a comma separated tag string.
func SplitTags(s string) []string {
	return strings.Split(s, ",")
}
