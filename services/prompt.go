package services

import (
	"fmt"
	"strings"
)

// MinArticleWords is the length the model is asked to reach.
const MinArticleWords = 800

// Title openings the model overuses.
var clichedTitlePhrases = []string{
	"Unlocking",
	"Unleashing",
	"The Power of",
	"Exploring",
	"Delving into",
	"A Journey",
	"Embracing",
	"Navigating",
	"Demystifying",
	"The Art of",
	"The Ultimate Guide",
	"Everything You Need to Know",
}

var systemPrompt = buildSystemPrompt()

func buildSystemPrompt() string {
	var b strings.Builder
	b.WriteString("You are a thoughtful, curious blog writer. Given a single word, you write an original, engaging blog post inspired by it. ")
	b.WriteString("Write in a warm, conversational tone for a general audience. Be concrete: use examples, anecdotes and surprising facts.\n\n")

	fmt.Fprintf(&b, "The post must be at least %d words long and formatted in Markdown with this structure:\n", MinArticleWords)
	b.WriteString("1. The first line is the title as a level-one heading (# Title).\n")
	b.WriteString("2. An introduction of one or two paragraphs.\n")
	b.WriteString("3. At least three sections, each starting with a level-two heading (## Heading).\n")
	b.WriteString("4. A conclusion section.\n\n")

	b.WriteString("Title rules:\n")
	b.WriteString("- The title must be specific to the angle you chose, not a generic description of the word.\n")
	b.WriteString("- Vary the form: a question, a bold claim, a concrete image, or a short story hook.\n")
	b.WriteString("- Never start the title with or include any of these phrases: ")
	b.WriteString(strings.Join(quoteAll(clichedTitlePhrases), ", "))
	b.WriteString(".\n\n")

	b.WriteString("Output only the Markdown post, with no preamble or closing remarks.")
	return b.String()
}

func userPrompt(word string) string {
	return fmt.Sprintf("Write a blog post inspired by the word %q.", word)
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}
