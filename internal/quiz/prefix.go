package quiz

import (
	"regexp"
	"strings"
)

// enumerationPrefix matches the numbering injected by the seeding scripts:
// "Quiz #12:", "Question 7:", "Q3:", "Trivia #9:".
var enumerationPrefix = regexp.MustCompile(`(?i)^\s*(?:quiz|question|trivia|q)\s*#?\s*\d+\s*:\s*`)

// StripEnumerationPrefix removes a single leading enumeration prefix from text.
func StripEnumerationPrefix(text string) string {
	return enumerationPrefix.ReplaceAllString(text, "")
}

// ComparisonKey is the normalized form of a question text used for duplicate detection.
func ComparisonKey(text string) string {
	return strings.ToLower(strings.TrimSpace(StripEnumerationPrefix(text)))
}
