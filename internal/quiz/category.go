package quiz

import "strings"

const (
	// DefaultCount is used when a request does not name a question count.
	DefaultCount = 10
	// MaxCount caps the questions in a single game.
	MaxCount = 20
)

// ClampCount applies the default and clamps n to [1, MaxCount].
func ClampCount(n int) int {
	switch {
	case n == 0:
		return DefaultCount
	case n < 1:
		return 1
	case n > MaxCount:
		return MaxCount
	}
	return n
}

// CategoryFilter turns a requested category into a case-insensitive
// substring filter over category labels. An empty filter matches everything.
func CategoryFilter(category string) string {
	c := strings.ToLower(strings.TrimSpace(category))
	switch c {
	case "", "all", "mixed", "any":
		return ""
	case "cats":
		return "cat"
	}
	return c
}

// MatchesCategory reports whether label satisfies filter.
func MatchesCategory(label, filter string) bool {
	if filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(label), filter)
}
