package quiz

import (
	"fmt"
	"strings"

	"cat-trivia-service/internal/domain"
)

// Validate requires non-empty text, four distinct non-empty options and an in-range answer.
func Validate(q domain.Question) error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: empty text", domain.ErrMalformedQuestion)
	}
	if len(q.Options) != domain.OptionCount {
		return fmt.Errorf("%w: %d options", domain.ErrMalformedQuestion, len(q.Options))
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return fmt.Errorf("%w: correct index %d", domain.ErrMalformedQuestion, q.CorrectIndex)
	}
	seen := make(map[string]struct{}, len(q.Options))
	for _, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return fmt.Errorf("%w: empty option", domain.ErrMalformedQuestion)
		}
		if _, ok := seen[opt]; ok {
			return fmt.Errorf("%w: duplicate option %q", domain.ErrMalformedQuestion, opt)
		}
		seen[opt] = struct{}{}
	}
	return nil
}

// FilterValid drops malformed records before they reach the selection pool.
func FilterValid(pool []domain.Question) ([]domain.Question, int) {
	valid := make([]domain.Question, 0, len(pool))
	rejected := 0
	for _, q := range pool {
		if err := Validate(q); err != nil {
			rejected++
			continue
		}
		valid = append(valid, q)
	}
	return valid, rejected
}

// DistinctKeys counts the questions in pool with pairwise distinct comparison keys.
func DistinctKeys(pool []domain.Question) int {
	seen := make(map[string]struct{}, len(pool))
	for _, q := range pool {
		seen[ComparisonKey(q.Text)] = struct{}{}
	}
	return len(seen)
}
