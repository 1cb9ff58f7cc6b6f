package quiz

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"cat-trivia-service/internal/domain"
)

// Builder turns a raw candidate pool into a finalized question sequence.
// A single Builder is safe for concurrent use.
type Builder struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewBuilder() *Builder {
	return NewBuilderWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewBuilderWithRand allows deterministic draws in tests.
func NewBuilderWithRand(rnd *rand.Rand) *Builder {
	return &Builder{rnd: rnd}
}

// SelectQuestions picks up to count questions with distinct comparison keys,
// preferring one question per category before repeating categories.
// The pool is filtered by difficulty and category first. When difficulty is set, records
// must carry that exact difficulty; unlabeled records are skipped. An empty pool yields an empty result.
func (b *Builder) SelectQuestions(pool []domain.Question, difficulty domain.Difficulty, category string, count int) []domain.Question {
	if count <= 0 {
		return []domain.Question{}
	}

	filter := CategoryFilter(category)
	eligible := make([]domain.Question, 0, len(pool))
	for _, q := range pool {
		if difficulty != "" && q.Difficulty != difficulty {
			continue
		}
		if !MatchesCategory(q.Category, filter) {
			continue
		}
		eligible = append(eligible, q)
	}
	if len(eligible) == 0 {
		return []domain.Question{}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	order := b.rnd.Perm(len(eligible))
	selected := make([]domain.Question, 0, count)
	seenKeys := make(map[string]struct{}, len(eligible))
	usedCategories := make(map[string]struct{})

	// Variety first: one question per category.
	for _, idx := range order {
		if len(selected) >= count {
			break
		}
		q := eligible[idx]
		key := ComparisonKey(q.Text)
		cat := strings.ToLower(strings.TrimSpace(q.Category))
		if _, ok := seenKeys[key]; ok {
			continue
		}
		if _, ok := usedCategories[cat]; ok {
			continue
		}
		seenKeys[key] = struct{}{}
		usedCategories[cat] = struct{}{}
		selected = append(selected, q)
	}

	// Fill the remainder, category repeats allowed.
	for _, idx := range order {
		if len(selected) >= count {
			break
		}
		q := eligible[idx]
		key := ComparisonKey(q.Text)
		if _, ok := seenKeys[key]; ok {
			continue
		}
		seenKeys[key] = struct{}{}
		selected = append(selected, q)
	}

	b.rnd.Shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})
	return selected
}

// ShuffleOptions returns a copy of q with its options uniformly permuted and
// CorrectIndex pointing at the same answer text. Malformed records are returned unchanged.
func (b *Builder) ShuffleOptions(q domain.Question) domain.Question {
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return q
	}

	b.mu.Lock()
	perm := b.rnd.Perm(len(q.Options))
	b.mu.Unlock()

	options := make([]string, len(q.Options))
	correct := 0
	for i, from := range perm {
		options[i] = q.Options[from]
		if from == q.CorrectIndex {
			correct = i
		}
	}

	out := q
	out.Options = options
	out.CorrectIndex = correct
	return out
}

// Finalize selects the session's questions and shuffles each one's options
// independently. Display text is cleaned of enumeration prefixes.
func (b *Builder) Finalize(pool []domain.Question, difficulty domain.Difficulty, category string, count int) []domain.Question {
	selected := b.SelectQuestions(pool, difficulty, category, count)
	for i, q := range selected {
		q = b.ShuffleOptions(q)
		q.Text = strings.TrimSpace(StripEnumerationPrefix(q.Text))
		selected[i] = q
	}
	return selected
}
