package app_test

import (
	"context"
	"errors"
	"testing"

	"cat-trivia-service/internal/app"
	"cat-trivia-service/internal/domain"
)

func TestSourceChainStopsWhenSatisfied(t *testing.T) {
	first := &fakeSource{name: "db", questions: questions("a", "b", "c")}
	second := &fakeSource{name: "api", questions: questions("d", "e")}
	chain := app.NewSourceChain(first, second)

	pool, err := chain.Gather(context.Background(), domain.DifficultyEasy, "cat", 3)
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(pool) != 3 || second.calls != 0 {
		t.Fatalf("expected first source to satisfy request, pool=%d second calls=%d", len(pool), second.calls)
	}
}

func TestSourceChainFallsBack(t *testing.T) {
	broken := &fakeSource{name: "db", err: errors.New("connection refused")}
	dupes := &fakeSource{name: "api", questions: questions("Quiz #1: a", "Q2: a", "b")}
	last := &fakeSource{name: "static", questions: questions("c", "d")}
	malformed := domain.Question{Text: "bad", Options: []string{"x"}}
	dupes.questions = append(dupes.questions, malformed)

	pool, err := app.NewSourceChain(broken, dupes, last).Gather(context.Background(), domain.DifficultyEasy, "", 4)
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if broken.calls != 1 || dupes.calls != 1 || last.calls != 1 {
		t.Fatalf("expected every source tried once, got %d %d %d", broken.calls, dupes.calls, last.calls)
	}
	if len(pool) != 5 {
		t.Fatalf("expected 5 valid candidates, got %d", len(pool))
	}
}

func TestSourceChainHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := app.NewSourceChain(&fakeSource{name: "db"}).Gather(ctx, domain.DifficultyEasy, "", 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}

type fakeSource struct {
	name      string
	questions []domain.Question
	err       error
	calls     int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) FetchCandidates(_ context.Context, _ domain.Difficulty, _ string) ([]domain.Question, error) {
	f.calls++
	return f.questions, f.err
}

func questions(texts ...string) []domain.Question {
	out := make([]domain.Question, 0, len(texts))
	for _, text := range texts {
		out = append(out, domain.Question{
			Text:         text,
			Options:      []string{"w", "x", "y", "z"},
			CorrectIndex: 1,
			Category:     "Cat Facts",
			Difficulty:   domain.DifficultyEasy,
		})
	}
	return out
}
