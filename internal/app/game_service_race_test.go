package app_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"cat-trivia-service/internal/app"
	"cat-trivia-service/internal/domain"
	"cat-trivia-service/internal/infra/memory"
	"cat-trivia-service/internal/quiz"
)

// laggyStore reads, waits and writes back, like a remote store with no transactions.
type laggyStore struct {
	*memory.SessionStore
}

func (s laggyStore) Get(ctx context.Context, sessionID string) (domain.GameState, error) {
	state, err := s.SessionStore.Get(ctx, sessionID)
	time.Sleep(time.Millisecond)
	return state, err
}

func (s laggyStore) Update(ctx context.Context, sessionID string, fn func(*domain.GameState) error) (domain.GameState, error) {
	state, err := s.Get(ctx, sessionID)
	if err != nil {
		return domain.GameState{}, err
	}
	if err := fn(&state); err != nil {
		return domain.GameState{}, err
	}
	return state, s.Set(ctx, state)
}

func newLaggyService() *app.GameService {
	return app.NewGameService(
		laggyStore{memory.NewSessionStore(time.Minute)},
		app.NewSourceChain(memory.NewStaticSource(memory.DefaultQuestions())),
		quiz.NewBuilderWithRand(rand.New(rand.NewSource(3))),
	)
}

func TestConcurrentAnswersAllCount(t *testing.T) {
	ctx := context.Background()
	service := newLaggyService()

	state, err := service.Start(ctx, app.StartRequest{Difficulty: "easy", Count: 5})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	var wg sync.WaitGroup
	for i, q := range state.Questions {
		wg.Add(1)
		go func(idx, selected int) {
			defer wg.Done()
			if _, err := service.RecordAnswer(ctx, state.SessionID, idx, selected); err != nil {
				t.Errorf("answer %d: %v", idx, err)
			}
		}(i, q.CorrectIndex)
	}
	wg.Wait()

	final, err := service.Get(ctx, state.SessionID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if final.Score != len(state.Questions) {
		t.Fatalf("expected score %d, got %d", len(state.Questions), final.Score)
	}
}

func TestConcurrentDuplicateAnswerAcceptedOnce(t *testing.T) {
	ctx := context.Background()
	service := newLaggyService()

	state, err := service.Start(ctx, app.StartRequest{Difficulty: "easy", Count: 3})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	correct := state.Questions[0].CorrectIndex

	const attempts = 4
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.RecordAnswer(ctx, state.SessionID, 0, correct)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	accepted := 0
	for err := range results {
		switch {
		case err == nil:
			accepted++
		case !errors.Is(err, domain.ErrAlreadyAnswered):
			t.Fatalf("unexpected error %v", err)
		}
	}
	if accepted != 1 {
		t.Fatalf("expected exactly one accepted answer, got %d", accepted)
	}
	if final, _ := service.Get(ctx, state.SessionID); final.Score != 1 {
		t.Fatalf("expected score 1, got %d", final.Score)
	}
}

func TestConcurrentAdvanceStopsAtEnd(t *testing.T) {
	ctx := context.Background()
	service := newLaggyService()

	state, err := service.Start(ctx, app.StartRequest{Difficulty: "hard", Count: 3})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = service.Advance(ctx, state.SessionID)
		}()
	}
	wg.Wait()

	final, _ := service.Get(ctx, state.SessionID)
	if final.CurrentIndex != final.TotalQuestions {
		t.Fatalf("expected index %d, got %d", final.TotalQuestions, final.CurrentIndex)
	}
}
