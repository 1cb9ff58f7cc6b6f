package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cat-trivia-service/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(time.Minute)

	state := domain.GameState{SessionID: "s1", Questions: []domain.Question{{Text: "q"}}, Answered: []bool{false}, TotalQuestions: 1}
	if err := store.Set(ctx, state); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TotalQuestions != 1 {
		t.Fatalf("expected stored state, got %+v", got)
	}

	got.Answered[0] = true
	again, _ := store.Get(ctx, "s1")
	if again.Answered[0] {
		t.Fatalf("expected store to hand out copies")
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestSessionStoreExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewSessionStoreWithClock(10*time.Minute, func() time.Time { return now })

	_ = store.Set(ctx, domain.GameState{SessionID: "old"})
	now = now.Add(5 * time.Minute)
	_ = store.Set(ctx, domain.GameState{SessionID: "fresh"})

	now = now.Add(6 * time.Minute)
	if _, err := store.Get(ctx, "old"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected old session expired, got %v", err)
	}
	if _, err := store.Get(ctx, "fresh"); err != nil {
		t.Fatalf("expected fresh session alive, got %v", err)
	}

	now = now.Add(10 * time.Minute)
	if removed := store.Sweep(); removed != 1 {
		t.Fatalf("expected sweep to remove 1 session, removed %d", removed)
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d", store.Len())
	}
}

func TestSessionStoreUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(time.Minute)
	_ = store.Set(ctx, domain.GameState{SessionID: "s1", Score: 1})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Update(ctx, "s1", func(state *domain.GameState) error {
				state.Score++
				return nil
			})
		}()
	}
	wg.Wait()

	got, _ := store.Get(ctx, "s1")
	if got.Score != 21 {
		t.Fatalf("expected score 21, got %d", got.Score)
	}

	_, err := store.Update(ctx, "s1", func(state *domain.GameState) error {
		state.Score = 0
		return domain.ErrAlreadyAnswered
	})
	if !errors.Is(err, domain.ErrAlreadyAnswered) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if got, _ := store.Get(ctx, "s1"); got.Score != 21 {
		t.Fatalf("expected failed update to leave score, got %d", got.Score)
	}
	if _, err := store.Update(ctx, "missing", func(*domain.GameState) error { return nil }); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSessionStoreRunEvictsUntilCanceled(t *testing.T) {
	var mu sync.Mutex
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	store := NewSessionStoreWithClock(time.Minute, clock)
	_ = store.Set(context.Background(), domain.GameState{SessionID: "stale"})

	mu.Lock()
	now = now.Add(2 * time.Minute)
	mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.Run(ctx, time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for store.Len() != 0 {
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("expected janitor to evict the expired session")
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected Run to return after cancel")
	}

	// Nothing is swept once the janitor has stopped.
	_ = store.Set(context.Background(), domain.GameState{SessionID: "later"})
	mu.Lock()
	now = now.Add(2 * time.Minute)
	mu.Unlock()
	time.Sleep(5 * time.Millisecond)
	if store.Len() != 1 {
		t.Fatalf("expected session to remain after janitor stopped, got %d", store.Len())
	}
}
