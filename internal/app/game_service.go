package app

import (
	"context"
	"log"
	"time"

	"cat-trivia-service/internal/domain"
	"cat-trivia-service/internal/quiz"
	"github.com/google/uuid"
)

// SessionStore abstracts where game sessions live (in-memory, Redis, etc).
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (domain.GameState, error)
	Set(ctx context.Context, state domain.GameState) error
	Delete(ctx context.Context, sessionID string) error
	// Update applies fn to the stored state and saves it unless fn fails.
	// Stores shared between processes must apply it atomically.
	Update(ctx context.Context, sessionID string, fn func(*domain.GameState) error) (domain.GameState, error)
}

// StartRequest is what the presentation layer sends to begin a game.
type StartRequest struct {
	Difficulty string `json:"difficulty"`
	Category   string `json:"category"`
	Count      int    `json:"count"`
}

// GameService contains the game session use cases.
type GameService struct {
	sessions SessionStore
	sources  *SourceChain
	builder  *quiz.Builder
	now      func() time.Time
	locks    sessionLocks
}

func NewGameService(store SessionStore, sources *SourceChain, builder *quiz.Builder) *GameService {
	return NewGameServiceWithClock(store, sources, builder, time.Now)
}

// NewGameServiceWithClock is test-only for deterministic timestamps.
func NewGameServiceWithClock(store SessionStore, sources *SourceChain, builder *quiz.Builder, now func() time.Time) *GameService {
	return &GameService{sessions: store, sources: sources, builder: builder, now: now}
}

// Start gathers a question pool, finalizes it and registers a new session.
func (s *GameService) Start(ctx context.Context, req StartRequest) (domain.GameState, error) {
	difficulty, err := domain.ParseDifficulty(req.Difficulty)
	if err != nil {
		return domain.GameState{}, err
	}
	count := quiz.ClampCount(req.Count)

	pool, err := s.sources.Gather(ctx, difficulty, quiz.CategoryFilter(req.Category), count)
	if err != nil {
		return domain.GameState{}, err
	}

	questions := s.builder.Finalize(pool, difficulty, req.Category, count)
	if len(questions) == 0 {
		return domain.GameState{}, domain.ErrNoQuestions
	}
	if len(questions) < count {
		log.Printf("game pool short: wanted %d questions, built %d", count, len(questions))
	}

	now := s.now()
	state := domain.GameState{
		SessionID:      uuid.NewString(),
		Questions:      questions,
		Answered:       make([]bool, len(questions)),
		TotalQuestions: len(questions),
		Difficulty:     difficulty,
		Category:       req.Category,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.sessions.Set(ctx, state); err != nil {
		return domain.GameState{}, err
	}
	log.Printf("game %s started with %d %s questions", state.SessionID, state.TotalQuestions, difficulty)
	return state, nil
}

// Get returns the current state of a session.
func (s *GameService) Get(ctx context.Context, sessionID string) (domain.GameState, error) {
	return s.sessions.Get(ctx, sessionID)
}

// RecordAnswer scores the selected option for one question of the session.
// Each question accepts a single answer, even when submissions race.
func (s *GameService) RecordAnswer(ctx context.Context, sessionID string, questionIndex, selectedIndex int) (domain.AnswerResult, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	var res domain.AnswerResult
	_, err := s.sessions.Update(ctx, sessionID, func(state *domain.GameState) error {
		if questionIndex < 0 || questionIndex >= len(state.Questions) {
			return domain.ErrQuestionIndexOutOfRange
		}
		question := state.Questions[questionIndex]
		if selectedIndex < 0 || selectedIndex >= len(question.Options) {
			return domain.ErrInvalidOption
		}
		if len(state.Answered) != len(state.Questions) {
			state.Answered = make([]bool, len(state.Questions))
		}
		if state.Answered[questionIndex] {
			return domain.ErrAlreadyAnswered
		}

		correct := selectedIndex == question.CorrectIndex
		state.Answered[questionIndex] = true
		if correct {
			state.Score++
		}
		state.UpdatedAt = s.now()

		res = domain.AnswerResult{
			IsCorrect:    correct,
			CorrectIndex: question.CorrectIndex,
			Explanation:  question.Explanation,
			Score:        state.Score,
		}
		return nil
	})
	if err != nil {
		return domain.AnswerResult{}, err
	}
	return res, nil
}

// Advance moves the session to the next question. It never moves past the end.
func (s *GameService) Advance(ctx context.Context, sessionID string) (domain.AdvanceResult, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	state, err := s.sessions.Update(ctx, sessionID, func(state *domain.GameState) error {
		if !state.IsFinished() {
			state.CurrentIndex++
			state.UpdatedAt = s.now()
		}
		return nil
	})
	if err != nil {
		return domain.AdvanceResult{}, err
	}
	return domain.AdvanceResult{
		CurrentIndex: state.CurrentIndex,
		IsFinished:   state.IsFinished(),
		Score:        state.Score,
	}, nil
}

// Stop ends the game and removes the session.
func (s *GameService) Stop(ctx context.Context, sessionID string) (domain.StopResult, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.StopResult{}, err
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return domain.StopResult{}, err
	}
	log.Printf("game %s stopped: %d/%d", sessionID, state.Score, state.TotalQuestions)
	return domain.StopResult{
		FinalScore:     state.Score,
		TotalQuestions: state.TotalQuestions,
	}, nil
}
