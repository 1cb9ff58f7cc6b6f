package app

import (
	"context"
	"log"

	"cat-trivia-service/internal/domain"
	"cat-trivia-service/internal/quiz"
)

// QuestionSource is one provider in the fallback chain (database, trivia API, generator, constants).
type QuestionSource interface {
	Name() string
	FetchCandidates(ctx context.Context, difficulty domain.Difficulty, categoryFilter string) ([]domain.Question, error)
}

// SourceChain queries sources in order until enough distinct questions are gathered.
type SourceChain struct {
	sources []QuestionSource
}

func NewSourceChain(sources ...QuestionSource) *SourceChain {
	return &SourceChain{sources: sources}
}

// Gather returns the combined valid candidates. Failing sources are skipped;
// only context cancellation is reported as an error.
func (c *SourceChain) Gather(ctx context.Context, difficulty domain.Difficulty, categoryFilter string, want int) ([]domain.Question, error) {
	var pool []domain.Question
	for _, src := range c.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		candidates, err := src.FetchCandidates(ctx, difficulty, categoryFilter)
		if err != nil {
			log.Printf("question source %s failed, falling back: %v", src.Name(), err)
			continue
		}
		valid, rejected := quiz.FilterValid(candidates)
		if rejected > 0 {
			log.Printf("question source %s: dropped %d malformed records", src.Name(), rejected)
		}
		pool = append(pool, valid...)

		if quiz.DistinctKeys(pool) >= want {
			break
		}
	}
	return pool, nil
}
