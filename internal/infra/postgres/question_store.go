package postgres

import (
	"context"
	"fmt"

	"cat-trivia-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

const defaultCandidateLimit = 200

// QuestionStore reads candidate questions from the questions table.
type QuestionStore struct {
	pool  *pgxpool.Pool
	limit int
}

func NewQuestionStore(pool *pgxpool.Pool) *QuestionStore {
	return &QuestionStore{pool: pool, limit: defaultCandidateLimit}
}

func (s *QuestionStore) Name() string {
	return "postgres"
}

// FetchCandidates returns questions of the given difficulty whose category
// contains categoryFilter (case-insensitive). Row order carries no meaning.
func (s *QuestionStore) FetchCandidates(ctx context.Context, difficulty domain.Difficulty, categoryFilter string) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, text, options, correct_index, explanation, category, difficulty
		FROM questions
		WHERE difficulty = $1 AND ($2 = '' OR category ILIKE '%' || $2 || '%')
		ORDER BY random()
		LIMIT $3`, string(difficulty), categoryFilter, s.limit)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var out []domain.Question
	for rows.Next() {
		var (
			q          domain.Question
			difficulty string
		)
		if err := rows.Scan(&q.ID, &q.Text, &q.Options, &q.CorrectIndex, &q.Explanation, &q.Category, &difficulty); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Difficulty = domain.Difficulty(difficulty)
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return out, nil
}
