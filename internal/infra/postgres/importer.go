package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cat-trivia-service/internal/domain"
	"cat-trivia-service/internal/quiz"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type questionRow struct {
	bun.BaseModel `bun:"table:questions"`

	ID           string    `bun:"id,pk"`
	Text         string    `bun:"text,notnull"`
	Options      []string  `bun:"options,array"`
	CorrectIndex int       `bun:"correct_index"`
	Explanation  string    `bun:"explanation"`
	Category     string    `bun:"category"`
	Difficulty   string    `bun:"difficulty"`
	DedupKey     string    `bun:"dedup_key"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// ImportReport summarizes a bulk load.
type ImportReport struct {
	Read       int
	Invalid    int
	Duplicates int
	Inserted   int
}

// Importer bulk-loads question files into the questions table.
// Rows whose comparison key already exists are skipped.
type Importer struct {
	db        *bun.DB
	batchSize int
}

func NewImporter(db *bun.DB) *Importer {
	return &Importer{db: db, batchSize: 500}
}

func (i *Importer) Import(ctx context.Context, questions []domain.Question) (ImportReport, error) {
	rows, report := prepareRows(questions)

	for start := 0; start < len(rows); start += i.batchSize {
		end := start + i.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]
		res, err := i.db.NewInsert().
			Model(&batch).
			On("CONFLICT (dedup_key) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return report, fmt.Errorf("insert questions: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return report, fmt.Errorf("rows affected: %w", err)
		}
		report.Inserted += int(affected)
		report.Duplicates += len(batch) - int(affected)
	}
	return report, nil
}

// prepareRows validates, cleans and deduplicates questions before insertion.
func prepareRows(questions []domain.Question) ([]questionRow, ImportReport) {
	report := ImportReport{Read: len(questions)}
	seen := make(map[string]struct{}, len(questions))
	rows := make([]questionRow, 0, len(questions))

	for _, q := range questions {
		if !q.Difficulty.Valid() || strings.TrimSpace(q.Category) == "" {
			report.Invalid++
			continue
		}
		if err := quiz.Validate(q); err != nil {
			report.Invalid++
			continue
		}
		key := quiz.ComparisonKey(q.Text)
		if _, ok := seen[key]; ok {
			report.Duplicates++
			continue
		}
		seen[key] = struct{}{}

		id := q.ID
		if id == "" {
			id = uuid.NewString()
		}
		rows = append(rows, questionRow{
			ID:           id,
			Text:         strings.TrimSpace(quiz.StripEnumerationPrefix(q.Text)),
			Options:      q.Options,
			CorrectIndex: q.CorrectIndex,
			Explanation:  q.Explanation,
			Category:     strings.TrimSpace(q.Category),
			Difficulty:   string(q.Difficulty),
			DedupKey:     key,
		})
	}
	return rows, report
}
