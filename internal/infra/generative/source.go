package generative

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"cat-trivia-service/internal/domain"
	"cat-trivia-service/internal/quiz"
	"github.com/google/uuid"
)

const systemPrompt = `You write multiple-choice trivia questions about animals.
Respond with JSON only, no prose, in the form:
{"questions":[{"text":"...","options":["...","...","...","..."],"correctIndex":0,"explanation":"...","category":"..."}]}
Every question has exactly 4 distinct options and one correct answer.
Categories are short labels such as "Cat Anatomy", "Cat Breeds" or "Cat Behavior".`

// Source generates questions on demand; it sits late in the fallback chain.
type Source struct {
	llm   LLMClient
	count int
}

func NewSource(llm LLMClient, count int) *Source {
	if count <= 0 {
		count = 10
	}
	return &Source{llm: llm, count: count}
}

func (s *Source) Name() string {
	return "anthropic"
}

type generatedBatch struct {
	Questions []generatedQuestion `json:"questions"`
}

type generatedQuestion struct {
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
	Category     string   `json:"category"`
}

func (s *Source) FetchCandidates(ctx context.Context, difficulty domain.Difficulty, categoryFilter string) ([]domain.Question, error) {
	content, err := s.llm.Generate(ctx, systemPrompt, buildUserPrompt(difficulty, categoryFilter, s.count))
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}
	return parseQuestions(content, difficulty)
}

func buildUserPrompt(difficulty domain.Difficulty, categoryFilter string, count int) string {
	topic := "cats and other animals"
	if categoryFilter == "cat" {
		topic = "cats"
	} else if categoryFilter != "" {
		topic = fmt.Sprintf("cats, focused on %s", categoryFilter)
	}
	prompt := fmt.Sprintf("Write %d %s-difficulty trivia questions about %s.", count, difficulty, topic)
	if categoryFilter != "" {
		prompt += fmt.Sprintf(" Every category label must contain the word %q.", categoryFilter)
	}
	prompt += " Vary the categories and do not number the questions."
	return prompt
}

func parseQuestions(content string, difficulty domain.Difficulty) ([]domain.Question, error) {
	var batch generatedBatch
	if err := json.Unmarshal([]byte(stripCodeFences(content)), &batch); err != nil {
		return nil, fmt.Errorf("parse generated questions: %w", err)
	}

	out := make([]domain.Question, 0, len(batch.Questions))
	for _, g := range batch.Questions {
		out = append(out, domain.Question{
			ID:           "gen-" + uuid.NewString(),
			Text:         strings.TrimSpace(g.Text),
			Options:      g.Options,
			CorrectIndex: g.CorrectIndex,
			Explanation:  strings.TrimSpace(g.Explanation),
			Category:     strings.TrimSpace(g.Category),
			Difficulty:   difficulty,
		})
	}
	valid, rejected := quiz.FilterValid(out)
	if rejected > 0 {
		log.Printf("generative source: dropped %d malformed questions", rejected)
	}
	return valid, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "```json"))
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "```"))
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}
