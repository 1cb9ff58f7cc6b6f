package domain

import (
	"strings"
	"time"
)

// OptionCount is the number of answer options every question carries.
const OptionCount = 4

// Difficulty is the requested question difficulty band.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty normalizes raw input; empty input defaults to medium.
func ParseDifficulty(raw string) (Difficulty, error) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		return DifficultyMedium, nil
	case DifficultyEasy:
		return DifficultyEasy, nil
	case DifficultyMedium:
		return DifficultyMedium, nil
	case DifficultyHard:
		return DifficultyHard, nil
	}
	return "", ErrInvalidDifficulty
}

// Valid reports whether d is one of the known bands.
func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// Question models a multiple-choice trivia question with exactly one correct option.
type Question struct {
	ID           string     `json:"id,omitempty" yaml:"id,omitempty"`
	Text         string     `json:"text" yaml:"text"`
	Options      []string   `json:"options" yaml:"options"`
	CorrectIndex int        `json:"correctIndex" yaml:"correctIndex"`
	Explanation  string     `json:"explanation" yaml:"explanation"`
	Category     string     `json:"category" yaml:"category"`
	Difficulty   Difficulty `json:"difficulty" yaml:"difficulty"`
}

// CorrectAnswer returns the text of the correct option, or "" for malformed records.
func (q Question) CorrectAnswer() string {
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return ""
	}
	return q.Options[q.CorrectIndex]
}

// PublicQuestion is the client-facing view of a question; the answer is withheld.
type PublicQuestion struct {
	Index      int        `json:"index"`
	Text       string     `json:"text"`
	Options    []string   `json:"options"`
	Category   string     `json:"category"`
	Difficulty Difficulty `json:"difficulty"`
}

// GameState is one player's playthrough of a fixed question sequence.
type GameState struct {
	SessionID      string     `json:"sessionId"`
	Questions      []Question `json:"questions"`
	Answered       []bool     `json:"answered"`
	CurrentIndex   int        `json:"currentIndex"`
	Score          int        `json:"score"`
	TotalQuestions int        `json:"totalQuestions"`
	Difficulty     Difficulty `json:"difficulty"`
	Category       string     `json:"category"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// IsFinished reports whether the player has advanced past the last question.
func (s GameState) IsFinished() bool {
	return s.CurrentIndex >= s.TotalQuestions
}

// Clone returns a deep copy so stores never share slices with callers.
func (s GameState) Clone() GameState {
	out := s
	out.Questions = make([]Question, len(s.Questions))
	for i, q := range s.Questions {
		q.Options = append([]string(nil), q.Options...)
		out.Questions[i] = q
	}
	out.Answered = append([]bool(nil), s.Answered...)
	return out
}

// PublicQuestions returns the questions without answers or explanations.
func (s GameState) PublicQuestions() []PublicQuestion {
	out := make([]PublicQuestion, 0, len(s.Questions))
	for i, q := range s.Questions {
		out = append(out, PublicQuestion{
			Index:      i,
			Text:       q.Text,
			Options:    append([]string(nil), q.Options...),
			Category:   q.Category,
			Difficulty: q.Difficulty,
		})
	}
	return out
}

// AnswerResult summarizes the outcome of a single answer.
type AnswerResult struct {
	IsCorrect    bool   `json:"isCorrect"`
	CorrectIndex int    `json:"correctIndex"`
	Explanation  string `json:"explanation"`
	Score        int    `json:"score"`
}

// AdvanceResult is returned when the player moves to the next question.
type AdvanceResult struct {
	CurrentIndex int  `json:"currentIndex"`
	IsFinished   bool `json:"isFinished"`
	Score        int  `json:"score"`
}

// StopResult is the final tally of a stopped game.
type StopResult struct {
	FinalScore     int `json:"finalScore"`
	TotalQuestions int `json:"totalQuestions"`
}
