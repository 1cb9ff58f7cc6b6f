package opentdb

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cat-trivia-service/internal/domain"
	"cat-trivia-service/internal/quiz"
)

const (
	// DefaultBaseURL is the public Open Trivia DB question endpoint.
	DefaultBaseURL = "https://opentdb.com/api.php"
	// AnimalsCategory is Open Trivia DB's "Animals" category id.
	AnimalsCategory = 27
	maxAmount       = 50
)

// Source fetches multiple-choice questions from Open Trivia DB.
type Source struct {
	baseURL  string
	category int
	amount   int
	client   *http.Client
}

func NewSource(baseURL string, category int, timeout time.Duration) *Source {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if category == 0 {
		category = AnimalsCategory
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Source{
		baseURL:  baseURL,
		category: category,
		amount:   maxAmount,
		client:   &http.Client{Timeout: timeout},
	}
}

func (s *Source) Name() string {
	return "opentdb"
}

type apiResponse struct {
	ResponseCode int         `json:"response_code"`
	Results      []apiResult `json:"results"`
}

type apiResult struct {
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Category         string   `json:"category"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

// FetchCandidates requests one batch of questions. Open Trivia DB has no cat
// category, so a category filter keeps only questions whose text mentions it.
func (s *Source) FetchCandidates(ctx context.Context, difficulty domain.Difficulty, categoryFilter string) ([]domain.Question, error) {
	q := url.Values{}
	q.Set("amount", strconv.Itoa(s.amount))
	q.Set("category", strconv.Itoa(s.category))
	q.Set("type", "multiple")
	if difficulty != "" {
		q.Set("difficulty", string(difficulty))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("opentdb request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("opentdb: HTTP %d", resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode opentdb response: %w", err)
	}
	if body.ResponseCode != 0 {
		return nil, fmt.Errorf("opentdb: response code %d", body.ResponseCode)
	}

	out := make([]domain.Question, 0, len(body.Results))
	for _, r := range body.Results {
		if r.Type != "multiple" || len(r.IncorrectAnswers) != domain.OptionCount-1 {
			continue
		}
		text := html.UnescapeString(r.Question)
		category := html.UnescapeString(r.Category)
		if categoryFilter != "" {
			if !quiz.MatchesCategory(text, categoryFilter) {
				continue
			}
			category = capitalize(categoryFilter) + " Trivia"
		}

		options := make([]string, 0, domain.OptionCount)
		for _, a := range r.IncorrectAnswers {
			options = append(options, html.UnescapeString(a))
		}
		options = append(options, html.UnescapeString(r.CorrectAnswer))

		out = append(out, domain.Question{
			Text:         text,
			Options:      options,
			CorrectIndex: len(options) - 1,
			Category:     category,
			Difficulty:   domain.Difficulty(r.Difficulty),
			Explanation:  "The correct answer is " + options[len(options)-1] + ".",
		})
	}
	return out, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
