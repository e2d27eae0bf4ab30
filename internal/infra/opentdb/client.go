// Package opentdb loads trivia questions from the Open Trivia Database
// (https://opentdb.com). It satisfies the QuestionLoader interfaces of the
// caching repositories.
package opentdb

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"brain-brawl-service/internal/domain"
)

const DefaultBaseURL = "https://opentdb.com/api.php"

type Client struct {
	baseURL    string
	amount     int
	category   string
	httpClient *http.Client
}

// New builds a client. amount is how many questions to request per fetch;
// category is the opentdb numeric category id, empty for any.
func New(baseURL string, amount int, category string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if amount <= 0 {
		amount = 50
	}
	return &Client{
		baseURL:    baseURL,
		amount:     amount,
		category:   category,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// apiResponse is the opentdb envelope. response_code 0 means success.
type apiResponse struct {
	ResponseCode int `json:"response_code"`
	Results      []struct {
		Category         string   `json:"category"`
		Difficulty       string   `json:"difficulty"`
		Question         string   `json:"question"`
		CorrectAnswer    string   `json:"correct_answer"`
		IncorrectAnswers []string `json:"incorrect_answers"`
	} `json:"results"`
}

func (c *Client) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	q := url.Values{}
	q.Set("amount", strconv.Itoa(c.amount))
	q.Set("type", "multiple")
	if c.category != "" {
		q.Set("category", c.category)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build trivia request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQuestionSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrQuestionSourceUnavailable, resp.StatusCode)
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrQuestionSourceUnavailable, err)
	}
	if payload.ResponseCode != 0 {
		return nil, fmt.Errorf("%w: response_code %d", domain.ErrQuestionSourceUnavailable, payload.ResponseCode)
	}

	questions := make([]domain.Question, 0, len(payload.Results))
	for i, r := range payload.Results {
		incorrect := make([]string, 0, len(r.IncorrectAnswers))
		for _, a := range r.IncorrectAnswers {
			incorrect = append(incorrect, html.UnescapeString(a))
		}
		questions = append(questions, domain.Question{
			ID:               strconv.Itoa(i),
			Prompt:           html.UnescapeString(r.Question),
			CorrectAnswer:    html.UnescapeString(r.CorrectAnswer),
			IncorrectAnswers: incorrect,
			Category:         r.Category,
			Difficulty:       r.Difficulty,
		})
	}
	return questions, nil
}
