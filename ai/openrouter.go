package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// DefaultModel is used when the caller does not pick one.
const DefaultModel = "anthropic/claude-3-5-sonnet"

// RequestTimeout bounds a single generation call. Past this the request is
// aborted and reported as ErrTimeout; no retry is attempted here.
const RequestTimeout = 30 * time.Second

const (
	maxFrontLength = 1000
	maxBackLength  = 2000
	minTextLength  = 10
)

// ErrTimeout is returned when the completion endpoint does not answer
// within RequestTimeout.
var ErrTimeout = errors.New("AI service timeout")

const systemPrompt = `You are a flashcard generation assistant. Your task is to generate high-quality question-answer pairs from the provided text.

Guidelines:
- Generate 5-10 flashcards from the input text
- Questions (front) should be clear, concise, and specific (max 200 characters)
- Answers (back) should be complete but not overly verbose (max 500 characters)
- Focus on key concepts, facts, definitions, and relationships
- Avoid ambiguous or trick questions
- Ensure answers are self-contained and don't require external context
- Use simple, direct language

Return ONLY a valid JSON array with this exact format:
[
  {"front": "question text", "back": "answer text"},
  {"front": "question text", "back": "answer text"}
]

Do NOT include any markdown formatting, code blocks, explanations, or additional text.
Return ONLY the raw JSON array.`

// Client calls the OpenRouter chat-completions API.
type Client struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

// New creates a Client from the OPENROUTER_API_KEY environment variable.
func New() (*Client, error) {
	apiKey := os.Getenv("OPENROUTER_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY environment variable is not set")
	}
	return NewWithURL(apiKey, "https://openrouter.ai/api/v1/chat/completions"), nil
}

// NewWithURL creates a Client against a specific endpoint. Tests point this
// at a local server.
func NewWithURL(apiKey, apiURL string) *Client {
	return &Client{
		apiKey:     apiKey,
		apiURL:     apiURL,
		httpClient: &http.Client{},
	}
}

// Message represents one chat message in the completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents a request to the chat-completions endpoint.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

// ChatResponse represents a response from the chat-completions endpoint.
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GeneratedCard is a provisional question/answer pair. The ID is temporary
// and is replaced when the card is accepted as a permanent flashcard.
type GeneratedCard struct {
	ID    string `json:"id"`
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Result is the outcome of one successful generation call.
type Result struct {
	Cards      []GeneratedCard
	TokensUsed int
	TimeMs     int64
}

// GenerateFlashcards produces provisional question/answer pairs from the
// input text. Parse failures, empty arrays and malformed pairs are hard
// failures; nothing is persisted here.
func (c *Client) GenerateFlashcards(ctx context.Context, inputText, model string) (*Result, error) {
	if model == "" {
		model = DefaultModel
	}
	start := time.Now()

	request := ChatRequest{
		Model: model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: inputText},
		},
		MaxTokens:   2000,
		Temperature: 0.7,
	}

	requestData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(requestData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("AI API error: %s", resp.Status)
	}

	var response ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if response.Error != nil {
		return nil, fmt.Errorf("AI API error: %s", response.Error.Message)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no content in AI response")
	}

	cards, err := parseCards(response.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	return &Result{
		Cards:      cards,
		TokensUsed: response.Usage.TotalTokens,
		TimeMs:     time.Since(start).Milliseconds(),
	}, nil
}

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
var bareArray = regexp.MustCompile(`(?s)\[.*\]`)

// extractJSONArray pulls the JSON array out of the completion text, with or
// without a fenced code block around it.
func extractJSONArray(text string) string {
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := bareArray.FindString(text); m != "" {
		return strings.TrimSpace(m)
	}
	return strings.TrimSpace(text)
}

func parseCards(content string) ([]GeneratedCard, error) {
	var raw []struct {
		Front string `json:"front"`
		Back  string `json:"back"`
	}
	if err := json.Unmarshal([]byte(extractJSONArray(content)), &raw); err != nil {
		return nil, fmt.Errorf("AI returned invalid JSON format")
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("AI returned an empty array")
	}

	cards := make([]GeneratedCard, 0, len(raw))
	for i, card := range raw {
		if card.Front == "" || card.Back == "" {
			return nil, fmt.Errorf("invalid card format at index %d", i)
		}
		id, err := gonanoid.New()
		if err != nil {
			return nil, fmt.Errorf("failed to generate card ID: %w", err)
		}
		cards = append(cards, GeneratedCard{
			ID:    id,
			Front: truncate(card.Front, maxFrontLength),
			Back:  truncate(card.Back, maxBackLength),
		})
	}
	return cards, nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// ValidateCards enforces the generation quality gate: every pair must have
// at least 10 non-whitespace-padded characters on both sides and stay within
// the maximum lengths. A single bad pair fails the whole batch.
func ValidateCards(cards []GeneratedCard) error {
	for i, card := range cards {
		if len(strings.TrimSpace(card.Front)) < minTextLength {
			return fmt.Errorf("card %d: question too short (minimum %d characters)", i+1, minTextLength)
		}
		if len(strings.TrimSpace(card.Back)) < minTextLength {
			return fmt.Errorf("card %d: answer too short (minimum %d characters)", i+1, minTextLength)
		}
		if len([]rune(card.Front)) > maxFrontLength {
			return fmt.Errorf("card %d: question too long (maximum %d characters)", i+1, maxFrontLength)
		}
		if len([]rune(card.Back)) > maxBackLength {
			return fmt.Errorf("card %d: answer too long (maximum %d characters)", i+1, maxBackLength)
		}
	}
	return nil
}
