package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestExtractJSONArray(t *testing.T) {
	want := `[{"front": "Q", "back": "A"}]`

	tests := []struct {
		name string
		text string
	}{
		{"raw array", `[{"front": "Q", "back": "A"}]`},
		{"fenced json block", "```json\n[{\"front\": \"Q\", \"back\": \"A\"}]\n```"},
		{"fenced plain block", "```\n[{\"front\": \"Q\", \"back\": \"A\"}]\n```"},
		{"prose around array", "Here are your cards:\n[{\"front\": \"Q\", \"back\": \"A\"}]\nEnjoy!"},
		{"leading whitespace", "\n\n  [{\"front\": \"Q\", \"back\": \"A\"}]  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSONArray(tt.text); got != want {
				t.Errorf("extractJSONArray(%q) = %q, want %q", tt.text, got, want)
			}
		})
	}
}

func TestParseCards(t *testing.T) {
	cards, err := parseCards(`[{"front": "What is Go?", "back": "A programming language."}]`)
	if err != nil {
		t.Fatalf("parseCards: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("got %d cards, want 1", len(cards))
	}
	if cards[0].ID == "" {
		t.Error("card is missing a temporary ID")
	}
	if cards[0].Front != "What is Go?" || cards[0].Back != "A programming language." {
		t.Errorf("unexpected card content: %+v", cards[0])
	}
}

func TestParseCardsFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "I could not generate flashcards for this text."},
		{"empty array", "[]"},
		{"missing back", `[{"front": "Only a question"}]`},
		{"missing front", `[{"back": "Only an answer"}]`},
		{"object instead of array", `{"front": "Q", "back": "A"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseCards(tt.content); err == nil {
				t.Errorf("parseCards(%q) succeeded, want error", tt.content)
			}
		})
	}
}

func TestParseCardsTruncates(t *testing.T) {
	long := strings.Repeat("x", 3000)
	cards, err := parseCards(fmt.Sprintf(`[{"front": %q, "back": %q}]`, long, long))
	if err != nil {
		t.Fatalf("parseCards: %v", err)
	}
	if len(cards[0].Front) != maxFrontLength {
		t.Errorf("front length = %d, want %d", len(cards[0].Front), maxFrontLength)
	}
	if len(cards[0].Back) != maxBackLength {
		t.Errorf("back length = %d, want %d", len(cards[0].Back), maxBackLength)
	}
}

func TestValidateCards(t *testing.T) {
	good := GeneratedCard{ID: "a", Front: "What is spaced repetition?", Back: "A review scheduling technique."}

	if err := ValidateCards([]GeneratedCard{good}); err != nil {
		t.Errorf("valid cards rejected: %v", err)
	}

	short := GeneratedCard{ID: "b", Front: "Short?", Back: good.Back}
	if err := ValidateCards([]GeneratedCard{good, short}); err == nil {
		t.Error("short question accepted, want all-or-nothing failure")
	}

	padded := GeneratedCard{ID: "c", Front: "        x        ", Back: good.Back}
	if err := ValidateCards([]GeneratedCard{padded}); err == nil {
		t.Error("whitespace-padded question accepted")
	}
}

func TestGenerateFlashcards(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "test/model" {
			t.Errorf("model = %q", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{
					"content": "```json\n[{\"front\": \"What is SM-2?\", \"back\": \"A spaced repetition algorithm.\"}]\n```",
				}},
			},
			"usage": map[string]any{"total_tokens": 321},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewWithURL("test-key", server.URL)
	result, err := client.GenerateFlashcards(context.Background(), "some input text", "test/model")
	if err != nil {
		t.Fatalf("GenerateFlashcards: %v", err)
	}
	if len(result.Cards) != 1 {
		t.Fatalf("got %d cards, want 1", len(result.Cards))
	}
	if result.TokensUsed != 321 {
		t.Errorf("tokens used = %d, want 321", result.TokensUsed)
	}
	if result.TimeMs < 0 {
		t.Errorf("time ms = %d", result.TimeMs)
	}
}

func TestGenerateFlashcardsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewWithURL("test-key", server.URL)
	if _, err := client.GenerateFlashcards(context.Background(), "input", ""); err == nil {
		t.Error("expected error on upstream failure")
	}
}

func TestGenerateFlashcardsTimeout(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	client := NewWithURL("test-key", server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()

	_, err := client.GenerateFlashcards(ctx, "input", "")
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("err = %v, want ErrTimeout", err)
	}
}
