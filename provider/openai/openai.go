package openai_provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/whiskertrack/whiskertrack/models"
)

const openaiAPIURL = "https://api.openai.com/v1/chat/completions"

// client implements the provider interface using OpenAI's API
type client struct {
	apiKey          string
	completionModel string
	temperature     float64
	maxTokens       int
	httpClient      *http.Client
}

// Message represents a message in a conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// request represents a request to the OpenAI API
type request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// response represents a response from the OpenAI API
type response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(apiKey, completionModel string, temperature float64, maxTokens int, timeout time.Duration) *client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &client{
		apiKey:          apiKey,
		completionModel: completionModel,
		temperature:     temperature,
		maxTokens:       maxTokens,
		httpClient:      &http.Client{Timeout: timeout},
	}
}

const archiveSystemPrompt = `You are a veterinary assistant writing a concise disease-history summary for a pet owner.
Write in the same language as the symptom records. Structure the summary as paragraphs separated by single newlines.
Each paragraph that describes a specific day must begin with that day's date written as it is written in that language (for example 10月5日, Dec 3, 5 de marzo, 10월 5일).
Do not invent symptoms or dates that are not in the records.`

// GenerateArchive produces the narrative for a pet's recent abnormal events.
func (c *client) GenerateArchive(ctx context.Context, pet models.Pet, events []models.AbnormalEvent) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Pet: %s (%s %s)\n", pet.Name, pet.Breed, pet.Species)
	b.WriteString("Abnormal symptom records:\n")
	for _, ev := range events {
		fmt.Fprintf(&b, "- %s: %s", ev.RecordedAt.UTC().Format("2006-01-02"), strings.Join(ev.Symptoms, ", "))
		if ev.Note != "" {
			fmt.Fprintf(&b, " (%s)", ev.Note)
		}
		b.WriteString("\n")
	}
	return c.complete(ctx, []Message{
		{Role: "system", Content: archiveSystemPrompt},
		{Role: "user", Content: b.String()},
	})
}

// GeneralMessage answers a free-form question about the pet.
func (c *client) GeneralMessage(ctx context.Context, message string, pet models.Pet) (string, error) {
	system := fmt.Sprintf("You are a helpful veterinary assistant. The question concerns %s, a %s.", pet.Name, pet.Species)
	return c.complete(ctx, []Message{
		{Role: "system", Content: system},
		{Role: "user", Content: message},
	})
}

func (c *client) complete(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(request{
		Model:       c.completionModel,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", openaiAPIURL, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("openai returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
