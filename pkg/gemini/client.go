// Package gemini provides a client for the Google generative-language API.
package gemini

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"bridge-go/internal/config"

	"github.com/gorilla/websocket"
)

// MessageWriter defines an interface for writing WebSocket messages.
// This allows both a standard websocket.Conn and an interceptor to be used.
type MessageWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// CompletionProvider is the narrow interface the ranking proxy depends on.
// It issues one synchronous completion call and returns the raw model text,
// which the caller must not trust to be well-formed JSON.
type CompletionProvider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Client is the full Gemini client, covering both one-shot completions for
// ranking and streamed completions for the chat assistant.
type Client interface {
	CompletionProvider
	// StreamChat sends role-based messages and writes streamed chunks to writer.
	StreamChat(ctx context.Context, messages []Message, writer MessageWriter) error
}

// Message is a single role-tagged chat turn.
type Message struct {
	Role    string `json:"role"` // "user" or "model"
	Content string `json:"content"`
}

type geminiClient struct {
	cfg    config.GeminiConfig
	client *http.Client
}

// NewClient creates a Gemini client from the configuration.
func NewClient(cfg config.GeminiConfig) Client {
	return &geminiClient{
		cfg:    cfg,
		client: &http.Client{},
	}
}

type contentPart struct {
	Text string `json:"text"`
}

type content struct {
	Role  string        `json:"role,omitempty"`
	Parts []contentPart `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	TopK            int     `json:"topK,omitempty"`
	TopP            float64 `json:"topP,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []contentPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *geminiClient) buildGenerationConfig() *generationConfig {
	gen := c.cfg.Generation
	if gen.Temperature == 0 && gen.TopK == 0 && gen.TopP == 0 && gen.MaxOutputTokens == 0 {
		return nil
	}
	return &generationConfig{
		Temperature:     gen.Temperature,
		TopK:            gen.TopK,
		TopP:            gen.TopP,
		MaxOutputTokens: gen.MaxOutputTokens,
	}
}

// Complete calls generateContent with a single user prompt and returns the
// concatenated text of the first candidate.
func (c *geminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents:         []content{{Parts: []contentPart{{Text: prompt}}}},
		GenerationConfig: c.buildGenerationConfig(),
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal generate request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.cfg.BaseURL, c.cfg.Model, c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call gemini api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("gemini api returned non-200 status: %s, body: %s", resp.Status, string(bodyBytes))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("failed to decode gemini response: %w", err)
	}

	if len(genResp.Candidates) == 0 {
		return "", fmt.Errorf("received empty candidates from gemini")
	}

	var sb strings.Builder
	for _, part := range genResp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

// StreamChat calls streamGenerateContent with SSE framing and writes each text
// chunk to the writer as it arrives.
func (c *geminiClient) StreamChat(ctx context.Context, messages []Message, writer MessageWriter) error {
	contents := make([]content, 0, len(messages))
	for _, m := range messages {
		role := m.Role
		if role == "assistant" {
			role = "model"
		}
		contents = append(contents, content{Role: role, Parts: []contentPart{{Text: m.Content}}})
	}

	reqBody := generateRequest{
		Contents:         contents,
		GenerationConfig: c.buildGenerationConfig(),
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal stream request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse&key=%s", c.cfg.BaseURL, c.cfg.Model, c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqBytes))
	if err != nil {
		return fmt.Errorf("failed to create stream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call gemini stream api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("gemini stream api returned non-200 status: %s, body: %s", resp.Status, string(bodyBytes))
	}

	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("failed to read from stream: %w", err)
		}

		if strings.HasPrefix(line, "data: ") {
			data := strings.TrimPrefix(line, "data: ")
			if strings.TrimSpace(data) == "[DONE]" {
				break
			}

			var chunk generateResponse
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				continue
			}

			if len(chunk.Candidates) > 0 {
				for _, part := range chunk.Candidates[0].Content.Parts {
					if part.Text == "" {
						continue
					}
					if err := writer.WriteMessage(websocket.TextMessage, []byte(part.Text)); err != nil {
						return fmt.Errorf("failed to write message to websocket: %w", err)
					}
				}
			}
		}
	}
	return nil
}
