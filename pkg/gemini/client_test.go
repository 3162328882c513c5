package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"bridge-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) config.GeminiConfig {
	return config.GeminiConfig{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Model:   "gemini-1.5-flash",
		Generation: config.GeminiGenerationConfig{
			Temperature:     0.2,
			TopK:            40,
			TopP:            0.95,
			MaxOutputTokens: 2048,
		},
	}
}

func TestComplete(t *testing.T) {
	var gotPath string
	var gotBody generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		resp := map[string]interface{}{
			"candidates": []map[string]interface{}{
				{
					"content": map[string]interface{}{
						"parts": []map[string]string{
							{"text": `["NAMI`},
							{"text": ` NYC"]`},
						},
					},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	out, err := client.Complete(context.Background(), "rank these services")
	require.NoError(t, err)

	assert.Equal(t, `["NAMI NYC"]`, out, "candidate parts should be concatenated")
	assert.Equal(t, "/models/gemini-1.5-flash:generateContent", gotPath)
	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 1)
	assert.Equal(t, "rank these services", gotBody.Contents[0].Parts[0].Text)
	require.NotNil(t, gotBody.GenerationConfig)
	assert.Equal(t, 2048, gotBody.GenerationConfig.MaxOutputTokens)
}

func TestComplete_Non200IsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error": {"message": "quota exceeded"}}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	_, err := client.Complete(context.Background(), "rank these services")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestComplete_EmptyCandidatesIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates": []}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	_, err := client.Complete(context.Background(), "rank these services")
	assert.Error(t, err)
}

// collectWriter gathers streamed chunks in memory.
type collectWriter struct {
	chunks []string
}

func (w *collectWriter) WriteMessage(messageType int, data []byte) error {
	w.chunks = append(w.chunks, string(data))
	return nil
}

func TestStreamChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		// The assistant role must be rewritten to the API's "model" role.
		require.Len(t, req.Contents, 2)
		assert.Equal(t, "user", req.Contents[0].Role)
		assert.Equal(t, "model", req.Contents[1].Role)

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"Hello\"}]}}]}\n")
		fmt.Fprint(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\" there\"}]}}]}\n")
		fmt.Fprint(w, "data: [DONE]\n")
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	writer := &collectWriter{}
	err := client.StreamChat(context.Background(), []Message{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "earlier reply"},
	}, writer)
	require.NoError(t, err)

	assert.Equal(t, []string{"Hello", " there"}, writer.chunks)
}
