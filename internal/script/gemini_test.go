package script

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGeminiClient(serverURL string) *GeminiClient {
	return &GeminiClient{
		apiKey:     "test-key",
		endpoint:   serverURL,
		model:      "gemini-2.0-flash",
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestGeminiGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Contains(t, r.URL.Path, "models/gemini-2.0-flash:generateContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req generateContentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "say hi", req.Contents[0].Parts[0].Text)
		assert.Equal(t, 256, req.GenerationConfig.MaxOutputTokens)

		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": "Hi there!"}}}},
			},
		})
	}))
	defer server.Close()

	client := newTestGeminiClient(server.URL)

	got, err := client.Generate(context.Background(), "say hi", 256, 0.9)
	require.NoError(t, err)
	assert.Equal(t, "Hi there!", got)
}

func TestGeminiGenerateErrors(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			"non-2xx status",
			func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTooManyRequests) },
		},
		{
			"no candidates",
			func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
			},
		},
		{
			"empty text",
			func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{
					"candidates": []map[string]any{
						{"content": map[string]any{"parts": []map[string]any{{"text": ""}}}},
					},
				})
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			client := newTestGeminiClient(server.URL)
			_, err := client.Generate(context.Background(), "say hi", 256, 0.9)
			assert.Error(t, err)
		})
	}
}

func TestGeminiGenerateWithoutKey(t *testing.T) {
	client := &GeminiClient{httpClient: http.DefaultClient}
	_, err := client.Generate(context.Background(), "say hi", 256, 0.9)
	assert.Error(t, err)
}
