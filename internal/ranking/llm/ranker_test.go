package llm //nolint:testpackage // Need access to unexported parseScore function

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/freeloader/internal/domain"
)

// scoreServer fakes an OpenAI-compatible backend returning the given
// assistant content for every completion request.
func scoreServer(content string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "test-ranker",
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message": map[string]any{
						"role":    "assistant",
						"content": content,
					},
				},
			},
		})
	}))
}

func newTestRanker(t *testing.T, baseURL string) *Ranker {
	t.Helper()

	ranker, err := NewRanker(Config{
		APIKey:  "test-key",
		Model:   "test-ranker",
		BaseURL: baseURL,
		Timeout: 5,
	})
	require.NoError(t, err)

	return ranker
}

func TestNewRanker_MissingAPIKey(t *testing.T) {
	ranker, err := NewRanker(Config{Model: "test-ranker"})

	require.Error(t, err)
	require.Nil(t, ranker)
	require.Contains(t, err.Error(), "ranking API key is required")
}

func TestRanker_Rank(t *testing.T) {
	server := scoreServer(`{"vendor/model-a": 91, "vendor/model-b": 15.5}`)
	defer server.Close()

	ranker := newTestRanker(t, server.URL)
	scores, err := ranker.Rank(context.Background(), []string{"vendor/model-a", "vendor/model-b"})

	require.NoError(t, err)
	require.Equal(t, map[string]float64{
		"vendor/model-a": 91,
		"vendor/model-b": 15.5,
	}, scores)
}

func TestRanker_Rank_SendsCandidatesAndAuth(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "test-ranker",
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]any{"role": "assistant", "content": `{"vendor/model-a": 1}`},
				},
			},
		})
	}))
	defer server.Close()

	ranker := newTestRanker(t, server.URL)
	_, err := ranker.Rank(context.Background(), []string{"vendor/model-a"})

	require.NoError(t, err)
	require.Equal(t, "/chat/completions", gotPath)
	require.Equal(t, "Bearer test-key", gotAuth)
	require.Equal(t, "test-ranker", gotBody.Model)
	require.Len(t, gotBody.Messages, 2)
	require.Contains(t, gotBody.Messages[1].Content, "vendor/model-a")
}

func TestRanker_Rank_TolerantContentParsing(t *testing.T) {
	content := "Here are the scores:\n```json\n{\"vendor/model-a\": \"88\", \"vendor/model-b\": 12}\n```\nHope this helps."
	server := scoreServer(content)
	defer server.Close()

	ranker := newTestRanker(t, server.URL)
	scores, err := ranker.Rank(context.Background(), []string{"vendor/model-a", "vendor/model-b"})

	require.NoError(t, err)
	require.Equal(t, map[string]float64{
		"vendor/model-a": 88,
		"vendor/model-b": 12,
	}, scores)
}

func TestRanker_Rank_IgnoresUnrequestedIDs(t *testing.T) {
	server := scoreServer(`{"vendor/model-a": 10, "stranger/model": 99}`)
	defer server.Close()

	ranker := newTestRanker(t, server.URL)
	scores, err := ranker.Rank(context.Background(), []string{"vendor/model-a"})

	require.NoError(t, err)
	require.Equal(t, map[string]float64{"vendor/model-a": 10}, scores)
}

func TestRanker_Rank_APIFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "bad key"}}`))
	}))
	defer server.Close()

	ranker := newTestRanker(t, server.URL)
	scores, err := ranker.Rank(context.Background(), []string{"vendor/model-a"})

	require.Error(t, err)
	require.Nil(t, scores)
	require.True(t, errors.Is(err, domain.ErrRankingUnavailable))
}

func TestRanker_Rank_NoScoredModels(t *testing.T) {
	server := scoreServer(`{"stranger/model": 50}`)
	defer server.Close()

	ranker := newTestRanker(t, server.URL)
	_, err := ranker.Rank(context.Background(), []string{"vendor/model-a"})

	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrRankingUnavailable))
	require.Contains(t, err.Error(), "scored none")
}

func TestRanker_Rank_NoJSONInContent(t *testing.T) {
	server := scoreServer("I cannot rank these models.")
	defer server.Close()

	ranker := newTestRanker(t, server.URL)
	_, err := ranker.Rank(context.Background(), []string{"vendor/model-a"})

	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrRankingUnavailable))
}

func TestRanker_Rank_EmptyCandidates(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	ranker := newTestRanker(t, server.URL)
	scores, err := ranker.Rank(context.Background(), nil)

	require.NoError(t, err)
	require.Empty(t, scores)
	require.Equal(t, int32(0), requests.Load())
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  float64
		ok    bool
	}{
		{name: "json number", value: json.Number("42.5"), want: 42.5, ok: true},
		{name: "numeric string", value: "73", want: 73, ok: true},
		{name: "padded string", value: " 9 ", want: 9, ok: true},
		{name: "float", value: 3.25, want: 3.25, ok: true},
		{name: "non-numeric string", value: "high", ok: false},
		{name: "bool", value: true, ok: false},
		{name: "nil", value: nil, ok: false},
		{name: "nested object", value: map[string]any{"score": 1}, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseScore(tt.value)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				require.Equal(t, tt.want, got)
			}
		})
	}
}
