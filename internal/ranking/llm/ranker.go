// Package llm scores model candidates with a single call to an
// OpenAI-compatible chat completion API. The adapter is advisory:
// callers keep their heuristic ordering whenever it fails.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/davidbz/freeloader/internal/domain"
	"github.com/davidbz/freeloader/internal/observability"
)

const systemPrompt = "You rank language models by general assistant capability. " +
	"Respond with a single JSON object mapping each model id to a score from 0 to 100, " +
	"higher meaning more capable. Do not include any other text."

// Ranker implements domain.CapabilityRanker on top of a chat completion API.
type Ranker struct {
	client openai.Client
	model  string
}

// NewRanker creates a new ranking adapter.
func NewRanker(config Config) (*Ranker, error) {
	if config.APIKey == "" {
		return nil, errors.New("ranking API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
	}

	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(time.Duration(config.Timeout)*time.Second))
	}

	if config.MaxRetries > 0 {
		opts = append(opts, option.WithMaxRetries(config.MaxRetries))
	}

	return &Ranker{
		client: openai.NewClient(opts...),
		model:  config.Model,
	}, nil
}

// Rank scores the given model ids with one completion call. The returned map
// holds only ids the model actually scored; unscored ids carry no entry.
func (r *Ranker) Rank(ctx context.Context, modelIDs []string) (map[string]float64, error) {
	if len(modelIDs) == 0 {
		return map[string]float64{}, nil
	}

	ctx = observability.WithModel(ctx, r.model)
	logger := observability.FromContext(ctx)
	logger.Debug("calling ranking API",
		observability.Int("candidates", len(modelIDs)))

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(r.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(rankingPrompt(modelIDs)),
		},
		Temperature: openai.Float(0),
	}

	resp, err := r.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: ranking request failed: %w", domain.ErrRankingUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: ranking response has no choices", domain.ErrRankingUnavailable)
	}

	scores, err := parseScores(resp.Choices[0].Message.Content, modelIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRankingUnavailable, err)
	}

	logger.Info("ranking scores received",
		observability.Int("requested", len(modelIDs)),
		observability.Int("scored", len(scores)))

	return scores, nil
}

func rankingPrompt(modelIDs []string) string {
	var b strings.Builder
	b.WriteString("Score these model ids:\n")
	for _, id := range modelIDs {
		b.WriteString("- ")
		b.WriteString(id)
		b.WriteString("\n")
	}
	return b.String()
}

// parseScores extracts the id-to-score object from the completion content.
// The model may wrap the object in code fences or prose, so parsing spans
// the first '{' through the last '}'.
func parseScores(content string, modelIDs []string) (map[string]float64, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end < start {
		return nil, errors.New("ranking response contains no JSON object")
	}

	decoder := json.NewDecoder(strings.NewReader(content[start : end+1]))
	decoder.UseNumber()

	var raw map[string]any
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode ranking response: %w", err)
	}

	requested := make(map[string]bool, len(modelIDs))
	for _, id := range modelIDs {
		requested[id] = true
	}

	scores := make(map[string]float64, len(raw))
	for id, value := range raw {
		if !requested[id] {
			continue
		}
		score, ok := parseScore(value)
		if !ok {
			continue
		}
		scores[id] = score
	}

	if len(scores) == 0 {
		return nil, errors.New("ranking response scored none of the requested models")
	}

	return scores, nil
}

func parseScore(value any) (float64, bool) {
	switch v := value.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	case float64:
		return v, true
	default:
		return 0, false
	}
}
