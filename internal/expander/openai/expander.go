// Package openai implements the query expander over an OpenAI-compatible
// chat-completions API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/belivan/prospect-discovery/internal/discovery"
)

const systemPrompt = `You generate search queries for a local-business ` +
	`discovery engine. Respond with a single JSON object: ` +
	`{"queries": [..strings..], "strategy": "specialty-variation" or ` +
	`"geographic-expansion", "rationale": "...", "geo": "optional area"}. ` +
	`Queries must be suitable for a map-based business search. Never repeat ` +
	`a query from the provided list of already-executed queries.`

// Expander produces expansion directives via chat completions.
type Expander struct {
	client      *openai.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

// Config holds the expansion provider settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Logger      *zap.Logger
}

// NewExpander creates an OpenAI-compatible expansion provider.
func NewExpander(cfg *Config) *Expander {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Expander{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		temperature: cfg.Temperature,
		logger:      logger,
	}
}

// Expand implements discovery.Expander. Errors here are fatal to the run
// upstream, so they are returned unwrapped in intent: the caller decides
// abort semantics.
func (e *Expander) Expand(ctx context.Context, req discovery.ExpansionRequest) (discovery.Directive, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: e.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(req)},
		},
	})
	if err != nil {
		return discovery.Directive{}, fmt.Errorf("expansion completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return discovery.Directive{}, errors.New("expansion completion: empty response")
	}

	directive, err := parseDirective(resp.Choices[0].Message.Content)
	if err != nil {
		return discovery.Directive{}, fmt.Errorf("parse expansion response: %w", err)
	}

	directive.Variations = filterNovel(directive.Variations, req.PriorQueries, req.MaxVariations)
	if len(directive.Variations) == 0 {
		return discovery.Directive{}, errors.New("expansion produced no novel queries")
	}

	e.logger.Debug("expansion directive generated",
		zap.Int("iteration", req.Iteration),
		zap.Int("variations", len(directive.Variations)),
		zap.String("strategy", string(directive.Strategy)),
	)
	return directive, nil
}

func buildPrompt(req discovery.ExpansionRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Target profile: %s\n", req.Profile)
	fmt.Fprintf(&b, "Progress: %d of %d unique prospects found, iteration %d.\n",
		req.CurrentCount, req.TargetCount, req.Iteration)
	fmt.Fprintf(&b, "Generate up to %d new search queries.\n", req.MaxVariations)
	if req.AllowGeoExpansion {
		b.WriteString("Geographic expansion into nearby areas is now allowed " +
			"if specialty variations are exhausted.\n")
	} else {
		b.WriteString("Stay within the profile's area; vary specialty and " +
			"terminology only.\n")
	}
	if len(req.PriorQueries) > 0 {
		b.WriteString("Already executed (do not repeat):\n")
		for _, q := range req.PriorQueries {
			fmt.Fprintf(&b, "- %s\n", q)
		}
	}
	return b.String()
}

// directivePayload mirrors the JSON object the model is instructed to emit.
type directivePayload struct {
	Queries   []string `json:"queries"`
	Strategy  string   `json:"strategy"`
	Rationale string   `json:"rationale"`
	Geo       string   `json:"geo"`
}

// parseDirective decodes the model output, tolerating markdown code fences
// some models wrap JSON in despite instructions.
func parseDirective(content string) (discovery.Directive, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var payload directivePayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return discovery.Directive{}, fmt.Errorf("unmarshal directive: %w", err)
	}
	if len(payload.Queries) == 0 {
		return discovery.Directive{}, errors.New("directive has no queries")
	}

	strategy := discovery.Strategy(payload.Strategy)
	if strategy != discovery.StrategySpecialty && strategy != discovery.StrategyGeographic {
		strategy = discovery.StrategySpecialty
	}
	return discovery.Directive{
		Variations: payload.Queries,
		Strategy:   strategy,
		Rationale:  payload.Rationale,
		Geo:        payload.Geo,
	}, nil
}

// filterNovel drops queries repeating prior executions (case-insensitive,
// whitespace-normalized), dedupes within the batch, and truncates to limit.
func filterNovel(queries, prior []string, limit int) []string {
	seen := make(map[string]struct{}, len(prior))
	for _, q := range prior {
		seen[normalizeQuery(q)] = struct{}{}
	}
	var out []string
	for _, q := range queries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		key := normalizeQuery(q)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, q)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func normalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}
