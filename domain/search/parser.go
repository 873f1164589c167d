package search

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/stagedoor-labs/stagedoor/pkg/llm"
	"github.com/stagedoor-labs/stagedoor/pkg/logger"
)

const parsePrompt = `Extract acting-search filters from the query below.
Respond with a single JSON object. Keys must be a subset of:
gender ("male"|"female"), age_range ("teens"|"20s"|"30s"|"40s"|"50s"|"60+"),
emotion, themes (array of strings), category ("classical"|"contemporary"), tone.
Omit keys you are not confident about. No prose, no markdown.

Query: `

// llmFilters is the strict response shape; unknown keys are ignored on
// decode and null values drop.
type llmFilters struct {
	Gender   *string  `json:"gender"`
	AgeRange *string  `json:"age_range"`
	Emotion  *string  `json:"emotion"`
	Themes   []string `json:"themes"`
	Category *string  `json:"category"`
	Tone     *string  `json:"tone"`
}

// LLMParser extracts structured filters from tier-3 queries via a language
// model. Any parse or model failure yields empty filters; the search never
// fails because of the parser.
type LLMParser struct {
	provider llm.Provider
	log      *slog.Logger
}

// NewLLMParser creates an LLM query parser
func NewLLMParser(provider llm.Provider, log *slog.Logger) *LLMParser {
	return &LLMParser{
		provider: provider,
		log:      log.With(logger.Scope("search.parser")),
	}
}

// Parse runs the prompt and maps the JSON response to Filters
func (p *LLMParser) Parse(ctx context.Context, query string) Filters {
	if !p.provider.IsConfigured() {
		return Filters{}
	}

	raw, err := p.provider.Complete(ctx, parsePrompt+query)
	if err != nil {
		p.log.Warn("llm parse failed", logger.Error(err))
		return Filters{}
	}

	var parsed llmFilters
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &parsed); err != nil {
		p.log.Warn("llm response was not valid JSON", logger.Error(err))
		return Filters{}
	}

	var f Filters
	if parsed.Gender != nil {
		f.Gender = *parsed.Gender
	}
	if parsed.AgeRange != nil {
		f.AgeRange = *parsed.AgeRange
	}
	if parsed.Emotion != nil {
		f.Emotion = *parsed.Emotion
	}
	f.Themes = parsed.Themes
	if parsed.Category != nil {
		f.Category = *parsed.Category
	}
	if parsed.Tone != nil {
		f.Tone = *parsed.Tone
	}
	return f
}

// stripCodeFence unwraps a ```json fenced block if the model added one
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
