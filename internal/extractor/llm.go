// Package extractor implements structured extraction by sending fetched page
// content to an LLM and decoding the JSON object it returns.
package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/evepupil/onaho-crawler/internal/crawler"
)

// Config controls the LLM extractor.
type Config struct {
	APIKey          string
	BaseURL         string
	Model           string
	MaxTokens       int
	MaxContentChars int
	Render          bool // fetch candidate pages with the rendering fetcher
}

// messageCreator is the slice of the Anthropic client the extractor uses.
type messageCreator interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// LLM implements crawler.Extractor: it fetches the candidate page, prompts
// the model with the page content plus the template-derived instruction, and
// returns the decoded payload for the pipeline to validate.
type LLM struct {
	cfg      Config
	fetcher  crawler.Fetcher
	messages messageCreator
	logger   *zap.Logger
}

// New builds an LLM extractor with a real Anthropic client.
func New(cfg Config, fetcher crawler.Fetcher, logger *zap.Logger) *LLM {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}
	if cfg.MaxContentChars <= 0 {
		cfg.MaxContentChars = 100_000
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := anthropic.NewClient(opts...)
	return &LLM{
		cfg:      cfg,
		fetcher:  fetcher,
		messages: &client.Messages,
		logger:   logger,
	}
}

// Extract implements crawler.Extractor.
func (e *LLM) Extract(ctx context.Context, url string, tmpl crawler.Template) (any, error) {
	resp, err := e.fetcher.Fetch(ctx, crawler.FetchRequest{URL: url, Render: e.cfg.Render})
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	content := string(resp.Body)
	if len(content) > e.cfg.MaxContentChars {
		content = content[:e.cfg.MaxContentChars]
	}

	instruction, err := Instruction(tmpl)
	if err != nil {
		return nil, err
	}
	prompt := instruction + "\n\nPage URL: " + url + "\n\nPage content:\n" + content

	msg, err := e.messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(e.cfg.Model),
		MaxTokens: int64(e.cfg.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("llm request: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	payload, err := DecodePayload(text.String())
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// Instruction builds the strict JSON-object instruction from the template.
func Instruction(tmpl crawler.Template) (string, error) {
	tmplJSON, err := json.MarshalIndent(tmpl, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal template: %w", err)
	}
	return fmt.Sprintf(`Extract product information from the page content and return it strictly in the JSON format below.

Template (keys are field names, values describe each field):
%s

Requirements:
1. Return exactly one JSON object, never an array or any other wrapper.
2. The object's keys must match the template keys exactly.
3. Each value is the actual data extracted from the page.
4. Set a field to null if the page does not contain it.
5. Do not add index, tags, content, error or any other extra fields.
6. Do not use a blocks format.
7. Return only the JSON object, with no surrounding text.`, tmplJSON), nil
}

// DecodePayload parses the model reply into a JSON value, tolerating a
// surrounding markdown code fence.
func DecodePayload(reply string) (any, error) {
	text := strings.TrimSpace(reply)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}
	var payload any
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("decode extraction payload: %w", err)
	}
	return payload, nil
}
