// Package llm adapts the OpenAI chat-completion API to the scorer and
// summarizer ports.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"NewsDigest/internal/config"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/language"
	"NewsDigest/internal/ports"
)

const scoreSystemPrompt = `You are a financial news analyst ranking articles for a daily newsletter aimed at readers with no financial background.

Score the article's relevance and importance from 0 to 100, where 100 is a major structural event (regulation, central-bank action, large institutional moves, market-wide shifts) and 0 is noise (single-stock chatter, marketing, opinion pieces).

Return only JSON: {"score": <number between 0 and 100>}`

const summarySystemPrompt = `You are a financial journalist writing ultra-brief newsletter summaries for readers with zero financial knowledge.

Rules:
- Use simple everyday words. No jargon unless instantly explained in 2-3 words.
- Be concise; the whole summary must stay under 10 lines of text.
- %s

Return only JSON with these keys:
{"overview": "one-line summary of what happened",
 "key_points": ["2-4 short bullets with the most important facts"],
 "why_it_matters": "one short sentence",
 "simple_explanation": "1-2 very short sentences in plain language"}`

const maxContentRunes = 6000

// Client implements ports.Scorer and ports.Summarizer on one OpenAI client.
type Client struct {
	client *openai.Client
	model  string
	vocab  language.Vocabulary
	logger *slog.Logger
}

var _ ports.Scorer = (*Client)(nil)
var _ ports.Summarizer = (*Client)(nil)

// NewClient builds the adapter from configuration. The summary language is
// threaded in explicitly; nothing here reads the environment.
func NewClient(cfg config.OpenAIConfig, lang language.Code, logger *slog.Logger) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Client{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		vocab:  language.Lookup(lang),
		logger: logger,
	}
}

// Score asks the model for a 0-100 relevance score. The result is clamped;
// any API or parse failure surfaces as an error for the caller to degrade.
func (c *Client) Score(ctx context.Context, article domain.Article) (float64, error) {
	user := fmt.Sprintf("Title: %s\nSource: %s\nPublished: %s\nLink: %s\n\nContent:\n%s",
		article.Title, article.Source, article.Published, article.Link,
		trimRunes(article.Content, maxContentRunes))

	content, err := c.complete(ctx, scoreSystemPrompt, user)
	if err != nil {
		return 0, err
	}

	var out struct {
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(cleanupResponse(content)), &out); err != nil {
		return 0, fmt.Errorf("parse score response %q: %w", content, err)
	}

	if out.Score < 0 {
		return 0, nil
	}
	if out.Score > 100 {
		return 100, nil
	}
	return out.Score, nil
}

// Summarize asks the model for the four-section structured summary in the
// configured language.
func (c *Client) Summarize(ctx context.Context, title, content string) (domain.Summary, error) {
	if strings.TrimSpace(content) == "" {
		return domain.Summary{}, errors.New("no content to summarize")
	}

	system := fmt.Sprintf(summarySystemPrompt,
		fmt.Sprintf("ALL OUTPUT MUST BE IN %s, including every value.", strings.ToUpper(c.vocab.Name)))
	user := fmt.Sprintf("Article Title: %s\n\nArticle Content:\n%s",
		title, trimRunes(content, maxContentRunes))

	raw, err := c.complete(ctx, system, user)
	if err != nil {
		return domain.Summary{}, err
	}

	var out struct {
		Overview          string   `json:"overview"`
		KeyPoints         []string `json:"key_points"`
		WhyItMatters      string   `json:"why_it_matters"`
		SimpleExplanation string   `json:"simple_explanation"`
	}
	if err := json.Unmarshal([]byte(cleanupResponse(raw)), &out); err != nil {
		return domain.Summary{}, fmt.Errorf("parse summary response %q: %w", raw, err)
	}

	return domain.Summary{
		Overview:          out.Overview,
		KeyPoints:         out.KeyPoints,
		WhyItMatters:      out.WhyItMatters,
		SimpleExplanation: out.SimpleExplanation,
	}, nil
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// cleanupResponse removes code fences the model sometimes wraps JSON in.
func cleanupResponse(s string) string {
	c := strings.TrimSpace(s)
	if strings.HasPrefix(c, "```") {
		if idx := strings.Index(c, "\n"); idx != -1 {
			c = c[idx+1:]
		}
		c = strings.TrimSuffix(strings.TrimSpace(c), "```")
		c = strings.TrimSpace(c)
	}
	return c
}

func trimRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
