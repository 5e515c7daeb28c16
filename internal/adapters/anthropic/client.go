package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"songforge/internal/core/domain"
	"songforge/internal/core/ports"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	defaultModel   = "claude-3-opus-20240229"
	defaultTimeout = 60 * time.Second
	apiVersion     = "2023-06-01"
	maxTokens      = 1000

	systemPrompt = "You are a professional songwriter with expertise in many musical styles. " +
		"Create original, creative, and emotionally resonant lyrics that feel authentic to the requested style. " +
		"Structure the lyrics properly and ensure they have a cohesive theme."
)

// Options configures the lyrics client.
type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// Client generates song lyrics through the Anthropic messages API.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewClient creates a lyrics client.
func NewClient(opts Options, logger zerolog.Logger) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := opts.Model
	if model == "" {
		model = defaultModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		apiKey:  opts.APIKey,
		model:   model,
		baseURL: baseURL,
		client:  client,
		logger:  logger.With().Str("component", "anthropic").Logger(),
	}, nil
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate produces lyrics for the theme and parses the title from the
// first line of the model output.
func (c *Client) Generate(ctx context.Context, theme, style string, verses int, chorus bool) (*domain.Lyrics, error) {
	payload := messagesRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    systemPrompt,
		Messages:  []message{{Role: "user", Content: buildPrompt(theme, style, verses, chorus)}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal lyrics request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	c.logger.Debug().Str("model", c.model).Str("theme", theme).Msg("requesting lyrics")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lyrics request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read lyrics response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		// Error bodies are usually the API's JSON error envelope, but a
		// proxy may hand back HTML or nothing at all.
		var out messagesResponse
		if json.Unmarshal(raw, &out) == nil && out.Error != nil {
			return nil, fmt.Errorf("lyrics generation failed: %s (%s)", out.Error.Message, out.Error.Type)
		}
		return nil, fmt.Errorf("lyrics generation failed: status %d", resp.StatusCode)
	}

	var out messagesResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode lyrics response: %w", err)
	}

	text := extractText(out)
	if text == "" {
		return nil, fmt.Errorf("lyrics response carries no text")
	}

	lyrics := splitTitle(text)
	c.logger.Info().Str("title", lyrics.Title).Msg("lyrics generated")
	return lyrics, nil
}

func buildPrompt(theme, style string, verses int, chorus bool) string {
	sb := &strings.Builder{}
	if style != "" {
		fmt.Fprintf(sb, "Write in %s style. ", style)
	}
	fmt.Fprintf(sb, "Write lyrics for a song about: %s. Include %d verses", theme, verses)
	if chorus {
		sb.WriteString(" and a chorus that repeats.")
	} else {
		sb.WriteString(".")
	}
	sb.WriteString(" Include a title at the top. Format the output so verses and chorus are clearly separated.")
	return sb.String()
}

func extractText(resp messagesResponse) string {
	for _, block := range resp.Content {
		if strings.TrimSpace(block.Text) != "" {
			return block.Text
		}
	}
	return ""
}

// splitTitle treats the first non-empty line as the song title, stripping
// markdown heading markers, and the rest as the lyric body.
func splitTitle(text string) *domain.Lyrics {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	title := strings.TrimSpace(strings.ReplaceAll(lines[0], "#", ""))
	content := strings.TrimSpace(strings.Join(lines[1:], "\n"))
	return &domain.Lyrics{Title: title, Content: content}
}

var _ ports.LyricsGenerator = (*Client)(nil)
