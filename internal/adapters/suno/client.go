package suno

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"songforge/internal/core/domain"
	"songforge/internal/core/ports"
)

const (
	// DefaultBaseURL is the default Suno API gateway.
	DefaultBaseURL = "https://apibox.erweima.ai/api/v1"

	// DefaultFileHost serves generated artifacts when the API returns a
	// relative path instead of a full URL.
	DefaultFileHost = "https://apiboxfiles.erweima.ai"

	// DefaultTimeout is the default per-request timeout.
	DefaultTimeout = 30 * time.Second

	// The API requires a callback URL even when results are collected by
	// polling. It is never invoked.
	placeholderCallback = "https://example.com/callback"
)

// Client talks to a Suno-compatible music generation API.
type Client struct {
	apiKey   string
	baseURL  string
	fileHost string
	client   *http.Client
	logger   zerolog.Logger
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL sets a custom API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithFileHost sets the host used to resolve relative artifact paths.
func WithFileHost(h string) Option {
	return func(c *Client) { c.fileHost = strings.TrimRight(h, "/") }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// NewClient creates a Suno API client.
func NewClient(apiKey string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("suno api key is required")
	}
	c := &Client{
		apiKey:   apiKey,
		baseURL:  DefaultBaseURL,
		fileHost: DefaultFileHost,
		client:   &http.Client{Timeout: DefaultTimeout},
		logger:   logger.With().Str("component", "suno").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// envelope is the common response wrapper: a gateway-level code and message
// around the actual payload.
type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type submitData struct {
	TaskID string `json:"taskId"`
}

// SubmitAudio creates a music generation task and returns its id.
func (c *Client) SubmitAudio(ctx context.Context, req ports.AudioRequest) (string, error) {
	payload := map[string]any{
		"prompt":       req.Lyrics,
		"style":        "",
		"title":        "",
		"customMode":   req.CustomMode,
		"instrumental": req.Instrumental,
		"model":        req.Model,
		"callBackUrl":  placeholderCallback,
	}
	if req.CustomMode {
		payload["style"] = req.Style
		payload["title"] = req.Title
	}
	return c.submit(ctx, domain.KindAudio, "/generate", payload)
}

// SubmitVideo creates a video render task for an existing audio clip.
func (c *Client) SubmitVideo(ctx context.Context, req ports.VideoRequest) (string, error) {
	payload := map[string]any{
		"taskId":      req.AudioTaskID,
		"audioId":     req.AudioID,
		"callBackUrl": placeholderCallback,
	}
	return c.submit(ctx, domain.KindVideo, "/mp4/generate", payload)
}

func (c *Client) submit(ctx context.Context, kind domain.JobKind, path string, payload map[string]any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal %s request: %w", kind, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	c.setHeaders(req)

	c.logger.Debug().Str("kind", string(kind)).Str("path", path).Msg("submitting generation job")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit %s job: %w", kind, err)
	}
	defer resp.Body.Close()

	env, err := decodeEnvelope(resp.Body)
	if err != nil || resp.StatusCode != http.StatusOK || env.Code != http.StatusOK {
		return "", &domain.SubmissionError{
			Kind:    kind,
			Code:    envelopeCode(env, resp.StatusCode),
			Message: envelopeMessage(env, resp.StatusCode, err),
		}
	}

	var data submitData
	if err := json.Unmarshal(env.Data, &data); err != nil || data.TaskID == "" {
		return "", &domain.SubmissionError{
			Kind:    kind,
			Code:    env.Code,
			Message: "no task id in response",
		}
	}

	c.logger.Info().Str("kind", string(kind)).Str("task_id", data.TaskID).Msg("job accepted")
	return data.TaskID, nil
}

// CheckStatus queries one task and normalizes the response.
func (c *Client) CheckStatus(ctx context.Context, kind domain.JobKind, taskID string) (*domain.StatusResult, error) {
	path := "/generate/record-info"
	if kind == domain.KindVideo {
		path = "/mp4/record-info"
	}
	endpoint := fmt.Sprintf("%s%s?taskId=%s", c.baseURL, path, url.QueryEscape(taskID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &domain.TransientQueryError{TaskID: taskID, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyHTTPFailure(taskID, resp)
	}

	env, err := decodeEnvelope(resp.Body)
	if err != nil {
		return nil, &domain.TransientQueryError{TaskID: taskID, Err: err}
	}
	if env.Code != http.StatusOK {
		return nil, classifyEnvelopeFailure(taskID, env)
	}

	if kind == domain.KindVideo {
		return c.decodeVideoRecord(taskID, env.Data)
	}
	return c.decodeAudioRecord(taskID, env.Data)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
}

func decodeEnvelope(r io.Reader) (*envelope, error) {
	var env envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &env, nil
}

func envelopeCode(env *envelope, httpStatus int) int {
	if env != nil && env.Code != 0 {
		return env.Code
	}
	return httpStatus
}

func envelopeMessage(env *envelope, httpStatus int, decodeErr error) string {
	if env != nil && env.Msg != "" {
		return env.Msg
	}
	if decodeErr != nil {
		return decodeErr.Error()
	}
	return http.StatusText(httpStatus)
}

// classifyHTTPFailure maps a non-200 HTTP response to the query error
// taxonomy: server-side trouble and rate limits are worth retrying, the
// rest means this task id will never answer.
func classifyHTTPFailure(taskID string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		return &domain.TransientQueryError{
			TaskID: taskID,
			Err:    fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}
	return &domain.PermanentQueryError{
		TaskID:  taskID,
		Code:    resp.StatusCode,
		Message: strings.TrimSpace(string(body)),
	}
}

// classifyEnvelopeFailure maps a gateway error code to the query error
// taxonomy. 404 is treated as transient: freshly created tasks are not
// always visible to the status endpoint right away.
func classifyEnvelopeFailure(taskID string, env *envelope) error {
	if env.Code == http.StatusNotFound {
		return &domain.TransientQueryError{
			TaskID: taskID,
			Err:    fmt.Errorf("api code %d: %s", env.Code, env.Msg),
		}
	}
	return &domain.PermanentQueryError{TaskID: taskID, Code: env.Code, Message: env.Msg}
}

var _ ports.JobClient = (*Client)(nil)
