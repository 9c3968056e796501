// Package gemini is a REST client for the Gemini generateContent endpoint.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raseed-labs/raseed-backend/internal/llm"
	"github.com/raseed-labs/raseed-backend/logger"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	maxResponseBytes = 10 << 20
)

var _ llm.Model = (*Client)(nil)

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gemini: %d %s: %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("gemini: status %d: %s", e.StatusCode, e.Message)
}

// Client calls one model. Create one client per model name.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	log        *zap.SugaredLogger
	metrics    *clientMetrics
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func New(apiKey, model string, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		log:        logger.GetLogger().Named("gemini"),
		metrics:    newClientMetrics(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Model() string {
	return c.model
}

type wireContent struct {
	Role  string     `json:"role,omitempty"`
	Parts []llm.Part `json:"parts"`
}

type wireTool struct {
	FunctionDeclarations []llm.FunctionDeclaration `json:"functionDeclarations,omitempty"`
	GoogleSearch         *struct{}                 `json:"googleSearch,omitempty"`
}

type generationConfig struct {
	Temperature        *float64        `json:"temperature,omitempty"`
	ResponseMIMEType   string          `json:"responseMimeType,omitempty"`
	ResponseJSONSchema json.RawMessage `json:"responseJsonSchema,omitempty"`
}

type generateRequest struct {
	SystemInstruction *wireContent      `json:"systemInstruction,omitempty"`
	Contents          []wireContent     `json:"contents"`
	Tools             []wireTool        `json:"tools,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      *wireContent `json:"content"`
		FinishReason string       `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// wireRole maps conversation roles onto the two roles the API accepts.
// Function responses travel in user turns.
func wireRole(r llm.Role) string {
	if r == llm.RoleModel {
		return string(llm.RoleModel)
	}
	return string(llm.RoleUser)
}

func buildRequest(req *llm.Request) generateRequest {
	body := generateRequest{Contents: make([]wireContent, 0, len(req.Contents))}
	if req.System != "" {
		body.SystemInstruction = &wireContent{Parts: []llm.Part{{Text: req.System}}}
	}
	for _, content := range req.Contents {
		body.Contents = append(body.Contents, wireContent{Role: wireRole(content.Role), Parts: content.Parts})
	}
	if len(req.Tools) > 0 {
		body.Tools = append(body.Tools, wireTool{FunctionDeclarations: req.Tools})
	}
	if req.GoogleSearch {
		body.Tools = append(body.Tools, wireTool{GoogleSearch: &struct{}{}})
	}
	if req.Temperature != nil || req.ResponseMIMEType != "" || len(req.ResponseSchema) > 0 {
		body.GenerationConfig = &generationConfig{
			Temperature:        req.Temperature,
			ResponseMIMEType:   req.ResponseMIMEType,
			ResponseJSONSchema: req.ResponseSchema,
		}
	}
	return body
}

// Generate sends the conversation and returns the first candidate.
func (c *Client) Generate(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	reqID := uuid.NewString()
	start := time.Now()

	payload, err := json.Marshal(buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("encode gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build gemini request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	c.log.Debugw("Sending generate request",
		"req_id", reqID,
		"model", c.model,
		"turns", len(req.Contents),
		"tools", len(req.Tools),
		"google_search", req.GoogleSearch,
		"content_length", len(payload))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.observe(start, "transport_error")
		c.log.Warnw("Generate request failed",
			"req_id", reqID,
			"model", c.model,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("gemini request: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Warnw("Failed to close response body", "req_id", reqID, "error", cerr)
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.observe(start, "transport_error")
		return nil, fmt.Errorf("read gemini response: %w", err)
	}

	if resp.StatusCode/100 != 2 {
		c.observe(start, "api_error")
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		var er errorResponse
		if json.Unmarshal(raw, &er) == nil && er.Error.Message != "" {
			apiErr.Status = er.Error.Status
			apiErr.Message = er.Error.Message
		}
		c.log.Warnw("Generate request rejected",
			"req_id", reqID,
			"model", c.model,
			"status", resp.StatusCode,
			"error", apiErr.Message,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, apiErr
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		c.observe(start, "decode_error")
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}

	out := &llm.Response{
		Usage: llm.Usage{
			PromptTokens:    gr.UsageMetadata.PromptTokenCount,
			CandidateTokens: gr.UsageMetadata.CandidatesTokenCount,
			TotalTokens:     gr.UsageMetadata.TotalTokenCount,
		},
	}
	if len(gr.Candidates) > 0 {
		cand := gr.Candidates[0]
		out.FinishReason = cand.FinishReason
		if cand.Content != nil && len(cand.Content.Parts) > 0 {
			out.Content = &llm.Content{Role: llm.RoleModel, Parts: cand.Content.Parts}
		}
	} else if gr.PromptFeedback != nil && gr.PromptFeedback.BlockReason != "" {
		out.FinishReason = gr.PromptFeedback.BlockReason
	}

	c.observe(start, "ok")
	c.log.Infow("Generate request completed",
		"req_id", reqID,
		"model", c.model,
		"finish_reason", out.FinishReason,
		"function_calls", len(out.FunctionCalls()),
		"total_tokens", out.Usage.TotalTokens,
		"elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}

func (c *Client) observe(start time.Time, outcome string) {
	c.metrics.requests.WithLabelValues(c.model, outcome).Inc()
	c.metrics.latency.WithLabelValues(c.model).Observe(time.Since(start).Seconds())
}
