package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// GeminiConfig holds the settings for the generativelanguage API.
type GeminiConfig struct {
	BaseURL        string
	APIKey         string
	Model          string
	EmbeddingModel string
}

// GeminiClient calls the Google generativelanguage REST API. It performs no
// retries; retry policy belongs to the caller.
type GeminiClient struct {
	cfg        GeminiConfig
	httpClient *http.Client
}

func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &GeminiClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

type contentPart struct {
	Text string `json:"text"`
}

type content struct {
	Role  string        `json:"role"`
	Parts []contentPart `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type generateContentRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []contentPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateText returns a free-form completion for the prompt.
func (c *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.generateContent(ctx, prompt, "")
}

// GenerateStructured asks the model for a JSON-shaped response and returns the
// raw text. The structured-output mode is an upstream hint, not a guarantee, so
// a "respond in JSON" directive is appended to the prompt as well; callers must
// still treat the result as untrusted text.
func (c *GeminiClient) GenerateStructured(ctx context.Context, prompt string) (string, error) {
	return c.generateContent(ctx, prompt+"\nRespond in JSON format.", "application/json")
}

func (c *GeminiClient) generateContent(ctx context.Context, prompt, mimeType string) (string, error) {
	reqBody := generateContentRequest{
		Contents: []content{
			{Role: "user", Parts: []contentPart{{Text: prompt}}},
		},
	}
	if mimeType != "" {
		reqBody.GenerationConfig = &generationConfig{ResponseMimeType: mimeType}
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model, c.cfg.APIKey)

	raw, err := c.post(ctx, url, reqBody)
	if err != nil {
		return "", err
	}

	var parsed generateContentResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse generate response failed: %w", err)
	}
	if len(parsed.Candidates) == 0 {
		return "", &MalformedResponseError{Reason: "no candidates"}
	}
	parts := parsed.Candidates[0].Content.Parts
	if len(parts) == 0 || parts[0].Text == "" {
		return "", &MalformedResponseError{Reason: "candidate has no content parts"}
	}
	return parts[0].Text, nil
}

type embedContentRequest struct {
	Content content `json:"content"`
}

type embedContentResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

// Embed returns the embedding vector for the given text.
func (c *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("embedding input is empty")
	}

	reqBody := embedContentRequest{
		Content: content{Role: "user", Parts: []contentPart{{Text: text}}},
	}
	url := fmt.Sprintf("%s/%s:embedContent?key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.EmbeddingModel, c.cfg.APIKey)

	raw, err := c.post(ctx, url, reqBody)
	if err != nil {
		return nil, err
	}

	var parsed embedContentResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse embed response failed: %w", err)
	}
	if len(parsed.Embedding.Values) == 0 {
		return nil, &MalformedResponseError{Reason: "no embedding values"}
	}
	return parsed.Embedding.Values, nil
}

func (c *GeminiClient) post(ctx context.Context, url string, body any) ([]byte, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal generative request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("build generative request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generative request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read generative response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}
