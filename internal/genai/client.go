package genai

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client generates text from a prompt. It is injected as an optional
// capability: a nil Client means no AI backend is configured and callers
// take their fallback path.
type Client interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// GeminiClient calls the Gemini generateContent REST endpoint.
type GeminiClient struct {
	http  *resty.Client
	model string
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewGeminiClient creates a Gemini client. Returns nil when apiKey is empty
// so the caller can treat the capability as absent.
func NewGeminiClient(apiKey, model string) *GeminiClient {
	if apiKey == "" {
		return nil
	}
	if model == "" {
		model = "gemini-pro"
	}

	httpClient := resty.New().
		SetBaseURL(defaultBaseURL).
		SetTimeout(30 * time.Second).
		SetQueryParam("key", apiKey).
		SetHeader("Content-Type", "application/json")

	return &GeminiClient{
		http:  httpClient,
		model: model,
	}
}

func (c *GeminiClient) Model() string {
	return c.model
}

// GenerateContent sends a single-turn prompt and returns the first
// candidate's concatenated text parts.
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	body := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}

	var result generateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		Post(fmt.Sprintf("/models/%s:generateContent", c.model))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	if resp.IsError() {
		if result.Error != nil {
			return "", fmt.Errorf("gemini error %d: %s", result.Error.Code, result.Error.Message)
		}
		return "", fmt.Errorf("gemini returned status %s", resp.Status())
	}
	if len(result.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var text string
	for _, p := range result.Candidates[0].Content.Parts {
		text += p.Text
	}
	return text, nil
}
