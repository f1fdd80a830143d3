package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"docextract/internal/apperr"
)

// Extractor sends one image to the model and returns its raw text reply.
type Extractor interface {
	Extract(ctx context.Context, image []byte, mimeType string) (string, error)
}

// KeySource supplies the current API key.
type KeySource interface {
	Get() (string, bool)
}

// generateFunc performs a single GenerateContent call with the given key.
type generateFunc func(ctx context.Context, apiKey, model string, parts ...genai.Part) (string, error)

// GeminiClient extracts fields through the Gemini API. The key is read from
// keys on every call so a key set at runtime applies to the next request.
type GeminiClient struct {
	keys     KeySource
	model    string
	timeout  time.Duration
	generate generateFunc
}

func NewGeminiClient(keys KeySource, model string, timeout time.Duration) *GeminiClient {
	return &GeminiClient{
		keys:     keys,
		model:    model,
		timeout:  timeout,
		generate: generateContent,
	}
}

// Model is the Gemini model name used for extraction.
func (c *GeminiClient) Model() string {
	return c.model
}

// Extract sends Prompt and the image in exactly one request. Failures are not retried.
func (c *GeminiClient) Extract(ctx context.Context, image []byte, mimeType string) (string, error) {
	apiKey, ok := c.keys.Get()
	if !ok {
		return "", apperr.Configuration("Gemini API key not configured")
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	text, err := c.generate(ctx, apiKey, c.model,
		genai.Text(Prompt),
		genai.Blob{MIMEType: mimeType, Data: image},
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", apperr.ExternalService("Gemini request timed out", err)
		}
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return "", err
		}
		return "", apperr.ExternalService("Gemini request failed", err)
	}
	return text, nil
}

func generateContent(ctx context.Context, apiKey, model string, parts ...genai.Part) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to init Gemini client: %w", err)
	}
	defer client.Close()

	resp, err := client.GenerativeModel(model).GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	text := responseText(resp)
	if text == "" {
		return "", apperr.ExternalService("Empty response from Gemini", nil)
	}
	return text, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return strings.TrimSpace(sb.String())
}
