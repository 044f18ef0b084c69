// Package gemini provides a REST API client for the Gemini image-generation
// model. It uses direct HTTP calls rather than the Go SDK because the SDK
// path does not serve interleaved image output; the SDK is still used for
// API key validation at startup (see internal/auth).
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// defaultBaseURL is the Gemini REST API base URL.
const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client calls the Gemini image model via REST API.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new client for Gemini image generation.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		model:   GetModelName(),
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // Image generation can take 10-30s
		},
	}
}

// --- REST API request/response types ---

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *geminiBlobData `json:"inlineData,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type geminiBlobData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"` // base64 encoded
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
	Error      *geminiError      `json:"error,omitempty"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Result holds the outcome of a generation call.
//
// A nil ImageData with a nil error means the call succeeded but the model
// declined to produce an image (possibly explaining itself in Text). Callers
// must treat that as a distinct outcome, not an error: the orchestrator turns
// it into a failure string, the refinement engine into a conversational reply.
type Result struct {
	// ImageData is the raw bytes of the generated image, or nil if the
	// model returned no image.
	ImageData []byte
	// ImageMIMEType is the MIME type of the output image, when present.
	ImageMIMEType string
	// Text is any text returned alongside (or instead of) the image.
	Text string
}

// generate posts the assembled parts as a single user turn and parses the
// multimodal response. Only the first returned image is kept; all text parts
// are concatenated.
func (c *Client) generate(ctx context.Context, operation string, parts []geminiPart) (*Result, error) {
	startTime := time.Now()

	var imageParts, imageBytes int
	for _, p := range parts {
		if p.InlineData != nil {
			imageParts++
			imageBytes += len(p.InlineData.Data)
		}
	}
	log.Info().
		Str("model", c.model).
		Str("operation", operation).
		Int("image_parts", imageParts).
		Int("image_bytes_b64", imageBytes).
		Msg("Sending generation request to Gemini")

	req := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{"IMAGE", "TEXT"},
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Error().
			Str("operation", operation).
			Int("status", resp.StatusCode).
			Str("body", truncateString(string(respBody), 500)).
			Msg("Gemini API returned error")
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncateString(string(respBody), 200))
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(respBody, &geminiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if geminiResp.Error != nil {
		return nil, fmt.Errorf("API error: %s (code: %d)", geminiResp.Error.Message, geminiResp.Error.Code)
	}

	result := &Result{}
	for _, candidate := range geminiResp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && result.ImageData == nil {
				decoded, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
				if err != nil {
					return nil, fmt.Errorf("failed to decode image data: %w", err)
				}
				result.ImageData = decoded
				result.ImageMIMEType = part.InlineData.MIMEType
				if result.ImageMIMEType == "" {
					result.ImageMIMEType = "image/png"
				}
			}
			if part.Text != "" {
				result.Text += part.Text
			}
		}
	}

	log.Info().
		Str("operation", operation).
		Bool("has_image", result.ImageData != nil).
		Int("output_bytes", len(result.ImageData)).
		Str("output_mime", result.ImageMIMEType).
		Dur("duration", time.Since(startTime)).
		Msg("Gemini generation complete")

	return result, nil
}

// truncateString truncates a string to maxLen, appending "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
