// Copyright 2026 The FocusLog Authors
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OpenAI implements [Provider] for the OpenAI Chat Completions wire
// format. Any API that implements this format works as a backend —
// in FocusLog's case a local Ollama server, which serves the format
// at /v1/chat/completions without authentication.
type OpenAI struct {
	httpClient *http.Client
	baseURL    string
}

// NewOpenAI creates an OpenAI-compatible provider rooted at baseURL
// (e.g. "http://127.0.0.1:11434" for a local Ollama). If httpClient is
// nil, http.DefaultClient is used; per-request timeouts come from the
// caller's context.
func NewOpenAI(httpClient *http.Client, baseURL string) *OpenAI {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OpenAI{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Complete sends a non-streaming request and returns the full
// response.
func (provider *OpenAI) Complete(ctx context.Context, request Request) (*Response, error) {
	wireRequest := provider.buildRequest(request)

	body, err := json.Marshal(wireRequest)
	if err != nil {
		return nil, fmt.Errorf("llm/openai: marshaling request: %w", err)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost,
		provider.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("llm/openai: creating request: %w", err)
	}
	httpRequest.Header.Set("Content-Type", "application/json")

	httpResponse, err := provider.httpClient.Do(httpRequest)
	if err != nil {
		return nil, fmt.Errorf("llm/openai: sending request: %w", err)
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode != http.StatusOK {
		return nil, readProviderError(httpResponse)
	}

	var wireResponse openaiResponse
	if err := json.NewDecoder(httpResponse.Body).Decode(&wireResponse); err != nil {
		return nil, fmt.Errorf("llm/openai: decoding response: %w", err)
	}

	return wireResponse.toResponse()
}

// buildRequest converts our types to the OpenAI wire format. The
// system prompt becomes the first message with role "system".
func (provider *OpenAI) buildRequest(request Request) openaiRequest {
	wireRequest := openaiRequest{
		Model:     request.Model,
		MaxTokens: request.MaxTokens,
	}
	if request.System != "" {
		wireRequest.Messages = append(wireRequest.Messages, openaiMessage{
			Role:    "system",
			Content: request.System,
		})
	}
	wireRequest.Messages = append(wireRequest.Messages, openaiMessage{
		Role:    "user",
		Content: request.Prompt,
	})
	return wireRequest
}

// --- wire types ---

type openaiRequest struct {
	Model     string          `json:"model"`
	Messages  []openaiMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens,omitempty"`
	Stream    bool            `json:"stream"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message openaiMessage `json:"message"`
	} `json:"choices"`
}

func (r *openaiResponse) toResponse() (*Response, error) {
	if len(r.Choices) == 0 {
		return nil, fmt.Errorf("llm/openai: response contained no choices")
	}
	return &Response{
		Text:  r.Choices[0].Message.Content,
		Model: r.Model,
	}, nil
}

// readProviderError parses an error response body in the common
// provider error format: {"error":{"type":"...","message":"..."}}.
// Extra fields in the error object are silently ignored.
func readProviderError(httpResponse *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(httpResponse.Body, 4096))

	var wireError struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &wireError) == nil && wireError.Error.Message != "" {
		return &ProviderError{
			StatusCode: httpResponse.StatusCode,
			Type:       wireError.Error.Type,
			Message:    wireError.Error.Message,
		}
	}

	return &ProviderError{
		StatusCode: httpResponse.StatusCode,
		Message:    string(body),
	}
}
