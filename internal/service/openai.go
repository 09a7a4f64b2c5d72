package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"properly/internal/config"
	"properly/internal/model"
	"properly/internal/utils"
)

const embeddingBatchSize = 64

// OpenAIClient handles OpenAI-compatible API interactions
type OpenAIClient struct {
	config      *config.OpenAIConfig
	httpClient  *http.Client
	chunkParser StreamChunkParser
	logger      *slog.Logger
}

// NewOpenAIClient creates a new OpenAI-compatible client with auto-detection of provider
func NewOpenAIClient(cfg *config.OpenAIConfig, logger *slog.Logger) *OpenAIClient {
	switch {
	case IsNVIDIAProvider(cfg.APIBase):
		logger.Info("🔧 Detected NVIDIA API provider (supports reasoning/thinking)")
	case IsOpenAIProvider(cfg.APIBase):
		logger.Info("🔧 Detected OpenAI API provider")
	default:
		logger.Info("🔧 Using standard OpenAI format", "api_base", cfg.APIBase)
	}

	return &OpenAIClient{
		config:      cfg,
		chunkParser: chunkParserFor(cfg.APIBase),
		logger:      logger,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// IsEnabled returns whether the client is configured and ready
func (c *OpenAIClient) IsEnabled() bool {
	return c != nil && c.config.Enabled
}

// ChatCompletionRequest represents a chat completion request
type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	TopP           float64         `json:"top_p,omitempty"` // For DeepSeek/NVIDIA API
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
	Stream         bool            `json:"stream,omitempty"`
	ExtraBody      map[string]any  `json:"extra_body,omitempty"` // For DeepSeek: {"chat_template_kwargs": {"thinking":True}}
}

// ChatMessage represents a single message in the conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat specifies the format of the response
type ResponseFormat struct {
	Type string `json:"type"` // "json_object" or "text"
}

// ChatCompletionResponse represents the API response
type ChatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// StreamCallback is called for each chunk in streaming mode
type StreamCallback func(chunk *StreamChunk) error

// EmbeddingRequest represents an embedding request
type EmbeddingRequest struct {
	Model          string   `json:"model"`
	Input          []string `json:"input"`
	Dimensions     int      `json:"dimensions,omitempty"`
	EncodingFormat string   `json:"encoding_format,omitempty"` // For NVIDIA API: "float"
}

// EmbeddingResponse represents the embedding API response
type EmbeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

// applyDefaults fills request fields left empty from configuration
func (c *OpenAIClient) applyDefaults(req *ChatCompletionRequest) {
	if req.Model == "" {
		req.Model = c.config.ChatModel
	}
	if req.Temperature == 0 && c.config.ChatTemperature > 0 {
		req.Temperature = c.config.ChatTemperature
	}
	if req.TopP == 0 && c.config.ChatTopP > 0 {
		req.TopP = c.config.ChatTopP
	}
	if req.MaxTokens == 0 && c.config.ChatMaxTokens > 0 {
		req.MaxTokens = c.config.ChatMaxTokens
	}

	if req.ExtraBody == nil && c.config.ChatExtraBody != "" {
		var extraBody map[string]any
		if err := json.Unmarshal([]byte(c.config.ChatExtraBody), &extraBody); err == nil {
			req.ExtraBody = extraBody
		} else {
			c.logger.Warn("failed to parse OPENAI_CHAT_EXTRA_BODY", "error", err)
		}
	}
}

func (c *OpenAIClient) newRequest(ctx context.Context, path string, body any) (*http.Request, error) {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s", c.config.APIBase, path)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.config.APIKey))
	return httpReq, nil
}

// ChatCompletion performs a chat completion request
func (c *OpenAIClient) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error) {
	if !c.IsEnabled() {
		return nil, ErrAssistantDisabled
	}

	c.applyDefaults(&req)
	req.Stream = false

	httpReq, err := c.newRequest(ctx, "chat/completions", req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &result, nil
}

// ChatCompletionStream performs a streaming chat completion request
func (c *OpenAIClient) ChatCompletionStream(ctx context.Context, req ChatCompletionRequest, callback StreamCallback) error {
	if !c.IsEnabled() {
		return ErrAssistantDisabled
	}

	c.applyDefaults(&req)
	req.Stream = true

	httpReq, err := c.newRequest(ctx, "chat/completions", req)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("failed to read stream: %w", err)
		}

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		// SSE format: "data: {...}"
		if !bytes.HasPrefix(line, []byte("data: ")) {
			continue
		}
		data := bytes.TrimPrefix(line, []byte("data: "))
		if bytes.Equal(data, []byte("[DONE]")) {
			break
		}

		chunk, err := c.chunkParser.ParseChunk(data)
		if err != nil {
			c.logger.Warn("failed to parse stream chunk", "error", err)
			continue
		}

		if err := callback(chunk); err != nil {
			return fmt.Errorf("callback error: %w", err)
		}
	}

	return nil
}

// Reply sends the conversation and returns the first choice
func (c *OpenAIClient) Reply(ctx context.Context, messages []ChatMessage) (string, error) {
	resp, err := c.ChatCompletion(ctx, ChatCompletionRequest{Messages: messages})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from assistant")
	}
	return resp.Choices[0].Message.Content, nil
}

// ReplyStream streams the conversation reply. Reasoning content is dropped.
func (c *OpenAIClient) ReplyStream(ctx context.Context, messages []ChatMessage, onDelta func(delta string) error) (string, error) {
	var full strings.Builder
	chunks := 0

	err := c.ChatCompletionStream(ctx, ChatCompletionRequest{Messages: messages}, func(chunk *StreamChunk) error {
		chunks++
		if chunk.Content == "" {
			return nil
		}
		full.WriteString(chunk.Content)
		return onDelta(chunk.Content)
	})
	if err != nil {
		return "", fmt.Errorf("streaming error: %w", err)
	}

	c.logger.Debug("streaming completed", "chunks", chunks, "content_length", full.Len())
	return full.String(), nil
}

// CreateEmbeddings creates embeddings for the given texts
func (c *OpenAIClient) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if !c.IsEnabled() {
		return nil, ErrAssistantDisabled
	}

	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	allEmbeddings := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += embeddingBatchSize {
		end := i + embeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		embeddings, err := c.createEmbeddingBatch(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("failed to create embeddings for batch %d: %w", i/embeddingBatchSize, err)
		}
		allEmbeddings = append(allEmbeddings, embeddings...)
	}

	return allEmbeddings, nil
}

// createEmbeddingBatch creates embeddings for a single batch
func (c *OpenAIClient) createEmbeddingBatch(ctx context.Context, texts []string) ([][]float32, error) {
	req := EmbeddingRequest{
		Model:          c.config.EmbeddingModel,
		Input:          texts,
		Dimensions:     c.config.EmbeddingDimensions,
		EncodingFormat: "float",
	}

	httpReq, err := c.newRequest(ctx, "embeddings", req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result EmbeddingResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	// Extract embeddings in order
	embeddings := make([][]float32, len(texts))
	for _, item := range result.Data {
		if item.Index >= 0 && item.Index < len(embeddings) {
			embeddings[item.Index] = item.Embedding
		}
	}

	c.logger.Debug("created embeddings", "count", len(embeddings), "model", result.Model, "tokens", result.Usage.TotalTokens)
	return embeddings, nil
}

// ParsePreferences uses the chat model in JSON mode to extract questionnaire answers
func (c *OpenAIClient) ParsePreferences(ctx context.Context, query string) (*AIPreferencesResponse, error) {
	if !c.IsEnabled() {
		return nil, ErrAssistantDisabled
	}

	req := ChatCompletionRequest{
		Messages: []ChatMessage{
			{Role: "system", Content: preferencesPrompt()},
			{Role: "user", Content: query},
		},
		Temperature:    0.3,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}

	resp, err := c.ChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from assistant")
	}

	var result AIPreferencesResponse
	content := resp.Choices[0].Message.Content
	if err := utils.ParseAIJSON(content, &result); err != nil {
		c.logger.Warn("failed to parse assistant preferences", "content", content)
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}

	return &result, nil
}

func preferencesPrompt() string {
	types := make([]string, 0, len(model.PropertyTypes()))
	for _, t := range model.PropertyTypes() {
		types = append(types, fmt.Sprintf("%q", string(t)))
	}

	return `You are a real estate search assistant for the Thai market. Turn the user's request into the answers of a three-question home match quiz.

Extract the following information if present:
- property_type: must be one of: ` + strings.Join(types, ", ") + ` (string)
- location: city or area in Thailand, as the user wrote it (string)
- pool: true if the user wants a pool, false if they explicitly do not (boolean)

Important rules:
- Respond ONLY with valid JSON
- If a field is not mentioned, omit it
- Never guess a property type the user did not ask for

Examples:
Query: "a villa in Phuket with a private pool"
Response: {"property_type": "Villa", "location": "Phuket", "pool": true}

Query: "condo in Bangkok, no pool needed"
Response: {"property_type": "Condominium", "location": "Bangkok", "pool": false}

Query: "something near the beach in Hua Hin"
Response: {"location": "Hua Hin"}`
}
