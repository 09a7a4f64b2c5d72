package service

import (
	"encoding/json"
	"strings"
)

// StreamChunk represents a generic streaming response chunk
type StreamChunk struct {
	// Regular content (always present in streaming)
	Content string

	// Thinking/reasoning content (provider-specific, e.g., DeepSeek)
	ThinkingContent string

	Role string
	Done bool
}

// StreamChunkParser is the interface for provider-specific chunk parsing
type StreamChunkParser interface {
	ParseChunk(data []byte) (*StreamChunk, error)
}

// OpenAIStreamChunkParser parses standard OpenAI-format streaming chunks
type OpenAIStreamChunkParser struct{}

// ParseChunk converts standard OpenAI chunk to generic StreamChunk
func (p *OpenAIStreamChunkParser) ParseChunk(data []byte) (*StreamChunk, error) {
	var rawChunk struct {
		Choices []struct {
			Delta struct {
				Role    string `json:"role,omitempty"`
				Content string `json:"content,omitempty"`
			} `json:"delta"`
			FinishReason string `json:"finish_reason,omitempty"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(data, &rawChunk); err != nil {
		return nil, err
	}

	chunk := &StreamChunk{}
	if len(rawChunk.Choices) > 0 {
		delta := rawChunk.Choices[0].Delta
		chunk.Role = delta.Role
		chunk.Content = delta.Content
		chunk.Done = rawChunk.Choices[0].FinishReason != ""
	}
	return chunk, nil
}

// NVIDIAStreamChunkParser parses NVIDIA/DeepSeek chunks, which carry reasoning_content
type NVIDIAStreamChunkParser struct{}

// ParseChunk converts NVIDIA/DeepSeek-specific chunk to generic StreamChunk
func (p *NVIDIAStreamChunkParser) ParseChunk(data []byte) (*StreamChunk, error) {
	var rawChunk struct {
		Choices []struct {
			Delta struct {
				Role             string  `json:"role,omitempty"`
				Content          string  `json:"content,omitempty"`
				ReasoningContent *string `json:"reasoning_content,omitempty"`
			} `json:"delta"`
			FinishReason string `json:"finish_reason,omitempty"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(data, &rawChunk); err != nil {
		return nil, err
	}

	chunk := &StreamChunk{}
	if len(rawChunk.Choices) > 0 {
		delta := rawChunk.Choices[0].Delta
		chunk.Role = delta.Role
		chunk.Content = delta.Content
		if delta.ReasoningContent != nil {
			chunk.ThinkingContent = *delta.ReasoningContent
		}
		chunk.Done = rawChunk.Choices[0].FinishReason != ""
	}
	return chunk, nil
}

// IsNVIDIAProvider checks if the base URL is NVIDIA API
func IsNVIDIAProvider(baseURL string) bool {
	return strings.Contains(baseURL, "integrate.api.nvidia.com")
}

// IsOpenAIProvider checks if the base URL is official OpenAI API
func IsOpenAIProvider(baseURL string) bool {
	return strings.Contains(baseURL, "api.openai.com")
}

// chunkParserFor picks the parser matching the provider behind baseURL.
// Unknown providers get the standard OpenAI format.
func chunkParserFor(baseURL string) StreamChunkParser {
	if IsNVIDIAProvider(baseURL) {
		return &NVIDIAStreamChunkParser{}
	}
	return &OpenAIStreamChunkParser{}
}
