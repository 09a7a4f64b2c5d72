package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"properly/internal/config"
	"properly/internal/logging"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.OpenAIConfig{
		APIKey:              "sk-test",
		APIBase:             srv.URL,
		ChatModel:           "test-model",
		EmbeddingModel:      "test-embedding",
		EmbeddingDimensions: 2,
		Timeout:             5,
		Enabled:             true,
	}
	return NewOpenAIClient(cfg, logging.Discard())
}

func TestOpenAIClient_Disabled(t *testing.T) {
	c := NewOpenAIClient(&config.OpenAIConfig{APIBase: "https://api.openai.com/v1"}, logging.Discard())

	if c.IsEnabled() {
		t.Fatal("client without key should be disabled")
	}
	if _, err := c.Reply(context.Background(), nil); !errors.Is(err, ErrAssistantDisabled) {
		t.Errorf("Reply() error = %v", err)
	}
	if _, err := c.CreateEmbeddings(context.Background(), []string{"x"}); !errors.Is(err, ErrAssistantDisabled) {
		t.Errorf("CreateEmbeddings() error = %v", err)
	}
	if _, err := c.ParsePreferences(context.Background(), "villa"); !errors.Is(err, ErrAssistantDisabled) {
		t.Errorf("ParsePreferences() error = %v", err)
	}
}

func TestOpenAIClient_Reply(t *testing.T) {
	var got ChatCompletionRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing bearer token")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		fmt.Fprint(w, `{"id":"1","choices":[{"index":0,"message":{"role":"assistant","content":"Sawasdee!"}}]}`)
	})

	reply, err := c.Reply(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if reply != "Sawasdee!" {
		t.Errorf("reply = %q", reply)
	}
	if got.Model != "test-model" || got.Stream {
		t.Errorf("request = %+v", got)
	}
}

func TestOpenAIClient_ReplyHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	_, err := c.Reply(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Errorf("expected status error, got %v", err)
	}
}

func TestOpenAIClient_ReplyStream(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "text/event-stream" {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"role\":\"assistant\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Hua \"}}]}\n\n")
		fmt.Fprint(w, ": keep-alive\n\n")
		fmt.Fprint(w, "data: not json\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Hin\"},\"finish_reason\":\"stop\"}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"after done\"}}]}\n\n")
	})

	var deltas []string
	full, err := c.ReplyStream(context.Background(), nil, func(d string) error {
		deltas = append(deltas, d)
		return nil
	})
	if err != nil {
		t.Fatalf("ReplyStream() error = %v", err)
	}
	if full != "Hua Hin" {
		t.Errorf("full = %q", full)
	}
	if len(deltas) != 2 {
		t.Errorf("deltas = %v", deltas)
	}
}

func TestOpenAIClient_CreateEmbeddings(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req EmbeddingRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "test-embedding" || req.Dimensions != 2 {
			t.Errorf("request = %+v", req)
		}
		// out of order on purpose
		fmt.Fprint(w, `{"data":[{"index":1,"embedding":[0,1]},{"index":0,"embedding":[1,0]}],"model":"test-embedding"}`)
	})

	got, err := c.CreateEmbeddings(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("CreateEmbeddings() error = %v", err)
	}
	if len(got) != 2 || got[0][0] != 1 || got[1][1] != 1 {
		t.Errorf("embeddings = %v", got)
	}

	empty, err := c.CreateEmbeddings(context.Background(), nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("empty input: %v, %v", empty, err)
	}
}

func TestOpenAIClient_ParsePreferences(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req ChatCompletionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_object" {
			t.Errorf("JSON mode not requested")
		}
		content := "Sure!\n```json\n{\"property_type\": \"Villa\", \"location\": \"Phuket\", \"pool\": true}\n```"
		b, _ := json.Marshal(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": content}}},
		})
		w.Write(b)
	})

	got, err := c.ParsePreferences(context.Background(), "a villa in Phuket with a private pool")
	if err != nil {
		t.Fatalf("ParsePreferences() error = %v", err)
	}
	if got.PropertyType == nil || *got.PropertyType != "Villa" {
		t.Errorf("PropertyType = %v", got.PropertyType)
	}
	if got.Location == nil || *got.Location != "Phuket" {
		t.Errorf("Location = %v", got.Location)
	}
	if got.Pool == nil || !*got.Pool {
		t.Errorf("Pool = %v", got.Pool)
	}
}

func TestChunkParsers(t *testing.T) {
	data := []byte(`{"choices":[{"delta":{"content":"x","reasoning_content":"thinking"},"finish_reason":"stop"}]}`)

	openai, err := (&OpenAIStreamChunkParser{}).ParseChunk(data)
	if err != nil {
		t.Fatal(err)
	}
	if openai.Content != "x" || openai.ThinkingContent != "" || !openai.Done {
		t.Errorf("openai chunk = %+v", openai)
	}

	nvidia, err := (&NVIDIAStreamChunkParser{}).ParseChunk(data)
	if err != nil {
		t.Fatal(err)
	}
	if nvidia.ThinkingContent != "thinking" {
		t.Errorf("nvidia chunk = %+v", nvidia)
	}

	if _, ok := chunkParserFor("https://integrate.api.nvidia.com/v1").(*NVIDIAStreamChunkParser); !ok {
		t.Error("NVIDIA base URL should select the NVIDIA parser")
	}
	if _, ok := chunkParserFor("http://localhost:11434/v1").(*OpenAIStreamChunkParser); !ok {
		t.Error("unknown providers should use the OpenAI parser")
	}
}
