package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"properly/internal/config"
	"properly/internal/model"
)

// Fixed assistant texts shown when the external service cannot answer
const (
	GreetingConnected = "Sawasdee! I'm Properly, your AI assistant. I see you've completed the quiz. How can I help you further with these properties or your search in Thailand?"
	GreetingDegraded  = "Sawasdee! I'm Properly. I'm having a little trouble connecting fully right now. However, you can still ask me general questions about Thai real estate."
	ReplyOffline      = "I'll try to answer based on general knowledge as my advanced connection is offline."
	ReplyTrouble      = "I'm having a little trouble connecting to my advanced knowledge base."
)

// ErrEmptyMessage is returned for blank chat messages
var ErrEmptyMessage = errors.New("message is empty")

const interactionLogTimeout = 5 * time.Second

const systemInstruction = `You are 'Properly', a friendly and expert real estate and hospitality assistant specializing in the Thai market for European clients.

Always detect the language of the user's message and reply in that same language. Fall back to English only when the language is truly ambiguous.

The user has completed a home match quiz and is looking at a dashboard of property suggestions ranked against their answers. You may receive, as context:
- the user's quiz answers,
- the properties currently in view with their match percentage,
- "Retrieved Knowledge": notes from earlier conversations with this user. Treat it as reliable and weave it in naturally.

Your job:
1. Answer questions about the properties on the dashboard, Thai real estate in general, and locations in Thailand.
2. Use all of the context above to personalize the answer.
3. When the user wants to refine their search, acknowledge their current answers and help them think through new options.
4. Mirror the user's tone within a clear, professional register.

You cannot search live listings beyond the ones shown. You do not give legal, visa or financial advice; say so politely and suggest a qualified professional. Keep answers concise, culturally aware and encouraging. Prices may be discussed in EUR or THB; prefer the currency the user uses.`

// ChatService answers dashboard questions through the assistant and keeps
// the conversation as long-term memory
type ChatService struct {
	assistant    Assistant
	matcher      *MatchService
	sessions     *SessionService
	interactions InteractionStore
	limits       config.ResultsConfig
	logger       *slog.Logger

	wg sync.WaitGroup
}

// NewChatService creates a chat service. assistant, sessions and interactions may be nil.
func NewChatService(
	assistant Assistant,
	matcher *MatchService,
	sessions *SessionService,
	interactions InteractionStore,
	limits config.ResultsConfig,
	logger *slog.Logger,
) *ChatService {
	return &ChatService{
		assistant:    assistant,
		matcher:      matcher,
		sessions:     sessions,
		interactions: interactions,
		limits:       limits,
		logger:       logger,
	}
}

// Connected reports whether replies come from the assistant
func (s *ChatService) Connected() bool {
	return s.assistant != nil && s.assistant.IsEnabled()
}

// Greeting returns the first message of a dashboard visit
func (s *ChatService) Greeting() *model.GreetingResponse {
	text := GreetingDegraded
	if s.Connected() {
		text = GreetingConnected
	}
	return &model.GreetingResponse{
		Message:   newAIMessage(text, nil),
		Connected: s.Connected(),
	}
}

// chatTurn is everything one exchange needs
type chatTurn struct {
	text      string
	sessionID string
	prefs     model.Preferences
	ranked    []model.ScoredProperty
	embedding []float32
	messages  []ChatMessage
}

// Send answers one message. The only error is ErrEmptyMessage; assistant
// failures produce a degraded reply.
func (s *ChatService) Send(ctx context.Context, req model.ChatRequest) (*model.ChatResponse, error) {
	turn, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	if !s.Connected() {
		return s.finish(ctx, turn, ReplyOffline, true), nil
	}

	reply, err := s.assistant.Reply(ctx, turn.messages)
	if err != nil {
		s.logger.Warn("assistant reply failed", "session_id", turn.sessionID, "error", err)
		return s.finish(ctx, turn, ReplyTrouble, true), nil
	}
	return s.finish(ctx, turn, reply, false), nil
}

// SendStream is Send with incremental delivery of the reply through onDelta
func (s *ChatService) SendStream(ctx context.Context, req model.ChatRequest, onDelta func(delta string) error) (*model.ChatResponse, error) {
	turn, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	if !s.Connected() {
		return s.finish(ctx, turn, ReplyOffline, true), nil
	}

	reply, err := s.assistant.ReplyStream(ctx, turn.messages, onDelta)
	if err != nil {
		s.logger.Warn("assistant stream failed", "session_id", turn.sessionID, "error", err)
		return s.finish(ctx, turn, ReplyTrouble, true), nil
	}
	return s.finish(ctx, turn, reply, false), nil
}

// Wait blocks until pending interaction writes are done
func (s *ChatService) Wait() {
	s.wg.Wait()
}

func (s *ChatService) prepare(ctx context.Context, req model.ChatRequest) (*chatTurn, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrEmptyMessage
	}

	turn := &chatTurn{
		text:      req.Message,
		sessionID: req.SessionID,
		prefs:     s.resolvePreferences(ctx, req),
	}
	turn.ranked = s.matcher.Rank(turn.prefs)

	if !s.Connected() {
		return turn, nil
	}

	var memories []model.Interaction
	if s.interactions != nil {
		turn.embedding = s.embed(ctx, turn.text)
		if len(turn.embedding) > 0 && turn.sessionID != "" {
			found, err := s.interactions.SimilarInteractions(ctx, turn.sessionID, turn.embedding, s.limits.MemoryLimit)
			if err != nil {
				s.logger.Warn("memory recall failed", "session_id", turn.sessionID, "error", err)
			} else {
				memories = found
			}
		}
	}

	turn.messages = buildMessages(turn.prefs, turn.ranked, memories, turn.text, s.limits.ContextProperties)
	return turn, nil
}

// resolvePreferences prefers answers sent with the request and falls back
// to the stored session
func (s *ChatService) resolvePreferences(ctx context.Context, req model.ChatRequest) model.Preferences {
	if req.Preferences != nil {
		return req.Preferences.Clone()
	}
	if req.SessionID == "" || s.sessions == nil {
		return model.Preferences{}
	}
	prefs, err := s.sessions.Preferences(ctx, req.SessionID)
	if err != nil {
		s.logger.Debug("no stored preferences for chat", "session_id", req.SessionID, "error", err)
		return model.Preferences{}
	}
	return prefs
}

func (s *ChatService) embed(ctx context.Context, text string) []float32 {
	embeddings, err := s.assistant.CreateEmbeddings(ctx, []string{text})
	if err != nil {
		s.logger.Debug("query embedding unavailable", "error", err)
		return nil
	}
	if len(embeddings) == 0 {
		return nil
	}
	return embeddings[0]
}

func (s *ChatService) finish(ctx context.Context, turn *chatTurn, text string, degraded bool) *model.ChatResponse {
	msg := newAIMessage(text, associatedProperties(turn.ranked, turn.text, s.limits.AssociatedMax))
	s.logInteraction(ctx, turn, msg)
	return &model.ChatResponse{Message: msg, Degraded: degraded}
}

// logInteraction writes the exchange in the background
func (s *ChatService) logInteraction(ctx context.Context, turn *chatTurn, reply model.Message) {
	if s.interactions == nil {
		return
	}

	inView := firstN(turn.ranked, s.limits.ContextProperties)

	it := &model.Interaction{
		ID:          uuid.NewString(),
		SessionID:   turn.sessionID,
		UserMessage: turn.text,
		AIMessage:   reply.Text,
		Preferences: turn.prefs,
		PropertyIDs: propertyIDs(inView),
		Embedding:   turn.embedding,
		CreatedAt:   reply.Timestamp,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), interactionLogTimeout)
		defer cancel()
		if err := s.interactions.LogInteraction(logCtx, it); err != nil {
			s.logger.Warn("failed to log interaction", "session_id", it.SessionID, "error", err)
		}
	}()
}

func newAIMessage(text string, associated []model.ScoredProperty) model.Message {
	return model.Message{
		ID:                   uuid.NewString(),
		Text:                 text,
		Sender:               model.SenderAI,
		Timestamp:            time.Now().UTC(),
		AssociatedProperties: associated,
	}
}

// buildMessages assembles the system prompt, the dashboard context and the
// user query, prefixed with recalled memory when there is any
func buildMessages(prefs model.Preferences, ranked []model.ScoredProperty, memories []model.Interaction, text string, contextProperties int) []ChatMessage {
	messages := []ChatMessage{{Role: "system", Content: systemInstruction}}

	if !prefs.IsEmpty() {
		b, _ := json.Marshal(prefs)
		messages = append(messages, ChatMessage{
			Role:    "user",
			Content: fmt.Sprintf("Context: User's quiz preferences are: %s.", b),
		})
	}

	if summary := describeProperties(ranked, contextProperties); summary != "" {
		messages = append(messages, ChatMessage{
			Role:    "user",
			Content: fmt.Sprintf("Context: User is currently viewing properties like: %s.", summary),
		})
	}

	query := text
	if knowledge := summarizeMemories(memories); knowledge != "" {
		query = fmt.Sprintf("Retrieved Knowledge: %s\n\nUser Query: %s", knowledge, text)
	}
	messages = append(messages, ChatMessage{Role: "user", Content: query})

	return messages
}

// firstN returns at most n leading entries; a negative n yields none
func firstN(ranked []model.ScoredProperty, n int) []model.ScoredProperty {
	if n > len(ranked) {
		n = len(ranked)
	}
	if n < 0 {
		n = 0
	}
	return ranked[:n]
}

func describeProperties(ranked []model.ScoredProperty, n int) string {
	inView := firstN(ranked, n)
	parts := make([]string, 0, len(inView))
	for _, sp := range inView {
		parts = append(parts, fmt.Sprintf("%s in %s (Match: %d%%)", sp.PropertyType, sp.Location, sp.CompatibilityScore))
	}
	return strings.Join(parts, ", ")
}

func summarizeMemories(memories []model.Interaction) string {
	lines := make([]string, 0, len(memories))
	for _, it := range memories {
		lines = append(lines, fmt.Sprintf("Earlier the user asked %q and was told %q.", it.UserMessage, it.AIMessage))
	}
	return strings.Join(lines, "\n")
}

// associatedProperties picks the properties in view that the query mentions:
// any word longer than two characters found in the location, type or description
func associatedProperties(ranked []model.ScoredProperty, query string, limit int) []model.ScoredProperty {
	if limit <= 0 {
		return nil
	}

	var keywords []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if utf8.RuneCountInString(w) > 2 {
			keywords = append(keywords, w)
		}
	}
	if len(keywords) == 0 {
		return nil
	}

	var out []model.ScoredProperty
	for _, sp := range ranked {
		searchable := strings.ToLower(sp.Location + "\n" + string(sp.PropertyType) + "\n" + sp.DetailedDescription)
		for _, kw := range keywords {
			if strings.Contains(searchable, kw) {
				out = append(out, sp)
				break
			}
		}
		if len(out) == limit {
			break
		}
	}
	return out
}
