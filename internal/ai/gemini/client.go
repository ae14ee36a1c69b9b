package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/talentscout/talentbot/internal/ai"
	"github.com/talentscout/talentbot/internal/logger"
	"github.com/talentscout/talentbot/internal/utils"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	defaultModel      = "gemini-2.5-flash"
	defaultMaxRetries = 3
	retryBackoff      = 2 * time.Second

	// Quota errors asking for a longer pause than this are surfaced
	// immediately instead of blocking the interview turn.
	maxQuotaDelay = 30 * time.Second
)

var wait = utils.WaitFor

type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type chatCreator interface {
	Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error)
}

type genaiChats struct {
	client *genai.Client
}

func (g *genaiChats) Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error) {
	return g.client.Chats.Create(ctx, model, config, history)
}

// Generator implements the ai.Generator contract on the Gemini API backend.
// Conversation history is replayed through a chat session so the model sees
// the same role structure the interview engine tracks.
type Generator struct {
	chats      chatCreator
	model      string
	maxRetries int
	logger     *zap.Logger
}

// NewGenerator creates a Generator for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string, maxRetries int, log *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	return &Generator{
		chats:      &genaiChats{client: client},
		model:      model,
		maxRetries: maxRetries,
		logger:     logger.WithCommonFields(log, "gemini", model),
	}, nil
}

// Generate sends the ordered message sequence to Gemini and returns the
// first textual response. The leading system message becomes the system
// instruction; the trailing message is delivered as the chat turn and
// everything between is replayed as history.
func (g *Generator) Generate(ctx context.Context, messages []ai.Message, temperature float32) (string, error) {
	if g == nil || g.chats == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperature),
	}

	if len(messages) > 0 && messages[0].Role == ai.RoleSystem {
		config.SystemInstruction = genai.NewContentFromText(messages[0].Text, genai.RoleUser)
		messages = messages[1:]
	}

	if len(messages) == 0 {
		return "", errors.New("at least one non-system message is required")
	}

	last := messages[len(messages)-1]
	history := toContents(messages[:len(messages)-1])

	var lastErr error
	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		chat, err := g.chats.Create(ctx, g.model, config, history)
		if err != nil {
			return "", &ai.TransportError{Err: fmt.Errorf("create chat: %w", err)}
		}

		resp, err := chat.SendMessage(ctx, genai.Part{Text: last.Text})
		if err == nil {
			output := collectText(resp)
			if output == "" {
				return "", &ai.TransportError{Err: errors.New("gemini api returned empty response")}
			}
			return output, nil
		}

		lastErr = err
		if !retryable(err) {
			break
		}

		g.logger.Debug("retrying gemini call",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		if attempt < g.maxRetries {
			if werr := wait(ctx, retryBackoff); werr != nil {
				return "", &ai.TransportError{Err: werr}
			}
		}
	}

	return "", &ai.TransportError{Err: lastErr}
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

func toContents(messages []ai.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		role := genai.RoleUser
		if m.Role == ai.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Text, genai.Role(role)))
	}
	return contents
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}

// retryable reports whether the API error is worth another attempt.
// Server-side failures are retried; quota errors only when the requested
// delay is short enough to keep the turn interactive.
func retryable(err error) bool {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	if apiErr.Code >= http.StatusInternalServerError {
		return true
	}

	if apiErr.Code == http.StatusTooManyRequests {
		delay, ok := quotaDelay(apiErr.Message)
		return !ok || delay <= maxQuotaDelay
	}

	return false
}

func quotaDelay(message string) (time.Duration, bool) {
	fields := strings.Fields(strings.ToLower(message))
	for i, f := range fields {
		if f != "after" || i+1 >= len(fields) {
			continue
		}
		secs, err := strconv.Atoi(strings.Trim(fields[i+1], ".,;"))
		if err != nil {
			continue
		}
		return time.Duration(secs) * time.Second, true
	}
	return 0, false
}
