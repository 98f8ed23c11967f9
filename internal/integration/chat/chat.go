// Package chat integrates the Gemini assistant used by the in-app chat.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/ethicbank/portal-api/internal/config"
	"github.com/ethicbank/portal-api/internal/domain"
	"github.com/ethicbank/portal-api/internal/integration/vendor"
	"github.com/ethicbank/portal-api/internal/registry"
	"google.golang.org/genai"
)

// Name is the registry name of the service.
const Name = "chat"

// ErrBlocked is returned when the model refuses to answer for safety reasons.
var ErrBlocked = errors.New("reply blocked by safety filters")

// ErrEmptyReply is returned when the model produced no text.
var ErrEmptyReply = errors.New("model returned no text")

// modelsAPI is the subset of genai.Models the service calls.
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	Get(ctx context.Context, model string, config *genai.GetModelConfig) (*genai.Model, error)
}

// Service answers chat messages through Gemini.
type Service struct {
	cfg    config.LLMConfig
	logger *slog.Logger

	mu     sync.RWMutex
	models modelsAPI
}

// New creates the chat service. The Gemini client is created by Initialize.
func New(cfg config.LLMConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{cfg: cfg, logger: logger.With("service", Name)}
}

// newWithModels is used by tests to bypass client creation.
func newWithModels(cfg config.LLMConfig, models modelsAPI) *Service {
	s := New(cfg, nil)
	s.models = models
	return s
}

// IsConfigured reports whether an API key and model name are set.
func (s *Service) IsConfigured() bool {
	return !vendor.Missing(s.cfg.GeminiAPIKey, s.cfg.ModelName)
}

// Initialize creates the Gemini client.
func (s *Service) Initialize(ctx context.Context) error {
	if !s.IsConfigured() {
		return nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return fmt.Errorf("create gemini client: %w", err)
	}
	s.mu.Lock()
	s.models = client.Models
	s.mu.Unlock()
	return nil
}

func (s *Service) client() modelsAPI {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.models
}

// HealthCheck fetches the configured model's metadata.
func (s *Service) HealthCheck(ctx context.Context) registry.HealthResult {
	models := s.client()
	if models == nil {
		return registry.Unhealthyf("client not initialized")
	}
	if _, err := models.Get(ctx, s.cfg.ModelName, nil); err != nil {
		return registry.Unhealthy(wrap(err))
	}
	return registry.Healthy()
}

// Reply sends message with the most recent history and returns the
// assistant's answer.
func (s *Service) Reply(ctx context.Context, history []domain.ChatMessage, message string) (string, error) {
	if !s.IsConfigured() {
		return "", vendor.NotConfigured(Name)
	}
	models := s.client()
	if models == nil {
		return "", vendor.NotConfigured(Name)
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return "", domain.ErrEmptyContent
	}

	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	contents := buildContents(trimHistory(history, s.cfg.MaxHistory), message)
	var genCfg *genai.GenerateContentConfig
	if s.cfg.SystemPrompt != "" {
		genCfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(s.cfg.SystemPrompt, genai.RoleUser),
		}
	}

	s.logger.DebugContext(ctx, "sending chat request",
		"history_messages", len(contents)-1,
		"message_length", len(message))

	resp, err := models.GenerateContent(ctx, s.cfg.ModelName, contents, genCfg)
	if err != nil {
		s.logger.ErrorContext(ctx, "chat request failed", "error", err)
		return "", wrap(err)
	}
	return replyText(resp)
}

// trimHistory keeps the last max messages. A max of zero keeps none.
func trimHistory(history []domain.ChatMessage, max int) []domain.ChatMessage {
	if max <= 0 {
		return nil
	}
	if len(history) > max {
		return history[len(history)-max:]
	}
	return history
}

func buildContents(history []domain.ChatMessage, message string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		role := genai.Role(genai.RoleUser)
		if m.Role == domain.ChatRoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	return append(contents, genai.NewContentFromText(message, genai.RoleUser))
}

func replyText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", wrap(ErrEmptyReply)
	}
	cand := resp.Candidates[0]
	if cand.FinishReason == genai.FinishReasonSafety {
		return "", ErrBlocked
	}
	if cand.Content == nil {
		return "", wrap(ErrEmptyReply)
	}
	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", wrap(ErrEmptyReply)
	}
	return text, nil
}

// wrap classifies SDK failures into vendor categories.
func wrap(err error) error {
	if errors.Is(err, ErrEmptyReply) {
		return &vendor.Error{Category: vendor.CategoryBadData, Vendor: Name, Err: err}
	}
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		return vendor.Wrap(Name, apiErr.Code, err)
	}
	return vendor.Wrap(Name, 0, err)
}
