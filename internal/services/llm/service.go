package llm

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/geoscope/internal/common"
	"github.com/ternarybob/geoscope/internal/interfaces"
)

// Service implements interfaces.LLMService over the provider factory.
type Service struct {
	factory *ProviderFactory
	config  *common.Config
	logger  arbor.ILogger
}

var _ interfaces.LLMService = (*Service)(nil)

// NewService creates the LLM delegation service.
func NewService(cfg *common.Config, logger arbor.ILogger) *Service {
	return &Service{
		factory: NewProviderFactory(&cfg.Gemini, &cfg.Claude, &cfg.LLM, logger),
		config:  cfg,
		logger:  logger,
	}
}

// Chat sends the conversation to the configured provider and returns the
// assistant's reply as plain text.
func (s *Service) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages to send")
	}

	provider := s.factory.DetectProvider("")
	model := s.factory.GetDefaultModel(provider)

	resp, err := s.factory.GenerateContent(ctx, &ContentRequest{
		Messages: messages,
		Model:    model,
	})
	if err != nil {
		return "", fmt.Errorf("content generation failed: %w", err)
	}

	s.logger.Debug().
		Str("provider", string(resp.Provider)).
		Str("model", resp.Model).
		Int("response_chars", len(resp.Text)).
		Msg("LLM response received")

	return resp.Text, nil
}

// HealthCheck verifies that an API key is configured for the default provider.
func (s *Service) HealthCheck(ctx context.Context) error {
	provider := s.factory.DetectProvider("")
	switch provider {
	case ProviderClaude:
		if s.config.Claude.APIKey == "" {
			return fmt.Errorf("anthropic API key not configured")
		}
	default:
		if s.config.Gemini.APIKey == "" {
			return fmt.Errorf("gemini API key not configured")
		}
	}
	return nil
}

// Close releases provider clients.
func (s *Service) Close() error {
	return s.factory.Close()
}
