// Package chat routes natural-language questions about loaded datasets:
// deterministic answers from the statistics engine where the question
// allows it, delegation to the reasoning service otherwise.
package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/geoscope/internal/interfaces"
	"github.com/ternarybob/geoscope/internal/models"
	"github.com/ternarybob/geoscope/internal/services/stats"
)

// Service implements interfaces.ChatService
type Service struct {
	llmService     interfaces.LLMService
	sessionService interfaces.SessionService
	statsService   *stats.Service
	logger         arbor.ILogger
}

// Compile-time assertion
var _ interfaces.ChatService = (*Service)(nil)

// NewService creates a new chat service
func NewService(
	llmService interfaces.LLMService,
	sessionService interfaces.SessionService,
	statsService *stats.Service,
	logger arbor.ILogger,
) *Service {
	return &Service{
		llmService:     llmService,
		sessionService: sessionService,
		statsService:   statsService,
		logger:         logger,
	}
}

// Chat classifies the question, answers counting questions directly from
// computed aggregates, and otherwise assembles a context bundle and
// delegates. An unmatched question is never an error: delegation is the
// default path.
func (s *Service) Chat(ctx context.Context, req *interfaces.ChatRequest) (*interfaces.ChatResponse, error) {
	snapshot := s.sessionService.Snapshot()
	if snapshot == nil || len(snapshot.Datasets) == 0 {
		return &interfaces.ChatResponse{
			Message: "No datasets are loaded yet. Load one or more GeoJSON source URLs first.",
			Source:  interfaces.AnswerSourceDeterministic,
		}, nil
	}

	classification := ClassifyQuery(req.Message, snapshot.Profiles)
	s.logger.Info().
		Str("intent", string(classification.Intent)).
		Str("attribute", classification.Attribute).
		Msg("Query classified")

	var response *interfaces.ChatResponse
	var err error

	switch classification.Intent {
	case QueryIntentCount:
		response, err = s.answerCount(ctx, req, snapshot, classification)
	case QueryIntentStatistic:
		response, err = s.answerStatistic(ctx, req, snapshot, classification)
	default:
		response, err = s.delegate(ctx, req, snapshot, "")
	}
	if err != nil {
		return nil, err
	}

	s.recordExchange(req.Message, response.Message)
	return response, nil
}

// answerCount resolves a counting question entirely from the statistics
// engine; the reasoning delegate is never invoked.
func (s *Service) answerCount(
	ctx context.Context,
	req *interfaces.ChatRequest,
	snapshot *interfaces.SessionSnapshot,
	classification *QueryClassification,
) (*interfaces.ChatResponse, error) {
	dataset := snapshot.Datasets[classification.DatasetIndex]
	profile := snapshot.Profiles[classification.DatasetIndex]

	count, err := s.statsService.CountMatches(dataset, profile, classification.Attribute, classification.Value)
	if err != nil {
		// The match came from the profile itself, so an unknown attribute
		// here is a router bug. Fall back to delegation rather than
		// surfacing it to the user.
		var unknownErr *stats.UnknownAttributeError
		if errors.As(err, &unknownErr) {
			s.logger.Error().Err(err).Msg("Router produced an attribute absent from the profile")
			return s.delegate(ctx, req, snapshot, "")
		}
		return nil, err
	}

	message := fmt.Sprintf("%d features have %s = %q.", count, classification.Attribute, classification.Value)
	return &interfaces.ChatResponse{
		Message:   message,
		Source:    interfaces.AnswerSourceDeterministic,
		Attribute: classification.Attribute,
	}, nil
}

// answerStatistic precomputes aggregates for the matched attribute, folds
// them into the context bundle as a partial answer, and delegates so the
// reasoning service can phrase a natural reply.
func (s *Service) answerStatistic(
	ctx context.Context,
	req *interfaces.ChatRequest,
	snapshot *interfaces.SessionSnapshot,
	classification *QueryClassification,
) (*interfaces.ChatResponse, error) {
	dataset := snapshot.Datasets[classification.DatasetIndex]
	profile := snapshot.Profiles[classification.DatasetIndex]

	var agg *models.AttributeAggregates
	if attr, ok := profile.Attribute(classification.Attribute); ok && attr.Type == models.AttributeNumber {
		computed, err := s.statsService.Aggregate(dataset, profile, classification.Attribute)
		if err != nil {
			s.logger.Warn().Err(err).Str("attribute", classification.Attribute).Msg("Aggregate computation failed")
		} else {
			agg = computed
		}
	}

	top, err := s.statsService.TopValues(dataset, profile, classification.Attribute, stats.DefaultTopK)
	if err != nil {
		s.logger.Warn().Err(err).Str("attribute", classification.Attribute).Msg("Top-value computation failed")
	}

	statsText := buildStatsContext(agg, top)

	response, err := s.delegate(ctx, req, snapshot, statsText)
	if err != nil {
		return nil, err
	}
	response.Attribute = classification.Attribute
	response.Aggregates = agg
	return response, nil
}

// delegate hands the question to the reasoning service with the profile
// summary (and any precomputed statistics) attached.
func (s *Service) delegate(
	ctx context.Context,
	req *interfaces.ChatRequest,
	snapshot *interfaces.SessionSnapshot,
	statsText string,
) (*interfaces.ChatResponse, error) {
	contextText := buildProfileContext(snapshot.Profiles)
	messages := buildMessages(req, contextText, statsText)

	answer, err := s.llmService.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("failed to generate response: %w", err)
	}

	return &interfaces.ChatResponse{
		Message:     answer,
		MessageHTML: renderHTML(answer),
		Source:      interfaces.AnswerSourceDelegated,
	}, nil
}

func (s *Service) recordExchange(question, answer string) {
	if err := s.sessionService.AppendHistory("user", question); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to record user message")
	}
	if err := s.sessionService.AppendHistory("assistant", answer); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to record assistant message")
	}
}

// HealthCheck verifies the chat service is operational
func (s *Service) HealthCheck(ctx context.Context) error {
	if err := s.llmService.HealthCheck(ctx); err != nil {
		return fmt.Errorf("LLM service unhealthy: %w", err)
	}
	return nil
}
