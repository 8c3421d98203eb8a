package chat

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/geoscope/internal/interfaces"
	"github.com/ternarybob/geoscope/internal/models"
	"github.com/ternarybob/geoscope/internal/services/stats"
)

// mockLLM records calls and returns a canned answer.
type mockLLM struct {
	calls    int
	lastMsgs []interfaces.Message
	answer   string
	err      error
}

func (m *mockLLM) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	m.calls++
	m.lastMsgs = messages
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

func (m *mockLLM) HealthCheck(ctx context.Context) error { return nil }
func (m *mockLLM) Close() error                          { return nil }

// mockSession serves a fixed snapshot and records history appends.
type mockSession struct {
	snapshot *interfaces.SessionSnapshot
	history  []models.ChatMessage
}

func (m *mockSession) Load(ctx context.Context, urls []string, center models.Center, zoom int) (*interfaces.LoadResult, error) {
	return nil, fmt.Errorf("not implemented")
}

func (m *mockSession) Reload(ctx context.Context) (*interfaces.LoadResult, error) {
	return nil, fmt.Errorf("not implemented")
}

func (m *mockSession) Snapshot() *interfaces.SessionSnapshot { return m.snapshot }

func (m *mockSession) AppendHistory(role, content string) error {
	m.history = append(m.history, models.ChatMessage{Role: role, Content: content})
	return nil
}

func (m *mockSession) History() ([]models.ChatMessage, error) { return m.history, nil }
func (m *mockSession) Close() error                           { return nil }

func snapshotWithStatuses() *interfaces.SessionSnapshot {
	features := []*models.Feature{
		{Properties: map[string]interface{}{"status": "Active", "flow": float64(10)}},
		{Properties: map[string]interface{}{"status": "active", "flow": float64(20)}},
		{Properties: map[string]interface{}{"status": "closed", "flow": float64(30)}},
	}
	dataset := &models.Dataset{
		ID:        "ds-1",
		SourceURL: "https://example.com/data.geojson",
		Collection: &models.FeatureCollection{
			Type:     models.FeatureCollectionType,
			Features: features,
		},
	}
	profile := &models.DatasetProfile{
		DatasetID:    "ds-1",
		SourceURL:    dataset.SourceURL,
		FeatureCount: 3,
		Attributes: []models.AttributeProfile{
			{Name: "flow", Type: models.AttributeNumber, Sample: float64(10)},
			{Name: "status", Type: models.AttributeText, Sample: "Active"},
		},
	}
	return &interfaces.SessionSnapshot{
		Session:  &models.Session{ID: "sess-1"},
		Datasets: []*models.Dataset{dataset},
		Profiles: []*models.DatasetProfile{profile},
	}
}

func newTestService(llm *mockLLM, session *mockSession) *Service {
	logger := arbor.NewLogger()
	return NewService(llm, session, stats.NewService(logger), logger)
}

func TestChat_CountingNeverDelegates(t *testing.T) {
	llm := &mockLLM{answer: "should not be used"}
	session := &mockSession{snapshot: snapshotWithStatuses()}
	service := newTestService(llm, session)

	resp, err := service.Chat(context.Background(), &interfaces.ChatRequest{
		Message: "How many features have status active?",
	})
	require.NoError(t, err)

	assert.Equal(t, interfaces.AnswerSourceDeterministic, resp.Source)
	assert.Contains(t, resp.Message, "2 features")
	assert.Equal(t, "status", resp.Attribute)
	assert.Equal(t, 0, llm.calls)
}

func TestChat_KeywordFreeAlwaysDelegates(t *testing.T) {
	llm := &mockLLM{answer: "These datasets describe **monitoring stations**."}
	session := &mockSession{snapshot: snapshotWithStatuses()}
	service := newTestService(llm, session)

	resp, err := service.Chat(context.Background(), &interfaces.ChatRequest{
		Message: "what do these datasets describe?",
	})
	require.NoError(t, err)

	assert.Equal(t, interfaces.AnswerSourceDelegated, resp.Source)
	assert.Equal(t, 1, llm.calls)
	assert.Contains(t, resp.MessageHTML, "<strong>monitoring stations</strong>")

	// Profile context travels in the system message
	require.NotEmpty(t, llm.lastMsgs)
	assert.Equal(t, "system", llm.lastMsgs[0].Role)
	assert.Contains(t, llm.lastMsgs[0].Content, "LOADED DATASETS:")
	assert.Contains(t, llm.lastMsgs[0].Content, "https://example.com/data.geojson")
}

func TestChat_StatisticPrecomputesThenDelegates(t *testing.T) {
	llm := &mockLLM{answer: "The average flow is 20."}
	session := &mockSession{snapshot: snapshotWithStatuses()}
	service := newTestService(llm, session)

	resp, err := service.Chat(context.Background(), &interfaces.ChatRequest{
		Message: "What is the average flow?",
	})
	require.NoError(t, err)

	assert.Equal(t, interfaces.AnswerSourceDelegated, resp.Source)
	assert.Equal(t, "flow", resp.Attribute)
	require.NotNil(t, resp.Aggregates)
	assert.InDelta(t, 20.0, resp.Aggregates.Mean, 0.0001)
	assert.InDelta(t, 60.0, resp.Aggregates.Sum, 0.0001)

	// Delegate saw the exact precomputed numbers
	assert.Contains(t, llm.lastMsgs[0].Content, "PRECOMPUTED STATISTICS:")
	assert.Contains(t, llm.lastMsgs[0].Content, "mean=20")
}

func TestChat_NoDatasetsLoaded(t *testing.T) {
	llm := &mockLLM{answer: "unused"}
	session := &mockSession{}
	service := newTestService(llm, session)

	resp, err := service.Chat(context.Background(), &interfaces.ChatRequest{Message: "hello"})
	require.NoError(t, err)

	assert.Equal(t, interfaces.AnswerSourceDeterministic, resp.Source)
	assert.Contains(t, resp.Message, "No datasets are loaded")
	assert.Equal(t, 0, llm.calls)
}

func TestChat_DelegateFailurePropagates(t *testing.T) {
	llm := &mockLLM{err: fmt.Errorf("upstream unavailable")}
	session := &mockSession{snapshot: snapshotWithStatuses()}
	service := newTestService(llm, session)

	_, err := service.Chat(context.Background(), &interfaces.ChatRequest{
		Message: "describe the data",
	})
	assert.Error(t, err)
}

func TestChat_RecordsExchangeInHistory(t *testing.T) {
	llm := &mockLLM{answer: "Two stations are active."}
	session := &mockSession{snapshot: snapshotWithStatuses()}
	service := newTestService(llm, session)

	_, err := service.Chat(context.Background(), &interfaces.ChatRequest{
		Message: "How many features have status active?",
	})
	require.NoError(t, err)

	require.Len(t, session.history, 2)
	assert.Equal(t, "user", session.history[0].Role)
	assert.Equal(t, "assistant", session.history[1].Role)
}

func TestChat_HistoryForwardedToDelegate(t *testing.T) {
	llm := &mockLLM{answer: "As I said, they are stations."}
	session := &mockSession{snapshot: snapshotWithStatuses()}
	service := newTestService(llm, session)

	_, err := service.Chat(context.Background(), &interfaces.ChatRequest{
		Message: "and what are they again?",
		History: []interfaces.Message{
			{Role: "user", Content: "what do these describe?"},
			{Role: "assistant", Content: "Monitoring stations."},
		},
	})
	require.NoError(t, err)

	// system + 2 history + question
	require.Len(t, llm.lastMsgs, 4)
	assert.Equal(t, "Monitoring stations.", llm.lastMsgs[2].Content)
}

func TestRenderHTML(t *testing.T) {
	html := renderHTML("# Title\n\nSome *emphasis* here.")
	assert.Contains(t, html, "<h1>")
	assert.Contains(t, html, "<em>emphasis</em>")
}
