package chat

import (
	"fmt"
	"strings"

	"github.com/ternarybob/geoscope/internal/interfaces"
	"github.com/ternarybob/geoscope/internal/models"
)

// defaultSystemPrompt frames the delegate as a geospatial analyst working
// from the structural profile, not the raw features.
const defaultSystemPrompt = `You are a geospatial data assistant. You answer questions about datasets loaded from remote GeoJSON sources.

You are given a structural profile of each loaded dataset: its feature count, geometry types, and attributes with inferred types and sample values. You do not see the raw features themselves.

When answering questions:
1. Ground every statement in the dataset profile provided
2. When precomputed statistics are included, use those exact numbers
3. If the profile does not contain enough information to answer, say so clearly
4. Be concise and format your responses in readable Markdown

If you're unsure about something, acknowledge it rather than making assumptions.`

// buildProfileContext renders the loaded dataset profiles as the
// deterministic context block of a delegation prompt. Profiles enumerate
// attributes in sorted order, so the same session state always produces
// the same text.
func buildProfileContext(profiles []*models.DatasetProfile) string {
	if len(profiles) == 0 {
		return ""
	}

	var parts []string
	parts = append(parts, "LOADED DATASETS:")
	parts = append(parts, "")

	for i, profile := range profiles {
		parts = append(parts, fmt.Sprintf("Dataset %d:", i+1))
		parts = append(parts, profile.Summary())
	}

	return strings.Join(parts, "\n")
}

// buildStatsContext renders precomputed aggregates as a partial-answer
// block appended to the delegation prompt.
func buildStatsContext(agg *models.AttributeAggregates, top []models.ValueCount) string {
	var parts []string
	parts = append(parts, "PRECOMPUTED STATISTICS:")

	if agg != nil {
		parts = append(parts, fmt.Sprintf("Attribute %q over %d non-null values: mean=%g, median=%g, sum=%g",
			agg.Attribute, agg.Count, agg.Mean, agg.Median, agg.Sum))
	}

	if len(top) > 0 {
		freq := make([]string, 0, len(top))
		for _, vc := range top {
			freq = append(freq, fmt.Sprintf("%s (%d)", vc.Value, vc.Count))
		}
		parts = append(parts, fmt.Sprintf("Most frequent values: %s", strings.Join(freq, ", ")))
	}

	return strings.Join(parts, "\n")
}

// buildMessages constructs the message array for the reasoning delegate:
// system prompt augmented with the context bundle, then the conversation
// history, then the question.
func buildMessages(req *interfaces.ChatRequest, contextText, statsText string) []interfaces.Message {
	systemPrompt := defaultSystemPrompt
	if contextText != "" {
		systemPrompt = fmt.Sprintf("%s\n\n%s", systemPrompt, contextText)
	}
	if statsText != "" {
		systemPrompt = fmt.Sprintf("%s\n\n%s", systemPrompt, statsText)
	}

	messages := []interfaces.Message{{
		Role:    "system",
		Content: systemPrompt,
	}}

	messages = append(messages, req.History...)

	messages = append(messages, interfaces.Message{
		Role:    "user",
		Content: req.Message,
	})

	return messages
}
