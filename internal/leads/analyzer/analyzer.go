// Package analyzer scores inbound lead messages with Gemini: intent, a 0-100
// buying score and sentiment. Results feed the automation condition evaluator.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"primus_backend/internal/leads/domain"
	"primus_backend/platform/config"
	"primus_backend/platform/logger"

	"google.golang.org/genai"
)

const model = "gemini-2.0-flash"

const systemPrompt = `You analyze inbound messages from home improvement leads.
Classify the message and respond with ONLY a JSON object:
{"intent": one of "Quote" | "Urgent" | "Info" | "Complaint" | "Unsubscribe",
 "score": integer 0-100 estimating purchase readiness,
 "sentiment": one of "Positive" | "Neutral" | "Negative"}`

// Analyzer scores inbound messages via the Gemini API.
type Analyzer struct {
	client *genai.Client
	log    *logger.Logger
}

// New creates the analyzer. Returns nil without error when no Gemini key is
// configured; callers treat a nil analyzer as disabled.
func New(ctx context.Context, cfg config.AnalyzerConfig, log *logger.Logger) (*Analyzer, error) {
	if !cfg.IsAnalyzerEnabled() {
		return nil, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GetGeminiAPIKey(),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Analyzer{client: client, log: log}, nil
}

type analysisPayload struct {
	Intent    string `json:"intent"`
	Score     int    `json:"score"`
	Sentiment string `json:"sentiment"`
}

// Analyze scores one inbound message.
func (a *Analyzer) Analyze(ctx context.Context, message string) (*domain.AnalysisSnapshot, error) {
	resp, err := a.client.Models.GenerateContent(ctx, model,
		genai.Text(systemPrompt+"\n\nMessage:\n"+message),
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini analyze: %w", err)
	}

	snapshot, err := parseAnalysis(resp.Text())
	if err != nil {
		a.log.Warn("unparseable analysis response", "error", err.Error())
		return nil, err
	}
	return snapshot, nil
}

// parseAnalysis decodes the model output, tolerating markdown fences, and
// clamps values into the domain's ranges.
func parseAnalysis(raw string) (*domain.AnalysisSnapshot, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var payload analysisPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}

	snapshot := &domain.AnalysisSnapshot{
		Intent:    payload.Intent,
		Score:     payload.Score,
		Sentiment: payload.Sentiment,
	}
	if snapshot.Intent == "" {
		snapshot.Intent = domain.DefaultIntent
	}
	if snapshot.Sentiment == "" {
		snapshot.Sentiment = domain.DefaultSentiment
	}
	if snapshot.Score < 0 {
		snapshot.Score = 0
	}
	if snapshot.Score > 100 {
		snapshot.Score = 100
	}
	return snapshot, nil
}
