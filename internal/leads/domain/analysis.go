package domain

// AnalysisSnapshot is the per-dispatch view of the lead's AI-derived signals.
// It is resolved once per automation dispatch, not once per workflow.
type AnalysisSnapshot struct {
	Intent    string
	Score     int
	Sentiment string
}

// Defaults used when neither the matched event nor the lead carry a signal.
const (
	DefaultIntent    = "Info"
	DefaultScore     = 50
	DefaultSentiment = "Neutral"
)

// ResolveAnalysis derives the analysis snapshot from the most recent event
// carrying intent or score metadata. Each field falls back to the lead's
// stored value, then to the default. Returns nil when no event carries
// signals; callers then read the lead's own fields directly.
// Events must be ordered newest first.
func ResolveAnalysis(lead Lead, events []LeadEvent) *AnalysisSnapshot {
	for _, event := range events {
		if event.Metadata == nil {
			continue
		}
		intent, hasIntent := metadataString(event.Metadata, "intent")
		score, hasScore := metadataInt(event.Metadata, "score")
		if !hasIntent && !hasScore {
			continue
		}

		snapshot := &AnalysisSnapshot{
			Intent:    DefaultIntent,
			Score:     DefaultScore,
			Sentiment: DefaultSentiment,
		}
		if hasIntent {
			snapshot.Intent = intent
		} else if lead.Intent != nil && *lead.Intent != "" {
			snapshot.Intent = *lead.Intent
		}
		if hasScore {
			snapshot.Score = score
		} else if lead.Score != nil {
			snapshot.Score = *lead.Score
		}
		if sentiment, ok := metadataString(event.Metadata, "sentiment"); ok {
			snapshot.Sentiment = sentiment
		} else if lead.Sentiment != nil && *lead.Sentiment != "" {
			snapshot.Sentiment = *lead.Sentiment
		}
		return snapshot
	}

	return nil
}

func metadataString(metadata map[string]any, key string) (string, bool) {
	value, ok := metadata[key].(string)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// metadataInt accepts both int and float64 since JSON decoding yields float64.
func metadataInt(metadata map[string]any, key string) (int, bool) {
	switch value := metadata[key].(type) {
	case int:
		return value, true
	case int64:
		return int(value), true
	case float64:
		return int(value), true
	default:
		return 0, false
	}
}
