package domain

import "testing"

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestResolveAnalysis_NilWhenNoSignalEvents(t *testing.T) {
	lead := Lead{Intent: strPtr("Quote"), Score: intPtr(72)}
	events := []LeadEvent{
		{Type: EventNoteAdded, Metadata: map[string]any{"note": "called back"}},
		{Type: EventFormSubmit},
	}

	if snapshot := ResolveAnalysis(lead, events); snapshot != nil {
		t.Fatalf("expected nil snapshot without signal events, got %+v", snapshot)
	}
}

func TestResolveAnalysis_MostRecentEventWins(t *testing.T) {
	lead := Lead{
		Intent: strPtr("Info"),
		Score:  intPtr(40),
	}
	// Newest first, as the repository returns them.
	events := []LeadEvent{
		{Type: EventEmailReceived, Metadata: map[string]any{"intent": "Quote", "score": float64(88), "sentiment": "Positive"}},
		{Type: EventEmailReceived, Metadata: map[string]any{"intent": "Info", "score": float64(20)}},
	}

	snapshot := ResolveAnalysis(lead, events)
	if snapshot == nil {
		t.Fatal("expected a snapshot")
	}

	if snapshot.Intent != "Quote" {
		t.Fatalf("expected most recent event intent, got %q", snapshot.Intent)
	}
	if snapshot.Score != 88 {
		t.Fatalf("expected most recent event score, got %d", snapshot.Score)
	}
	if snapshot.Sentiment != "Positive" {
		t.Fatalf("expected event sentiment, got %q", snapshot.Sentiment)
	}
}

func TestResolveAnalysis_PartialEventFallsBackToLeadThenDefault(t *testing.T) {
	lead := Lead{Intent: strPtr("Booking")}
	events := []LeadEvent{
		{Type: EventSMSReceived, Metadata: map[string]any{"score": 91}},
	}

	snapshot := ResolveAnalysis(lead, events)
	if snapshot == nil {
		t.Fatal("expected a snapshot")
	}

	if snapshot.Score != 91 {
		t.Fatalf("expected event score 91, got %d", snapshot.Score)
	}
	if snapshot.Intent != "Booking" {
		t.Fatalf("expected lead intent fallback, got %q", snapshot.Intent)
	}
	if snapshot.Sentiment != DefaultSentiment {
		t.Fatalf("expected default sentiment, got %q", snapshot.Sentiment)
	}
}

func TestResolveAnalysis_IntOrFloatScoreMetadata(t *testing.T) {
	events := []LeadEvent{
		{Type: EventEmailReceived, Metadata: map[string]any{"score": float64(77.9)}},
	}

	snapshot := ResolveAnalysis(Lead{}, events)
	if snapshot == nil || snapshot.Score != 77 {
		t.Fatalf("expected truncated float score 77, got %+v", snapshot)
	}
}
