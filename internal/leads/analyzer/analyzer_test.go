package analyzer

import (
	"testing"

	"primus_backend/internal/leads/domain"
)

func TestParseAnalysis(t *testing.T) {
	snap, err := parseAnalysis(`{"intent":"Quote","score":85,"sentiment":"Positive"}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if snap.Intent != "Quote" || snap.Score != 85 || snap.Sentiment != "Positive" {
		t.Fatalf("got %+v", snap)
	}
}

func TestParseAnalysisStripsMarkdownFences(t *testing.T) {
	snap, err := parseAnalysis("```json\n{\"intent\":\"Urgent\",\"score\":92,\"sentiment\":\"Negative\"}\n```")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if snap.Intent != "Urgent" || snap.Score != 92 {
		t.Fatalf("got %+v", snap)
	}
}

func TestParseAnalysisClampsAndDefaults(t *testing.T) {
	snap, err := parseAnalysis(`{"score":250}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if snap.Score != 100 {
		t.Errorf("score should clamp to 100, got %d", snap.Score)
	}
	if snap.Intent != domain.DefaultIntent || snap.Sentiment != domain.DefaultSentiment {
		t.Errorf("missing fields should default, got %+v", snap)
	}

	snap, err = parseAnalysis(`{"intent":"Info","score":-5}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if snap.Score != 0 {
		t.Errorf("score should clamp to 0, got %d", snap.Score)
	}
}

func TestParseAnalysisRejectsGarbage(t *testing.T) {
	if _, err := parseAnalysis("the lead seems interested"); err == nil {
		t.Fatal("expected decode error for non-JSON output")
	}
}
