package automation

import (
	"testing"

	"primus_backend/internal/leads/domain"
)

func intPtr(v int) *int                                          { return &v }
func boolPtr(v bool) *bool                                       { return &v }
func strPtr(v string) *string                                    { return &v }
func suitPtr(v domain.SiteSuitability) *domain.SiteSuitability   { return &v }

func TestEvaluateConditionsNilIsVacuouslyTrue(t *testing.T) {
	lead := &domain.Lead{}
	if !EvaluateConditions(nil, lead, nil) {
		t.Fatal("nil conditions should always pass")
	}
}

func TestEvaluateConditionsScoreBoundsInclusive(t *testing.T) {
	cond := &Conditions{MinScore: intPtr(50), MaxScore: intPtr(80)}

	cases := []struct {
		score int
		want  bool
	}{
		{49, false},
		{50, true},
		{65, true},
		{80, true},
		{81, false},
	}
	for _, tc := range cases {
		lead := &domain.Lead{Score: intPtr(tc.score)}
		if got := EvaluateConditions(cond, lead, nil); got != tc.want {
			t.Errorf("score %d: got %v, want %v", tc.score, got, tc.want)
		}
	}
}

func TestEvaluateConditionsAnalysisScoreWinsOverLead(t *testing.T) {
	cond := &Conditions{MinScore: intPtr(70)}
	lead := &domain.Lead{Score: intPtr(30)}
	analysis := &domain.AnalysisSnapshot{Intent: "Quote", Score: 85, Sentiment: "Positive"}

	if !EvaluateConditions(cond, lead, analysis) {
		t.Fatal("analysis score 85 should satisfy minScore 70")
	}
	if EvaluateConditions(cond, lead, nil) {
		t.Fatal("without analysis, lead score 30 should fail minScore 70")
	}
}

func TestEvaluateConditionsMissingScoreDefaultsToZero(t *testing.T) {
	lead := &domain.Lead{}
	if EvaluateConditions(&Conditions{MinScore: intPtr(1)}, lead, nil) {
		t.Fatal("lead without score should evaluate as 0 and fail minScore 1")
	}
	if !EvaluateConditions(&Conditions{MaxScore: intPtr(10)}, lead, nil) {
		t.Fatal("lead without score should evaluate as 0 and pass maxScore 10")
	}
}

func TestEvaluateConditionsIntentMembership(t *testing.T) {
	cond := &Conditions{IntentIn: []string{"Quote", "Urgent"}}

	if EvaluateConditions(cond, &domain.Lead{}, nil) {
		t.Fatal("lead without intent should fail intentIn")
	}
	if !EvaluateConditions(cond, &domain.Lead{Intent: strPtr("Quote")}, nil) {
		t.Fatal("lead intent Quote should pass")
	}
	analysis := &domain.AnalysisSnapshot{Intent: "Info", Score: 50, Sentiment: "Neutral"}
	if EvaluateConditions(cond, &domain.Lead{Intent: strPtr("Quote")}, analysis) {
		t.Fatal("analysis intent Info should shadow lead intent and fail")
	}
}

func TestEvaluateConditionsStageAndSuitability(t *testing.T) {
	cond := &Conditions{
		StageIn:           []string{domain.StageNew, domain.StageContacted},
		SiteSuitabilityIn: []domain.SiteSuitability{domain.SuitabilityViable},
	}

	lead := &domain.Lead{Stage: domain.StageNew, SiteSuitability: suitPtr(domain.SuitabilityViable)}
	if !EvaluateConditions(cond, lead, nil) {
		t.Fatal("matching stage and suitability should pass")
	}

	lead.Stage = domain.StageLost
	if EvaluateConditions(cond, lead, nil) {
		t.Fatal("stage Lost should fail stageIn")
	}

	lead.Stage = domain.StageNew
	lead.SiteSuitability = nil
	if EvaluateConditions(cond, lead, nil) {
		t.Fatal("missing suitability should fail siteSuitabilityIn")
	}
}

func TestEvaluateConditionsSolarEnrichedFlag(t *testing.T) {
	cond := &Conditions{SolarEnriched: boolPtr(true)}

	if EvaluateConditions(cond, &domain.Lead{}, nil) {
		t.Fatal("unenriched lead should fail solarEnriched=true")
	}
	if !EvaluateConditions(cond, &domain.Lead{SolarEnriched: true}, nil) {
		t.Fatal("enriched lead should pass solarEnriched=true")
	}
	if !EvaluateConditions(&Conditions{SolarEnriched: boolPtr(false)}, &domain.Lead{}, nil) {
		t.Fatal("unenriched lead should pass solarEnriched=false")
	}
}

func TestEvaluateConditionsAllPredicatesANDed(t *testing.T) {
	cond := &Conditions{
		MinScore: intPtr(50),
		IntentIn: []string{"Quote"},
	}
	lead := &domain.Lead{Score: intPtr(90), Intent: strPtr("Info")}
	if EvaluateConditions(cond, lead, nil) {
		t.Fatal("one failing predicate should fail the whole set")
	}
}
