package automation

import (
	"testing"

	"primus_backend/internal/leads/domain"
)

func float64Ptr(v float64) *float64 { return &v }

func TestRenderTemplateSubstitutesKnownVars(t *testing.T) {
	got := RenderTemplate("Hi {{name}}, thanks for your {{businessType}} inquiry!", map[string]string{
		"name":         "Dana",
		"businessType": "roofing",
	})
	want := "Hi Dana, thanks for your roofing inquiry!"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderTemplateUnknownVarBecomesEmpty(t *testing.T) {
	got := RenderTemplate("{{a}} and {{b}}", map[string]string{"a": "X"})
	if got != "X and " {
		t.Fatalf("got %q, want %q", got, "X and ")
	}
}

func TestRenderTemplateLeavesMalformedBracesAlone(t *testing.T) {
	in := "{{not closed and {single} braces"
	if got := RenderTemplate(in, map[string]string{"single": "x"}); got != in {
		t.Fatalf("got %q, want input unchanged", got)
	}
}

func TestTemplateVarsDefaults(t *testing.T) {
	vars := TemplateVars(&domain.Lead{}, "Primus Team")

	checks := map[string]string{
		"name":             "there",
		"businessType":     "services",
		"agentName":        "Primus Team",
		"solarSuitability": "pending",
		"maxPanels":        "0",
		"systemSize":       "N/A",
		"solarSummary":     "",
		"annualProduction": "N/A",
	}
	for k, want := range checks {
		if vars[k] != want {
			t.Errorf("%s: got %q, want %q", k, vars[k], want)
		}
	}
}

func TestTemplateVarsEnrichedLead(t *testing.T) {
	lead := &domain.Lead{
		Name:                "Alex Rivera",
		Source:              strPtr("roofing"),
		SiteSuitability:     suitPtr(domain.SuitabilityViable),
		MaxPanelsCount:      intPtr(24),
		AnnualKwhProduction: float64Ptr(12450.6),
		SolarEnriched:       true,
	}
	vars := TemplateVars(lead, "Primus Team")

	if vars["maxPanels"] != "24" {
		t.Errorf("maxPanels: got %q", vars["maxPanels"])
	}
	if vars["systemSize"] != "9.6kW" {
		t.Errorf("systemSize: got %q", vars["systemSize"])
	}
	if vars["annualProduction"] != "12,451 kWh" {
		t.Errorf("annualProduction: got %q", vars["annualProduction"])
	}
	want := "Excellent solar potential! Up to 24 panels (9.6kW system) recommended."
	if vars["solarSummary"] != want {
		t.Errorf("solarSummary: got %q, want %q", vars["solarSummary"], want)
	}
}

func TestSolarSummaryTiers(t *testing.T) {
	if got := SolarSummary(domain.SuitabilityChallenging, 7, 2.8); got != "Moderate solar potential. 7 panels possible, may require optimization." {
		t.Errorf("challenging: got %q", got)
	}
	if got := SolarSummary(domain.SuitabilityNotViable, 2, 0.8); got != "Limited solar potential at this location. Consider alternative options." {
		t.Errorf("not viable: got %q", got)
	}
}
