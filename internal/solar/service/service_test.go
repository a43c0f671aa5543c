package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"primus_backend/internal/leads/domain"
	"primus_backend/internal/solar/client"
	"primus_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeFetcher struct {
	location    client.LatLng
	geocodeErr  error
	insights    *client.BuildingInsights
	insightsErr error
}

func (f *fakeFetcher) Geocode(context.Context, string) (client.LatLng, error) {
	return f.location, f.geocodeErr
}

func (f *fakeFetcher) FindClosestBuilding(context.Context, client.LatLng) (*client.BuildingInsights, error) {
	return f.insights, f.insightsErr
}

type fakeStore struct {
	updates []domain.SolarEnrichmentUpdate
	failed  int
	surveys []domain.SiteSurvey
	events  []domain.LeadEvent
}

func (f *fakeStore) UpdateSolarEnrichment(_ context.Context, _ uuid.UUID, u domain.SolarEnrichmentUpdate) error {
	f.updates = append(f.updates, u)
	return nil
}

func (f *fakeStore) MarkEnrichmentFailed(context.Context, uuid.UUID) error {
	f.failed++
	return nil
}

func (f *fakeStore) CreateSiteSurvey(_ context.Context, s *domain.SiteSurvey) error {
	f.surveys = append(f.surveys, *s)
	return nil
}

func (f *fakeStore) CreateEvent(_ context.Context, e *domain.LeadEvent) error {
	f.events = append(f.events, *e)
	return nil
}

func viableInsights() *client.BuildingInsights {
	return &client.BuildingInsights{
		Center:         client.LatLng{Latitude: 37.4, Longitude: -122.0},
		ImageryDate:    &client.Date{Year: 2024, Month: 6, Day: 12},
		ImageryQuality: client.QualityHigh,
		SolarPotential: client.SolarPotential{
			MaxArrayPanelsCount:        24,
			MaxSunshineHoursPerYear:    1450,
			CarbonOffsetFactorKgPerMwh: 400,
			RoofSegmentStats: []client.RoofSegment{
				{PitchDegrees: 22.5, AzimuthDegrees: 180},
			},
			SolarPanelConfigs: []client.SolarPanelConfig{
				{PanelsCount: 4, YearlyEnergyDcKwh: 1900},
				{PanelsCount: 20, YearlyEnergyDcKwh: 9500},
			},
			FinancialAnalyses: []client.FinancialAnalysis{
				{
					CashPurchaseSavings: &client.CashPurchaseSavings{
						OutOfPocketCost: client.Money{CurrencyCode: "USD", Units: "21500"},
						PaybackYears:    8.5,
						Savings: client.Savings{
							SavingsYear1: client.Money{CurrencyCode: "USD", Units: "1840"},
						},
					},
				},
			},
		},
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		panels   int
		sunshine float64
		want     domain.SiteSuitability
	}{
		{12, 1300, domain.SuitabilityViable},
		{10, 1200, domain.SuitabilityViable},
		{12, 1100, domain.SuitabilityChallenging},
		{6, 900, domain.SuitabilityChallenging},
		{5, 800, domain.SuitabilityChallenging},
		{9, 700, domain.SuitabilityNotViable},
		{2, 1400, domain.SuitabilityNotViable},
		{0, 0, domain.SuitabilityNotViable},
	}
	for _, tc := range cases {
		if got := Classify(tc.panels, tc.sunshine); got != tc.want {
			t.Errorf("Classify(%d, %.0f) = %s, want %s", tc.panels, tc.sunshine, got, tc.want)
		}
	}
}

func TestEnrichPersistsAnalysis(t *testing.T) {
	store := &fakeStore{}
	svc := New(&fakeFetcher{insights: viableInsights()}, store, nil, true, logger.New("test"))

	leadID := uuid.New()
	if err := svc.Enrich(context.Background(), leadID, "1600 Amphitheatre Pkwy, Mountain View"); err != nil {
		t.Fatalf("enrich: %v", err)
	}

	if len(store.updates) != 1 {
		t.Fatalf("expected 1 lead update, got %d", len(store.updates))
	}
	u := store.updates[0]
	if u.SiteSuitability != domain.SuitabilityViable {
		t.Errorf("suitability: got %s", u.SiteSuitability)
	}
	if u.MaxPanelsCount != 24 {
		t.Errorf("maxPanels: got %d", u.MaxPanelsCount)
	}
	if u.AnnualKwhProduction != 9500 {
		t.Errorf("annualKwh: got %.0f (best config should be the last entry)", u.AnnualKwhProduction)
	}
	if u.RoofPitch == nil || *u.RoofPitch != 22.5 {
		t.Errorf("roofPitch: got %v", u.RoofPitch)
	}
	if u.CarbonOffsetKg != 9500*400/1000 {
		t.Errorf("carbonOffsetKg: got %.1f", u.CarbonOffsetKg)
	}

	if len(store.surveys) != 1 {
		t.Fatalf("expected 1 survey, got %d", len(store.surveys))
	}
	survey := store.surveys[0]
	if survey.SystemSizeKW != 8.0 {
		t.Errorf("systemSizeKW: got %.1f, want 20 panels * 400W", survey.SystemSizeKW)
	}
	if survey.RecommendedPanels != 20 {
		t.Errorf("recommendedPanels: got %d", survey.RecommendedPanels)
	}
	if survey.EstimatedSavingsYear == nil || *survey.EstimatedSavingsYear != 1840 {
		t.Errorf("estimatedSavingsYear: got %v", survey.EstimatedSavingsYear)
	}
	if survey.EstimatedCostUSD == nil || *survey.EstimatedCostUSD != 21500 {
		t.Errorf("estimatedCostUSD: got %v", survey.EstimatedCostUSD)
	}
	if survey.PaybackYears == nil || *survey.PaybackYears != 8.5 {
		t.Errorf("paybackYears: got %v", survey.PaybackYears)
	}
	if len(survey.BuildingInsightsJSON) == 0 {
		t.Error("raw insights payload should be preserved")
	}

	if len(store.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(store.events))
	}
	ev := store.events[0]
	if ev.Type != domain.EventSolarAnalysis {
		t.Errorf("event type: got %q", ev.Type)
	}
	if !strings.Contains(ev.Content, "VIABLE") || !strings.Contains(ev.Content, "24 panels") {
		t.Errorf("event content: got %q", ev.Content)
	}
	if store.failed != 0 {
		t.Error("successful enrichment must not mark failure")
	}
}

func TestEnrichWithoutFinancials(t *testing.T) {
	insights := viableInsights()
	insights.SolarPotential.FinancialAnalyses = nil
	store := &fakeStore{}
	svc := New(&fakeFetcher{insights: insights}, store, nil, true, logger.New("test"))

	if err := svc.Enrich(context.Background(), uuid.New(), "742 Evergreen Terrace, Springfield"); err != nil {
		t.Fatalf("enrich: %v", err)
	}
	survey := store.surveys[0]
	if survey.EstimatedSavingsYear != nil || survey.EstimatedCostUSD != nil || survey.PaybackYears != nil {
		t.Error("missing financials should leave cost fields nil")
	}
}

func TestEnrichShortAddressFailsAndMarksLead(t *testing.T) {
	store := &fakeStore{}
	svc := New(&fakeFetcher{}, store, nil, true, logger.New("test"))

	err := svc.Enrich(context.Background(), uuid.New(), "  ab ")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if store.failed != 1 {
		t.Error("failed analysis should be recorded on the lead")
	}
	if len(store.updates) != 0 {
		t.Error("no enrichment data should be written")
	}
}

func TestEnrichGeocodeFailureMarksLead(t *testing.T) {
	store := &fakeStore{}
	svc := New(&fakeFetcher{geocodeErr: errors.New("quota exceeded")}, store, nil, true, logger.New("test"))

	if err := svc.Enrich(context.Background(), uuid.New(), "1600 Amphitheatre Pkwy"); err == nil {
		t.Fatal("expected geocode error to propagate")
	}
	if store.failed != 1 {
		t.Error("geocode failure should mark the lead")
	}
}

func TestEnrichInsightsFailureMarksLead(t *testing.T) {
	store := &fakeStore{}
	svc := New(&fakeFetcher{insightsErr: errors.New("api down")}, store, nil, true, logger.New("test"))

	if err := svc.Enrich(context.Background(), uuid.New(), "1600 Amphitheatre Pkwy"); err == nil {
		t.Fatal("expected insights error to propagate")
	}
	if store.failed != 1 {
		t.Error("insights failure should mark the lead")
	}
	if len(store.events) != 0 {
		t.Error("failed analysis must not create a SOLAR_ANALYSIS event")
	}
}
