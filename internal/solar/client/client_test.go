package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"primus_backend/platform/apperr"
	"primus_backend/platform/logger"
)

func geocodeServer(t *testing.T, lat, lng float64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("address") == "" {
			t.Error("missing address parameter")
		}
		fmt.Fprintf(w, `{"status":"OK","results":[{"geometry":{"location":{"lat":%f,"lng":%f}}}]}`, lat, lng)
	}))
}

func TestGeocode(t *testing.T) {
	srv := geocodeServer(t, 37.422, -122.084)
	defer srv.Close()

	c := NewWithEndpoints("test-key", srv.URL, "http://unused", logger.New("test"))
	loc, err := c.Geocode(context.Background(), "1600 Amphitheatre Pkwy")
	if err != nil {
		t.Fatalf("geocode: %v", err)
	}
	if loc.Latitude != 37.422 || loc.Longitude != -122.084 {
		t.Fatalf("got %+v", loc)
	}
}

func TestGeocodeZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status":"ZERO_RESULTS","results":[]}`)
	}))
	defer srv.Close()

	c := NewWithEndpoints("test-key", srv.URL, "http://unused", logger.New("test"))
	_, err := c.Geocode(context.Background(), "nowhere at all")
	if err == nil {
		t.Fatal("expected error for ZERO_RESULTS")
	}
	if apperr.GetKind(err) != apperr.KindUnavailable {
		t.Fatalf("expected unavailable kind, got %v", apperr.GetKind(err))
	}
}

const insightsBody = `{
	"name": "buildings/abc",
	"center": {"latitude": 37.4, "longitude": -122.0},
	"imageryDate": {"year": 2024, "month": 6, "day": 12},
	"imageryQuality": "%s",
	"regionCode": "US",
	"solarPotential": {
		"maxArrayPanelsCount": 24,
		"maxSunshineHoursPerYear": 1450,
		"carbonOffsetFactorKgPerMwh": 428.9,
		"solarPanelConfigs": [
			{"panelsCount": 4, "yearlyEnergyDcKwh": 1900.5},
			{"panelsCount": 24, "yearlyEnergyDcKwh": 11400.2}
		]
	}
}`

func TestFindClosestBuildingHighQuality(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if q := r.URL.Query().Get("requiredQuality"); q != QualityHigh {
			t.Errorf("first request should ask for HIGH, got %q", q)
		}
		fmt.Fprintf(w, insightsBody, QualityHigh)
	}))
	defer srv.Close()

	c := NewWithEndpoints("test-key", "http://unused", srv.URL, logger.New("test"))
	insights, err := c.FindClosestBuilding(context.Background(), LatLng{Latitude: 37.4, Longitude: -122.0})
	if err != nil {
		t.Fatalf("find closest: %v", err)
	}
	if insights.SolarPotential.MaxArrayPanelsCount != 24 {
		t.Errorf("maxArrayPanelsCount: got %d", insights.SolarPotential.MaxArrayPanelsCount)
	}
	if len(insights.SolarPotential.SolarPanelConfigs) != 2 {
		t.Errorf("configs: got %d", len(insights.SolarPotential.SolarPanelConfigs))
	}
}

func TestFindClosestBuildingFallsBackToMedium(t *testing.T) {
	var qualities []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("requiredQuality")
		qualities = append(qualities, q)
		if q == QualityHigh {
			http.Error(w, `{"error":{"code":404}}`, http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, insightsBody, QualityMedium)
	}))
	defer srv.Close()

	c := NewWithEndpoints("test-key", "http://unused", srv.URL, logger.New("test"))
	insights, err := c.FindClosestBuilding(context.Background(), LatLng{Latitude: 52.1, Longitude: 4.9})
	if err != nil {
		t.Fatalf("find closest: %v", err)
	}
	if insights.ImageryQuality != QualityMedium {
		t.Errorf("imageryQuality: got %q", insights.ImageryQuality)
	}
	if len(qualities) != 2 || qualities[0] != QualityHigh || qualities[1] != QualityMedium {
		t.Fatalf("expected HIGH then MEDIUM, got %v", qualities)
	}
}

func TestFindClosestBuildingNotFoundAtBothTiers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"code":404}}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewWithEndpoints("test-key", "http://unused", srv.URL, logger.New("test"))
	_, err := c.FindClosestBuilding(context.Background(), LatLng{})
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFindClosestBuildingServerErrorDoesNotRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewWithEndpoints("test-key", "http://unused", srv.URL, logger.New("test"))
	_, err := c.FindClosestBuilding(context.Background(), LatLng{})
	if apperr.GetKind(err) != apperr.KindUnavailable {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("500 must not trigger the quality fallback, got %d calls", calls)
	}
}
