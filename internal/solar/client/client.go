// Package client provides HTTP clients for Google geocoding and Solar API lookups.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"primus_backend/platform/apperr"
	"primus_backend/platform/logger"
)

const (
	defaultGeocodeEndpoint = "https://maps.googleapis.com/maps/api/geocode/json"
	defaultSolarEndpoint   = "https://solar.googleapis.com/v1"
	defaultHTTPTimeout     = 8 * time.Second
)

// Imagery quality tiers accepted by buildingInsights:findClosest. HIGH is
// requested first; a 404 means no HIGH imagery covers the location, and the
// lookup retries once at MEDIUM.
const (
	QualityHigh   = "HIGH"
	QualityMedium = "MEDIUM"
)

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Date is the calendar date shape used by the Solar API.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// Money is an amount in the Solar API's currency representation. Units is a
// decimal string per the API contract.
type Money struct {
	CurrencyCode string `json:"currencyCode"`
	Units        string `json:"units"`
}

// BuildingInsights is the Solar API response for a single building.
type BuildingInsights struct {
	Name           string         `json:"name"`
	Center         LatLng         `json:"center"`
	ImageryDate    *Date          `json:"imageryDate"`
	ImageryQuality string         `json:"imageryQuality"`
	RegionCode     string         `json:"regionCode"`
	SolarPotential SolarPotential `json:"solarPotential"`
}

// SolarPotential holds the roof and production analysis for a building.
type SolarPotential struct {
	MaxArrayPanelsCount        int                 `json:"maxArrayPanelsCount"`
	MaxArrayAreaMeters2        float64             `json:"maxArrayAreaMeters2"`
	MaxSunshineHoursPerYear    float64             `json:"maxSunshineHoursPerYear"`
	CarbonOffsetFactorKgPerMwh float64             `json:"carbonOffsetFactorKgPerMwh"`
	WholeRoofStats             RoofStats           `json:"wholeRoofStats"`
	RoofSegmentStats           []RoofSegment       `json:"roofSegmentStats"`
	SolarPanelConfigs          []SolarPanelConfig  `json:"solarPanelConfigs"`
	FinancialAnalyses          []FinancialAnalysis `json:"financialAnalyses"`
}

// RoofStats aggregates area and sunshine statistics for a roof surface.
type RoofStats struct {
	AreaMeters2       float64   `json:"areaMeters2"`
	SunshineQuantiles []float64 `json:"sunshineQuantiles"`
	GroundAreaMeters2 float64   `json:"groundAreaMeters2"`
}

// RoofSegment describes one planar section of the roof.
type RoofSegment struct {
	PitchDegrees   float64   `json:"pitchDegrees"`
	AzimuthDegrees float64   `json:"azimuthDegrees"`
	Stats          RoofStats `json:"stats"`
	Center         LatLng    `json:"center"`
}

// SolarPanelConfig is one candidate panel layout. Configs are ordered by
// increasing panel count; the last entry is the maximum layout.
type SolarPanelConfig struct {
	PanelsCount          int                  `json:"panelsCount"`
	YearlyEnergyDcKwh    float64              `json:"yearlyEnergyDcKwh"`
	RoofSegmentSummaries []RoofSegmentSummary `json:"roofSegmentSummaries"`
}

// RoofSegmentSummary assigns part of a panel config to a roof segment.
type RoofSegmentSummary struct {
	PitchDegrees      float64 `json:"pitchDegrees"`
	AzimuthDegrees    float64 `json:"azimuthDegrees"`
	PanelsCount       int     `json:"panelsCount"`
	YearlyEnergyDcKwh float64 `json:"yearlyEnergyDcKwh"`
	SegmentIndex      int     `json:"segmentIndex"`
}

// FinancialAnalysis models the Solar API's cost projections for a config.
type FinancialAnalysis struct {
	MonthlyBill         Money                `json:"monthlyBill"`
	PanelConfigIndex    int                  `json:"panelConfigIndex"`
	CashPurchaseSavings *CashPurchaseSavings `json:"cashPurchaseSavings"`
}

// CashPurchaseSavings is the buy-outright financial scenario.
type CashPurchaseSavings struct {
	OutOfPocketCost Money   `json:"outOfPocketCost"`
	UpfrontCost     Money   `json:"upfrontCost"`
	RebateValue     Money   `json:"rebateValue"`
	PaybackYears    float64 `json:"paybackYears"`
	Savings         Savings `json:"savings"`
}

// Savings holds year-1, year-20 and lifetime savings amounts.
type Savings struct {
	SavingsYear1    Money `json:"savingsYear1"`
	SavingsYear20   Money `json:"savingsYear20"`
	SavingsLifetime Money `json:"savingsLifetime"`
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Client calls the Google geocoding and Solar APIs.
type Client struct {
	httpClient      *http.Client
	log             *logger.Logger
	apiKey          string
	geocodeEndpoint string
	solarEndpoint   string
}

// New creates a Solar API client against the production Google endpoints.
func New(apiKey string, timeout time.Duration, log *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &Client{
		httpClient:      &http.Client{Timeout: timeout},
		log:             log,
		apiKey:          apiKey,
		geocodeEndpoint: defaultGeocodeEndpoint,
		solarEndpoint:   defaultSolarEndpoint,
	}
}

// NewWithEndpoints creates a client against custom endpoints. Used in tests.
func NewWithEndpoints(apiKey, geocodeEndpoint, solarEndpoint string, log *logger.Logger) *Client {
	c := New(apiKey, defaultHTTPTimeout, log)
	c.geocodeEndpoint = geocodeEndpoint
	c.solarEndpoint = solarEndpoint
	return c
}

// Geocode resolves a street address to coordinates.
func (c *Client) Geocode(ctx context.Context, address string) (LatLng, error) {
	params := url.Values{}
	params.Set("address", address)
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.geocodeEndpoint+"?"+params.Encode(), nil)
	if err != nil {
		return LatLng{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return LatLng{}, apperr.Wrap(apperr.KindUnavailable, "geocoding request failed", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		c.log.Error("geocoding upstream error", "status", resp.StatusCode)
		return LatLng{}, apperr.Unavailable(fmt.Sprintf("geocoding upstream error: %d", resp.StatusCode))
	}

	var payload geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return LatLng{}, fmt.Errorf("failed to decode geocoding payload: %w", err)
	}

	if payload.Status != "OK" || len(payload.Results) == 0 {
		c.log.Error("geocoding failed", "api_status", payload.Status)
		return LatLng{}, apperr.Unavailable(fmt.Sprintf("geocoding failed: %s", payload.Status))
	}

	loc := payload.Results[0].Geometry.Location
	return LatLng{Latitude: loc.Lat, Longitude: loc.Lng}, nil
}

// FindClosestBuilding fetches building insights for a coordinate. It requests
// HIGH quality imagery first and retries once at MEDIUM when the API reports
// no HIGH coverage for the location.
func (c *Client) FindClosestBuilding(ctx context.Context, location LatLng) (*BuildingInsights, error) {
	insights, status, err := c.fetchInsights(ctx, location, QualityHigh)
	if err != nil {
		return nil, err
	}
	if insights != nil {
		return insights, nil
	}

	if status == http.StatusNotFound {
		c.log.Debug("no HIGH quality imagery, retrying at MEDIUM",
			"lat", location.Latitude, "lng", location.Longitude)
		insights, status, err = c.fetchInsights(ctx, location, QualityMedium)
		if err != nil {
			return nil, err
		}
		if insights != nil {
			return insights, nil
		}
		if status == http.StatusNotFound {
			// No coverage at any quality. Callers treat every enrichment
			// error as a non-fatal provider miss, so the kind here only
			// distinguishes "no data for this roof" from an API outage.
			return nil, apperr.NotFound("no building insights for location")
		}
	}

	return nil, apperr.Unavailable(fmt.Sprintf("solar api error: %d", status))
}

// fetchInsights performs a single findClosest call. A nil insights result with
// a nil error means the API returned a non-200 status.
func (c *Client) fetchInsights(ctx context.Context, location LatLng, quality string) (*BuildingInsights, int, error) {
	params := url.Values{}
	params.Set("location.latitude", fmt.Sprintf("%f", location.Latitude))
	params.Set("location.longitude", fmt.Sprintf("%f", location.Longitude))
	params.Set("requiredQuality", quality)
	params.Set("key", c.apiKey)

	reqURL := c.solarEndpoint + "/buildingInsights:findClosest?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.KindUnavailable, "solar api request failed", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.log.Debug("solar api non-200", "status", resp.StatusCode, "quality", quality, "body", string(body))
		return nil, resp.StatusCode, nil
	}

	var insights BuildingInsights
	if err := json.NewDecoder(resp.Body).Decode(&insights); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to decode solar insights: %w", err)
	}
	return &insights, resp.StatusCode, nil
}
