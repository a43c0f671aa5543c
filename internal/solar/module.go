// Package solar provides the composition root for solar site enrichment.
package solar

import (
	"primus_backend/internal/events"
	"primus_backend/internal/solar/client"
	"primus_backend/internal/solar/service"
	"primus_backend/platform/config"
	"primus_backend/platform/logger"
)

// Module wires the solar enrichment client and service.
type Module struct {
	service *service.Service
}

// NewModule creates the solar module. With no API key configured the service
// stays wired but reports itself disabled.
func NewModule(cfg config.SolarConfig, leads service.LeadStore, bus events.Bus, log *logger.Logger) *Module {
	cli := client.New(cfg.GetGoogleMapsAPIKey(), cfg.GetSolarHTTPTimeout(), log)
	svc := service.New(cli, leads, bus, cfg.IsSolarEnabled(), log)
	return &Module{service: svc}
}

// Service returns the enrichment service.
func (m *Module) Service() *service.Service {
	return m.service
}
