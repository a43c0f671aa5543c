package automation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"primus_backend/internal/leads/domain"
)

var templateVarPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// RenderTemplate substitutes {{variable}} placeholders in a message template.
// Unknown variables render as the empty string.
func RenderTemplate(template string, vars map[string]string) string {
	return templateVarPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := templateVarPattern.FindStringSubmatch(match)[1]
		return vars[name]
	})
}

// TemplateVars builds the variable set available to workflow templates for a
// lead. Every variable has a value so templates never render half-filled
// sentences: missing solar data falls back to "pending" or "N/A".
func TemplateVars(lead *domain.Lead, agentName string) map[string]string {
	name := lead.Name
	if name == "" {
		name = "there"
	}

	suitability := "pending"
	if lead.SiteSuitability != nil {
		suitability = string(*lead.SiteSuitability)
	}

	maxPanels := 0
	if lead.MaxPanelsCount != nil {
		maxPanels = *lead.MaxPanelsCount
	}

	systemSize := "N/A"
	if maxPanels > 0 {
		systemSize = fmt.Sprintf("%.1fkW", systemSizeKW(maxPanels))
	}

	annualProduction := "N/A"
	if lead.AnnualKwhProduction != nil {
		annualProduction = groupThousands(int64(math.Round(*lead.AnnualKwhProduction))) + " kWh"
	}

	summary := ""
	if lead.SolarEnriched && lead.SiteSuitability != nil && maxPanels > 0 {
		summary = SolarSummary(*lead.SiteSuitability, maxPanels, systemSizeKW(maxPanels))
	}

	return map[string]string{
		"name":             name,
		"businessType":     derefOr(lead.Source, "services"),
		"agentName":        agentName,
		"solarSuitability": suitability,
		"maxPanels":        strconv.Itoa(maxPanels),
		"systemSize":       systemSize,
		"solarSummary":     summary,
		"annualProduction": annualProduction,
	}
}

// SolarSummary produces the one-line human summary of a site's solar outlook.
func SolarSummary(suitability domain.SiteSuitability, maxPanels int, sizeKW float64) string {
	switch suitability {
	case domain.SuitabilityViable:
		return fmt.Sprintf("Excellent solar potential! Up to %d panels (%.1fkW system) recommended.", maxPanels, sizeKW)
	case domain.SuitabilityChallenging:
		return fmt.Sprintf("Moderate solar potential. %d panels possible, may require optimization.", maxPanels)
	case domain.SuitabilityNotViable:
		return "Limited solar potential at this location. Consider alternative options."
	default:
		return "Solar analysis pending."
	}
}

func systemSizeKW(panels int) float64 {
	return float64(panels) * 400 / 1000
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		return "-" + s
	}
	return s
}

func derefOr(s *string, def string) string {
	if s != nil {
		return *s
	}
	return def
}
