package automation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"primus_backend/internal/leads/domain"
)

const seedYAML = `
workflows:
  - name: welcome-email
    trigger: lead.created
    template: "Hi {{name}}, thanks for reaching out about {{businessType}}!"
    channel: email
    actions:
      enrichSolar: true
  - name: viable-followup
    trigger: solar.analyzed
    enabled: false
    template: "{{solarSummary}}"
    channel: sms
    delay: 600
    conditions:
      minScore: 60
      siteSuitabilityIn: [VIABLE, CHALLENGING]
      solarEnriched: true
`

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workflows.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSeedFile(t *testing.T) {
	workflows, err := LoadSeedFile(writeSeedFile(t, seedYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(workflows) != 2 {
		t.Fatalf("expected 2 workflows, got %d", len(workflows))
	}

	welcome := workflows[0]
	if !welcome.Enabled {
		t.Error("enabled should default to true")
	}
	if !welcome.Config.Actions.EnrichSolar {
		t.Error("enrichSolar action not parsed")
	}
	if welcome.Config.EffectiveChannel() != ChannelEmail {
		t.Errorf("channel: got %q", welcome.Config.EffectiveChannel())
	}

	followup := workflows[1]
	if followup.Enabled {
		t.Error("explicit enabled: false should stick")
	}
	if followup.Config.DelaySeconds != 600 {
		t.Errorf("delay: got %d", followup.Config.DelaySeconds)
	}
	cond := followup.Config.Conditions
	if cond == nil || cond.MinScore == nil || *cond.MinScore != 60 {
		t.Fatalf("conditions not parsed: %+v", cond)
	}
	if len(cond.SiteSuitabilityIn) != 2 || cond.SiteSuitabilityIn[0] != domain.SuitabilityViable {
		t.Errorf("siteSuitabilityIn: got %v", cond.SiteSuitabilityIn)
	}
	if cond.SolarEnriched == nil || !*cond.SolarEnriched {
		t.Error("solarEnriched condition not parsed")
	}
}

func TestLoadSeedFileRejectsIncompleteWorkflow(t *testing.T) {
	_, err := LoadSeedFile(writeSeedFile(t, "workflows:\n  - name: broken\n    trigger: lead.created\n"))
	if err == nil || !strings.Contains(err.Error(), "required") {
		t.Fatalf("expected validation error, got %v", err)
	}
}
