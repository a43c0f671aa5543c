package automation

import (
	"context"
	"fmt"
	"os"

	"primus_backend/internal/leads/domain"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// seedFile is the on-disk shape of a workflow seed file.
type seedFile struct {
	Workflows []seedWorkflow `yaml:"workflows"`
}

type seedWorkflow struct {
	Name       string          `yaml:"name"`
	Trigger    string          `yaml:"trigger"`
	Enabled    *bool           `yaml:"enabled"`
	Template   string          `yaml:"template"`
	Channel    string          `yaml:"channel"`
	Delay      int             `yaml:"delay"`
	Conditions *seedConditions `yaml:"conditions"`
	Actions    seedActions     `yaml:"actions"`
}

type seedConditions struct {
	MinScore          *int     `yaml:"minScore"`
	MaxScore          *int     `yaml:"maxScore"`
	IntentIn          []string `yaml:"intentIn"`
	StageIn           []string `yaml:"stageIn"`
	SiteSuitabilityIn []string `yaml:"siteSuitabilityIn"`
	SolarEnriched     *bool    `yaml:"solarEnriched"`
}

type seedActions struct {
	EnrichSolar    bool `yaml:"enrichSolar"`
	NotifyOnViable bool `yaml:"notifyOnViable"`
}

// WorkflowUpserter is the repository surface seeding needs.
type WorkflowUpserter interface {
	Upsert(ctx context.Context, wf *Workflow) error
}

// LoadSeedFile parses a workflow seed file. Workflows default to enabled.
func LoadSeedFile(path string) ([]Workflow, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workflow seed file: %w", err)
	}

	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse workflow seed file %s: %w", path, err)
	}

	workflows := make([]Workflow, 0, len(file.Workflows))
	for i, s := range file.Workflows {
		if s.Name == "" || s.Trigger == "" || s.Template == "" {
			return nil, fmt.Errorf("workflow seed %d: name, trigger and template are required", i)
		}
		wf := Workflow{
			Name:     s.Name,
			Trigger:  s.Trigger,
			Enabled:  s.Enabled == nil || *s.Enabled,
			Template: s.Template,
			Config: WorkflowConfig{
				Channel:      Channel(s.Channel),
				DelaySeconds: s.Delay,
				Actions: Actions{
					EnrichSolar:    s.Actions.EnrichSolar,
					NotifyOnViable: s.Actions.NotifyOnViable,
				},
			},
		}
		if s.Conditions != nil {
			cond := &Conditions{
				MinScore:      s.Conditions.MinScore,
				MaxScore:      s.Conditions.MaxScore,
				IntentIn:      s.Conditions.IntentIn,
				StageIn:       s.Conditions.StageIn,
				SolarEnriched: s.Conditions.SolarEnriched,
			}
			for _, v := range s.Conditions.SiteSuitabilityIn {
				cond.SiteSuitabilityIn = append(cond.SiteSuitabilityIn, domain.SiteSuitability(v))
			}
			wf.Config.Conditions = cond
		}
		workflows = append(workflows, wf)
	}
	return workflows, nil
}

// SeedWorkflows loads the seed file and upserts each workflow into the
// organization by name, so re-running a deploy keeps seeds current without
// duplicating them.
func SeedWorkflows(ctx context.Context, store WorkflowUpserter, orgID uuid.UUID, path string) (int, error) {
	workflows, err := LoadSeedFile(path)
	if err != nil {
		return 0, err
	}
	for i := range workflows {
		workflows[i].OrganizationID = orgID
		if err := store.Upsert(ctx, &workflows[i]); err != nil {
			return i, fmt.Errorf("seed workflow %q: %w", workflows[i].Name, err)
		}
	}
	return len(workflows), nil
}
