package automation

import "primus_backend/internal/leads/domain"

// EvaluateConditions reports whether a workflow's conditions hold for the
// given lead. A nil condition set is vacuously true. Declared predicates
// combine with AND; score bounds are inclusive. The score comes from the
// analysis snapshot when one exists, then the lead's stored score, then zero.
func EvaluateConditions(cond *Conditions, lead *domain.Lead, analysis *domain.AnalysisSnapshot) bool {
	if cond == nil {
		return true
	}

	score := 0
	switch {
	case analysis != nil:
		score = analysis.Score
	case lead.Score != nil:
		score = *lead.Score
	}

	if cond.MinScore != nil && score < *cond.MinScore {
		return false
	}
	if cond.MaxScore != nil && score > *cond.MaxScore {
		return false
	}

	if len(cond.IntentIn) > 0 {
		intent := ""
		switch {
		case analysis != nil:
			intent = analysis.Intent
		case lead.Intent != nil:
			intent = *lead.Intent
		}
		if intent == "" || !containsString(cond.IntentIn, intent) {
			return false
		}
	}

	if len(cond.StageIn) > 0 {
		if lead.Stage == "" || !containsString(cond.StageIn, lead.Stage) {
			return false
		}
	}

	if len(cond.SiteSuitabilityIn) > 0 {
		if lead.SiteSuitability == nil {
			return false
		}
		found := false
		for _, s := range cond.SiteSuitabilityIn {
			if s == *lead.SiteSuitability {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if cond.SolarEnriched != nil && lead.SolarEnriched != *cond.SolarEnriched {
		return false
	}

	return true
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
