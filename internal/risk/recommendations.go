package risk

import (
	_ "embed"
	"fmt"
	"strings"

	"ai-risk-registry/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed recommendations.yaml
var recommendationsYAML []byte

type recommendationRules struct {
	Assessment struct {
		Missing  string `yaml:"missing"`
		Blocking string `yaml:"blocking"`
	} `yaml:"assessment"`
	RMS struct {
		Missing string `yaml:"missing"`
		Overdue string `yaml:"overdue"`
	} `yaml:"rms"`
	Gaps struct {
		Missing       string            `yaml:"missing"`
		Partial       string            `yaml:"partial"`
		ByRequirement map[string]string `yaml:"byRequirement"`
	} `yaml:"gaps"`
	Events map[models.Severity]string `yaml:"events"`
}

func parseRecommendationRules(data []byte) (*recommendationRules, error) {
	var rules recommendationRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse recommendation rules: %w", err)
	}
	if rules.Assessment.Missing == "" || rules.Assessment.Blocking == "" ||
		rules.RMS.Missing == "" || rules.RMS.Overdue == "" ||
		rules.Gaps.Missing == "" || rules.Gaps.Partial == "" {
		return nil, fmt.Errorf("recommendation rules are incomplete")
	}
	for _, sev := range models.Severities {
		if rules.Events[sev] == "" {
			return nil, fmt.Errorf("recommendation rules have no entry for %s events", sev)
		}
	}
	return &rules, nil
}

func (r *recommendationRules) forGap(g models.ComplianceGap) string {
	tmpl := r.Gaps.Missing
	if g.Partial {
		tmpl = r.Gaps.Partial
	} else if specific, ok := r.Gaps.ByRequirement[g.Requirement]; ok {
		return specific
	}
	return strings.NewReplacer(
		"{requirement}", g.Requirement,
		"{article}", g.Article,
		"{title}", strings.ToLower(g.Title),
	).Replace(tmpl)
}
