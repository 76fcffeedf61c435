package risk

import (
	_ "embed"
	"fmt"

	"ai-risk-registry/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

type Requirement struct {
	ID           string               `yaml:"id" json:"id"`
	Article      string               `yaml:"article" json:"article"`
	Title        string               `yaml:"title" json:"title"`
	Severity     models.Severity      `yaml:"severity" json:"severity"`
	ControlTypes []models.ControlType `yaml:"controlTypes" json:"controlTypes"`
}

// Accepts reports whether a control of type t can cover the requirement.
func (r Requirement) Accepts(t models.ControlType) bool {
	for _, ct := range r.ControlTypes {
		if ct == t {
			return true
		}
	}
	return false
}

type tierEntry struct {
	Blocking     bool          `yaml:"blocking"`
	Requirements []Requirement `yaml:"requirements"`
}

type catalogFile struct {
	Tiers map[models.RiskLevel]tierEntry `yaml:"tiers"`
}

// Catalog maps a risk tier to its ordered list of required safeguards.
// It is read-only after loading.
type Catalog struct {
	tiers map[models.RiskLevel]tierEntry
}

// NewCatalog loads the catalog embedded in the binary.
func NewCatalog() (*Catalog, error) {
	return ParseCatalog(catalogYAML)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse requirement catalog: %w", err)
	}

	for _, tier := range []models.RiskLevel{
		models.RiskUnacceptable, models.RiskHigh, models.RiskLimited, models.RiskMinimal,
	} {
		entry, ok := file.Tiers[tier]
		if !ok {
			return nil, fmt.Errorf("requirement catalog has no entry for tier %q", tier)
		}
		seen := make(map[string]bool)
		for _, req := range entry.Requirements {
			if req.ID == "" {
				return nil, fmt.Errorf("tier %q: requirement without id", tier)
			}
			if seen[req.ID] {
				return nil, fmt.Errorf("tier %q: duplicate requirement %q", tier, req.ID)
			}
			seen[req.ID] = true
			if !req.Severity.Valid() {
				return nil, fmt.Errorf("tier %q: requirement %q has invalid severity %q", tier, req.ID, req.Severity)
			}
			if len(req.ControlTypes) == 0 {
				return nil, fmt.Errorf("tier %q: requirement %q accepts no control type", tier, req.ID)
			}
			for _, ct := range req.ControlTypes {
				if !ct.Valid() {
					return nil, fmt.Errorf("tier %q: requirement %q has invalid control type %q", tier, req.ID, ct)
				}
			}
		}
	}
	for tier := range file.Tiers {
		if !tier.Valid() {
			return nil, fmt.Errorf("requirement catalog has unknown tier %q", tier)
		}
	}

	return &Catalog{tiers: file.Tiers}, nil
}

// Requirements returns a copy of the tier's requirements in catalog order.
func (c *Catalog) Requirements(tier models.RiskLevel) []Requirement {
	reqs := c.tiers[tier].Requirements
	out := make([]Requirement, len(reqs))
	copy(out, reqs)
	return out
}

// Blocking is true for tiers that must not proceed towards deployment.
func (c *Catalog) Blocking(tier models.RiskLevel) bool {
	return c.tiers[tier].Blocking
}
