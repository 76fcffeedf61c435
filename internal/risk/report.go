package risk

import (
	"math"
	"sort"
	"time"

	"ai-risk-registry/internal/models"
)

const DefaultTopRisks = 5

// Snapshot is everything the report reads, fetched once by the caller.
// Any part may be missing; only counts fall back to zero.
type Snapshot struct {
	System     *models.AiSystem
	RMS        *models.RiskManagementSystem
	Assessment *models.RiskAssessment
	Controls   []models.RiskControl
	Events     []models.RiskEvent
	Gaps       []models.ComplianceGap
	Now        time.Time
}

type ControlSummary struct {
	Total             int                          `json:"total"`
	ByStatus          map[models.ControlStatus]int `json:"byStatus"`
	EffectivenessRate int                          `json:"effectivenessRate"`
}

type EventSummary struct {
	Total              int                        `json:"total"`
	ByStatus           map[models.EventStatus]int `json:"byStatus"`
	OpenCriticalEvents int                        `json:"openCriticalEvents"`
}

type GapSummary struct {
	Open          int `json:"open"`
	InRemediation int `json:"inRemediation"`
	Closed        int `json:"closed"`
	Partial       int `json:"partial"`
}

type TopRisk struct {
	Description string          `json:"description"`
	Severity    models.Severity `json:"severity"`
	Source      string          `json:"source"` // "gap" or "event"
	ReferenceID string          `json:"referenceId"`
	Date        time.Time       `json:"date"`
}

type ComplianceReport struct {
	SystemID          string           `json:"systemId,omitempty"`
	RiskLevel         models.RiskLevel `json:"riskLevel"`
	RiskScore         int              `json:"riskScore"`
	DeploymentBlocked bool             `json:"deploymentBlocked"`
	ControlSummary    ControlSummary   `json:"controlSummary"`
	EventSummary      EventSummary     `json:"eventSummary"`
	GapSummary        GapSummary       `json:"gapSummary"`
	ReviewOverdue     bool             `json:"reviewOverdue"`
	TopRisks          []TopRisk        `json:"topRisks"`
	Recommendations   []string         `json:"recommendations"`
	GeneratedAt       time.Time        `json:"generatedAt"`
}

type ReportAggregator struct {
	catalog *Catalog
	rules   *recommendationRules
	topN    int
}

func NewReportAggregator(catalog *Catalog, topN int) (*ReportAggregator, error) {
	rules, err := parseRecommendationRules(recommendationsYAML)
	if err != nil {
		return nil, err
	}
	if topN <= 0 {
		topN = DefaultTopRisks
	}
	return &ReportAggregator{catalog: catalog, rules: rules, topN: topN}, nil
}

// Build is a pure function of the snapshot.
func (r *ReportAggregator) Build(s Snapshot) ComplianceReport {
	rep := ComplianceReport{
		RiskLevel:      models.RiskUnclassified,
		ControlSummary: summarizeControls(s.Controls),
		EventSummary:   summarizeEvents(s.Events),
		GapSummary:     summarizeGaps(s.Gaps),
		GeneratedAt:    s.Now,
	}
	if s.System != nil {
		rep.SystemID = s.System.ID
	}
	if s.Assessment != nil && s.Assessment.Classified() {
		rep.RiskLevel = s.Assessment.RiskLevel
		rep.RiskScore = s.Assessment.RiskScore
		rep.DeploymentBlocked = r.catalog.Blocking(s.Assessment.RiskLevel)
	}
	if s.RMS != nil {
		rep.ReviewOverdue = s.RMS.ReviewOverdue(s.Now)
	}

	rep.TopRisks = r.topRisks(s.Gaps, s.Events)
	rep.Recommendations = r.recommend(rep, s)
	return rep
}

func summarizeControls(controls []models.RiskControl) ControlSummary {
	sum := ControlSummary{ByStatus: make(map[models.ControlStatus]int, len(models.ControlStatuses))}
	for _, st := range models.ControlStatuses {
		sum.ByStatus[st] = 0
	}

	effective := 0
	for _, c := range controls {
		sum.Total++
		sum.ByStatus[c.ImplementationStatus]++
		if c.Effectiveness.Effective() {
			effective++
		}
	}
	sum.EffectivenessRate = percent(effective, sum.Total)
	return sum
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(total)))
}

func summarizeEvents(events []models.RiskEvent) EventSummary {
	sum := EventSummary{ByStatus: make(map[models.EventStatus]int, len(models.EventStatuses))}
	for _, st := range models.EventStatuses {
		sum.ByStatus[st] = 0
	}

	for _, e := range events {
		sum.Total++
		sum.ByStatus[e.Status]++
		if e.Status.Open() && e.Severity == models.SeverityCritical {
			sum.OpenCriticalEvents++
		}
	}
	return sum
}

func summarizeGaps(gaps []models.ComplianceGap) GapSummary {
	var sum GapSummary
	for _, g := range gaps {
		switch g.Status {
		case models.GapOpen:
			sum.Open++
		case models.GapInRemediation:
			sum.InRemediation++
		case models.GapClosed:
			sum.Closed++
		}
		if g.Partial && g.Unresolved() {
			sum.Partial++
		}
	}
	return sum
}

func (r *ReportAggregator) topRisks(gaps []models.ComplianceGap, events []models.RiskEvent) []TopRisk {
	var risks []TopRisk
	for _, g := range gaps {
		if !g.Unresolved() {
			continue
		}
		desc := "Missing safeguard: " + g.Title
		if g.Partial {
			desc = "Partially effective safeguard: " + g.Title
		}
		if g.Article != "" {
			desc += " (" + g.Article + ")"
		}
		risks = append(risks, TopRisk{
			Description: desc,
			Severity:    g.Severity,
			Source:      "gap",
			ReferenceID: g.ID,
			Date:        g.CreatedAt,
		})
	}
	for _, e := range events {
		if !e.Status.Open() {
			continue
		}
		if e.Severity != models.SeverityCritical && e.Severity != models.SeverityHigh {
			continue
		}
		risks = append(risks, TopRisk{
			Description: e.Title,
			Severity:    e.Severity,
			Source:      "event",
			ReferenceID: e.ID,
			Date:        e.DetectionDate,
		})
	}

	sort.SliceStable(risks, func(i, j int) bool {
		a, b := risks[i], risks[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() > b.Severity.Rank()
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return a.ReferenceID < b.ReferenceID
	})

	if len(risks) > r.topN {
		risks = risks[:r.topN]
	}
	if risks == nil {
		risks = []TopRisk{}
	}
	return risks
}

func (r *ReportAggregator) recommend(rep ComplianceReport, s Snapshot) []string {
	out := []string{}
	seen := make(map[string]bool)
	add := func(msg string) {
		if msg != "" && !seen[msg] {
			seen[msg] = true
			out = append(out, msg)
		}
	}

	if rep.RiskLevel == models.RiskUnclassified {
		add(r.rules.Assessment.Missing)
	}
	if rep.DeploymentBlocked {
		add(r.rules.Assessment.Blocking)
	}
	if rep.RiskLevel == models.RiskHigh && s.RMS == nil {
		add(r.rules.RMS.Missing)
	}
	if rep.ReviewOverdue {
		add(r.rules.RMS.Overdue)
	}

	for _, g := range r.orderedGaps(rep.RiskLevel, s.Gaps) {
		add(r.rules.forGap(g))
	}

	for _, sev := range models.Severities {
		for _, e := range s.Events {
			if e.Status.Open() && e.Severity == sev {
				add(r.rules.Events[sev])
				break
			}
		}
	}
	return out
}

// orderedGaps returns unresolved gaps in catalog order of the tier.
func (r *ReportAggregator) orderedGaps(tier models.RiskLevel, gaps []models.ComplianceGap) []models.ComplianceGap {
	pos := make(map[string]int)
	for i, req := range r.catalog.Requirements(tier) {
		pos[req.ID] = i
	}

	var open []models.ComplianceGap
	for _, g := range gaps {
		if g.Unresolved() {
			open = append(open, g)
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		pi, iok := pos[open[i].Requirement]
		pj, jok := pos[open[j].Requirement]
		if iok != jok {
			return iok
		}
		if pi != pj {
			return pi < pj
		}
		return open[i].Requirement < open[j].Requirement
	})
	return open
}
