package models

// Every state machine and classification output has one enumerated type.
// Valid is used by the validator at the storage boundary and by request parsing.

type RiskLevel string

const (
	RiskUnacceptable RiskLevel = "unacceptable"
	RiskHigh         RiskLevel = "high"
	RiskLimited      RiskLevel = "limited"
	RiskMinimal      RiskLevel = "minimal"

	// reported when no classified assessment exists yet
	RiskUnclassified RiskLevel = "unclassified"
)

func (l RiskLevel) Valid() bool {
	switch l {
	case RiskUnacceptable, RiskHigh, RiskLimited, RiskMinimal:
		return true
	}
	return false
}

type ParameterLevel string

const (
	LevelVeryLow  ParameterLevel = "very_low"
	LevelLow      ParameterLevel = "low"
	LevelMedium   ParameterLevel = "medium"
	LevelHigh     ParameterLevel = "high"
	LevelVeryHigh ParameterLevel = "very_high"
)

func (l ParameterLevel) Valid() bool {
	switch l {
	case LevelVeryLow, LevelLow, LevelMedium, LevelHigh, LevelVeryHigh:
		return true
	}
	return false
}

type AssessmentStatus string

const (
	AssessmentDraft          AssessmentStatus = "draft"
	AssessmentInProgress     AssessmentStatus = "in_progress"
	AssessmentCompleted      AssessmentStatus = "completed"
	AssessmentApproved       AssessmentStatus = "approved"
	AssessmentRejected       AssessmentStatus = "rejected"
	AssessmentRequiresUpdate AssessmentStatus = "requires_update"
)

func (s AssessmentStatus) Valid() bool {
	switch s {
	case AssessmentDraft, AssessmentInProgress, AssessmentCompleted,
		AssessmentApproved, AssessmentRejected, AssessmentRequiresUpdate:
		return true
	}
	return false
}

type RMSStatus string

const (
	RMSActive      RMSStatus = "active"
	RMSInactive    RMSStatus = "inactive"
	RMSUnderReview RMSStatus = "under_review"
	RMSOutdated    RMSStatus = "outdated"
)

func (s RMSStatus) Valid() bool {
	switch s {
	case RMSActive, RMSInactive, RMSUnderReview, RMSOutdated:
		return true
	}
	return false
}

type ReviewCycle string

const (
	CycleMonthly    ReviewCycle = "monthly"
	CycleQuarterly  ReviewCycle = "quarterly"
	CycleSemiAnnual ReviewCycle = "semi_annual"
	CycleAnnual     ReviewCycle = "annual"
)

func (c ReviewCycle) Valid() bool {
	switch c {
	case CycleMonthly, CycleQuarterly, CycleSemiAnnual, CycleAnnual:
		return true
	}
	return false
}

// Months returns the length of one review cycle in months.
func (c ReviewCycle) Months() int {
	switch c {
	case CycleMonthly:
		return 1
	case CycleQuarterly:
		return 3
	case CycleSemiAnnual:
		return 6
	case CycleAnnual:
		return 12
	}
	return 0
}

type ControlType string

const (
	ControlTechnical      ControlType = "technical"
	ControlProcedural     ControlType = "procedural"
	ControlOrganizational ControlType = "organizational"
	ControlContractual    ControlType = "contractual"
)

func (t ControlType) Valid() bool {
	switch t {
	case ControlTechnical, ControlProcedural, ControlOrganizational, ControlContractual:
		return true
	}
	return false
}

type ControlStatus string

const (
	ControlPlanned     ControlStatus = "planned"
	ControlInProgress  ControlStatus = "in_progress"
	ControlImplemented ControlStatus = "implemented"
	ControlVerified    ControlStatus = "verified"
	ControlFailed      ControlStatus = "failed"
)

// ControlStatuses lists every control status in lifecycle order.
var ControlStatuses = []ControlStatus{
	ControlPlanned, ControlInProgress, ControlImplemented, ControlVerified, ControlFailed,
}

func (s ControlStatus) Valid() bool {
	switch s {
	case ControlPlanned, ControlInProgress, ControlImplemented, ControlVerified, ControlFailed:
		return true
	}
	return false
}

// InEffect reports whether the control is actually deployed.
func (s ControlStatus) InEffect() bool {
	return s == ControlImplemented || s == ControlVerified
}

type Effectiveness string

const (
	EffectNotImplemented     Effectiveness = "not_implemented"
	EffectNotTested          Effectiveness = "not_tested"
	EffectIneffective        Effectiveness = "ineffective"
	EffectPartiallyEffective Effectiveness = "partially_effective"
	EffectEffective          Effectiveness = "effective"
	EffectVeryEffective      Effectiveness = "very_effective"
)

func (e Effectiveness) Valid() bool {
	switch e {
	case EffectNotImplemented, EffectNotTested, EffectIneffective,
		EffectPartiallyEffective, EffectEffective, EffectVeryEffective:
		return true
	}
	return false
}

// Rated reports whether the value is an actual effectiveness measurement.
func (e Effectiveness) Rated() bool {
	return e != EffectNotImplemented && e != EffectNotTested
}

// Effective is true for effective and very_effective only.
func (e Effectiveness) Effective() bool {
	return e == EffectEffective || e == EffectVeryEffective
}

type EventStatus string

const (
	EventNew                EventStatus = "new"
	EventUnderInvestigation EventStatus = "under_investigation"
	EventResolved           EventStatus = "resolved"
	EventClosed             EventStatus = "closed"
)

// EventStatuses lists every event status in lifecycle order.
var EventStatuses = []EventStatus{
	EventNew, EventUnderInvestigation, EventResolved, EventClosed,
}

func (s EventStatus) Valid() bool {
	switch s {
	case EventNew, EventUnderInvestigation, EventResolved, EventClosed:
		return true
	}
	return false
}

// Open is true while the event still needs attention.
func (s EventStatus) Open() bool {
	return s == EventNew || s == EventUnderInvestigation
}

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Severities is ordered from most to least severe.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// Rank orders severities for sorting, higher is worse.
// medium and low share a rank.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMedium, SeverityLow:
		return 1
	}
	return 0
}

// Lower returns the next less severe level.
func (s Severity) Lower() Severity {
	switch s {
	case SeverityCritical:
		return SeverityHigh
	case SeverityHigh:
		return SeverityMedium
	}
	return SeverityLow
}

type GapStatus string

const (
	GapOpen          GapStatus = "open"
	GapInRemediation GapStatus = "in_remediation"
	GapClosed        GapStatus = "closed"
)

func (s GapStatus) Valid() bool {
	switch s {
	case GapOpen, GapInRemediation, GapClosed:
		return true
	}
	return false
}
