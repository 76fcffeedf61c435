package risk

import (
	"strings"
	"time"

	"ai-risk-registry/internal/models"
)

type TransitionEventCommand struct {
	EntityID              string             `json:"entityId"`
	ExpectedCurrentStatus models.EventStatus `json:"expectedCurrentStatus"`
	TargetStatus          models.EventStatus `json:"targetStatus"`
	ResolutionNote        string             `json:"resolutionNote,omitempty"`
	RootCause             string             `json:"rootCause,omitempty"`
}

// strictly forward, one step at a time
var eventTransitions = map[models.EventStatus][]models.EventStatus{
	models.EventNew:                {models.EventUnderInvestigation},
	models.EventUnderInvestigation: {models.EventResolved},
	models.EventResolved:           {models.EventClosed},
	models.EventClosed:             nil,
}

func NextEventStatuses(s models.EventStatus) []models.EventStatus {
	next := eventTransitions[s]
	out := make([]models.EventStatus, len(next))
	copy(out, next)
	return out
}

// TransitionEvent moves the event along new → under_investigation → resolved → closed.
// note and rootCause are only read when resolving.
func TransitionEvent(e *models.RiskEvent, target models.EventStatus, note, rootCause string, now time.Time) error {
	if !allowed(eventTransitions[e.Status], target) {
		return &InvalidTransitionError{Entity: "event", From: string(e.Status), To: string(target)}
	}

	switch target {
	case models.EventResolved:
		note = strings.TrimSpace(note)
		if note == "" {
			return &IncompleteResolutionError{EventID: e.ID}
		}
		e.ResolutionNote = note
		if rc := strings.TrimSpace(rootCause); rc != "" {
			e.RootCause = rc
		}
		stampClosure(e, now)
	case models.EventClosed:
		stampClosure(e, now)
	case models.EventNew, models.EventUnderInvestigation:
	}

	e.Status = target
	e.UpdatedAt = now
	return nil
}

func stampClosure(e *models.RiskEvent, now time.Time) {
	if e.ClosureDate == nil {
		t := now
		e.ClosureDate = &t
	}
}
