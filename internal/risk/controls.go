package risk

import (
	"time"

	"ai-risk-registry/internal/models"
)

// TransitionControlCommand asks to move a control from the status the caller
// last saw to a new one.
type TransitionControlCommand struct {
	EntityID              string               `json:"entityId"`
	ExpectedCurrentStatus models.ControlStatus `json:"expectedCurrentStatus"`
	TargetStatus          models.ControlStatus `json:"targetStatus"`
}

// verified and failed are terminal for one implementation attempt,
// only Reset leaves them.
var controlTransitions = map[models.ControlStatus][]models.ControlStatus{
	models.ControlPlanned:     {models.ControlInProgress, models.ControlFailed},
	models.ControlInProgress:  {models.ControlImplemented, models.ControlFailed},
	models.ControlImplemented: {models.ControlVerified},
	models.ControlVerified:    nil,
	models.ControlFailed:      nil,
}

// NextControlStatuses returns the allowed targets from s.
func NextControlStatuses(s models.ControlStatus) []models.ControlStatus {
	next := controlTransitions[s]
	out := make([]models.ControlStatus, len(next))
	copy(out, next)
	return out
}

// TransitionControl moves the control to target. The first move into
// implemented stamps ImplementationDate; later moves never touch it.
func TransitionControl(c *models.RiskControl, target models.ControlStatus, now time.Time) error {
	if !allowed(controlTransitions[c.ImplementationStatus], target) {
		return &InvalidTransitionError{
			Entity: "control",
			From:   string(c.ImplementationStatus),
			To:     string(target),
		}
	}

	switch target {
	case models.ControlImplemented:
		if c.ImplementationDate == nil {
			t := now
			c.ImplementationDate = &t
		}
		if c.Effectiveness == models.EffectNotImplemented {
			c.Effectiveness = models.EffectNotTested
		}
	case models.ControlVerified:
		t := now
		c.VerifiedAt = &t
	case models.ControlPlanned, models.ControlInProgress, models.ControlFailed:
	}

	c.ImplementationStatus = target
	c.UpdatedAt = now
	return nil
}

// SetEffectiveness records a rating. A real rating needs a deployed control.
func SetEffectiveness(c *models.RiskControl, e models.Effectiveness, now time.Time) error {
	if !e.Valid() {
		return &InvalidParameterError{Field: "effectiveness", Value: string(e)}
	}
	if e.Rated() && !c.ImplementationStatus.InEffect() {
		return &InvalidTransitionError{
			Entity: "control effectiveness",
			From:   string(c.Effectiveness),
			To:     string(e),
			Reason: "control status is " + string(c.ImplementationStatus) + ", must be implemented or verified",
		}
	}
	c.Effectiveness = e
	c.UpdatedAt = now
	return nil
}

// ResetControl starts a new implementation attempt from a terminal status.
// ImplementationDate survives as history of the first implementation.
func ResetControl(c *models.RiskControl, now time.Time) error {
	if c.ImplementationStatus != models.ControlVerified && c.ImplementationStatus != models.ControlFailed {
		return &InvalidTransitionError{
			Entity: "control",
			From:   string(c.ImplementationStatus),
			To:     string(models.ControlPlanned),
			Reason: "only verified or failed controls can be reset",
		}
	}
	c.ImplementationStatus = models.ControlPlanned
	c.Effectiveness = models.EffectNotImplemented
	c.VerifiedAt = nil
	c.Attempt++
	c.UpdatedAt = now
	return nil
}
