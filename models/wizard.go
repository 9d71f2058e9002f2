package models

import "time"

// WizardSession is the persisted state of a multi-turn entity creation flow.
// Step transitions are pure functions over this record, so the flow survives
// process restarts.
type WizardSession struct {
	SessionID  string            `json:"sessionId"`
	OperatorID string            `json:"operatorId"`
	Kind       string            `json:"kind"` // trip | route | path | stop
	Slots      []string          `json:"slots"`
	Values     map[string]string `json:"values"`
	StepIndex  int               `json:"stepIndex"`
	Confirming bool              `json:"confirming"` // all slots filled, awaiting the final yes
	CreatedAt  time.Time         `json:"createdAt"`
}

// CurrentSlot returns the slot the wizard is asking about, or "" when done.
func (w *WizardSession) CurrentSlot() string {
	if w.StepIndex < 0 || w.StepIndex >= len(w.Slots) {
		return ""
	}
	return w.Slots[w.StepIndex]
}

// Complete reports whether every required slot has a value.
func (w *WizardSession) Complete() bool {
	for _, s := range w.Slots {
		if _, ok := w.Values[s]; !ok {
			return false
		}
	}
	return true
}
