// Package wizard drives the add-product and add-service quote wizards as
// table-driven finite state machines over the per-user quote store.
package wizard

import (
	"fmt"

	"github.com/GTDGit/fleetdesk_api/internal/models"
)

// Step is a 1-based wizard step. StepDone is the commit sentinel.
type Step int

const StepDone Step = 0

// EventType names a wizard event.
type EventType string

const (
	EventStart             EventType = "start"
	EventStartEdit         EventType = "start-edit"
	EventSelectCategory    EventType = "select-category"
	EventSelectOS          EventType = "select-os"
	EventSkipOS            EventType = "skip-os"
	EventSelectServiceType EventType = "select-service-type"
	EventUpdate            EventType = "update"
	EventNext              EventType = "next"
	EventSave              EventType = "save"
	EventBack              EventType = "back"
	EventCancel            EventType = "cancel"
)

// Event is one user action. Only the fields relevant to Type are read.
type Event struct {
	Type            EventType
	Category        models.ProductCategory
	OperatingSystem string
	ServiceType     models.ServiceType
	ID              string
	ProductPatch    *models.QuoteProductPatch
	ServicePatch    *models.QuoteServicePatch
}

// Transition is a forward edge. Apply copies the event payload into the draft,
// Guard decides whether the edge may be taken, To picks the target step.
type Transition[D any] struct {
	Apply func(d *D, ev Event) error
	Guard func(d *D) error
	To    func(d *D) Step
}

// Reverse is a back edge. Clear drops the fields abandoned by moving back.
type Reverse[D any] struct {
	To    func(d *D) Step
	Clear func(d *D)
}

type edge struct {
	from  Step
	event EventType
}

// Machine is a transition table over drafts of type D. It holds no state of
// its own; the current step and draft are passed in on every call.
type Machine[D any] struct {
	clone   func(D) D
	names   map[Step]string
	forward map[edge]Transition[D]
	primary map[Step]EventType
	back    map[Step]Reverse[D]
}

// NewMachine builds an empty table. clone must deep-copy a draft.
func NewMachine[D any](clone func(D) D, names map[Step]string) *Machine[D] {
	return &Machine[D]{
		clone:   clone,
		names:   names,
		forward: make(map[edge]Transition[D]),
		primary: make(map[Step]EventType),
		back:    make(map[Step]Reverse[D]),
	}
}

// On registers a forward edge. The first event registered for a step is the
// step's primary action, the one CanFire is asked about.
func (m *Machine[D]) On(from Step, ev EventType, t Transition[D]) *Machine[D] {
	m.forward[edge{from, ev}] = t
	if _, ok := m.primary[from]; !ok {
		m.primary[from] = ev
	}
	return m
}

// Back registers the back edge leaving from.
func (m *Machine[D]) Back(from Step, r Reverse[D]) *Machine[D] {
	m.back[from] = r
	return m
}

// Name returns the step name, or "" for unknown steps.
func (m *Machine[D]) Name(s Step) string { return m.names[s] }

// Steps returns the number of named steps.
func (m *Machine[D]) Steps() int { return len(m.names) }

// Fire runs ev from step against a copy of draft. On success it returns the
// target step and the updated copy; on failure draft is untouched.
func (m *Machine[D]) Fire(step Step, draft D, ev Event) (Step, D, error) {
	t, ok := m.forward[edge{step, ev.Type}]
	if !ok {
		return step, draft, fmt.Errorf("%w: %s at step %d", ErrInvalidTransition, ev.Type, step)
	}
	d := m.clone(draft)
	if t.Apply != nil {
		if err := t.Apply(&d, ev); err != nil {
			return step, draft, fmt.Errorf("%w: %w", ErrStepIncomplete, err)
		}
	}
	if t.Guard != nil {
		if err := t.Guard(&d); err != nil {
			return step, draft, fmt.Errorf("%w: %w", ErrStepIncomplete, err)
		}
	}
	return t.To(&d), d, nil
}

// Reverse follows the back edge of step. ok is false when the step has none.
func (m *Machine[D]) Reverse(step Step, draft D) (to Step, out D, ok bool) {
	r, ok := m.back[step]
	if !ok {
		return step, draft, false
	}
	d := m.clone(draft)
	if r.Clear != nil {
		r.Clear(&d)
	}
	return r.To(&d), d, true
}

// CanFire reports whether the primary action of step would pass its guard.
func (m *Machine[D]) CanFire(step Step, draft D) bool {
	ev, ok := m.primary[step]
	if !ok {
		return false
	}
	t := m.forward[edge{step, ev}]
	if t.Guard == nil {
		return true
	}
	d := m.clone(draft)
	return t.Guard(&d) == nil
}

func goTo[D any](s Step) func(*D) Step {
	return func(*D) Step { return s }
}
