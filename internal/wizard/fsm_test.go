package wizard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct{ n int }

func cloneCounter(c counter) counter { return c }

func TestMachine_FireLeavesDraftOnGuardFailure(t *testing.T) {
	m := NewMachine(cloneCounter, map[Step]string{1: "one", 2: "two"})
	m.On(1, EventNext, Transition[counter]{
		Apply: func(c *counter, _ Event) error {
			c.n++
			return nil
		},
		Guard: func(c *counter) error {
			if c.n < 2 {
				return errors.New("too small")
			}
			return nil
		},
		To: goTo[counter](2),
	})

	to, out, err := m.Fire(1, counter{n: 0}, Event{Type: EventNext})
	require.ErrorIs(t, err, ErrStepIncomplete)
	assert.Equal(t, Step(1), to)
	assert.Equal(t, 0, out.n)

	to, out, err = m.Fire(1, counter{n: 1}, Event{Type: EventNext})
	require.NoError(t, err)
	assert.Equal(t, Step(2), to)
	assert.Equal(t, 2, out.n)
}

func TestMachine_UnknownEdge(t *testing.T) {
	m := NewMachine(cloneCounter, map[Step]string{1: "one"})
	_, _, err := m.Fire(1, counter{}, Event{Type: EventSave})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, _, ok := m.Reverse(1, counter{})
	assert.False(t, ok)
	assert.False(t, m.CanFire(1, counter{}))
}

func TestMachine_ReverseClears(t *testing.T) {
	m := NewMachine(cloneCounter, map[Step]string{1: "one", 2: "two"})
	m.Back(2, Reverse[counter]{
		To:    goTo[counter](1),
		Clear: func(c *counter) { c.n = 0 },
	})

	to, out, ok := m.Reverse(2, counter{n: 5})
	require.True(t, ok)
	assert.Equal(t, Step(1), to)
	assert.Equal(t, 0, out.n)
	assert.Equal(t, "two", m.Name(2))
	assert.Equal(t, 2, m.Steps())
}
