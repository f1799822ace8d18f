package ingest

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateMachine_Monotonic(t *testing.T) {
	t.Parallel()

	m := newStateMachine(slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Equal(t, StateIdle, m.current())

	assert.True(t, m.advance(StateReading))
	assert.True(t, m.advance(StateDispatching))
	assert.False(t, m.advance(StateBatching))
	assert.False(t, m.advance(StateDispatching))
	assert.Equal(t, StateDispatching, m.current())

	assert.True(t, m.advance(StateDone))
	assert.Equal(t, "done", m.current().String())
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	p, err := ParsePolicy("Abort")
	require.NoError(t, err)
	assert.Equal(t, PolicyAbort, p)

	p, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyCollect, p)
	assert.Equal(t, "collect", p.String())

	_, err = ParsePolicy("retry")
	assert.Error(t, err)
}
