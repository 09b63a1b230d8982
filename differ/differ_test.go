package differ

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/defistate/defistate-amm-go/engine"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const intSchema = engine.ProtocolSchema("mock/int@v1")

// mockIntDiffer treats protocol data as an integer and the diff as the delta.
func mockIntDiffer(old, new any) (any, error) {
	prev := 0
	if old != nil {
		prev = old.(int)
	}
	next, ok := new.(int)
	if !ok {
		return nil, errors.New("data is not int")
	}
	return next - prev, nil
}

func newTestDiffer(t *testing.T) *StateDiffer {
	t.Helper()
	d, err := NewStateDiffer(&StateDifferConfig{
		ProtocolDiffers: map[engine.ProtocolSchema]ProtocolDiffer{intSchema: mockIntDiffer},
		Registry:        prometheus.NewRegistry(),
		Logger:          slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)
	return d
}

func TestNewStateDiffer_Config(t *testing.T) {
	testCases := []struct {
		name string
		cfg  *StateDifferConfig
	}{
		{name: "nil registry", cfg: &StateDifferConfig{Logger: slog.New(slog.DiscardHandler)}},
		{name: "nil logger", cfg: &StateDifferConfig{Registry: prometheus.NewRegistry()}},
		{
			name: "nil differ",
			cfg: &StateDifferConfig{
				ProtocolDiffers: map[engine.ProtocolSchema]ProtocolDiffer{intSchema: nil},
				Registry:        prometheus.NewRegistry(),
				Logger:          slog.New(slog.DiscardHandler),
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewStateDiffer(tc.cfg)
			assert.Error(t, err)
		})
	}
}

func TestStateDiffer_Diff(t *testing.T) {
	d := newTestDiffer(t)

	old := &engine.State{
		Sequence: 4,
		Protocols: map[engine.ProtocolID]engine.ProtocolState{
			"cp": {Meta: engine.ProtocolMeta{Name: "constant product"}, Schema: intSchema, Data: 10},
		},
	}
	new := &engine.State{
		Sequence: 9,
		Protocols: map[engine.ProtocolID]engine.ProtocolState{
			"cp":     {Meta: engine.ProtocolMeta{Name: "constant product"}, Schema: intSchema, Data: 15},
			"stable": {Meta: engine.ProtocolMeta{Name: "stable swap"}, Schema: intSchema, Data: 7},
		},
	}

	diff, err := d.Diff(old, new)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), diff.FromSequence)
	assert.Equal(t, uint64(9), diff.ToSequence)
	assert.NotZero(t, diff.Timestamp)
	require.Len(t, diff.Protocols, 2)

	assert.Equal(t, 5, diff.Protocols["cp"].Data)
	assert.Equal(t, engine.ProtocolName("constant product"), diff.Protocols["cp"].Meta.Name)
	assert.Equal(t, 7, diff.Protocols["stable"].Data, "a new protocol is diffed against nil")

	assert.Equal(t, 2.0, testutil.ToFloat64(d.metrics.protocolsDiffed))
}

func TestStateDiffer_Errors(t *testing.T) {
	ok := &engine.State{Protocols: map[engine.ProtocolID]engine.ProtocolState{"p": {Schema: intSchema, Data: 1}}}

	t.Run("state with errors", func(t *testing.T) {
		bad := &engine.State{Protocols: map[engine.ProtocolID]engine.ProtocolState{"p": {Schema: intSchema, Error: "boom"}}}
		_, err := newTestDiffer(t).Diff(ok, bad)
		assert.ErrorIs(t, err, ErrStateHasErrors)
		_, err = newTestDiffer(t).Diff(bad, ok)
		assert.ErrorIs(t, err, ErrStateHasErrors)
	})

	t.Run("unknown schema", func(t *testing.T) {
		unknown := &engine.State{Protocols: map[engine.ProtocolID]engine.ProtocolState{"q": {Schema: "mock/unknown@v1", Data: 1}}}
		_, err := newTestDiffer(t).Diff(ok, unknown)
		assert.ErrorIs(t, err, ErrNoDiffer)
	})

	t.Run("schema changed", func(t *testing.T) {
		changed := &engine.State{Protocols: map[engine.ProtocolID]engine.ProtocolState{"p": {Schema: "mock/other@v1", Data: 1}}}
		_, err := newTestDiffer(t).Diff(ok, changed)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "schema changed")
	})

	t.Run("differ failure", func(t *testing.T) {
		wrongType := &engine.State{Protocols: map[engine.ProtocolID]engine.ProtocolState{"p": {Schema: intSchema, Data: "one"}}}
		_, err := newTestDiffer(t).Diff(ok, wrongType)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "data is not int")
	})
}
