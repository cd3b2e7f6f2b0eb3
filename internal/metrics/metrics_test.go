package metrics

import (
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersAllCollectors(t *testing.T) {
	reg := New()
	families, err := reg.Registerer().Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["solver_backtracks_total"])
	assert.True(t, names["ga_generations_total"])
	assert.True(t, names["ga_best_fitness"])
	assert.True(t, names["ga_population_fitness"])
}

func TestSolverBacktracksIncrements(t *testing.T) {
	reg := New()
	reg.SolverBacktracks.Inc()
	reg.SolverBacktracks.Inc()

	m := &dto.Metric{}
	require.NoError(t, reg.SolverBacktracks.Write(m))
	assert.Equal(t, 2.0, m.GetCounter().GetValue())
}
