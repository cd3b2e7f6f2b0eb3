package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConsoleLogger(t *testing.T) {
	log, err := New("debug", "console")
	require.NoError(t, err)
	require.NotNil(t, log)
	assert.NotPanics(t, func() { log.Info("hello") })
}

func TestNewJSONLogger(t *testing.T) {
	log, err := New("warn", "json")
	require.NoError(t, err)
	require.NotNil(t, log)
}

func TestNewFallsBackToInfoOnUnknownLevel(t *testing.T) {
	log, err := New("not-a-level", "console")
	require.NoError(t, err)
	require.NotNil(t, log)
}
