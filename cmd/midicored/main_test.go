package main

import (
	"testing"

	charmlog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"

	"github.com/embedwave/midicore/core"
)

func TestParseLogLevel(t *testing.T) {
	lvl, err := parseLogLevel("debug")
	assert.NoError(t, err)
	assert.Equal(t, charmlog.DebugLevel, lvl)

	lvl, err = parseLogLevel("warn")
	assert.NoError(t, err)
	assert.Equal(t, charmlog.WarnLevel, lvl)

	_, err = parseLogLevel("bogus")
	assert.Error(t, err)
}

func TestBuildRouterTopology(t *testing.T) {
	r := buildRouter()

	for i := 0; i < numDeviceInputs; i++ {
		assert.NotNil(t, r.Input(i))
	}

	for i := 0; i < numChainOutputs; i++ {
		out := r.Output(i)
		if assert.NotNil(t, out) {
			assert.Equal(t, core.OutputChain, out.Category)
		}
	}

	directEcho := r.Output(numChainOutputs + 3) // control-feedback then device echoes
	if assert.NotNil(t, directEcho) {
		assert.Equal(t, core.OutputDeviceEcho, directEcho.Category)
		assert.True(t, directEcho.Flags&core.FlagDirectOut != 0)
	}
}
