package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "****", maskKey("abc"))
	assert.Equal(t, "****wxyz", maskKey("AIzaSyabcwxyz"))
}

func TestPlansCommand(t *testing.T) {
	var out bytes.Buffer
	plansCmd.SetOut(&out)
	require.NoError(t, plansCmd.RunE(plansCmd, nil))

	assert.Contains(t, out.String(), "price_free")
	assert.Contains(t, out.String(), "Starter")
	assert.Contains(t, out.String(), "unlimited")
	assert.Contains(t, out.String(), "$12.00/mo")
}

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["config"])
	assert.True(t, names["plans"])
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("verbose"))
	assert.NotNil(t, configSetCmd.Flags().Lookup("ollama-model"))
}
