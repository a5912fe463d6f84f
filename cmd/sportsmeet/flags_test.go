package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyValueFlag(t *testing.T) {
	kv := keyValueFlag{}
	require.NoError(t, kv.Set("roster.female_per_class=0"))
	require.NoError(t, kv.Set("output.json=out/a=b.json"))
	assert.Equal(t, "out/a=b.json", kv["output.json"])
	assert.Equal(t, []string{"output.json", "roster.female_per_class"}, kv.Keys())
	assert.Equal(t, "output.json=out/a=b.json, roster.female_per_class=0", kv.String())

	assert.Error(t, kv.Set("novalue"))
	assert.Error(t, kv.Set(" =1"))
}
