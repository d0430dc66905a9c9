package hooks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/viral-factory/internal/types"
)

func TestForPlatform(t *testing.T) {
	pinterest := ForPlatform(types.PlatformPinterest)
	require.Len(t, pinterest, 1)
	assert.Equal(t, "x-mistakes", pinterest[0].ID)

	tiktok := ForPlatform(types.PlatformTikTok)
	assert.Greater(t, len(tiktok), 5)
	for _, f := range tiktok {
		assert.Contains(t, f.Platforms, types.PlatformTikTok)
	}
}

func TestVariantsFillsTemplate(t *testing.T) {
	var formula Formula
	for _, f := range All() {
		if f.ID == "x-mistakes" {
			formula = f
		}
	}
	require.NotEmpty(t, formula.ID)

	variants := Variants(formula, map[string]string{
		"number":      "5",
		"topic":       "pricing",
		"consequence": "revenue",
	}, 3)

	require.Len(t, variants, 3)
	assert.Equal(t, "5 pricing mistakes that are costing you revenue", variants[0])
	assert.Equal(t, formula.Examples[0], variants[1])
}

func TestVariantsCapped(t *testing.T) {
	formula := All()[0]
	variants := Variants(formula, nil, 1)
	assert.Len(t, variants, 1)
}
