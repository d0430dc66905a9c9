package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigTiers(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	for tier, want := range map[ModelTier]string{
		TierLite:     "gemini-2.5-flash-lite",
		TierStandard: "gemini-2.5-flash",
		TierAdvanced: "gemini-2.5-pro",
	} {
		assert.Equal(t, want, config.GetModel(tier), string(tier))
	}
}

func TestGetModelFallsBackThroughTiers(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models:   map[ModelTier]string{TierLite: "only-model"},
	}

	// An unknown tier falls back to standard, then lite.
	assert.Equal(t, "only-model", config.GetModel("unknown"))

	empty := &Config{Provider: ProviderGemini, Models: map[ModelTier]string{}}
	assert.Equal(t, "", empty.GetModel(TierAdvanced))
}

func TestWithModelDoesNotMutateOriginal(t *testing.T) {
	config := DefaultConfig()
	custom := config.WithModel(TierAdvanced, "custom-model")

	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))
	assert.Equal(t, "custom-model", custom.GetModel(TierAdvanced))
	assert.Equal(t, config.GetModel(TierLite), custom.GetModel(TierLite))
}
