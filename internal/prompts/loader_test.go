package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetValidPrompt(t *testing.T) {
	prompt, err := Get("generation.json", "viral_ideation")
	require.NoError(t, err)
	assert.NotEmpty(t, prompt)
	assert.Contains(t, prompt, "viral content strategist")
	assert.Contains(t, prompt, "{{.VaultContext}}")
}

func TestGetMissingFile(t *testing.T) {
	_, err := Get("nonexistent.json", "some-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGetMissingKey(t *testing.T) {
	_, err := Get("generation.json", "nonexistent-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestAllTemplatesPresent(t *testing.T) {
	keys, err := List("generation.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"platform_packager", "quality_rewrite", "viral_ideation"}, keys)
}

func TestFormat(t *testing.T) {
	rendered := Format("Write for {{.Platform}} about {{.Topic}}. Platform again: {{.Platform}}", map[string]string{
		"Platform": "TIKTOK",
		"Topic":    "pricing",
	})

	assert.Equal(t, "Write for TIKTOK about pricing. Platform again: TIKTOK", rendered)
}

func TestFormatLeavesUnknownPlaceholders(t *testing.T) {
	rendered := Format("Topic: {{.Topic}}, audience: {{.Audience}}", map[string]string{"Topic": "pricing"})
	assert.Equal(t, "Topic: pricing, audience: {{.Audience}}", rendered)
}
