// Package prompts holds the embedded LLM prompt templates and the small
// renderer the generation and rewrite stages use before calling the
// model. Each JSON file maps template names to template text containing
// {{.Var}} placeholders.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// catalog lazily parses embedded prompt files, once per file.
type catalog struct {
	mu    sync.Mutex
	files map[string]map[string]string
}

var templates = catalog{files: make(map[string]map[string]string)}

func (c *catalog) file(filename string) (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if parsed, ok := c.files[filename]; ok {
		return parsed, nil
	}
	raw, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}
	var parsed map[string]string
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}
	c.files[filename] = parsed
	return parsed, nil
}

// Get returns the template named key from the given embedded file.
func Get(filename, key string) (string, error) {
	parsed, err := templates.file(filename)
	if err != nil {
		return "", err
	}
	template, ok := parsed[key]
	if !ok {
		return "", fmt.Errorf("prompt %q not found in %s", key, filename)
	}
	return template, nil
}

// Format substitutes {{.Key}} placeholders with the given values.
// Placeholders without a value are left in place so tests can catch a
// missing variable.
func Format(template string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for key, value := range vars {
		pairs = append(pairs, "{{."+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// List returns the template names in a file, sorted.
func List(filename string) ([]string, error) {
	parsed, err := templates.file(filename)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(parsed))
	for key := range parsed {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}
