// Package prompts provides the LLM prompt templates, stored as JSON files and
// embedded at compile time.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

var (
	loadOnce sync.Once
	loaded   map[string]map[string]string
	loadErr  error
)

func load() (map[string]map[string]string, error) {
	loadOnce.Do(func() {
		entries, err := promptFiles.ReadDir(".")
		if err != nil {
			loadErr = fmt.Errorf("failed to list prompt files: %w", err)
			return
		}
		loaded = make(map[string]map[string]string, len(entries))
		for _, e := range entries {
			data, err := promptFiles.ReadFile(e.Name())
			if err != nil {
				loadErr = fmt.Errorf("failed to read prompt file %s: %w", e.Name(), err)
				return
			}
			var prompts map[string]string
			if err := json.Unmarshal(data, &prompts); err != nil {
				loadErr = fmt.Errorf("failed to parse prompt file %s: %w", e.Name(), err)
				return
			}
			loaded[e.Name()] = prompts
		}
	})
	return loaded, loadErr
}

// Get retrieves a prompt by filename (e.g. "narrative.json") and key.
func Get(filename, key string) (string, error) {
	all, err := load()
	if err != nil {
		return "", err
	}
	prompts, ok := all[path.Base(filename)]
	if !ok {
		return "", fmt.Errorf("prompt file %s not found", filename)
	}
	prompt, ok := prompts[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return prompt, nil
}

// Format replaces {{.Key}} placeholders with values from data. Unknown
// placeholders are left in place.
func Format(template string, data map[string]string) string {
	pairs := make([]string, 0, len(data)*2)
	for key, value := range data {
		pairs = append(pairs, "{{."+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
