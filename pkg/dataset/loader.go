package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads an override from a JSON or YAML file (.yaml/.yml) and runs
// it through the same validation as a fetched payload.
func LoadFile(path string) (Payload, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		converted, convErr := yamlToJSON(raw)
		if convErr != nil {
			return nil, convErr
		}

		raw = converted
	}

	p, err := ParsePayload(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return p, nil
}

func yamlToJSON(raw []byte) ([]byte, error) {
	var doc any

	unmarshalErr := yaml.Unmarshal(raw, &doc)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, unmarshalErr)
	}

	out, marshalErr := json.Marshal(normalizeYAML(doc))
	if marshalErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, marshalErr)
	}

	return out, nil
}

// normalizeYAML turns YAML mappings with non-string keys (years are parsed
// as ints) into JSON-encodable maps.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeYAML(val)
		}

		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeYAML(val)
		}

		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeYAML(val)
		}

		return out
	default:
		return v
	}
}
