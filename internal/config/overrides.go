package config

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/san-kum/reactorsim/internal/kinetics"
)

// ApplyOverrides decodes values onto p by their mapstructure keys, for
// example "time_step" or "oscillation". String values are converted to the
// field type. Unknown keys are an error and leave p unchanged.
func ApplyOverrides(p *kinetics.Parameters, values map[string]any) error {
	if len(values) == 0 {
		return nil
	}
	out := *p
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(values); err != nil {
		return fmt.Errorf("apply overrides: %w", err)
	}
	*p = out
	return nil
}

// ParseOverrides turns "key=value" pairs into an override map.
func ParseOverrides(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, kv := range pairs {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid override %q, want key=value", kv)
		}
		out[key] = strings.TrimSpace(value)
	}
	return out, nil
}
