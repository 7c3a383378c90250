package spec

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

// FromMap decodes a generic key/value map into an InstanceSpec. Unknown keys
// are ignored so annotated metadata files still round-trip.
func FromMap(settings map[string]any) (InstanceSpec, error) {
	var s InstanceSpec
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &s,
		TagName: "mapstructure",
	})
	if err != nil {
		return InstanceSpec{}, fmt.Errorf("build spec decoder: %w", err)
	}
	if err := dec.Decode(settings); err != nil {
		return InstanceSpec{}, fmt.Errorf("decode spec: %w", err)
	}
	return s, nil
}

// LoadFile reads an instance spec from a JSON or YAML file, selected by
// extension.
func LoadFile(path string) (InstanceSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return InstanceSpec{}, fmt.Errorf("read spec file: %w", err)
	}
	raw := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return InstanceSpec{}, fmt.Errorf("parse spec yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return InstanceSpec{}, fmt.Errorf("parse spec json: %w", err)
		}
	}
	return FromMap(raw)
}
