package fixtures

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/credit-eval/cet-console/internal/model"
)

// Format identifies a fixture file encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatForPath picks the encoding from the file extension.
func FormatForPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	}
	return 0, false
}

// LoadFile reads one case or a list of cases from a JSON or YAML file.
func LoadFile(path string) ([]model.Case, error) {
	format, ok := FormatForPath(path)
	if !ok {
		return nil, fmt.Errorf("unsupported fixture file %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	cases, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return cases, nil
}

// Decode parses a single case object or an array of cases and normalizes each.
// Empty input yields no cases.
func Decode(data []byte, format Format) ([]model.Case, error) {
	trim := bytes.TrimSpace(data)
	if len(trim) == 0 {
		return nil, nil
	}

	var cases []model.Case
	switch format {
	case FormatJSON:
		if trim[0] == '[' {
			if err := json.Unmarshal(trim, &cases); err != nil {
				return nil, err
			}
		} else {
			var c model.Case
			if err := json.Unmarshal(trim, &c); err != nil {
				return nil, err
			}
			cases = append(cases, c)
		}
	case FormatYAML:
		var node yaml.Node
		if err := yaml.Unmarshal(trim, &node); err != nil {
			return nil, err
		}
		if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
			if err := node.Decode(&cases); err != nil {
				return nil, err
			}
		} else {
			var c model.Case
			if err := node.Decode(&c); err != nil {
				return nil, err
			}
			cases = append(cases, c)
		}
	default:
		return nil, fmt.Errorf("unknown fixture format %d", format)
	}

	for i := range cases {
		if err := cases[i].Normalize(); err != nil {
			return nil, err
		}
	}
	return cases, nil
}
