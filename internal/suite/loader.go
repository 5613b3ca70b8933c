package suite

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultSuite []byte

// LoadFile reads and parses a suite YAML file.
func LoadFile(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading suite file: %w", err)
	}
	return Load(data)
}

// LoadDefault parses the built-in C file handling suite.
func LoadDefault() (*Suite, error) {
	return Load(defaultSuite)
}

// DefaultYAML returns the built-in suite source.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultSuite...)
}

// Load parses suite YAML bytes and applies per-kind defaults.
func Load(data []byte) (*Suite, error) {
	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if len(s.Checks) == 0 {
		return nil, fmt.Errorf("suite has no checks")
	}
	if s.Name == "" {
		return nil, fmt.Errorf("suite has no name")
	}
	for i := range s.Checks {
		s.Checks[i].ApplyDefaults()
	}
	return &s, nil
}
