package configstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DirSource loads business configurations from a directory of YAML files,
// one business type per file.
type DirSource struct {
	dir string
}

// NewDirSource creates a Source over a directory.
func NewDirSource(dir string) DirSource {
	return DirSource{dir: dir}
}

// LoadAll reads every .yaml/.yml file in the directory.
func (s DirSource) LoadAll(ctx context.Context) ([]BusinessConfig, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []BusinessConfig
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		cfg, err := LoadFile(filepath.Join(s.dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", name, err)
		}
		configs = append(configs, *cfg)
	}
	return configs, nil
}

// LoadFile loads a single business configuration from a YAML file.
func LoadFile(path string) (*BusinessConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML content into a BusinessConfig.
func Parse(data []byte) (*BusinessConfig, error) {
	var cfg BusinessConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if cfg.Type == "" {
		return nil, fmt.Errorf("business type is required")
	}
	return &cfg, nil
}
