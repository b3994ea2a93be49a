package repositories

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and parsing of repositories.yaml
type Loader struct {
	filePath string
}

// NewLoader creates a new repositories loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads and parses the repositories.yaml file. Environment
// references ($VAR or ${VAR}) inside the file are expanded so deployments
// can template bank addresses.
func (l *Loader) Load() (FileConfig, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to read repositories file: %w", err)
	}

	data = []byte(os.ExpandEnv(string(data)))

	var config FileConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return FileConfig{}, fmt.Errorf("failed to parse repositories yaml: %w", err)
	}

	return config, nil
}
