package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config models burnline.yml.
type Config struct {
	Project struct {
		Name string `yaml:"name"`
	} `yaml:"project"`
	Backlog struct {
		Initial    int     `yaml:"initial"`
		HourlyRate float64 `yaml:"hourly_rate"`
	} `yaml:"backlog"`
	Phases struct {
		Catalog map[int]PhaseInfo `yaml:"catalog"`
	} `yaml:"phases"`
	Defaults struct {
		Phase string `yaml:"phase"`
		View  string `yaml:"view"`
	} `yaml:"defaults"`
}

type PhaseInfo struct {
	Label string `yaml:"label"`
	Color string `yaml:"color,omitempty"`
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; create one with bl config init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns nil,nil if the config file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Project.Name == "" {
		return fmt.Errorf("config.project.name is required")
	}
	if c.Backlog.Initial < 0 {
		return fmt.Errorf("config.backlog.initial must not be negative")
	}
	if c.Backlog.HourlyRate < 0 {
		return fmt.Errorf("config.backlog.hourly_rate must not be negative")
	}
	for id, info := range c.Phases.Catalog {
		if id <= 0 {
			return fmt.Errorf("phase catalog ids must be positive, got %d", id)
		}
		if info.Label == "" {
			return fmt.Errorf("phase %d has empty label", id)
		}
	}
	if p := c.Defaults.Phase; p != "" && p != "all" {
		var n int
		if _, err := fmt.Sscanf(p, "%d", &n); err != nil || n <= 0 {
			return fmt.Errorf("config.defaults.phase must be 'all' or a positive phase id")
		}
	}
	switch c.Defaults.View {
	case "", "items", "hours":
	default:
		return fmt.Errorf("config.defaults.view must be 'items' or 'hours'")
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "burnline.yml")
}

// GenerateDefault returns default config YAML.
func GenerateDefault(projectName string) string {
	return fmt.Sprintf(defaultTemplate, projectName)
}

// Default returns the default Config struct for a project.
func Default(projectName string) *Config {
	var cfg Config
	cfg.Project.Name = projectName
	_ = yaml.NewDecoder(bytes.NewBufferString(fmt.Sprintf(defaultTemplate, projectName))).Decode(&cfg)
	return &cfg
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

const defaultTemplate = `project:
  name: %s

backlog:
  initial: 0
  hourly_rate: 0

phases:
  catalog:
    1:
      label: "Phase 1"
      color: blue
    2:
      label: "Phase 2"
      color: green
    3:
      label: "Phase 3"
      color: yellow

defaults:
  phase: all
  view: items
`
