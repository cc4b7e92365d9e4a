// Package configs provides the wizard defaults loaded from an embedded YAML file.
// All hardcoded values live in defaults.yaml; operators overlay their own file with Load.
package configs

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Defaults holds the built-in settings (loaded from defaults.yaml at startup).
var Defaults Config

func init() {
	if err := yaml.Unmarshal(defaultsYAML, &Defaults); err != nil {
		panic("swe-agent-setup: invalid defaults.yaml: " + err.Error())
	}
}

// Config holds every setting the wizard consumes.
type Config struct {
	Precondition PreconditionConfig `yaml:"precondition"`
	Credential   CredentialConfig   `yaml:"credential"`
	Service      ServiceConfig      `yaml:"service"`
	Models       []string           `yaml:"models"`
	Launch       LaunchConfig       `yaml:"launch"`
	Repo         RepoConfig         `yaml:"repo"`
	Trace        TraceConfig        `yaml:"trace"`
	Output       OutputConfig       `yaml:"output"`
}

// PreconditionConfig names the directory that must be populated before launch.
type PreconditionConfig struct {
	Directory   string `yaml:"directory"`
	Instruction string `yaml:"instruction"` // {dir} is replaced with Directory
}

// InstructionText returns the operator instruction with {dir} expanded.
func (p PreconditionConfig) InstructionText() string {
	return strings.ReplaceAll(p.Instruction, "{dir}", p.Directory)
}

// CredentialConfig describes the API key format and where it is published.
type CredentialConfig struct {
	Env       string `yaml:"env"`
	Prefix    string `yaml:"prefix"`
	MinLength int    `yaml:"min_length"`
	Strict    bool   `yaml:"strict"` // reject trailing characters after the key body
}

// ServiceConfig describes the companion server the agent talks to.
type ServiceConfig struct {
	Name                string `yaml:"name"`
	Host                string `yaml:"host"`
	Port                int    `yaml:"port"`
	Probe               bool   `yaml:"probe"`
	ProbeTimeoutSeconds int    `yaml:"probe_timeout_seconds"`
}

// ProbeTimeout returns the TCP probe timeout as a duration.
func (s ServiceConfig) ProbeTimeout() time.Duration {
	return time.Duration(s.ProbeTimeoutSeconds) * time.Second
}

// LaunchConfig holds the fixed parts of the agent invocation.
type LaunchConfig struct {
	Command           string          `yaml:"command"`
	Variant           string          `yaml:"variant"`
	ConfigFile        string          `yaml:"config_file"`
	CostLimit         float64         `yaml:"cost_limit"`
	Instances         InstancesConfig `yaml:"instances"`
	ApplyPatchLocally bool            `yaml:"apply_patch_locally"`
}

// InstancesConfig selects benchmark tasks for the batch variant.
type InstancesConfig struct {
	Type   string `yaml:"type"`
	Subset string `yaml:"subset"`
	Split  string `yaml:"split"`
	Slice  string `yaml:"slice"`
}

// RepoConfig describes the demo repository used by the repo variant.
type RepoConfig struct {
	URL              string `yaml:"url"`
	Path             string `yaml:"path"`
	ProblemStatement string `yaml:"problem_statement"`
}

// TraceConfig controls run tracing.
type TraceConfig struct {
	Enable bool   `yaml:"enable"`
	Dir    string `yaml:"dir"`
}

// OutputConfig controls the launch result file.
type OutputConfig struct {
	Enable           bool   `yaml:"enable"`
	LaunchResultPath string `yaml:"launch_result_path"`
}

// Load returns Defaults overlaid with the YAML file at path.
// An empty path returns a copy of Defaults.
func Load(path string) (Config, error) {
	cfg := Defaults
	cfg.Models = append([]string(nil), Defaults.Models...)

	path = strings.TrimSpace(path)
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read settings %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse settings %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings the wizard cannot run without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Precondition.Directory) == "" {
		return fmt.Errorf("precondition.directory is required")
	}
	if strings.TrimSpace(c.Credential.Env) == "" {
		return fmt.Errorf("credential.env is required")
	}
	if c.Credential.Prefix == "" {
		return fmt.Errorf("credential.prefix is required")
	}
	if c.Credential.MinLength < 1 {
		return fmt.Errorf("credential.min_length must be at least 1")
	}
	if c.Service.Port < 1 || c.Service.Port > 65535 {
		return fmt.Errorf("service.port must be in range 1..65535")
	}
	if len(c.Models) == 0 {
		return fmt.Errorf("models must list at least one model")
	}
	seen := make(map[string]bool, len(c.Models))
	for _, m := range c.Models {
		if strings.TrimSpace(m) == "" {
			return fmt.Errorf("models must not contain empty names")
		}
		if seen[m] {
			return fmt.Errorf("duplicate model %q", m)
		}
		seen[m] = true
	}
	if strings.TrimSpace(c.Launch.Command) == "" {
		return fmt.Errorf("launch.command is required")
	}
	switch c.Launch.Variant {
	case "batch", "repo":
	default:
		return fmt.Errorf("launch.variant must be batch or repo, got %q", c.Launch.Variant)
	}
	if c.Launch.CostLimit < 0 {
		return fmt.Errorf("launch.cost_limit must not be negative")
	}
	if c.Launch.Variant == "repo" && strings.TrimSpace(c.Repo.Path) == "" {
		return fmt.Errorf("repo.path is required for the repo variant")
	}
	return nil
}
