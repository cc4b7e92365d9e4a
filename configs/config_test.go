package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsLoaded(t *testing.T) {
	tests := []struct {
		name string
		got  any
		want any
	}{
		{"Credential.Env", Defaults.Credential.Env, "OPENAI_API_KEY"},
		{"Credential.Prefix", Defaults.Credential.Prefix, "sk-"},
		{"Credential.MinLength", Defaults.Credential.MinLength, 20},
		{"Service.Port", Defaults.Service.Port, 5678},
		{"Launch.Command", Defaults.Launch.Command, "sweagent"},
		{"Launch.Variant", Defaults.Launch.Variant, "batch"},
		{"Launch.Instances.Subset", Defaults.Launch.Instances.Subset, "lite"},
		{"Trace.Dir", Defaults.Trace.Dir, "traces"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestDefaultsValid(t *testing.T) {
	require.NoError(t, Defaults.Validate())
	assert.Len(t, Defaults.Models, 4)
}

func TestProbeTimeout(t *testing.T) {
	s := ServiceConfig{ProbeTimeoutSeconds: 3}
	assert.Equal(t, 3*time.Second, s.ProbeTimeout())
}

func TestInstructionText(t *testing.T) {
	p := PreconditionConfig{Directory: "adapter", Instruction: "Fill {dir} now"}
	assert.Equal(t, "Fill adapter now", p.InstructionText())
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	content := []byte("models:\n  - local-llama\nlaunch:\n  cost_limit: 0.5\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"local-llama"}, cfg.Models)
	assert.Equal(t, 0.5, cfg.Launch.CostLimit)
	// untouched keys keep their defaults
	assert.Equal(t, "sweagent", cfg.Launch.Command)
	assert.Len(t, Defaults.Models, 4, "overlay must not mutate Defaults")
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults.Models, cfg.Models)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"empty directory", func(c *Config) { c.Precondition.Directory = "" }},
		{"empty env", func(c *Config) { c.Credential.Env = " " }},
		{"empty prefix", func(c *Config) { c.Credential.Prefix = "" }},
		{"zero min length", func(c *Config) { c.Credential.MinLength = 0 }},
		{"port too high", func(c *Config) { c.Service.Port = 70000 }},
		{"no models", func(c *Config) { c.Models = nil }},
		{"duplicate model", func(c *Config) { c.Models = []string{"a", "a"} }},
		{"blank model", func(c *Config) { c.Models = []string{"a", " "} }},
		{"no command", func(c *Config) { c.Launch.Command = "" }},
		{"unknown variant", func(c *Config) { c.Launch.Variant = "single" }},
		{"negative cost", func(c *Config) { c.Launch.CostLimit = -1 }},
		{"repo without path", func(c *Config) { c.Launch.Variant = "repo"; c.Repo.Path = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
