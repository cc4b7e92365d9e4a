package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Outcome values recorded in LaunchResult.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// LaunchResult is the normalized record of one agent launch.
// It never carries the API key itself, only its fingerprint.
type LaunchResult struct {
	RunID                 string    `json:"run_id" yaml:"run_id"`
	Variant               string    `json:"variant" yaml:"variant"`
	Model                 string    `json:"model" yaml:"model"`
	CostLimit             float64   `json:"cost_limit" yaml:"cost_limit"`
	Command               string    `json:"command" yaml:"command"`
	Args                  []string  `json:"args,omitempty" yaml:"args,omitempty"`
	ExitCode              int       `json:"exit_code" yaml:"exit_code"`
	Outcome               string    `json:"outcome" yaml:"outcome"`
	StartedAt             time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt            time.Time `json:"finished_at" yaml:"finished_at"`
	CredentialEnv         string    `json:"credential_env,omitempty" yaml:"credential_env,omitempty"`
	CredentialFingerprint string    `json:"credential_fingerprint,omitempty" yaml:"credential_fingerprint,omitempty"`
	CredentialSource      string    `json:"credential_source,omitempty" yaml:"credential_source,omitempty"`
	TracePath             string    `json:"trace_path,omitempty" yaml:"trace_path,omitempty"`
}

// Validate checks the minimum contract of a launch record.
func (r LaunchResult) Validate() error {
	if strings.TrimSpace(r.RunID) == "" {
		return fmt.Errorf("launch run_id is required")
	}
	if strings.TrimSpace(r.Model) == "" {
		return fmt.Errorf("launch model is required")
	}
	if strings.TrimSpace(r.Command) == "" {
		return fmt.Errorf("launch command is required")
	}
	switch r.Outcome {
	case OutcomeSuccess:
		if r.ExitCode != 0 {
			return fmt.Errorf("launch outcome success requires exit_code 0, got %d", r.ExitCode)
		}
	case OutcomeFailure:
		if r.ExitCode == 0 {
			return fmt.Errorf("launch outcome failure requires a non-zero exit_code")
		}
	default:
		return fmt.Errorf("launch outcome must be %q or %q", OutcomeSuccess, OutcomeFailure)
	}
	if fp := strings.TrimSpace(r.CredentialFingerprint); fp != "" && !strings.HasPrefix(fp, "blake2b:") {
		return fmt.Errorf("launch credential_fingerprint must be in blake2b:... format")
	}
	if !r.FinishedAt.IsZero() && r.FinishedAt.Before(r.StartedAt) {
		return fmt.Errorf("launch finished_at is before started_at")
	}
	return nil
}

// LoadLaunchResult reads LaunchResult from YAML or JSON.
func LoadLaunchResult(path string) (LaunchResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return LaunchResult{}, fmt.Errorf("read launch result %s: %w", path, err)
	}

	var out LaunchResult
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		if err := json.Unmarshal(content, &out); err != nil {
			return LaunchResult{}, fmt.Errorf("parse launch result %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(content, &out); err != nil {
			return LaunchResult{}, fmt.Errorf("parse launch result %s: %w", path, err)
		}
	}

	if err := out.Validate(); err != nil {
		return LaunchResult{}, err
	}
	return out, nil
}

// SaveLaunchResult writes LaunchResult to YAML or JSON based on file extension.
func SaveLaunchResult(path string, result LaunchResult) error {
	if err := result.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	var content []byte
	var err error
	if ext == ".json" {
		content, err = json.MarshalIndent(result, "", "  ")
	} else {
		content, err = yaml.Marshal(result)
	}
	if err != nil {
		return fmt.Errorf("marshal launch result %s: %w", path, err)
	}

	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("write launch result %s: %w", path, err)
	}
	return nil
}
