// Package launch builds and runs the coding-agent invocation.
package launch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Bibi40k/swe-agent-setup/internal/choice"
	"github.com/Bibi40k/swe-agent-setup/internal/credential"
)

// Variant selects the shape of the agent invocation.
type Variant string

const (
	// VariantBatch runs the agent over benchmark instances.
	VariantBatch Variant = "batch"
	// VariantRepo runs the agent once against a local repository.
	VariantRepo Variant = "repo"
)

// ParseVariant accepts "batch" or "repo".
func ParseVariant(s string) (Variant, error) {
	switch v := Variant(strings.TrimSpace(s)); v {
	case VariantBatch, VariantRepo:
		return v, nil
	default:
		return "", fmt.Errorf("unknown variant %q (want batch or repo)", s)
	}
}

// Instances selects benchmark tasks.
type Instances struct {
	Type   string
	Subset string
	Split  string
	Slice  string
}

// Params is everything needed for one agent run. Build it once and pass it
// by value; Launch does not modify it.
type Params struct {
	Command           string
	Variant           Variant
	ConfigFile        string
	Model             choice.Model
	CostLimit         float64
	Instances         Instances
	RepoPath          string
	ProblemStatement  string
	ApplyPatchLocally bool
	Credential        credential.Credential
	Dir               string
}

// Validate checks the fields the selected variant needs.
func (p Params) Validate() error {
	if strings.TrimSpace(p.Command) == "" {
		return fmt.Errorf("launch command is required")
	}
	if p.Model == "" {
		return fmt.Errorf("model is required")
	}
	if p.CostLimit < 0 {
		return fmt.Errorf("cost limit must not be negative")
	}
	switch p.Variant {
	case VariantBatch:
	case VariantRepo:
		if strings.TrimSpace(p.RepoPath) == "" {
			return fmt.Errorf("repository path is required for the repo variant")
		}
	default:
		return fmt.Errorf("unknown variant %q", p.Variant)
	}
	return nil
}

// FormatCost renders the cost ceiling without trailing zeros.
func FormatCost(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Args returns the agent arguments. Values are passed verbatim as separate
// argv entries; nothing goes through a shell.
func (p Params) Args() []string {
	var args []string
	switch p.Variant {
	case VariantRepo:
		args = append(args, "run")
	default:
		args = append(args, "run-batch")
	}
	if p.ConfigFile != "" {
		args = append(args, "--config", p.ConfigFile)
	}
	args = append(args,
		"--agent.model.name", string(p.Model),
		"--agent.model.per_instance_cost_limit", FormatCost(p.CostLimit),
	)

	switch p.Variant {
	case VariantRepo:
		args = append(args, "--env.repo.path", p.RepoPath)
		if p.ProblemStatement != "" {
			args = append(args, "--problem_statement.text", p.ProblemStatement)
		}
		args = append(args, "--actions.apply_patch_locally="+pyBool(p.ApplyPatchLocally))
	default:
		if p.Instances.Type != "" {
			args = append(args, "--instances.type", p.Instances.Type)
		}
		if p.Instances.Subset != "" {
			args = append(args, "--instances.subset", p.Instances.Subset)
		}
		if p.Instances.Split != "" {
			args = append(args, "--instances.split", p.Instances.Split)
		}
		if p.Instances.Slice != "" {
			args = append(args, "--instances.slice", p.Instances.Slice)
		}
	}
	return args
}

// Env returns the variables set explicitly on the agent process.
func (p Params) Env() map[string]string {
	if p.Credential.EnvName == "" || p.Credential.Value == "" {
		return nil
	}
	return map[string]string{p.Credential.EnvName: p.Credential.Value}
}

// CommandLine renders the invocation for display.
func (p Params) CommandLine() string {
	parts := append([]string{p.Command}, p.Args()...)
	for i, s := range parts {
		if s == "" || strings.ContainsAny(s, " \t\"'") {
			parts[i] = strconv.Quote(s)
		}
	}
	return strings.Join(parts, " ")
}

// pyBool renders a flag value the agent CLI parses as a boolean.
func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
