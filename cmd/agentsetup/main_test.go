package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/Bibi40k/swe-agent-setup/internal/launch"
	"github.com/Bibi40k/swe-agent-setup/internal/prompt"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flagCommand binds the wizard flags to a throwaway command.
func flagCommand(t *testing.T) *cobra.Command {
	t.Helper()
	t.Cleanup(func() {
		settingsPath, variantFlag, probeFlag, costLimitFlag, noTrace = "", "", false, 0, false
	})
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&settingsPath, "settings", "", "")
	cmd.Flags().StringVar(&variantFlag, "variant", "", "")
	cmd.Flags().BoolVar(&probeFlag, "probe", false, "")
	cmd.Flags().Float64Var(&costLimitFlag, "cost-limit", 0, "")
	cmd.Flags().BoolVar(&noTrace, "no-trace", false, "")
	return cmd
}

func TestLoadConfigAppliesFlags(t *testing.T) {
	cmd := flagCommand(t)
	require.NoError(t, cmd.ParseFlags([]string{"--variant", "repo", "--cost-limit", "0.5", "--probe", "--no-trace"}))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "repo", cfg.Launch.Variant)
	assert.Equal(t, 0.5, cfg.Launch.CostLimit)
	assert.True(t, cfg.Service.Probe)
	assert.False(t, cfg.Trace.Enable)
}

func TestLoadConfigUnsetFlagsKeepSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("launch:\n  cost_limit: 3.5\n"), 0o600))
	cmd := flagCommand(t)
	require.NoError(t, cmd.ParseFlags([]string{"--settings", path}))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, 3.5, cfg.Launch.CostLimit)
	assert.Equal(t, "batch", cfg.Launch.Variant)
}

func TestLoadConfigRejectsBadFlag(t *testing.T) {
	cmd := flagCommand(t)
	require.NoError(t, cmd.ParseFlags([]string{"--variant", "single"}))

	_, err := loadConfig(cmd)
	var ue *userError
	require.ErrorAs(t, err, &ue)
	assert.Contains(t, ue.Error(), "single")
}

func TestExplain(t *testing.T) {
	tests := []struct {
		name string
		err  error
		hint string
	}{
		{"answers", fmt.Errorf("resolve API key: %w", prompt.ErrNoMoreAnswers), "--answers"},
		{"clone", fmt.Errorf("%w: git exited with status 128", launch.ErrCloneFailed), "repo.url"},
		{"launch", fmt.Errorf("%w: sweagent: not found", launch.ErrLaunchFailed), "launch.command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ue *userError
			require.ErrorAs(t, explain(tt.err), &ue)
			assert.Equal(t, tt.err.Error(), ue.Error())
			assert.Contains(t, ue.Hint(), tt.hint)
		})
	}

	assert.NoError(t, explain(nil))
	plain := errors.New("boom")
	assert.Same(t, plain, explain(plain))
	interrupted := fmt.Errorf("select model: %w", prompt.ErrInterrupted)
	assert.ErrorIs(t, explain(interrupted), prompt.ErrInterrupted)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     int
		stdout   string
		stderr   []string
		noStderr bool
	}{
		{name: "success", err: nil, code: 0, noStderr: true},
		{name: "interrupted", err: fmt.Errorf("select model: %w", prompt.ErrInterrupted), code: 0, stdout: "Cancelled.", noStderr: true},
		{name: "context canceled", err: context.Canceled, code: 0, stdout: "Cancelled.", noStderr: true},
		{name: "user error", err: &userError{msg: "agent exited with status 1", hint: "check the key"}, code: 1, stderr: []string{"Error:", "agent exited with status 1", "Hint:", "check the key"}},
		{name: "plain error", err: errors.New("boom"), code: 1, stderr: []string{"Error:", "boom"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, tt.code, exitCode(tt.err, &stdout, &stderr))
			assert.Contains(t, stdout.String(), tt.stdout)
			for _, want := range tt.stderr {
				assert.Contains(t, stderr.String(), want)
			}
			if tt.noStderr {
				assert.Empty(t, stderr.String())
			}
		})
	}
}

func TestExitCodeForFailedLaunch(t *testing.T) {
	f := newFixture(t, prompt.NewScript("", validKey, "", "1"))
	f.populate(t)
	f.runner.codes = []int{2}

	var stderr bytes.Buffer
	code := exitCode(f.w.run(context.Background()), &bytes.Buffer{}, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "agent exited with status 2")
}

func TestRunCommandLine(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		variantFlag = ""
	})

	rootCmd.SetArgs([]string{"models"})
	assert.Equal(t, 0, run(context.Background(), &out, &bytes.Buffer{}))
	assert.Contains(t, out.String(), "  1. ")

	var stderr bytes.Buffer
	rootCmd.SetArgs([]string{"models", "--variant", "single"})
	assert.Equal(t, 1, run(context.Background(), &bytes.Buffer{}, &stderr))
	assert.Contains(t, stderr.String(), "single")
	assert.Contains(t, stderr.String(), "Hint:")
}

func TestCancelHooks(t *testing.T) {
	calls := 0
	remove := onCancel(func() { calls++ })
	runCancelHooks()
	assert.Equal(t, 1, calls)

	remove()
	runCancelHooks()
	assert.Equal(t, 1, calls)
}
