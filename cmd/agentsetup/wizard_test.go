package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Bibi40k/swe-agent-setup/configs"
	"github.com/Bibi40k/swe-agent-setup/internal/credential"
	"github.com/Bibi40k/swe-agent-setup/internal/launch"
	"github.com/Bibi40k/swe-agent-setup/internal/prompt"
	"github.com/Bibi40k/swe-agent-setup/internal/trace"
	"github.com/Bibi40k/swe-agent-setup/internal/ui"
	pkgconfig "github.com/Bibi40k/swe-agent-setup/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validKey = "sk-abcdefghijklmnopqrstuvwxyz"

type fakeRunner struct {
	codes []int
	calls []launch.Command
}

func (f *fakeRunner) Run(_ context.Context, c launch.Command) (int, error) {
	f.calls = append(f.calls, c)
	if len(f.codes) == 0 {
		return 0, nil
	}
	code := f.codes[0]
	f.codes = f.codes[1:]
	return code, nil
}

// hookPrompter runs onWait before every acknowledgement, simulating
// out-of-band operator work between keypresses.
type hookPrompter struct {
	*prompt.Script
	waits  int
	onWait func(n int)
}

func (h *hookPrompter) WaitKey(message string) error {
	h.waits++
	if h.onWait != nil {
		h.onWait(h.waits)
	}
	return h.Script.WaitKey(message)
}

type wizardFixture struct {
	w      *setupWizard
	runner *fakeRunner
	env    *credential.MapEnv
	log    *bytes.Buffer
	dir    string
	root   string
}

func newFixture(t *testing.T, p prompt.Prompter) *wizardFixture {
	t.Helper()
	root := t.TempDir()

	cfg, err := configs.Load("")
	require.NoError(t, err)
	cfg.Precondition.Directory = filepath.Join(root, "adapter")
	cfg.Repo.Path = filepath.Join(root, "test-repo")
	cfg.Trace.Dir = filepath.Join(root, "traces")

	var log bytes.Buffer
	f := &wizardFixture{
		runner: &fakeRunner{},
		env:    credential.NewMapEnv(nil),
		log:    &log,
		dir:    cfg.Precondition.Directory,
		root:   root,
	}
	f.w = &setupWizard{
		cfg:      cfg,
		prompter: p,
		env:      f.env,
		runner:   f.runner,
		dial: func(context.Context, string, int, time.Duration) error {
			return errors.New("refused")
		},
		logger:   slog.New(ui.NewPrettyHandler(&log, false)),
		out:      &bytes.Buffer{},
		tracer:   trace.New("run_test", cfg.Trace.Dir),
		newRunID: func() string { return "00000000-0000-4000-8000-000000000001" },
	}
	return f
}

func (f *wizardFixture) populate(t *testing.T) {
	t.Helper()
	require.NoError(t, os.MkdirAll(f.dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "adapter.py"), []byte("x"), 0o644))
}

func TestWizardBatchHappyPath(t *testing.T) {
	script := prompt.NewScript("", "short", validKey, "", "5", "2")
	f := newFixture(t, script)
	f.populate(t)
	f.w.resultPath = filepath.Join(f.root, "result.yaml")

	require.NoError(t, f.w.run(context.Background()))
	assert.Zero(t, script.Remaining())

	// scenario B: rejected once, then published
	got, ok := f.env.Lookup("OPENAI_API_KEY")
	require.True(t, ok)
	assert.Equal(t, validKey, got)
	assert.Contains(t, f.log.String(), `API key must start with "sk-"`)

	// scenario C: 5 rejected, 2 is the second model
	assert.Contains(t, f.log.String(), `invalid selection "5"`)
	require.Len(t, f.runner.calls, 1)
	call := f.runner.calls[0]
	assert.Equal(t, "sweagent", call.Name)
	assert.Equal(t, "run-batch", call.Args[0])
	assert.Contains(t, call.Args, "gpt-4o-mini")
	assert.Equal(t, map[string]string{"OPENAI_API_KEY": validKey}, call.Env)

	result, err := pkgconfig.LoadLaunchResult(f.w.resultPath)
	require.NoError(t, err)
	assert.Equal(t, pkgconfig.OutcomeSuccess, result.Outcome)
	assert.Equal(t, "gpt-4o-mini", result.Model)
	assert.Equal(t, "operator", result.CredentialSource)
	assert.True(t, strings.HasPrefix(result.CredentialFingerprint, "blake2b:"))
	raw, err := os.ReadFile(f.w.resultPath)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), validKey)

	rows, err := trace.LoadRows(f.w.tracer.Path())
	require.NoError(t, err)
	var names []string
	for _, r := range rows {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{
		"await_directory_ready", "resolve_credential", "await_service_ready",
		"select_option", "launch", trace.ProgramSpan,
	}, names)
}

func TestWizardWaitsForDirectory(t *testing.T) {
	var f *wizardFixture
	p := &hookPrompter{Script: prompt.NewScript("", "", "", "1")}
	p.onWait = func(n int) {
		// scenario A: populated after the first failed check
		if n == 2 {
			f.populate(t)
		}
	}
	f = newFixture(t, p)
	require.NoError(t, f.env.Set("OPENAI_API_KEY", validKey))

	require.NoError(t, f.w.run(context.Background()))
	assert.Contains(t, f.log.String(), "does not exist")
	assert.Contains(t, f.log.String(), "Directory is ready")
	assert.Equal(t, 3, p.waits, "two directory checks plus the service acknowledgement")
}

func TestWizardEnvironmentKeyNotRevalidated(t *testing.T) {
	f := newFixture(t, prompt.NewScript("", "", "1"))
	f.populate(t)
	require.NoError(t, f.env.Set("OPENAI_API_KEY", "not-a-valid-key"))

	require.NoError(t, f.w.run(context.Background()))
	assert.Equal(t, "not-a-valid-key", f.runner.calls[0].Env["OPENAI_API_KEY"])
}

func TestWizardLaunchFailure(t *testing.T) {
	f := newFixture(t, prompt.NewScript("", validKey, "", "1"))
	f.populate(t)
	f.runner.codes = []int{1}
	f.w.resultPath = filepath.Join(f.root, "result.json")

	err := f.w.run(context.Background())
	require.Error(t, err)
	var ue *userError
	require.ErrorAs(t, err, &ue)
	assert.Contains(t, ue.Error(), "status 1")
	assert.Contains(t, ue.Hint(), "reachable")
	assert.Contains(t, f.log.String(), "check your configuration and connectivity")

	result, err := pkgconfig.LoadLaunchResult(f.w.resultPath)
	require.NoError(t, err)
	assert.Equal(t, pkgconfig.OutcomeFailure, result.Outcome)
	assert.Equal(t, 1, result.ExitCode)

	// the trace is saved even though the run failed
	_, err = os.Stat(f.w.tracer.Path())
	assert.NoError(t, err)
}

func TestWizardRepoVariantClonesFirst(t *testing.T) {
	f := newFixture(t, prompt.NewScript("", validKey, "", "gpt-4.1"))
	f.populate(t)
	f.w.cfg.Launch.Variant = "repo"

	require.NoError(t, f.w.run(context.Background()))
	require.Len(t, f.runner.calls, 2)
	assert.Equal(t, "git", f.runner.calls[0].Name)
	assert.Equal(t, []string{"clone", f.w.cfg.Repo.URL, f.w.cfg.Repo.Path}, f.runner.calls[0].Args)

	agent := f.runner.calls[1]
	assert.Equal(t, "run", agent.Args[0])
	assert.Contains(t, agent.Args, "--env.repo.path")
	assert.Contains(t, agent.Args, "--actions.apply_patch_locally=True")
	assert.Contains(t, agent.Args, "gpt-4.1")
}

func TestWizardCloneFailureIsFatal(t *testing.T) {
	f := newFixture(t, prompt.NewScript())
	f.w.cfg.Launch.Variant = "repo"
	f.runner.codes = []int{128}

	err := f.w.run(context.Background())
	var ue *userError
	require.ErrorAs(t, err, &ue)
	assert.Contains(t, ue.Error(), "clone")
	assert.Len(t, f.runner.calls, 1, "agent must not start")
}

func TestWizardPreselectedModel(t *testing.T) {
	f := newFixture(t, prompt.NewScript("", validKey, ""))
	f.populate(t)
	f.w.model = "o3-mini"

	require.NoError(t, f.w.run(context.Background()))
	assert.Contains(t, f.runner.calls[0].Args, "o3-mini")
}

func TestWizardUnknownPreselectedModel(t *testing.T) {
	f := newFixture(t, prompt.NewScript())
	f.w.model = "gpt-2"

	err := f.w.run(context.Background())
	var ue *userError
	require.ErrorAs(t, err, &ue)
	assert.Contains(t, ue.Hint(), "gpt-4o-mini")
	assert.Empty(t, f.runner.calls)
}

func TestWizardProbeRepeatsAcknowledgement(t *testing.T) {
	f := newFixture(t, prompt.NewScript("", validKey, "", "", "1"))
	f.populate(t)
	f.w.cfg.Service.Probe = true
	dials := 0
	f.w.dial = func(context.Context, string, int, time.Duration) error {
		dials++
		if dials == 1 {
			return errors.New("refused")
		}
		return nil
	}

	require.NoError(t, f.w.run(context.Background()))
	assert.Equal(t, 2, dials)
	assert.Contains(t, f.log.String(), "nothing is listening on 127.0.0.1:5678")
}

func TestWizardAnswersExhausted(t *testing.T) {
	f := newFixture(t, prompt.NewScript(""))
	f.populate(t)

	err := f.w.run(context.Background())
	var ue *userError
	require.ErrorAs(t, err, &ue)
	assert.Contains(t, ue.Error(), prompt.ErrNoMoreAnswers.Error())
	assert.Empty(t, f.runner.calls)
}

func TestWizardWithoutTracer(t *testing.T) {
	f := newFixture(t, prompt.NewScript("", validKey, "", "1"))
	f.populate(t)
	f.w.tracer = nil

	require.NoError(t, f.w.run(context.Background()))
	assert.NoDirExists(t, f.w.cfg.Trace.Dir)
}

func TestResolveResultPath(t *testing.T) {
	out := configs.OutputConfig{Enable: false, LaunchResultPath: "tmp/r.yaml"}
	assert.Equal(t, "", resolveResultPath("", out))
	assert.Equal(t, "x.json", resolveResultPath(" x.json ", out))
	out.Enable = true
	assert.Equal(t, "tmp/r.yaml", resolveResultPath("", out))
}

func TestWizardCancelledMidRunSavesTrace(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := &hookPrompter{Script: prompt.NewScript("", validKey, "", "1")}
	p.onWait = func(n int) {
		if n == 1 {
			cancel()
		}
	}
	f := newFixture(t, p)
	f.populate(t)

	err := f.w.run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.runner.calls)
	assert.Equal(t, 0, exitCode(err, &bytes.Buffer{}, &bytes.Buffer{}))

	rows, err := trace.LoadRows(f.w.tracer.Path())
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, trace.ProgramSpan, rows[len(rows)-1].Name)
	assert.FileExists(t, f.w.tracer.JSONPath())
}

func TestWizardCancelHookFlushesTrace(t *testing.T) {
	var hook func()
	removed := false
	p := &hookPrompter{Script: prompt.NewScript("", validKey, "", "1")}
	f := newFixture(t, p)
	f.populate(t)
	f.w.onCancel = func(fn func()) func() {
		hook = fn
		return func() { removed = true }
	}

	// Ctrl+C during a blocking read runs the hook from the signal handler
	savedAtSignal := false
	p.onWait = func(n int) {
		if n == 1 {
			require.NotNil(t, hook)
			hook()
			_, err := os.Stat(f.w.tracer.Path())
			savedAtSignal = err == nil
		}
	}

	require.NoError(t, f.w.run(context.Background()))
	assert.True(t, savedAtSignal)
	assert.True(t, removed, "hook is released when the run returns")

	rows, err := trace.LoadRows(f.w.tracer.Path())
	require.NoError(t, err)
	require.Len(t, rows, 1, "only the program span was closed at the signal")
	assert.Equal(t, trace.ProgramSpan, rows[0].Name)
}
