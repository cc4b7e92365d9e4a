package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Bibi40k/swe-agent-setup/configs"
	"github.com/Bibi40k/swe-agent-setup/internal/choice"
	"github.com/Bibi40k/swe-agent-setup/internal/credential"
	"github.com/Bibi40k/swe-agent-setup/internal/gate"
	"github.com/Bibi40k/swe-agent-setup/internal/launch"
	"github.com/Bibi40k/swe-agent-setup/internal/prompt"
	"github.com/Bibi40k/swe-agent-setup/internal/trace"
	"github.com/Bibi40k/swe-agent-setup/internal/utils"
	"github.com/Bibi40k/swe-agent-setup/internal/wizard"
	"github.com/google/uuid"
)

// setupWizard holds everything one run of the wizard talks to.
type setupWizard struct {
	cfg      configs.Config
	prompter prompt.Prompter
	env      credential.Env
	runner   launch.Runner
	dial     gate.DialFunc
	logger   *slog.Logger
	out      io.Writer
	tracer   *trace.Tracer // nil disables tracing

	model      string // preselected with --model
	resultPath string
	newRunID   func() string
	// interrupts, when set, is called around the agent run.
	interrupts func() (release func())
	// onCancel registers work that must run if Ctrl+C ends the process.
	onCancel func(fn func()) (remove func())

	saveOnce sync.Once
}

func newSetupWizard(cfg configs.Config) (*setupWizard, error) {
	var p prompt.Prompter = prompt.NewTerminal(arrowMenu)
	if answersPath != "" {
		script, err := prompt.LoadScript(answersPath)
		if err != nil {
			return nil, &userError{msg: err.Error(), hint: "--answers expects a YAML list of strings"}
		}
		p = script.Echo(os.Stdout)
	}

	w := &setupWizard{
		cfg:        cfg,
		prompter:   p,
		env:        credential.ProcessEnv{},
		runner:     launch.NewExecRunner(),
		dial:       utils.DialPort,
		logger:     getLogger(),
		out:        os.Stdout,
		model:      strings.TrimSpace(modelFlag),
		resultPath: resolveResultPath(resultPath, cfg.Output),
		newRunID:   uuid.NewString,
		interrupts: holdInterrupt,
		onCancel:   onCancel,
	}
	if cfg.Trace.Enable {
		w.tracer = trace.New(trace.NewRunID(time.Now()), cfg.Trace.Dir)
	}
	return w, nil
}

// resolveResultPath prefers the flag, then output.launch_result_path when output is enabled.
func resolveResultPath(explicit string, out configs.OutputConfig) string {
	if p := strings.TrimSpace(explicit); p != "" {
		return p
	}
	if !out.Enable {
		return ""
	}
	return strings.TrimSpace(out.LaunchResultPath)
}

func (w *setupWizard) run(ctx context.Context) error {
	variant, err := launch.ParseVariant(w.cfg.Launch.Variant)
	if err != nil {
		return &userError{msg: err.Error(), hint: "Use --variant batch or --variant repo"}
	}
	menu, err := choice.NewMenu(w.cfg.Models)
	if err != nil {
		return &userError{msg: err.Error(), hint: "Fix the models list in your settings file"}
	}
	var model choice.Model
	if w.model != "" {
		if !menu.Contains(w.model) {
			return &userError{
				msg:  fmt.Sprintf("unknown model %q", w.model),
				hint: "Choose one of: " + strings.Join(menu.Labels(), ", "),
			}
		}
		model = choice.Model(w.model)
	}

	endRun := w.tracer.Program(trace.ProgramSpan, map[string]any{"variant": string(variant)})
	flush := func() {
		endRun()
		w.saveTrace()
	}
	if w.onCancel != nil {
		defer w.onCancel(flush)()
	}
	defer flush()

	fmt.Fprintf(w.out, "\033[1magentsetup\033[0m: %s variant, %d models\n", variant, menu.Len())

	var cred credential.Credential
	launchMeta := map[string]any{}

	var steps []wizard.Step
	if variant == launch.VariantRepo {
		steps = append(steps, w.step("Prepare repository", "clone", nil, func(ctx context.Context) error {
			return launch.EnsureRepo(ctx, w.runner, w.logger, w.cfg.Repo.URL, w.cfg.Repo.Path)
		}))
	}
	steps = append(steps,
		w.step("Precondition directory", "await_directory_ready", nil, func(ctx context.Context) error {
			g := &gate.DirectoryGate{
				Path:        w.cfg.Precondition.Directory,
				Instruction: w.cfg.Precondition.InstructionText(),
				Prompter:    w.prompter,
				Logger:      w.logger,
			}
			return g.Await(ctx)
		}),
		w.step("API key", "resolve_credential", nil, func(ctx context.Context) error {
			r := &credential.Resolver{
				EnvName: w.cfg.Credential.Env,
				Format: credential.Format{
					Prefix:    w.cfg.Credential.Prefix,
					MinLength: w.cfg.Credential.MinLength,
					Strict:    w.cfg.Credential.Strict,
				},
				Env:      w.env,
				Prompter: w.prompter,
				Logger:   w.logger,
			}
			c, err := r.Resolve(ctx)
			if err != nil {
				return err
			}
			cred = c
			w.logger.Debug("credential resolved", "credential", c.String(), "source", string(c.Source))
			return nil
		}),
		w.step(titleCase(w.cfg.Service.Name), "await_service_ready", nil, func(ctx context.Context) error {
			g := &gate.ServiceGate{
				Name:         w.cfg.Service.Name,
				Host:         w.cfg.Service.Host,
				Port:         w.cfg.Service.Port,
				Probe:        w.cfg.Service.Probe,
				ProbeTimeout: w.cfg.Service.ProbeTimeout(),
				Prompter:     w.prompter,
				Logger:       w.logger,
				Dial:         w.dial,
			}
			return g.Await(ctx)
		}),
		w.step("Model", "select_option", nil, func(ctx context.Context) error {
			if model != "" {
				w.logger.Info("Model preselected", "model", string(model))
				return nil
			}
			s := &choice.Selector{Menu: menu, Prompter: w.prompter, Logger: w.logger}
			m, err := s.Select(ctx)
			if err != nil {
				return err
			}
			model = m
			return nil
		}),
		w.step("Launch agent", "launch", launchMeta, func(ctx context.Context) error {
			p := w.params(variant, model, cred)
			launchMeta["model"] = string(model)
			return w.launch(ctx, p, launchMeta)
		}),
	)

	err = wizard.RunSteps(ctx, steps, func(i, total int, name string) {
		fmt.Fprintf(w.out, "\n[%d/%d] %s\n", i, total, name)
	}, nil)
	return explain(err)
}

// step wraps run in an api span named api. meta is read when the span closes.
func (w *setupWizard) step(title, api string, meta map[string]any, run func(ctx context.Context) error) wizard.Step {
	return wizard.Step{
		Name: title,
		Run: func(ctx context.Context) error {
			end := w.tracer.API(api, meta)
			defer end()
			return run(ctx)
		},
	}
}

func (w *setupWizard) params(variant launch.Variant, model choice.Model, cred credential.Credential) launch.Params {
	lc := w.cfg.Launch
	return launch.Params{
		Command:    lc.Command,
		Variant:    variant,
		ConfigFile: lc.ConfigFile,
		Model:      model,
		CostLimit:  lc.CostLimit,
		Instances: launch.Instances{
			Type:   lc.Instances.Type,
			Subset: lc.Instances.Subset,
			Split:  lc.Instances.Split,
			Slice:  lc.Instances.Slice,
		},
		RepoPath:          w.cfg.Repo.Path,
		ProblemStatement:  w.cfg.Repo.ProblemStatement,
		ApplyPatchLocally: lc.ApplyPatchLocally,
		Credential:        cred,
	}
}

func (w *setupWizard) launch(ctx context.Context, p launch.Params, meta map[string]any) error {
	if w.interrupts != nil {
		release := w.interrupts()
		defer release()
	}

	out, err := launch.NewLauncher(w.runner, w.logger).Launch(ctx, p)
	meta["exit_code"] = out.ExitCode
	if err != nil {
		return err
	}

	if w.resultPath != "" {
		if err := w.writeResult(p, out); err != nil {
			w.logger.Warn("Could not write launch result", "error", err)
		} else {
			w.logger.Info("Launch result written", "path", w.resultPath)
		}
	}

	if !out.Success() {
		return &userError{
			msg:  fmt.Sprintf("agent exited with status %d", out.ExitCode),
			hint: "Check the agent config file and API key, and that the model endpoint and " + w.cfg.Service.Name + " are reachable",
		}
	}
	return nil
}

// saveTrace writes the trace once, whichever of the normal exit and the
// Ctrl+C handler gets there first.
func (w *setupWizard) saveTrace() {
	if w.tracer == nil {
		return
	}
	w.saveOnce.Do(func() {
		saved, err := w.tracer.Save()
		if err != nil {
			w.logger.Warn("Could not save trace", "error", err)
			return
		}
		w.logger.Info("Trace saved", "csv", saved.CSV, "json", saved.JSON)
	})
}

func titleCase(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "Service"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
