// agentsetup - interactive setup wizard that prepares and launches SWE-agent
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"

	"github.com/Bibi40k/swe-agent-setup/configs"
	"github.com/Bibi40k/swe-agent-setup/internal/prompt"
	"github.com/spf13/cobra"
)

var settingsPath string
var debugLogs bool
var variantFlag string
var probeFlag bool
var modelFlag string
var costLimitFlag float64
var answersPath string
var resultPath string
var noTrace bool
var arrowMenu bool

var traceUnit string
var traceOutMD string
var traceOutCSV string

// mainSigCh receives SIGINT for the default handler. While the agent runs,
// delivery moves to a quiet channel so Ctrl+C reaches the agent and the
// wizard waits for it to exit.
var mainSigCh = make(chan os.Signal, 1)

var rootCmd = &cobra.Command{
	Use:           "agentsetup",
	Short:         "Check local prerequisites and launch SWE-agent",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initDebugLogger()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		w, err := newSetupWizard(cfg)
		if err != nil {
			return err
		}
		return w.run(cmd.Context())
	},
}

var checkCmd = &cobra.Command{
	Use:           "check",
	Short:         "Report prerequisite state without prompting",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return runCheckCommand(cmd.Context(), cfg)
	},
}

var modelsCmd = &cobra.Command{
	Use:           "models",
	Short:         "List the models offered by the wizard",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return printModels(cmd.OutOrStdout(), cfg)
	},
}

var traceCmd = &cobra.Command{
	Use:           "trace",
	Short:         "Inspect saved run traces",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var traceSummarizeCmd = &cobra.Command{
	Use:           "summarize <trace.csv>",
	Short:         "Aggregate a trace per API and compare it with the whole run",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return summarizeTrace(cmd.OutOrStdout(), args[0], traceUnit, traceOutMD, traceOutCSV)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "YAML file overlaid on the built-in defaults")
	rootCmd.PersistentFlags().BoolVar(&debugLogs, "debug", false, "Enable debug logging to "+debugLogPath)
	rootCmd.PersistentFlags().StringVar(&variantFlag, "variant", "", "Launch variant: batch or repo (default from settings)")
	rootCmd.PersistentFlags().BoolVar(&probeFlag, "probe", false, "Verify the service port is open after confirmation")

	rootCmd.Flags().StringVar(&modelFlag, "model", "", "Preselect a model and skip the menu")
	rootCmd.Flags().Float64Var(&costLimitFlag, "cost-limit", configs.Defaults.Launch.CostLimit, "Per-instance cost limit in USD")
	rootCmd.Flags().StringVar(&answersPath, "answers", "", "YAML list of scripted answers (non-interactive run)")
	rootCmd.Flags().StringVar(&resultPath, "result", "", "Write the launch result to a YAML/JSON file")
	rootCmd.Flags().BoolVar(&noTrace, "no-trace", false, "Do not record a run trace")
	rootCmd.Flags().BoolVar(&arrowMenu, "arrow-menu", false, "Use an arrow-key menu for model selection")

	traceSummarizeCmd.Flags().StringVar(&traceUnit, "unit", "ms", "Display unit: ns, ms or s")
	traceSummarizeCmd.Flags().StringVar(&traceOutMD, "out-md", "", "Also write the tables as Markdown")
	traceSummarizeCmd.Flags().StringVar(&traceOutCSV, "out-csv", "", "Also write per-API CSV (and <name>_summary.csv)")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(traceCmd)
	traceCmd.AddCommand(traceSummarizeCmd)
}

// loadConfig reads --settings and applies the flags the operator set.
func loadConfig(cmd *cobra.Command) (configs.Config, error) {
	cfg, err := configs.Load(settingsPath)
	if err != nil {
		return configs.Config{}, &userError{msg: err.Error(), hint: "Fix the settings file or run without --settings"}
	}
	flags := cmd.Flags()
	if flags.Changed("variant") {
		cfg.Launch.Variant = variantFlag
	}
	if flags.Changed("probe") {
		cfg.Service.Probe = probeFlag
	}
	if flags.Changed("cost-limit") {
		cfg.Launch.CostLimit = costLimitFlag
	}
	if flags.Changed("no-trace") && noTrace {
		cfg.Trace.Enable = false
	}
	if err := cfg.Validate(); err != nil {
		return configs.Config{}, &userError{msg: err.Error(), hint: "Check the command-line flags against the settings"}
	}
	return cfg, nil
}

// holdInterrupt hands Ctrl+C to a child process until release is called.
func holdInterrupt() (release func()) {
	quiet := make(chan os.Signal, 1)
	signal.Stop(mainSigCh)
	signal.Notify(quiet, os.Interrupt)
	return func() {
		signal.Stop(quiet)
		signal.Notify(mainSigCh, os.Interrupt)
	}
}

// cancelHooks run when Ctrl+C ends the process outside the agent run.
var cancelHooks struct {
	sync.Mutex
	next int
	fns  map[int]func()
}

// onCancel registers fn with the Ctrl+C handler until remove is called.
func onCancel(fn func()) (remove func()) {
	cancelHooks.Lock()
	defer cancelHooks.Unlock()
	if cancelHooks.fns == nil {
		cancelHooks.fns = make(map[int]func())
	}
	id := cancelHooks.next
	cancelHooks.next++
	cancelHooks.fns[id] = fn
	return func() {
		cancelHooks.Lock()
		delete(cancelHooks.fns, id)
		cancelHooks.Unlock()
	}
}

func runCancelHooks() {
	cancelHooks.Lock()
	fns := make([]func(), 0, len(cancelHooks.fns))
	for _, fn := range cancelHooks.fns {
		fns = append(fns, fn)
	}
	cancelHooks.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	// Ctrl+C outside the agent run: flush the trace, print a clean message
	// and exit 0. Blocking terminal reads do not watch ctx, so the handler
	// exits itself instead of waiting for the wizard to unwind.
	signal.Notify(mainSigCh, os.Interrupt)
	go func() {
		<-mainSigCh
		cancel()
		runCancelHooks()
		prompt.RestoreTTY()
		fmt.Println("\nCancelled.")
		os.Exit(0)
	}()

	os.Exit(run(ctx, os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, stdout, stderr io.Writer) int {
	err := rootCmd.ExecuteContext(ctx)
	if debugCleanup != nil {
		defer debugCleanup()
	}
	return exitCode(err, stdout, stderr)
}

// exitCode reports err to the operator: 0 for success or cancellation,
// 1 for everything else.
func exitCode(err error, stdout, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, prompt.ErrInterrupted) || errors.Is(err, context.Canceled) {
		fmt.Fprintln(stdout, "\nCancelled.")
		return 0
	}

	const (
		red    = "\033[31m"
		yellow = "\033[33m"
		cyan   = "\033[36m"
		reset  = "\033[0m"
	)
	var ue *userError
	if errors.As(err, &ue) {
		fmt.Fprintf(stderr, "%sError:%s %s\n", red, reset, ue.Error())
		if hint := ue.Hint(); hint != "" {
			fmt.Fprintf(stderr, "%sHint:%s %s%s%s\n", yellow, reset, cyan, hint, reset)
		}
	} else {
		fmt.Fprintf(stderr, "%sError:%s %v\n", red, reset, err)
	}
	return 1
}
