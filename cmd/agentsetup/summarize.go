package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Bibi40k/swe-agent-setup/internal/trace"
)

func summarizeTrace(w io.Writer, path, unitName, mdPath, csvPath string) error {
	unit, err := trace.ParseUnit(unitName)
	if err != nil {
		return &userError{msg: err.Error(), hint: "Use --unit ns, ms or s"}
	}
	rows, err := trace.LoadRows(path)
	if err != nil {
		return err
	}
	perAPI, summary := trace.Compute(rows)

	fmt.Fprintf(w, "Trace: %s\n\n", path)
	fmt.Fprintln(w, "Per-API Runtime Summary")
	fmt.Fprintln(w, trace.RenderPerAPI(perAPI, unit))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run-Level Summary")
	fmt.Fprintln(w, trace.RenderSummary(summary, unit))

	if mdPath != "" {
		f, err := os.Create(mdPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", mdPath, err)
		}
		if err := trace.WriteMarkdown(f, perAPI, summary, unit); err != nil {
			_ = f.Close()
			return fmt.Errorf("write %s: %w", mdPath, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", mdPath, err)
		}
		fmt.Fprintf(w, "\nMarkdown written to %s\n", mdPath)
	}
	if csvPath != "" {
		if err := trace.WriteCSV(csvPath, perAPI, summary, unit); err != nil {
			return err
		}
		fmt.Fprintf(w, "CSV written to %s and %s\n", csvPath, trace.SummaryCSVPath(csvPath))
	}
	return nil
}
