package trace

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Unit scales nanoseconds for display.
type Unit struct {
	Name   string
	Factor float64
}

// Units are the supported display units.
var Units = map[string]Unit{
	"ns": {"ns", 1},
	"ms": {"ms", 1e-6},
	"s":  {"s", 1e-9},
}

// ParseUnit looks up a display unit by name.
func ParseUnit(name string) (Unit, error) {
	u, ok := Units[name]
	if !ok {
		return Unit{}, fmt.Errorf("unknown unit %q (want ns, ms or s)", name)
	}
	return u, nil
}

// scaled renders ns in unit with thousands separators and 3 decimals.
func scaled(ns float64, u Unit) string {
	return humanize.FormatFloat("#,###.###", ns*u.Factor)
}

func optNS(ns *int64, u Unit) string {
	if ns == nil {
		return "n/a"
	}
	return scaled(float64(*ns), u)
}

func optPct(p *float64) string {
	if p == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*p, 'f', 2, 64)
}

// RenderPerAPI renders per-API metrics as a box table.
func RenderPerAPI(perAPI []APIMetrics, u Unit) string {
	headers := []string{
		"API",
		"Invocation Count",
		fmt.Sprintf("Cumulative Duration (%s)", u.Name),
		fmt.Sprintf("Mean Duration (%s)", u.Name),
	}
	rows := make([][]string, 0, len(perAPI))
	for _, m := range perAPI {
		rows = append(rows, []string{
			m.Name,
			humanize.Comma(int64(m.Count)),
			scaled(float64(m.CumulativeNS), u),
			scaled(m.MeanNS, u),
		})
	}
	return boxTable(headers, rows)
}

// RenderSummary renders the run summary as a box table.
func RenderSummary(s RunSummary, u Unit) string {
	apiTotal := s.APICumulativeNS
	headers := []string{"Metric", fmt.Sprintf("Value (%s / %%)", u.Name)}
	rows := [][]string{
		{"Program Duration", optNS(s.ProgramNS, u)},
		{"API Cumulative Duration", optNS(&apiTotal, u)},
		{"Non-API Duration (Program − API)", optNS(s.NonAPINS, u)},
		{"API Share of Program (%)", optPct(s.APISharePct)},
	}
	return boxTable(headers, rows)
}

func boxTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len([]rune(h))
	}
	for _, row := range rows {
		for i, cell := range row {
			if n := len([]rune(cell)); n > widths[i] {
				widths[i] = n
			}
		}
	}

	hline := func(sep string) string {
		parts := make([]string, len(widths))
		for i, w := range widths {
			parts[i] = strings.Repeat("─", w+2)
		}
		return "+" + strings.Join(parts, sep) + "+"
	}
	fmtRow := func(items []string) string {
		cells := make([]string, len(items))
		for i, c := range items {
			cells[i] = " " + c + strings.Repeat(" ", widths[i]-len([]rune(c))) + " "
		}
		return "│" + strings.Join(cells, "│") + "│"
	}

	out := []string{hline("┬"), fmtRow(headers), hline("┼")}
	for _, r := range rows {
		out = append(out, fmtRow(r))
	}
	out = append(out, hline("┴"))
	return strings.Join(out, "\n")
}

// WriteMarkdown writes both tables as Markdown.
func WriteMarkdown(w io.Writer, perAPI []APIMetrics, s RunSummary, u Unit) error {
	apiTotal := s.APICumulativeNS
	var b strings.Builder
	b.WriteString("## Per-API Runtime Summary\n\n")
	fmt.Fprintf(&b, "| API | Invocation Count | Cumulative Duration (%s) | Mean Duration (%s) |\n", u.Name, u.Name)
	b.WriteString("|---|---:|---:|---:|\n")
	for _, m := range perAPI {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			m.Name, humanize.Comma(int64(m.Count)), scaled(float64(m.CumulativeNS), u), scaled(m.MeanNS, u))
	}
	b.WriteString("\n## Run-Level Summary\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|---|---:|\n")
	fmt.Fprintf(&b, "| Program Duration (%s) | %s |\n", u.Name, optNS(s.ProgramNS, u))
	fmt.Fprintf(&b, "| API Cumulative Duration (%s) | %s |\n", u.Name, optNS(&apiTotal, u))
	fmt.Fprintf(&b, "| Non-API Duration (%s) | %s |\n", u.Name, optNS(s.NonAPINS, u))
	fmt.Fprintf(&b, "| API Share of Program (%%) | %s |\n", optPct(s.APISharePct))
	_, err := io.WriteString(w, b.String())
	return err
}

// SummaryCSVPath returns the companion summary path for a per-API CSV:
// report.csv -> report_summary.csv.
func SummaryCSVPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_summary" + ext
}

// WriteCSV writes per-API metrics to path and the run summary to
// SummaryCSVPath(path). Durations use plain 6-decimal numbers.
func WriteCSV(path string, perAPI []APIMetrics, s RunSummary, u Unit) error {
	plain := func(ns float64) string { return strconv.FormatFloat(ns*u.Factor, 'f', 6, 64) }

	apiRows := [][]string{{"API", "Invocation Count",
		fmt.Sprintf("Cumulative Duration (%s)", u.Name), fmt.Sprintf("Mean Duration (%s)", u.Name)}}
	for _, m := range perAPI {
		apiRows = append(apiRows, []string{m.Name, strconv.Itoa(m.Count), plain(float64(m.CumulativeNS)), plain(m.MeanNS)})
	}
	if err := writeCSVFile(path, apiRows); err != nil {
		return err
	}

	optPlain := func(ns *int64) string {
		if ns == nil {
			return "n/a"
		}
		return plain(float64(*ns))
	}
	summaryRows := [][]string{
		{"Metric", "Value"},
		{fmt.Sprintf("Program Duration (%s)", u.Name), optPlain(s.ProgramNS)},
		{fmt.Sprintf("API Cumulative Duration (%s)", u.Name), plain(float64(s.APICumulativeNS))},
		{fmt.Sprintf("Non-API Duration (%s)", u.Name), optPlain(s.NonAPINS)},
		{"API Share of Program (%)", optPct(s.APISharePct)},
	}
	return writeCSVFile(SummaryCSVPath(path), summaryRows)
}

func writeCSVFile(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
