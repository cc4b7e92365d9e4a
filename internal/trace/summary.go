package trace

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Row is the part of a saved span the summary needs.
type Row struct {
	Kind   string
	Name   string
	WallNS int64
}

// APIMetrics aggregates every api span sharing a name.
type APIMetrics struct {
	Name         string
	Count        int
	CumulativeNS int64
	MeanNS       float64
}

// RunSummary compares total API time with the program span.
// Pointer fields are nil when the trace has no program span.
type RunSummary struct {
	ProgramNS       *int64
	APICumulativeNS int64
	NonAPINS        *int64
	APISharePct     *float64
}

// LoadRows reads a trace CSV written by Tracer.Save. Columns are located by
// header name so extra columns are ignored.
func LoadRows(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return ReadRows(f)
}

// ReadRows parses trace CSV from r.
func ReadRows(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read trace header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	for _, need := range []string{"kind", "name", "wall_ns"} {
		if _, ok := col[need]; !ok {
			return nil, fmt.Errorf("trace is missing column %q", need)
		}
	}

	var rows []Row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read trace line %d: %w", line, err)
		}
		if len(rec) < len(header) {
			return nil, fmt.Errorf("trace line %d: want %d fields, got %d", line, len(header), len(rec))
		}
		wall, err := strconv.ParseInt(strings.TrimSpace(rec[col["wall_ns"]]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("trace line %d: bad wall_ns: %w", line, err)
		}
		rows = append(rows, Row{Kind: rec[col["kind"]], Name: rec[col["name"]], WallNS: wall})
	}
	return rows, nil
}

// RowsFromSpans converts in-memory spans to rows.
func RowsFromSpans(spans []Span) []Row {
	rows := make([]Row, len(spans))
	for i, s := range spans {
		rows[i] = Row{Kind: s.Kind, Name: s.Name, WallNS: s.WallNS}
	}
	return rows
}

// Compute aggregates api rows by name (largest cumulative first, first-seen
// order on ties) and derives the run summary. The program duration is the
// largest entire_run span, or the largest program span if none is named so.
func Compute(rows []Row) ([]APIMetrics, RunSummary) {
	var order []string
	byName := make(map[string]*APIMetrics)
	for _, r := range rows {
		if r.Kind != KindAPI {
			continue
		}
		m, ok := byName[r.Name]
		if !ok {
			m = &APIMetrics{Name: r.Name}
			byName[r.Name] = m
			order = append(order, r.Name)
		}
		m.Count++
		m.CumulativeNS += r.WallNS
	}

	perAPI := make([]APIMetrics, 0, len(order))
	var apiTotal int64
	for _, name := range order {
		m := byName[name]
		m.MeanNS = float64(m.CumulativeNS) / float64(m.Count)
		perAPI = append(perAPI, *m)
		apiTotal += m.CumulativeNS
	}
	sort.SliceStable(perAPI, func(i, j int) bool {
		return perAPI[i].CumulativeNS > perAPI[j].CumulativeNS
	})

	summary := RunSummary{APICumulativeNS: apiTotal}
	program, ok := largestProgram(rows, func(r Row) bool { return r.Name == ProgramSpan })
	if !ok {
		program, ok = largestProgram(rows, func(Row) bool { return true })
	}
	if ok {
		nonAPI := program - apiTotal
		share := 0.0
		if program > 0 {
			share = float64(apiTotal) / float64(program) * 100
		}
		summary.ProgramNS = &program
		summary.NonAPINS = &nonAPI
		summary.APISharePct = &share
	}
	return perAPI, summary
}

func largestProgram(rows []Row, keep func(Row) bool) (int64, bool) {
	var best int64
	found := false
	for _, r := range rows {
		if r.Kind != KindProgram || !keep(r) {
			continue
		}
		if !found || r.WallNS > best {
			best = r.WallNS
			found = true
		}
	}
	return best, found
}
