// Package trace records wall and CPU time spans for a wizard run and
// summarizes saved traces.
package trace

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// Span kinds.
const (
	KindAPI     = "api"
	KindProgram = "program"
)

// ProgramSpan is the name of the span covering a whole run.
const ProgramSpan = "entire_run"

// Header is the column layout of a saved trace.
var Header = []string{"kind", "name", "start_ns", "end_ns", "wall_ns", "cpu_start_ns", "cpu_end_ns", "cpu_ns", "meta"}

// Span is one timed section.
type Span struct {
	Kind       string         `json:"kind"`
	Name       string         `json:"name"`
	StartNS    int64          `json:"start_ns"`
	EndNS      int64          `json:"end_ns"`
	WallNS     int64          `json:"wall_ns"`
	CPUStartNS int64          `json:"cpu_start_ns"`
	CPUEndNS   int64          `json:"cpu_end_ns"`
	CPUNS      int64          `json:"cpu_ns"`
	Meta       map[string]any `json:"meta"`
}

var epoch = time.Now()

// monotonicNS is nanoseconds since package init on the monotonic clock.
func monotonicNS() int64 { return int64(time.Since(epoch)) }

// NewRunID names a run after its start time, e.g. run_Oct_19_09-30-00.
func NewRunID(t time.Time) string {
	return t.Format("run_Jan_02_15-04-05")
}

// Tracer collects spans. It is safe for concurrent use.
type Tracer struct {
	RunID  string
	OutDir string

	mu    sync.Mutex
	spans []Span
	wall  func() int64
	cpu   func() int64
}

// New returns a Tracer that saves to outDir/runID.csv and outDir/runID.json.
func New(runID, outDir string) *Tracer {
	return &Tracer{RunID: runID, OutDir: outDir, wall: monotonicNS, cpu: processCPUNS}
}

// Start opens a span and returns the function that closes it.
func (t *Tracer) Start(kind, name string, meta map[string]any) func() {
	if t == nil {
		return func() {}
	}
	ws, cs := t.wall(), t.cpu()
	var once sync.Once
	return func() {
		once.Do(func() {
			we, ce := t.wall(), t.cpu()
			m := make(map[string]any, len(meta))
			for k, v := range meta {
				m[k] = v
			}
			t.mu.Lock()
			t.spans = append(t.spans, Span{
				Kind: kind, Name: name,
				StartNS: ws, EndNS: we, WallNS: we - ws,
				CPUStartNS: cs, CPUEndNS: ce, CPUNS: ce - cs,
				Meta: m,
			})
			t.mu.Unlock()
		})
	}
}

// API opens an api span.
func (t *Tracer) API(name string, meta map[string]any) func() {
	return t.Start(KindAPI, name, meta)
}

// Program opens a program span.
func (t *Tracer) Program(name string, meta map[string]any) func() {
	return t.Start(KindProgram, name, meta)
}

// Spans returns a copy of the recorded spans in completion order.
func (t *Tracer) Spans() []Span {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Span(nil), t.spans...)
}

// Path is where Save writes the CSV trace.
func (t *Tracer) Path() string {
	return filepath.Join(t.OutDir, t.RunID+".csv")
}

// JSONPath is where Save writes the span list as indented JSON.
func (t *Tracer) JSONPath() string {
	return filepath.Join(t.OutDir, t.RunID+".json")
}

// Saved lists the files written by Save.
type Saved struct {
	CSV  string
	JSON string
}

// Save writes every span to Path as CSV and to JSONPath as JSON.
func (t *Tracer) Save() (Saved, error) {
	if err := os.MkdirAll(t.OutDir, 0o755); err != nil {
		return Saved{}, fmt.Errorf("create trace dir: %w", err)
	}
	spans := t.Spans()
	if err := writeSpansCSV(t.Path(), spans); err != nil {
		return Saved{}, err
	}
	if err := writeSpansJSON(t.JSONPath(), spans); err != nil {
		return Saved{}, err
	}
	return Saved{CSV: t.Path(), JSON: t.JSONPath()}, nil
}

func writeSpansCSV(path string, spans []Span) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trace %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		_ = f.Close()
		return fmt.Errorf("write trace %s: %w", path, err)
	}
	for _, s := range spans {
		meta, err := marshalMeta(s.Meta)
		if err != nil {
			_ = f.Close()
			return fmt.Errorf("encode meta for %s: %w", s.Name, err)
		}
		rec := []string{
			s.Kind, s.Name,
			itoa(s.StartNS), itoa(s.EndNS), itoa(s.WallNS),
			itoa(s.CPUStartNS), itoa(s.CPUEndNS), itoa(s.CPUNS),
			meta,
		}
		if err := w.Write(rec); err != nil {
			_ = f.Close()
			return fmt.Errorf("write trace %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write trace %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close trace %s: %w", path, err)
	}
	return nil
}

func writeSpansJSON(path string, spans []Span) error {
	if spans == nil {
		spans = []Span{}
	}
	data, err := json.MarshalIndent(spans, "", "  ")
	if err != nil {
		return fmt.Errorf("encode trace %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write trace %s: %w", path, err)
	}
	return nil
}

// marshalMeta encodes meta as JSON; encoding/json sorts map keys.
func marshalMeta(meta map[string]any) (string, error) {
	if len(meta) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func itoa(v int64) string { return strconv.FormatInt(v, 10) }
