package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/circlepack/pkg/errors"
	"github.com/matzehuels/circlepack/pkg/packing"
	"github.com/matzehuels/circlepack/pkg/solver"
)

// centered answers every single-circle problem with the circle in the
// middle of the default domain.
func centered(_ context.Context, p solver.Problem) (solver.Report, error) {
	if p.Model.N() != 1 {
		return solver.Report{Status: solver.StatusInfeasible, Code: 200}, nil
	}
	return solver.Report{Status: solver.StatusConverged, Radius: 5, Centers: []packing.Circle{{X: 5, Y: 5}}}, nil
}

// testCLI runs the command line against a fake engine with cache and
// history inside a temp dir, and returns stdout.
func testCLI(t *testing.T, engine solver.Engine, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "circlepack.toml")
	cfg := fmt.Sprintf("[cache]\ndir = %q\n\n[store]\npath = %q\n", filepath.Join(dir, "cache"), filepath.Join(dir, "runs.jsonl"))
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return runCLI(t, engine, append([]string{"--config", cfgPath}, args...)...)
}

func runCLI(t *testing.T, engine solver.Engine, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	old := stdout
	stdout = &out
	t.Cleanup(func() { stdout = old })

	c := &CLI{Logger: log.NewWithOptions(io.Discard, log.Options{}), engine: engine}
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitOK},
		{errors.New(errors.ErrCodeInvalidConfig, "bad"), ExitFailure},
		{errors.New(errors.ErrCodeInvalidModel, "bad"), ExitFailure},
		{errors.New(errors.ErrCodeValidation, "bad"), ExitFailure},
		{errors.New(errors.ErrCodeBackend, "bad"), ExitFailure},
		{errors.New(errors.ErrCodeInfeasible, "no"), ExitNoPacking},
		{errors.New(errors.ErrCodeTimeout, "slow"), ExitNoPacking},
		{fmt.Errorf("solve: %w", context.Canceled), ExitInterrupt},
		{io.EOF, ExitFailure},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestSolveWritesArtifacts(t *testing.T) {
	out := filepath.Join(t.TempDir(), "one")
	stdoutText, err := testCLI(t, solver.EngineFunc(centered), "solve", "-n", "1", "-f", "svg,json", "-o", out)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if !strings.Contains(stdoutText, "Packed") || !strings.Contains(stdoutText, "radius") || !strings.Contains(stdoutText, "bound") {
		t.Errorf("summary missing from output:\n%s", stdoutText)
	}
	for _, ext := range []string{".svg", ".json"} {
		if _, err := os.Stat(out + ext); err != nil {
			t.Errorf("expected %s: %v", out+ext, err)
		}
	}
}

func TestSolveJSON(t *testing.T) {
	text, err := testCLI(t, solver.EngineFunc(centered), "solve", "-n", "1", "--backend", "ipopt", "--json")
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	var run struct {
		Backend string         `json:"backend"`
		Regime  string         `json:"regime"`
		Packing packing.Result `json:"packing"`
		Stats   struct {
			RadiusBound float64 `json:"radius_bound"`
		} `json:"stats"`
	}
	if err := json.Unmarshal([]byte(text), &run); err != nil {
		t.Fatalf("decode %q: %v", text, err)
	}
	if run.Backend != "ipopt" || run.Regime != "local" || run.Packing.Radius() != 5 {
		t.Errorf("unexpected run: %+v", run)
	}
	if run.Stats.RadiusBound != 5 {
		t.Errorf("radius bound = %g, want 5", run.Stats.RadiusBound)
	}
}

func TestSolveInfeasibleExitsWithTwo(t *testing.T) {
	_, err := testCLI(t, solver.EngineFunc(centered), "solve", "-n", "3")
	if !errors.Is(err, errors.ErrCodeInfeasible) {
		t.Fatalf("want INFEASIBLE, got %v", err)
	}
	if ExitCode(err) != ExitNoPacking {
		t.Errorf("exit code = %d, want %d", ExitCode(err), ExitNoPacking)
	}
}

func TestSolveRejectsBadFlagsBeforeSolving(t *testing.T) {
	called := false
	engine := solver.EngineFunc(func(ctx context.Context, p solver.Problem) (solver.Report, error) {
		called = true
		return centered(ctx, p)
	})
	for _, args := range [][]string{
		{"solve", "--backend", "cplex"},
		{"solve", "--strategy", "hex"},
		{"solve", "--x-min", "10"},
		{"solve", "-n", "0"},
	} {
		if _, err := testCLI(t, engine, args...); ExitCode(err) != ExitFailure {
			t.Errorf("%v: exit code %d (%v), want 1", args, ExitCode(err), err)
		}
	}
	if called {
		t.Error("engine called for invalid input")
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "c.yaml")
	body := fmt.Sprintf("n: 4\nbackend: baron\nstrategy: grid\ncache:\n  kind: none\nstore:\n  kind: file\n  path: %q\n", filepath.Join(dir, "runs.jsonl"))
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	var got solver.Problem
	engine := solver.EngineFunc(func(ctx context.Context, p solver.Problem) (solver.Report, error) {
		got = p
		return centered(ctx, p)
	})
	if _, err := runCLI(t, engine, "--config", cfgPath, "solve", "-n", "1", "--json"); err != nil {
		t.Fatalf("solve: %v", err)
	}
	if got.Model.N() != 1 {
		t.Errorf("n = %d, want the flag value 1", got.Model.N())
	}
	if got.Backend != solver.Baron {
		t.Errorf("backend = %s, want baron from the config file", got.Backend)
	}
	if len(got.Guess) != 1 {
		t.Errorf("guess has %d points, want a grid guess from the config file", len(got.Guess))
	}
}

func TestSolveUsesCache(t *testing.T) {
	calls := 0
	engine := solver.EngineFunc(func(ctx context.Context, p solver.Problem) (solver.Report, error) {
		calls++
		return centered(ctx, p)
	})
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "c.json")
	body := fmt.Sprintf(`{"cache": {"dir": %q}, "store": {"kind": "none"}}`, filepath.Join(dir, "cache"))
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	for range 2 {
		if _, err := runCLI(t, engine, "--config", cfgPath, "solve", "-n", "1"); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 1 {
		t.Errorf("engine called %d times, want 1", calls)
	}
	if _, err := runCLI(t, engine, "--config", cfgPath, "solve", "-n", "1", "--no-cache"); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("--no-cache: engine called %d times, want 2", calls)
	}
}

func TestRunsAndRender(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "c.toml")
	cfg := fmt.Sprintf("[cache]\nkind = \"none\"\n\n[store]\npath = %q\n", filepath.Join(dir, "runs.jsonl"))
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	engine := solver.EngineFunc(centered)

	text, err := runCLI(t, engine, "--config", cfgPath, "solve", "-n", "1", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var run struct {
		RunID string `json:"run_id"`
	}
	if err := json.Unmarshal([]byte(text), &run); err != nil || run.RunID == "" {
		t.Fatalf("no run id in %q: %v", text, err)
	}

	list, err := runCLI(t, engine, "--config", cfgPath, "runs", "list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(list, run.RunID) {
		t.Errorf("runs list does not show %s:\n%s", run.RunID, list)
	}

	show, err := runCLI(t, engine, "--config", cfgPath, "runs", "show", run.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(show, "octeract") {
		t.Errorf("runs show missing backend:\n%s", show)
	}

	_, err = runCLI(t, engine, "--config", cfgPath, "runs", "show", "missing")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("want NOT_FOUND, got %v", err)
	}

	svg := filepath.Join(dir, "from-run.svg")
	if _, err := runCLI(t, engine, "--config", cfgPath, "render", "--run", run.RunID, "-o", svg); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(svg)
	if err != nil || !bytes.Contains(data, []byte("<svg")) {
		t.Errorf("render --run wrote %q: %v", data, err)
	}

	// Rendering the saved JSON run gives the same drawing.
	runFile := filepath.Join(dir, "run.json")
	if err := os.WriteFile(runFile, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, engine, "render", runFile, "-f", "dot"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "run.gv")); err != nil {
		t.Errorf("render did not write run.gv: %v", err)
	}
}

func TestRenderRejectsInvalidPacking(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	bad := `{"n": 2, "radius": 4, "domain": {"x_min": 0, "x_max": 10, "y_min": 0, "y_max": 10}, "centers": [{"x": 4, "y": 4}, {"x": 6, "y": 6}]}`
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := runCLI(t, nil, "render", path)
	if !errors.Is(err, errors.ErrCodeValidation) {
		t.Errorf("want VALIDATION_FAILED, got %v", err)
	}
}

func TestSweepCommand(t *testing.T) {
	text, err := testCLI(t, solver.EngineFunc(centered), "sweep", "-n", "1", "--strategy", "random", "--seeds", "1,2", "--backends", "ipopt,baron")
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	for _, want := range []string{"ipopt", "baron", "best"} {
		if !strings.Contains(text, want) {
			t.Errorf("sweep output missing %q:\n%s", want, text)
		}
	}
}

func TestBackendsCommand(t *testing.T) {
	text, err := runCLI(t, nil, "backends")
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range solver.Backends {
		if !strings.Contains(text, string(b)) {
			t.Errorf("backends output missing %s", b)
		}
	}

	text, err = runCLI(t, nil, "backends", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var got []map[string]string
	if err := json.Unmarshal([]byte(text), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != len(solver.Backends) {
		t.Errorf("got %d backends, want %d", len(got), len(solver.Backends))
	}
}

func TestBackendsReportsAMPL(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake ampl is a shell script")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "ampl")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name, path, want string
	}{
		{"found", bin, "ampl binary found"},
		{"missing", filepath.Join(dir, "no-such-ampl"), "not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfgPath := filepath.Join(t.TempDir(), "circlepack.toml")
			if err := os.WriteFile(cfgPath, []byte(fmt.Sprintf("[ampl]\npath = %q\n", tt.path)), 0o644); err != nil {
				t.Fatal(err)
			}
			text, err := runCLI(t, nil, "--config", cfgPath, "backends")
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(text, tt.want) {
				t.Errorf("backends output %q missing %q", text, tt.want)
			}
		})
	}
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "circlepack.toml")
	if _, err := runCLI(t, nil, "config", "init", path); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, nil, "config", "init", path); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("second init should refuse to overwrite, got %v", err)
	}
	text, err := runCLI(t, nil, "--config", path, "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, `backend = "octeract"`) {
		t.Errorf("config show:\n%s", text)
	}
}

func TestCacheCommands(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "c.toml")
	cacheDir := filepath.Join(dir, "cache")
	cfg := fmt.Sprintf("[cache]\ndir = %q\n\n[store]\nkind = \"none\"\n", cacheDir)
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	text, err := runCLI(t, nil, "--config", cfgPath, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(text) != cacheDir {
		t.Errorf("cache path = %q, want %q", strings.TrimSpace(text), cacheDir)
	}

	if _, err := runCLI(t, solver.EngineFunc(centered), "--config", cfgPath, "solve", "-n", "1"); err != nil {
		t.Fatal(err)
	}
	text, err = runCLI(t, nil, "--config", cfgPath, "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "Cleared 1 cached packings") {
		t.Errorf("cache clear:\n%s", text)
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct{ output, def, want string }{
		{"", "packing-n5", "packing-n5"},
		{"out.svg", "x", "out"},
		{"dir/out.pdf", "x", "dir/out"},
		{"out.v2", "x", "out.v2"},
		{"out", "x", "out"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.def); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.def, got, tt.want)
		}
	}
}

func TestBackendPickerModel(t *testing.T) {
	m := NewBackendPickerModel(solver.Octeract)
	if m.Backends[m.Cursor] != solver.Octeract {
		t.Fatalf("cursor starts on %s", m.Backends[m.Cursor])
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, cmd := next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	got := next.(BackendPickerModel)
	if got.Selected == nil || *got.Selected != solver.Couenne {
		t.Errorf("selected %v, want couenne", got.Selected)
	}
	if cmd == nil {
		t.Error("enter should quit the picker")
	}
	if !strings.Contains(got.View(), "baron") {
		t.Error("view should list every backend")
	}

	quit, _ := NewBackendPickerModel(solver.Ipopt).Update(tea.KeyMsg{Type: tea.KeyEsc})
	if quit.(BackendPickerModel).Selected != nil {
		t.Error("esc must not select")
	}
}
