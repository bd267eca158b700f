// Package ampl drives solver backends through the AMPL command-line binary.
//
// Each session owns a temporary work directory. Solve writes the generated
// run file there, runs "ampl model.run" with the context as deadline, and
// parses the report the script prints. Close removes the directory; a kept
// log lives next to it and survives.
//
// The engine needs the ampl binary and the chosen solver executable
// installed; see [Config] for how both are located.
package ampl

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/circlepack/pkg/errors"
	"github.com/matzehuels/circlepack/pkg/solver"
)

// DefaultBinary is the ampl executable looked up on PATH.
const DefaultBinary = "ampl"

const (
	runFile = "model.run"
	logExt  = ".log"
	// waitDelay bounds how long Run waits for output pipes after the
	// process is killed.
	waitDelay = 2 * time.Second
)

// Config locates the AMPL installation.
type Config struct {
	// Path is the ampl binary, absolute or on PATH. Empty selects "ampl".
	Path string
	// SolverDir holds the solver executables (baron, ipopt, ...). Empty lets
	// AMPL find them on its own.
	SolverDir string
	// TempDir is the parent of session work directories; empty uses the
	// system default.
	TempDir string
	// KeepLogs saves the raw ampl output of each solve as
	// <work dir>.log beside the work directory, so it outlives Close.
	KeepLogs bool
	Logger   *log.Logger
}

// Engine implements [solver.Engine] on top of the ampl binary.
type Engine struct {
	cfg Config
}

// New returns an engine for cfg. Nothing is checked until Open.
func New(cfg Config) *Engine {
	if cfg.Path == "" {
		cfg.Path = DefaultBinary
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Engine{cfg: cfg}
}

// Available reports whether the ampl binary can be found.
func (e *Engine) Available() error {
	if _, err := exec.LookPath(e.cfg.Path); err != nil {
		return errors.Wrap(errors.ErrCodeBackend, err, "ampl binary %q not found; install AMPL or set [ampl] path", e.cfg.Path)
	}
	return nil
}

// Open resolves the binary and creates the session work directory.
func (e *Engine) Open(ctx context.Context) (solver.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bin, err := exec.LookPath(e.cfg.Path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBackend, err, "ampl binary %q not found; install AMPL or set [ampl] path", e.cfg.Path)
	}
	dir, err := os.MkdirTemp(e.cfg.TempDir, "circlepack-ampl-*")
	if err != nil {
		return nil, fmt.Errorf("create ampl work dir: %w", err)
	}
	e.cfg.Logger.Debug("ampl session opened", "dir", dir, "bin", bin)
	return &session{bin: bin, dir: dir, cfg: e.cfg}, nil
}

type session struct {
	bin string
	dir string
	cfg Config

	closeOnce sync.Once
	closeErr  error
}

func (s *session) Solve(ctx context.Context, p solver.Problem) (solver.Report, error) {
	script, err := Script(p, s.cfg.SolverDir)
	if err != nil {
		return solver.Report{}, err
	}
	if err := os.WriteFile(filepath.Join(s.dir, runFile), script, 0o600); err != nil {
		return solver.Report{}, fmt.Errorf("write run file: %w", err)
	}

	cmd := exec.CommandContext(ctx, s.bin, runFile)
	cmd.Dir = s.dir
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if s.cfg.KeepLogs {
		s.keepLog(stdout.Bytes(), stderr.Bytes())
	}
	if err := ctx.Err(); err != nil {
		return solver.Report{}, err
	}
	if runErr != nil {
		return solver.Report{}, fmt.Errorf("ampl: %v: %s", runErr, lastLine(stderr.String(), stdout.String()))
	}
	rep, err := parseReport(&stdout, p.Model.N())
	if err != nil {
		return solver.Report{}, fmt.Errorf("parse ampl output: %w", err)
	}
	return rep, nil
}

// logPath is where a kept log goes: beside the work directory, not in it.
func (s *session) logPath() string {
	return filepath.Clean(s.dir) + logExt
}

func (s *session) keepLog(stdout, stderr []byte) {
	buf := append(append([]byte{}, stdout...), stderr...)
	path := s.logPath()
	if err := os.WriteFile(path, buf, 0o600); err != nil {
		s.cfg.Logger.Warn("could not keep ampl log", "path", path, "err", err)
		return
	}
	s.cfg.Logger.Info("ampl log kept", "path", path)
}

// Close removes the work directory. Calling it more than once is harmless.
func (s *session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = os.RemoveAll(s.dir)
	})
	return s.closeErr
}

// lastLine returns the last non-empty line of the first non-empty output,
// which is where ampl puts its error.
func lastLine(outputs ...string) string {
	for _, out := range outputs {
		lines := strings.Split(strings.TrimSpace(out), "\n")
		if l := strings.TrimSpace(lines[len(lines)-1]); l != "" {
			return l
		}
	}
	return "no output"
}
