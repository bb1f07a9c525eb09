// Package execx runs external commands, used for task validation commands
// like "python -m py_compile file.py".
package execx

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Executor runs commands with configurable streams and working directory.
type Executor struct {
	stdout io.Writer
	stderr io.Writer
	dir    string
	env    []string

	// swapped out in tests
	commandFunc func(name string, args ...string) *exec.Cmd
}

// Options configures an Executor. Zero-value fields get defaults.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	Dir    string
	Env    []string
}

// New creates an executor.
func New(opts *Options) *Executor {
	if opts == nil {
		opts = &Options{}
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	return &Executor{
		stdout:      opts.Stdout,
		stderr:      opts.Stderr,
		dir:         opts.Dir,
		env:         opts.Env,
		commandFunc: exec.Command,
	}
}

// Run executes name with args, respecting context cancellation.
func (e *Executor) Run(ctx context.Context, name string, args ...string) error {
	cmd := e.commandFunc(name, args...)
	if e.dir != "" {
		cmd.Dir = e.dir
	}
	if len(e.env) > 0 {
		cmd.Env = append(os.Environ(), e.env...)
	}
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr

	if err := cmd.Start(); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w\ncommand %q not found, install it and retry", err, name)
		}
		return fmt.Errorf("start %s: %w", name, err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		return fmt.Errorf("%s cancelled: %w", name, ctx.Err())
	case err := <-errCh:
		if err != nil {
			if isNotFound(err) {
				return fmt.Errorf("%w\ncommand %q not found, install it and retry", err, name)
			}
			return fmt.Errorf("%s failed: %w", name, err)
		}
		return nil
	}
}

// RunLine splits a shell-free command line on whitespace and runs it.
// Quoting is not supported; validation commands are authored without it.
func (e *Executor) RunLine(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return fmt.Errorf("empty command")
	}
	return e.Run(ctx, fields[0], fields[1:]...)
}

// RunLineWithSpinner splits a command line like RunLine and runs it behind
// a progress spinner, using the line itself as the spinner message.
func (e *Executor) RunLineWithSpinner(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return fmt.Errorf("empty command")
	}
	return e.RunWithSpinner(ctx, line, fields[0], fields[1:]...)
}

// RunWithSpinner runs a command showing a progress spinner on stderr.
func (e *Executor) RunWithSpinner(ctx context.Context, message, name string, args ...string) error {
	quiet := &Executor{
		stdout:      io.Discard,
		stderr:      io.Discard,
		dir:         e.dir,
		env:         e.env,
		commandFunc: e.commandFunc,
	}

	done := make(chan error, 1)
	go func() { done <- quiet.Run(ctx, name, args...) }()

	m := newSpinnerModel(message)
	p := tea.NewProgram(m, tea.WithOutput(e.stderr))
	go func() { _, _ = p.Run() }()

	err := <-done
	p.Send(spinnerDoneMsg{err: err})
	time.Sleep(50 * time.Millisecond)
	p.Quit()
	return err
}

type spinnerModel struct {
	spinner spinner.Model
	message string
	done    bool
	err     error
}

type spinnerDoneMsg struct {
	err error
}

func newSpinnerModel(message string) *spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return &spinnerModel{spinner: s, message: message}
}

func (m *spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *spinnerModel) View() string {
	if m.done {
		if m.err != nil {
			return fmt.Sprintf("✗ %s\n", m.message)
		}
		return fmt.Sprintf("✓ %s\n", m.message)
	}
	return fmt.Sprintf("%s %s...", m.spinner.View(), m.message)
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	return err == exec.ErrNotFound || strings.Contains(err.Error(), "executable file not found")
}
