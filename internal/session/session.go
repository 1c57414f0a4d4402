// Package session runs the interactive command loop, either as plain
// line-oriented text or as a Bubble Tea terminal UI.
package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/smileynet/addrbook/internal/command"
)

// Welcome is printed when a session starts.
const Welcome = "Welcome to the assistant bot!"

// DefaultPrompt is printed before each command in plain mode.
const DefaultPrompt = "Enter a command: "

// Outcome reports how a session ended.
type Outcome struct {
	// Exit is true when the user ended the session with close/exit (or end of
	// input in plain mode). The caller saves the book only in that case.
	Exit bool
	// Commands counts the non-blank lines dispatched.
	Commands int
}

// Runner runs one session to completion.
type Runner interface {
	Run(ctx context.Context) (Outcome, error)
}

// Options configures session creation.
type Options struct {
	In         io.Reader           // Input source (default: os.Stdin).
	Out        io.Writer           // Output destination (default: os.Stdout).
	ForcePlain bool                // Force plain text even if Out is a TTY.
	Prompt     string              // Plain-mode prompt (default: DefaultPrompt).
	Dispatcher *command.Dispatcher // Required.
	Logger     *zap.Logger         // Optional.
}

// New returns a TUI session when Out is a TTY, or a plain session otherwise.
// ForcePlain overrides TTY detection.
func New(opts Options) Runner {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Prompt == "" {
		opts.Prompt = DefaultPrompt
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	plain := &PlainSession{
		in:         opts.In,
		out:        opts.Out,
		prompt:     opts.Prompt,
		dispatcher: opts.Dispatcher,
		logger:     opts.Logger,
	}
	if opts.ForcePlain || !isTTY(opts.Out) {
		return plain
	}
	return &TUISession{
		in:         opts.In,
		out:        opts.Out,
		dispatcher: opts.Dispatcher,
		logger:     opts.Logger,
		fallback:   plain,
	}
}

// isTTY reports whether w is connected to a terminal.
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// PlainSession reads one command per line and prints each result.
type PlainSession struct {
	in         io.Reader
	out        io.Writer
	prompt     string
	dispatcher *command.Dispatcher
	logger     *zap.Logger
}

// Run loops until close/exit, end of input, or ctx cancellation. Cancellation
// returns Outcome{Exit: false} so the caller does not save.
func (s *PlainSession) Run(ctx context.Context) (Outcome, error) {
	// readCtx stops the reader goroutine once the loop returns.
	readCtx, stop := context.WithCancel(ctx)
	defer stop()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(s.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-readCtx.Done():
				readErr <- nil
				return
			}
		}
		readErr <- sc.Err()
	}()

	var outcome Outcome
	_, _ = fmt.Fprintln(s.out, Welcome)
	for {
		_, _ = fmt.Fprint(s.out, s.prompt)

		select {
		case <-ctx.Done():
			_, _ = fmt.Fprintln(s.out)
			return outcome, nil
		case line, ok := <-lines:
			if !ok {
				_, _ = fmt.Fprintln(s.out)
				if ctx.Err() != nil {
					return outcome, nil
				}
				// End of input counts as exit.
				if err := <-readErr; err != nil {
					return outcome, fmt.Errorf("session: reading input: %w", err)
				}
				s.logger.Debug("end of input, ending session", zap.Int("commands", outcome.Commands))
				outcome.Exit = true
				return outcome, nil
			}

			res := s.dispatcher.Dispatch(line)
			if res.Command == "" {
				continue
			}
			outcome.Commands++
			_, _ = fmt.Fprintln(s.out, res.Output)
			if res.Exit {
				outcome.Exit = true
				return outcome, nil
			}
		}
	}
}

// TUISession runs the Bubble Tea model. If the program fails to start it
// falls back to the plain session.
type TUISession struct {
	in         io.Reader
	out        io.Writer
	dispatcher *command.Dispatcher
	logger     *zap.Logger
	fallback   *PlainSession
}

// Run starts the Bubble Tea program and waits for it to quit.
func (s *TUISession) Run(ctx context.Context) (Outcome, error) {
	model := NewModel(s.dispatcher)
	p := tea.NewProgram(model,
		tea.WithInput(s.in),
		tea.WithOutput(s.out),
		tea.WithContext(ctx),
	)

	final, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return Outcome{}, nil
		}
		s.logger.Warn("terminal UI failed, falling back to plain session", zap.Error(err))
		return s.fallback.Run(ctx)
	}

	m, ok := final.(Model)
	if !ok {
		return Outcome{}, fmt.Errorf("session: unexpected model type %T", final)
	}
	return Outcome{Exit: m.Exited(), Commands: m.Commands()}, nil
}
