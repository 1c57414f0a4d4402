package session

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"

	"github.com/smileynet/addrbook/internal/command"
	"github.com/smileynet/addrbook/internal/contact"
)

func newTestDispatcher() (*command.Dispatcher, *contact.Book) {
	book := contact.NewBook()
	env := &command.Env{
		Book:   book,
		Now:    func() time.Time { return time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC) },
		Window: 7,
	}
	return command.NewDispatcher(env), book
}

func runPlain(t *testing.T, ctx context.Context, input string) (Outcome, string, *contact.Book) {
	t.Helper()
	d, book := newTestDispatcher()
	var out bytes.Buffer
	s := New(Options{In: strings.NewReader(input), Out: &out, Dispatcher: d})

	outcome, err := s.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return outcome, out.String(), book
}

func TestNew_NonTerminalIsPlain(t *testing.T) {
	d, _ := newTestDispatcher()

	s := New(Options{In: strings.NewReader(""), Out: &bytes.Buffer{}, Dispatcher: d})

	if _, ok := s.(*PlainSession); !ok {
		t.Errorf("New() = %T, want *PlainSession", s)
	}
}

func TestNew_ForcePlain(t *testing.T) {
	d, _ := newTestDispatcher()

	s := New(Options{ForcePlain: true, Dispatcher: d})

	if _, ok := s.(*PlainSession); !ok {
		t.Errorf("New(ForcePlain) = %T, want *PlainSession", s)
	}
}

func TestPlainSession_Transcript(t *testing.T) {
	// Given a scripted session ending with exit
	input := "hello\nadd alice 1234567890\n\nphone alice\nexit\nhello\n"

	// When it runs
	outcome, out, book := runPlain(t, context.Background(), input)

	// Then every command is answered in order and the loop stops at exit
	want := Welcome + "\n" +
		DefaultPrompt + "How can I help you?\n" +
		DefaultPrompt + "Contact added.\n" +
		DefaultPrompt +
		DefaultPrompt + "alice's phone number is 1234567890.\n" +
		DefaultPrompt + "Good bye!\n"
	if out != want {
		t.Errorf("transcript mismatch\ngot:\n%q\nwant:\n%q", out, want)
	}
	if !outcome.Exit {
		t.Error("Exit = false, want true")
	}
	if outcome.Commands != 4 {
		t.Errorf("Commands = %d, want 4", outcome.Commands)
	}
	if _, ok := book.Find("alice"); !ok {
		t.Error("alice should be in the book")
	}
}

func TestPlainSession_EndOfInputExits(t *testing.T) {
	outcome, out, _ := runPlain(t, context.Background(), "hello\n")

	if !outcome.Exit {
		t.Error("Exit = false, want true at end of input")
	}
	if !strings.HasSuffix(out, DefaultPrompt+"\n") {
		t.Errorf("output should end with a final prompt and newline, got %q", out)
	}
}

func TestPlainSession_InvalidCommand(t *testing.T) {
	_, out, _ := runPlain(t, context.Background(), "frobnicate\nclose\n")

	if !strings.Contains(out, "Invalid command.\n") {
		t.Errorf("output missing Invalid command.: %q", out)
	}
}

func TestPlainSession_CustomPrompt(t *testing.T) {
	d, _ := newTestDispatcher()
	var out bytes.Buffer
	s := New(Options{In: strings.NewReader("close\n"), Out: &out, Prompt: "$ ", Dispatcher: d})

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := out.String(); got != Welcome+"\n$ Good bye!\n" {
		t.Errorf("output = %q", got)
	}
}

func TestPlainSession_CancelDoesNotExit(t *testing.T) {
	// Given an input that never produces a line
	r, w := io.Pipe()
	defer w.Close()
	d, _ := newTestDispatcher()
	s := New(Options{In: r, Out: &bytes.Buffer{}, Dispatcher: d})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan Outcome, 1)
	go func() {
		outcome, _ := s.Run(ctx)
		done <- outcome
	}()

	// When the context is cancelled
	cancel()

	// Then the session ends without requesting a save
	select {
	case outcome := <-done:
		if outcome.Exit {
			t.Error("Exit = true after cancellation, want false")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestPlainSession_ReadError(t *testing.T) {
	d, _ := newTestDispatcher()
	s := New(Options{In: failingReader{}, Out: &bytes.Buffer{}, Dispatcher: d})

	outcome, err := s.Run(context.Background())

	if err == nil {
		t.Fatal("Run() should return the read error")
	}
	if outcome.Exit {
		t.Error("Exit = true on read error, want false")
	}
}

func TestModel_SubmitDispatches(t *testing.T) {
	d, book := newTestDispatcher()
	m := NewModel(d)
	m.input.SetValue("add alice 1234567890")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	updated := next.(Model)

	if cmd != nil {
		t.Error("non-exit command should not quit")
	}
	if _, ok := book.Find("alice"); !ok {
		t.Error("alice should be in the book")
	}
	if updated.Commands() != 1 {
		t.Errorf("Commands() = %d, want 1", updated.Commands())
	}
	if updated.input.Value() != "" {
		t.Errorf("input = %q, want cleared", updated.input.Value())
	}
	if len(updated.history) != 1 || updated.history[0].output != "Contact added." {
		t.Errorf("history = %+v", updated.history)
	}
}

func TestModel_BlankSubmitIgnored(t *testing.T) {
	d, _ := newTestDispatcher()
	m := NewModel(d)
	m.input.SetValue("   ")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	updated := next.(Model)

	if updated.Commands() != 0 || len(updated.history) != 0 {
		t.Errorf("blank line should not be recorded: %+v", updated.history)
	}
}

func TestModel_InvalidCommandMarked(t *testing.T) {
	d, _ := newTestDispatcher()
	m := NewModel(d)
	m.input.SetValue("bogus")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	updated := next.(Model)

	if len(updated.history) != 1 || !updated.history[0].invalid {
		t.Errorf("history = %+v, want one invalid entry", updated.history)
	}
}

func TestModel_ExitQuits(t *testing.T) {
	d, _ := newTestDispatcher()
	m := NewModel(d)
	m.input.SetValue("close")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if !next.(Model).Exited() {
		t.Error("Exited() = false, want true")
	}
	if cmd == nil {
		t.Fatal("exit should return a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("exit command should produce tea.QuitMsg")
	}
}

func TestModel_EscQuitsWithoutExit(t *testing.T) {
	d, _ := newTestDispatcher()
	m := NewModel(d)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	if next.(Model).Exited() {
		t.Error("Exited() = true after esc, want false")
	}
	if cmd == nil {
		t.Fatal("esc should return a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("esc should produce tea.QuitMsg")
	}
}

func TestModel_ViewShowsHistory(t *testing.T) {
	d, _ := newTestDispatcher()
	m := NewModel(d)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(Model)
	m.input.SetValue("hello")
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)

	view := m.View()

	for _, want := range []string{Welcome, "> hello", "How can I help you?"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
}

func TestModel_ScrollbackTrimmedToHeight(t *testing.T) {
	d, _ := newTestDispatcher()
	m := NewModel(d)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: chromeHeight + 2})
	m = next.(Model)
	for i := 0; i < 5; i++ {
		m.input.SetValue("hello")
		next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		m = next.(Model)
	}

	if got := len(m.scrollback()); got != 2 {
		t.Errorf("scrollback lines = %d, want 2", got)
	}
}

// TestModel_Teatest_AddThenExit drives the full program through teatest.
func TestModel_Teatest_AddThenExit(t *testing.T) {
	d, book := newTestDispatcher()
	tm := teatest.NewTestModel(t, NewModel(d), teatest.WithInitialTermSize(80, 24))

	tm.Type("add alice 1234567890")
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	tm.Type("exit")
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))

	final := tm.FinalModel(t).(Model)
	if !final.Exited() {
		t.Error("final model should have exited")
	}
	if final.Commands() != 2 {
		t.Errorf("Commands() = %d, want 2", final.Commands())
	}
	if _, ok := book.Find("alice"); !ok {
		t.Error("alice should be in the book")
	}
}
