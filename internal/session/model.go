package session

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/addrbook/internal/command"
)

// chromeHeight is the number of lines used by the title, input box and help bar.
const chromeHeight = 6

// entry is one dispatched line and its output.
type entry struct {
	line    string
	output  string
	invalid bool
}

// Model is the Bubble Tea model for the interactive terminal UI. It keeps a
// scrollback of dispatched commands above a single-line input.
type Model struct {
	dispatcher *command.Dispatcher
	input      textinput.Model
	help       help.Model
	keys       keyMap
	history    []entry
	width      int
	height     int
	exit       bool
	commands   int
}

// NewModel creates a focused Model that dispatches through d. Command names
// are offered as tab completions.
func NewModel(d *command.Dispatcher) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "type a command, or help"
	ti.ShowSuggestions = true
	ti.SetSuggestions(d.Registry().Names())
	ti.Focus()

	return Model{
		dispatcher: d,
		input:      ti,
		help:       help.New(),
		keys:       defaultKeyMap(),
	}
}

// Exited reports whether the session ended through close/exit.
func (m Model) Exited() bool {
	return m.exit
}

// Commands returns the number of non-blank lines dispatched.
func (m Model) Commands() int {
	return m.commands
}

// Init starts the cursor blinking.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key presses and window resizes.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(msg.Width-len(m.input.Prompt)-4, 10)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Submit):
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit dispatches the current input line.
func (m Model) submit() (tea.Model, tea.Cmd) {
	line := m.input.Value()
	m.input.Reset()

	res := m.dispatcher.Dispatch(line)
	if res.Command == "" {
		return m, nil
	}
	m.commands++
	_, known := m.dispatcher.Registry().Lookup(res.Command)
	m.history = append(m.history, entry{
		line:    strings.TrimSpace(line),
		output:  res.Output,
		invalid: !known,
	})

	if res.Exit {
		m.exit = true
		return m, tea.Quit
	}
	return m, nil
}

// View renders the scrollback, the input box and the help bar.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(Welcome))
	b.WriteString("\n\n")

	for _, line := range m.scrollback() {
		b.WriteString(line)
		b.WriteString("\n")
	}

	box := inputBorder
	if m.width > 2 {
		box = box.Width(m.width - 2)
	}
	b.WriteString(box.Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// scrollback returns the rendered history lines that fit above the input.
func (m Model) scrollback() []string {
	var lines []string
	for _, e := range m.history {
		lines = append(lines, echoStyle.Render("> "+e.line))
		style := outputStyle
		if e.invalid {
			style = outputStyle.Inherit(invalidStyle)
		}
		for _, l := range strings.Split(e.output, "\n") {
			lines = append(lines, style.Render(l))
		}
	}

	if m.height == 0 {
		return lines
	}
	room := m.height - chromeHeight
	if room < 0 {
		room = 0
	}
	if len(lines) > room {
		lines = lines[len(lines)-room:]
	}
	return lines
}
