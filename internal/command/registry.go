// Package command parses input lines and maps them onto address book
// operations, producing one human-readable result per line.
package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/smileynet/addrbook/internal/contact"
)

// Env is the state a handler operates on.
type Env struct {
	Book   *contact.Book
	Now    func() time.Time // Reference clock for birthdays (default: time.Now).
	Window int              // Upcoming-birthday window in days.
}

func (e *Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// HandlerFunc runs a command. It never fails: validation problems and missing
// contacts are reported in the returned string.
type HandlerFunc func(env *Env, args []string) string

// Command describes one named command.
type Command struct {
	Name    string
	Usage   string // Argument synopsis, e.g. "<name> <phone>".
	Summary string
	Run     HandlerFunc
	Exit    bool // Ends the session after running.
}

// Registry maps command names to commands.
// It is not safe for concurrent use; registration should happen at startup.
type Registry struct {
	commands map[string]Command
	order    []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds a command. Overwrites if the name already exists.
// Panics if the name is empty or Run is nil (programmer error).
func (r *Registry) Register(c Command) {
	if c.Name == "" {
		panic("command: Register called with empty name")
	}
	if c.Run == nil {
		panic("command: Register called with nil handler")
	}
	if _, ok := r.commands[c.Name]; !ok {
		r.order = append(r.order, c.Name)
	}
	r.commands[c.Name] = c
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (Command, bool) {
	c, ok := r.commands[name]
	return c, ok
}

// Commands returns the registered commands in registration order.
func (r *Registry) Commands() []Command {
	out := make([]Command, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.commands[n])
	}
	return out
}

// Names returns the registered command names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// DefaultRegistry returns a registry with every built-in command.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Command{Name: "hello", Summary: "Greet the assistant.", Run: hello})
	r.Register(Command{Name: "add", Usage: "<name> <phone>", Summary: "Add a contact or a phone to an existing one.", Run: addContact})
	r.Register(Command{Name: "change", Usage: "<name> <new_phone>", Summary: "Replace the contact's first phone.", Run: changeContact})
	r.Register(Command{Name: "phone", Usage: "<name>", Summary: "Show the contact's first phone.", Run: showPhone})
	r.Register(Command{Name: "all", Summary: "List every contact.", Run: showAll})
	r.Register(Command{Name: "delete", Usage: "<name>", Summary: "Remove a contact.", Run: deleteContact})
	r.Register(Command{Name: "add-birthday", Usage: "<name> <DD.MM.YYYY>", Summary: "Set the contact's birthday.", Run: addBirthday})
	r.Register(Command{Name: "show-birthday", Usage: "<name>", Summary: "Show the contact's birthday.", Run: showBirthday})
	r.Register(Command{Name: "birthdays", Summary: "List birthdays in the coming days.", Run: upcomingBirthdays})
	r.Register(Command{Name: "help", Summary: "Show this list.", Run: helpFor(r)})
	r.Register(Command{Name: "close", Summary: "Save and quit.", Run: goodbye, Exit: true})
	r.Register(Command{Name: "exit", Summary: "Save and quit.", Run: goodbye, Exit: true})
	return r
}

// helpFor lists the commands of r at call time.
func helpFor(r *Registry) HandlerFunc {
	return func(_ *Env, _ []string) string {
		var b strings.Builder
		b.WriteString("Available commands:")
		for _, c := range r.Commands() {
			synopsis := c.Name
			if c.Usage != "" {
				synopsis += " " + c.Usage
			}
			fmt.Fprintf(&b, "\n  %-32s %s", synopsis, c.Summary)
		}
		return b.String()
	}
}
