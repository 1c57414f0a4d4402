package command

import (
	"strings"
	"testing"
	"time"

	"github.com/smileynet/addrbook/internal/contact"
)

func newTestDispatcher() (*Dispatcher, *Env) {
	env := &Env{
		Book:   contact.NewBook(),
		Now:    func() time.Time { return time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC) },
		Window: 7,
	}
	return NewDispatcher(env), env
}

// run dispatches each line in order and returns the last output.
func run(d *Dispatcher, lines ...string) string {
	var out string
	for _, l := range lines {
		out = d.Dispatch(l).Output
	}
	return out
}

func TestParse(t *testing.T) {
	tests := []struct {
		line     string
		wantCmd  string
		wantArgs []string
	}{
		{line: "add alice 1234567890", wantCmd: "add", wantArgs: []string{"alice", "1234567890"}},
		{line: "  ADD   Alice\t1234567890  ", wantCmd: "add", wantArgs: []string{"Alice", "1234567890"}},
		{line: "all", wantCmd: "all", wantArgs: []string{}},
		{line: "", wantCmd: "", wantArgs: nil},
		{line: "   \t ", wantCmd: "", wantArgs: nil},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cmd, args := Parse(tt.line)
			if cmd != tt.wantCmd {
				t.Errorf("cmd = %q, want %q", cmd, tt.wantCmd)
			}
			if strings.Join(args, "|") != strings.Join(tt.wantArgs, "|") {
				t.Errorf("args = %q, want %q", args, tt.wantArgs)
			}
		})
	}
}

func TestDispatch_Scenario(t *testing.T) {
	// Given an empty book
	d, _ := newTestDispatcher()

	// Then all reports emptiness
	if got := run(d, "all"); got != msgNoContacts {
		t.Fatalf("all (empty) = %q, want %q", got, msgNoContacts)
	}

	// When alice is added
	if got := run(d, "add alice 1234567890"); got != "Contact added." {
		t.Fatalf("add = %q, want %q", got, "Contact added.")
	}

	// Then all lists her
	got := run(d, "all")
	if !strings.Contains(got, "alice") || !strings.Contains(got, "1234567890") {
		t.Errorf("all = %q, want alice and 1234567890", got)
	}

	// When she is deleted
	if got := run(d, "delete alice"); got != "alice was removed from your contacts." {
		t.Errorf("delete = %q", got)
	}

	// Then the book is empty again
	if got := run(d, "all"); got != msgNoContacts {
		t.Errorf("all (after delete) = %q, want %q", got, msgNoContacts)
	}
}

func TestDispatch_Handlers(t *testing.T) {
	tests := []struct {
		name  string
		setup []string
		line  string
		want  string
	}{
		{name: "hello", line: "hello", want: "How can I help you?"},
		{name: "hello is case-insensitive", line: "HeLLo", want: "How can I help you?"},
		{name: "unknown command", line: "frobnicate x", want: "Invalid command."},

		{name: "add usage", line: "add alice", want: "Error: Please provide both name and phone number."},
		{name: "add too many args", line: "add alice 1234567890 extra", want: "Error: Please provide both name and phone number."},
		{name: "add invalid phone", line: "add alice 12345", want: "Phone number must be 10 digits."},
		{name: "add invalid phone does not create contact", setup: []string{"add alice 12345"}, line: "phone alice", want: "No contact found under the name alice."},
		{name: "add to existing contact", setup: []string{"add alice 1111111111", "add alice 2222222222"}, line: "all", want: "Contact name: alice, phones: 1111111111; 2222222222"},
		{name: "add invalid to existing", setup: []string{"add alice 1111111111"}, line: "add alice 22", want: "Phone number must be 10 digits."},

		{name: "change usage", line: "change alice", want: "Error: Please provide both name and new phone number."},
		{name: "change missing contact", line: "change bob 1234567890", want: "No contact found under the name bob."},
		{name: "change", setup: []string{"add alice 1111111111", "add alice 2222222222"}, line: "change alice 3333333333", want: "Contact alice's phone number has been changed to 3333333333."},
		{name: "change replaces first phone", setup: []string{"add alice 1111111111", "add alice 2222222222", "change alice 3333333333"}, line: "all", want: "Contact name: alice, phones: 3333333333; 2222222222"},
		{name: "change invalid keeps old", setup: []string{"add alice 1111111111", "change alice 12"}, line: "phone alice", want: "alice's phone number is 1111111111."},
		{name: "change invalid message", setup: []string{"add alice 1111111111"}, line: "change alice 12", want: "Phone number must be 10 digits."},

		{name: "phone usage", line: "phone", want: "Please provide name only."},
		{name: "phone too many", line: "phone alice bob", want: "Please provide name only."},
		{name: "phone missing", line: "phone bob", want: "No contact found under the name bob."},
		{name: "phone", setup: []string{"add alice 1111111111", "add alice 2222222222"}, line: "phone alice", want: "alice's phone number is 1111111111."},

		{name: "delete usage", line: "delete", want: "Please provide name only."},
		{name: "delete missing", line: "delete bob", want: "No contact found under the name bob."},

		{name: "add-birthday usage", line: "add-birthday alice", want: "Error: Please provide name and birthday (DD.MM.YYYY)."},
		{name: "add-birthday missing contact", line: "add-birthday bob 14.06.1990", want: "No contact found under the name bob."},
		{name: "add-birthday invalid date", setup: []string{"add alice 1111111111"}, line: "add-birthday alice 1990-06-14", want: "Invalid date format. Use DD.MM.YYYY"},
		{name: "add-birthday", setup: []string{"add alice 1111111111"}, line: "add-birthday alice 14.06.1990", want: "Birthday added."},
		{name: "add-birthday ignores extra args", setup: []string{"add alice 1111111111"}, line: "add-birthday alice 14.06.1990 whatever", want: "Birthday added."},

		{name: "show-birthday usage", line: "show-birthday", want: "Enter contact name."},
		{name: "show-birthday missing contact", line: "show-birthday bob", want: "No contact found under the name bob."},
		{name: "show-birthday unset", setup: []string{"add alice 1111111111"}, line: "show-birthday alice", want: "No birthday set for alice."},
		{name: "show-birthday", setup: []string{"add alice 1111111111", "add-birthday alice 14.06.1990"}, line: "show-birthday alice extra", want: "alice's birthday is 14.06.1990."},

		{name: "birthdays none", setup: []string{"add alice 1111111111", "add-birthday alice 20.06.1990"}, line: "birthdays", want: "No birthdays in the next 7 days."},
		{name: "birthdays", setup: []string{"add alice 1111111111", "add-birthday alice 14.06.1990"}, line: "birthdays", want: "Birthdays in the next 7 days:\n  alice: 14.06.2024 (Friday)"},

		{name: "close", line: "close", want: "Good bye!"},
		{name: "exit", line: "EXIT", want: "Good bye!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := newTestDispatcher()
			run(d, tt.setup...)

			got := d.Dispatch(tt.line).Output

			if got != tt.want {
				t.Errorf("Dispatch(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestDispatch_ExitFlag(t *testing.T) {
	d, _ := newTestDispatcher()

	for _, line := range []string{"close", "exit", "Close now"} {
		if res := d.Dispatch(line); !res.Exit {
			t.Errorf("Dispatch(%q).Exit = false, want true", line)
		}
	}
	for _, line := range []string{"hello", "all", "bogus"} {
		if res := d.Dispatch(line); res.Exit {
			t.Errorf("Dispatch(%q).Exit = true, want false", line)
		}
	}
}

func TestDispatch_BlankLine(t *testing.T) {
	d, _ := newTestDispatcher()

	res := d.Dispatch("   ")

	if res != (Result{}) {
		t.Errorf("Dispatch(blank) = %+v, want zero Result", res)
	}
}

func TestDispatch_BirthdaysUsesWindow(t *testing.T) {
	d, env := newTestDispatcher()
	env.Window = 14
	run(d, "add alice 1111111111", "add-birthday alice 20.06.1990")

	got := d.Dispatch("birthdays").Output

	if !strings.HasPrefix(got, "Birthdays in the next 14 days:") || !strings.Contains(got, "alice: 20.06.2024") {
		t.Errorf("birthdays = %q", got)
	}
}

func TestHelp_ListsEveryCommand(t *testing.T) {
	d, _ := newTestDispatcher()

	got := d.Dispatch("help").Output

	for _, name := range d.Registry().Names() {
		if !strings.Contains(got, name) {
			t.Errorf("help output missing %q:\n%s", name, got)
		}
	}
	if !strings.Contains(got, "add <name> <phone>") {
		t.Errorf("help output missing usage for add:\n%s", got)
	}
}

func TestRegistry_RegisterOverwritesKeepsOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(Command{Name: "a", Run: hello})
	r.Register(Command{Name: "b", Run: hello})
	r.Register(Command{Name: "a", Run: goodbye, Exit: true})

	if got := strings.Join(r.Names(), ","); got != "a,b" {
		t.Errorf("Names() = %q, want %q", got, "a,b")
	}
	c, ok := r.Lookup("a")
	if !ok || !c.Exit {
		t.Errorf("Lookup(a) = %+v, %v; want overwritten command", c, ok)
	}
}

func TestRegistry_RegisterPanics(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
	}{
		{name: "empty name", cmd: Command{Run: hello}},
		{name: "nil handler", cmd: Command{Name: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("Register should panic")
				}
			}()
			NewRegistry().Register(tt.cmd)
		})
	}
}

func TestWithRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(Command{Name: "ping", Run: func(*Env, []string) string { return "pong" }})
	d := NewDispatcher(&Env{Book: contact.NewBook()}, WithRegistry(r))

	if got := d.Dispatch("ping").Output; got != "pong" {
		t.Errorf("ping = %q, want pong", got)
	}
	if got := d.Dispatch("hello").Output; got != "Invalid command." {
		t.Errorf("hello = %q, want Invalid command.", got)
	}
}

func TestFormatUpcoming(t *testing.T) {
	upcoming := []contact.UpcomingBirthday{
		{Name: "bob", Date: time.Date(2024, time.June, 12, 0, 0, 0, 0, time.UTC)},
		{Name: "alice", Date: time.Date(2024, time.June, 11, 0, 0, 0, 0, time.UTC)},
	}

	got := FormatUpcoming(upcoming, 7)

	want := "Birthdays in the next 7 days:\n  bob: 12.06.2024 (Wednesday)\n  alice: 11.06.2024 (Tuesday)"
	if got != want {
		t.Errorf("FormatUpcoming() = %q, want %q", got, want)
	}
}
