package command

import (
	"strings"

	"go.uber.org/zap"
)

// Parse splits a line on whitespace. The command is lowercased; the
// arguments are returned as typed. A blank line yields an empty command.
func Parse(line string) (string, []string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToLower(fields[0]), fields[1:]
}

// Result is the outcome of dispatching one line.
type Result struct {
	Command string
	Output  string
	Exit    bool
}

// Dispatcher runs input lines against an Env.
type Dispatcher struct {
	env      *Env
	registry *Registry
	logger   *zap.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRegistry replaces the default command set.
func WithRegistry(r *Registry) Option {
	return func(d *Dispatcher) {
		d.registry = r
	}
}

// WithLogger sets the logger used to trace dispatched commands.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// NewDispatcher creates a Dispatcher over env using DefaultRegistry unless
// overridden.
func NewDispatcher(env *Env, opts ...Option) *Dispatcher {
	d := &Dispatcher{env: env, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	if d.registry == nil {
		d.registry = DefaultRegistry()
	}
	return d
}

// Registry returns the command set in use.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Dispatch parses line and runs the matching command. Blank lines produce an
// empty result; unknown commands produce "Invalid command.".
func (d *Dispatcher) Dispatch(line string) Result {
	name, args := Parse(line)
	if name == "" {
		return Result{}
	}

	c, ok := d.registry.Lookup(name)
	if !ok {
		d.logger.Debug("unknown command", zap.String("command", name))
		return Result{Command: name, Output: msgInvalidCommand}
	}

	out := c.Run(d.env, args)
	d.logger.Debug("command dispatched",
		zap.String("command", name),
		zap.Int("args", len(args)),
		zap.Bool("exit", c.Exit),
	)
	return Result{Command: name, Output: out, Exit: c.Exit}
}
