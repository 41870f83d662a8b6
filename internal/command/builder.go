package command

import (
	"fmt"
	"strings"
	"time"
)

// ArgOption customises an ArgDef added through Builder.Arg or Builder.Rest.
type ArgOption func(*ArgDef)

// Required marks the argument as mandatory.
func Required() ArgOption { return func(d *ArgDef) { d.Required = true } }

// Describe sets the argument's help text.
func Describe(text string) ArgOption { return func(d *ArgDef) { d.Description = text } }

// Check attaches a validator run after parsing.
func Check(fn func(v any) error) ArgOption { return func(d *ArgDef) { d.Validate = fn } }

// Between validates an integer argument within [min, max].
func Between(min, max int64) ArgOption {
	return Check(func(v any) error {
		n, ok := v.(int64)
		if !ok || n < min || n > max {
			return fmt.Errorf("must be between %d and %d", min, max)
		}
		return nil
	})
}

// Builder accumulates a command definition. Build checks it.
type Builder struct {
	spec Spec
}

// New starts a command definition with the given canonical name.
func New(name string) *Builder {
	return &Builder{spec: Spec{Name: strings.ToLower(strings.TrimSpace(name))}}
}

func (b *Builder) Description(text string) *Builder { b.spec.Description = text; return b }
func (b *Builder) Usage(text string) *Builder       { b.spec.Usage = text; return b }
func (b *Builder) Category(name string) *Builder    { b.spec.Category = name; return b }

func (b *Builder) Aliases(aliases ...string) *Builder {
	for _, a := range aliases {
		b.spec.Aliases = append(b.spec.Aliases, strings.ToLower(strings.TrimSpace(a)))
	}
	return b
}

// Arg appends a positional argument.
func (b *Builder) Arg(name string, kind ArgKind, opts ...ArgOption) *Builder {
	def := ArgDef{Name: name, Kind: kind}
	for _, o := range opts {
		o(&def)
	}
	b.spec.Args = append(b.spec.Args, def)
	return b
}

// Rest appends a text argument that takes the rest of the line.
func (b *Builder) Rest(name string, opts ...ArgOption) *Builder {
	def := ArgDef{Name: name, Kind: KindString, Rest: true}
	for _, o := range opts {
		o(&def)
	}
	b.spec.Args = append(b.spec.Args, def)
	return b
}

// Requires lists capabilities the caller must all hold.
func (b *Builder) Requires(caps ...Capability) *Builder {
	b.spec.Capabilities = append(b.spec.Capabilities, caps...)
	return b
}

func (b *Builder) Cooldown(d time.Duration) *Builder     { b.spec.Cooldown = d; return b }
func (b *Builder) Validate(fn func(Args) error) *Builder { b.spec.Validate = fn; return b }
func (b *Builder) Handle(h HandlerFunc) *Builder         { b.spec.Handler = h; return b }

// Use appends interceptors; the first one declared is the outermost.
func (b *Builder) Use(interceptors ...Interceptor) *Builder {
	b.spec.Interceptors = append(b.spec.Interceptors, interceptors...)
	return b
}

// Build validates the definition and returns an independent Spec.
func (b *Builder) Build() (*Spec, error) {
	s := b.spec
	fail := func(format string, a ...any) (*Spec, error) {
		return nil, &SpecError{Command: s.Name, Problem: fmt.Sprintf(format, a...)}
	}

	if s.Name == "" || strings.ContainsAny(s.Name, " \t\n") {
		return fail("name must be a single non-empty word")
	}
	if s.Handler == nil {
		return fail("no handler")
	}
	if s.Cooldown < 0 {
		return fail("negative cooldown")
	}

	seen := make(map[string]bool, len(s.Args))
	optional := false
	for i, def := range s.Args {
		switch {
		case def.Name == "":
			return fail("argument %d has no name", i)
		case seen[def.Name]:
			return fail("duplicate argument %q", def.Name)
		case def.Rest && i != len(s.Args)-1:
			return fail("rest argument %q must be last", def.Name)
		case !def.Rest && def.Required && optional:
			return fail("required argument %q follows an optional one", def.Name)
		}
		seen[def.Name] = true
		if !def.Required {
			optional = true
		}
	}

	s.Aliases = append([]string(nil), s.Aliases...)
	s.Args = append([]ArgDef(nil), s.Args...)
	s.Capabilities = append([]Capability(nil), s.Capabilities...)
	s.Interceptors = append([]Interceptor(nil), s.Interceptors...)
	if s.Usage == "" {
		s.Usage = usageFor(s.Name, s.Args)
	}
	return &s, nil
}

func usageFor(name string, defs []ArgDef) string {
	parts := []string{name}
	for _, d := range defs {
		label := d.Name
		if d.Rest {
			label += "..."
		}
		if d.Required {
			parts = append(parts, "<"+label+">")
		} else {
			parts = append(parts, "["+label+"]")
		}
	}
	return strings.Join(parts, " ")
}
