package command

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/keshon/sentinel/pkg/cmd"
)

// HandlerFunc executes a command once its checks have passed.
type HandlerFunc = cmd.Handler[*Invocation]

// Interceptor wraps command execution for cross-cutting concerns.
type Interceptor = cmd.Middleware[*Invocation]

// Spec describes a registered command. It is built by Builder and must not
// be changed after registration.
type Spec struct {
	Name         string
	Description  string
	Usage        string
	Category     string
	Aliases      []string
	Args         []ArgDef
	Capabilities []Capability
	Cooldown     time.Duration
	Validate     func(Args) error
	Handler      HandlerFunc
	Interceptors []Interceptor

	chain HandlerFunc
}

// Run executes the composed interceptor chain around the handler.
func (s *Spec) Run(ctx context.Context, inv *Invocation) error {
	if s.chain != nil {
		return s.chain(ctx, inv)
	}
	return cmd.Chain(s.Handler, s.Interceptors...)(ctx, inv)
}

// CheckArgs runs the declared per-argument and command-level validators.
func (s *Spec) CheckArgs(args Args) error {
	for _, def := range s.Args {
		if def.Validate == nil || !args.Has(def.Name) {
			continue
		}
		if err := def.Validate(args[def.Name]); err != nil {
			var ae *ArgumentError
			if errors.As(err, &ae) {
				return ae
			}
			return InvalidArgument(def.Name, err.Error())
		}
	}
	if s.Validate != nil {
		return s.Validate(args)
	}
	return nil
}

// Invocation is one execution of a command by a caller.
type Invocation struct {
	ID      string
	Message *Message
	Caller  *Caller
	Spec    *Spec
	Args    Args
	Raw     []string
	Channel Channel

	// Err is set by an interceptor that handled a failure itself instead of
	// returning it.
	Err error

	replies atomic.Int32
}

// Reply sends content to the channel the command came from.
func (inv *Invocation) Reply(ctx context.Context, content string) error {
	inv.replies.Add(1)
	_, err := inv.Channel.Send(ctx, content)
	return err
}

// Replied reports whether anything was sent through Reply.
func (inv *Invocation) Replied() bool { return inv.replies.Load() > 0 }
