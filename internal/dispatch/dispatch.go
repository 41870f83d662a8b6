// Package dispatch turns inbound chat messages into command executions. It
// owns the order of checks and guarantees that every failure ends in at most
// one sanitized reply instead of escaping to the caller.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime/debug"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/keshon/sentinel/internal/collab"
	"github.com/keshon/sentinel/internal/command"
	"github.com/keshon/sentinel/internal/cooldown"
	"github.com/keshon/sentinel/internal/permission"
	"github.com/keshon/sentinel/pkg/cmd"
	"github.com/rs/zerolog"
)

// ChatCooldownKey is the cooldown key shared by every mention and DM.
const ChatCooldownKey = "__chat__"

// Stage is the last step a message reached.
type Stage int

const (
	StageIdle Stage = iota
	StageReceived
	StageAliasResolved
	StagePermissionChecked
	StageCooldownChecked
	StageArgsParsed
	StageSchemaValidated
	StageExecuting
	StageChat
)

var stageNames = [...]string{"idle", "received", "alias-resolved", "permission-checked", "cooldown-checked", "args-parsed", "schema-validated", "executing", "chat"}

func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

type Status int

const (
	// Ignored messages were not commands; nothing was sent.
	Ignored Status = iota
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Succeeded:
		return "success"
	case Failed:
		return "failure"
	default:
		return "ignored"
	}
}

// Outcome describes how one message was handled.
type Outcome struct {
	Status  Status
	Stage   Stage
	Command string
	Err     error
}

type Options struct {
	Prefix       string
	Registry     *command.Registry
	Evaluator    *permission.Evaluator
	Cooldowns    *cooldown.Store
	Chat         collab.ChatBackend
	ChatCooldown time.Duration
	IsOwner      func(userID string) bool
	// SelfID is the bot's own user id, stripped from chat prompts.
	SelfID string
	Logger zerolog.Logger
}

type Dispatcher struct {
	opts   Options
	log    zerolog.Logger
	selfID atomic.Value // string
}

func New(opts Options) *Dispatcher {
	if opts.Prefix == "" {
		opts.Prefix = "!"
	}
	if opts.Registry == nil {
		opts.Registry = command.NewRegistry()
	}
	if opts.Evaluator == nil {
		opts.Evaluator = permission.NewEvaluator(permission.NewPolicy())
	}
	if opts.Cooldowns == nil {
		opts.Cooldowns = cooldown.New()
	}
	d := &Dispatcher{opts: opts, log: opts.Logger.With().Str("component", "dispatch").Logger()}
	d.selfID.Store(opts.SelfID)
	return d
}

func (d *Dispatcher) Prefix() string { return d.opts.Prefix }

// SetSelfID records the bot's user id once the session is ready.
func (d *Dispatcher) SetSelfID(id string) { d.selfID.Store(id) }

// HandleMessage processes one inbound message. It never panics and never
// returns an error; the outcome is informational.
func (d *Dispatcher) HandleMessage(ctx context.Context, msg *command.Message, ch command.Channel) (out Outcome) {
	out.Stage = StageReceived
	replied := false
	reply := func(ctx context.Context, text string) {
		replied = true
		if _, err := ch.Send(ctx, text); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to send reply")
		}
	}

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		err := &cmd.PanicError{Value: r, Stack: debug.Stack()}
		incident := newIncident()
		d.log.Error().Err(err).Str("incident", incident).Str("stage", out.Stage.String()).Bytes("stack", err.Stack).Msg("panic while dispatching")
		out.Status, out.Err = Failed, err
		if !replied {
			func() {
				defer func() { _ = recover() }()
				reply(ctx, FailureMessage(err, incident))
			}()
		}
	}()

	if msg == nil || msg.AuthorIsBot {
		return out
	}

	content := strings.TrimSpace(msg.Content)
	switch {
	case strings.HasPrefix(content, d.opts.Prefix):
		return d.dispatchCommand(ctx, msg, ch, strings.TrimPrefix(content, d.opts.Prefix), reply)
	case msg.IsDM() || msg.MentionsBot:
		return d.dispatchChat(ctx, msg, content, reply)
	default:
		return out
	}
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, msg *command.Message, ch command.Channel, body string, reply func(context.Context, string)) Outcome {
	out := Outcome{Stage: StageReceived}

	tokens := command.Tokenize(body)
	if len(tokens) == 0 {
		return out
	}
	spec, ok := d.opts.Registry.Resolve(tokens[0])
	if !ok {
		d.log.Debug().Str("token", tokens[0]).Msg("unknown command ignored")
		out.Err = command.ErrUnknownCommand
		return out
	}
	out.Stage, out.Command = StageAliasResolved, spec.Name

	caller := command.NewCaller(msg, d.opts.IsOwner)
	inv := &command.Invocation{
		ID:      uuid.NewString(),
		Message: msg,
		Caller:  caller,
		Spec:    spec,
		Raw:     tokens[1:],
		Channel: ch,
	}
	log := d.log.With().
		Str("invocation", inv.ID).
		Str("command", spec.Name).
		Str("guild", msg.GuildID).
		Str("user", msg.AuthorID).
		Logger()
	ctx = log.WithContext(ctx)

	fail := func(stage Stage, err error, text string) Outcome {
		log.Debug().Err(err).Str("stage", stage.String()).Msg("command rejected")
		reply(ctx, text)
		return Outcome{Status: Failed, Stage: stage, Command: spec.Name, Err: err}
	}

	decision := d.opts.Evaluator.Evaluate(caller, spec.Name, spec.Capabilities...)
	if !decision.Allowed {
		return fail(StagePermissionChecked, decision.Err(), "🚫 "+decision.Reason)
	}

	if res := d.opts.Cooldowns.CheckAndArm(caller.UserID, spec.Name, spec.Cooldown); !res.Allowed {
		err := &command.CooldownError{Command: spec.Name, Remaining: res.Remaining}
		return fail(StageCooldownChecked, err, fmt.Sprintf("⏳ Please wait %s before using `%s%s` again.", seconds(res.Remaining), d.opts.Prefix, spec.Name))
	}

	args, err := command.Parse(inv.Raw, spec.Args)
	if err != nil {
		return fail(StageArgsParsed, err, d.usageHint(spec, err))
	}
	inv.Args = args

	if err := spec.CheckArgs(args); err != nil {
		return fail(StageSchemaValidated, err, d.usageHint(spec, err))
	}

	out.Stage = StageExecuting
	start := time.Now()
	err = d.execute(ctx, spec, inv)
	log.Debug().Dur("took", time.Since(start)).Msg("command finished")

	switch {
	case err != nil:
		incident := newIncident()
		ev := log.Error()
		var pe *cmd.PanicError
		if errors.As(err, &pe) {
			ev = ev.Bytes("stack", pe.Stack)
		}
		ev.Err(err).Str("incident", incident).Bool("replied", inv.Replied()).Msg("command failed")
		if !inv.Replied() {
			reply(ctx, FailureMessage(err, incident))
		}
		out.Status, out.Err = Failed, err
	case inv.Err != nil:
		out.Status, out.Err = Failed, inv.Err
	default:
		out.Status = Succeeded
	}
	return out
}

// execute runs the composed chain and converts a panic into an error.
func (d *Dispatcher) execute(ctx context.Context, spec *command.Spec, inv *command.Invocation) error {
	return cmd.Recover[*command.Invocation]()(spec.Run)(ctx, inv)
}

func (d *Dispatcher) dispatchChat(ctx context.Context, msg *command.Message, content string, reply func(context.Context, string)) Outcome {
	out := Outcome{Stage: StageChat}
	log := d.log.With().Str("path", "chat").Str("guild", msg.GuildID).Str("user", msg.AuthorID).Logger()
	ctx = log.WithContext(ctx)

	prompt := d.stripSelfMention(content)
	if prompt == "" {
		reply(ctx, fmt.Sprintf("👋 Hi! Use `%shelp` to see what I can do.", d.opts.Prefix))
		out.Status = Succeeded
		return out
	}

	if res := d.opts.Cooldowns.CheckAndArm(msg.AuthorID, ChatCooldownKey, d.opts.ChatCooldown); !res.Allowed {
		out.Status, out.Err = Failed, &command.CooldownError{Command: ChatCooldownKey, Remaining: res.Remaining}
		reply(ctx, fmt.Sprintf("⏳ Slow down a little, try again in %s.", seconds(res.Remaining)))
		return out
	}

	var answer string
	err := collab.Guard(ctx, "chat", func(ctx context.Context) error {
		if d.opts.Chat == nil {
			return errors.New("no chat backend configured")
		}
		var cerr error
		answer, cerr = d.opts.Chat.Chat(ctx, prompt, collab.ChatContext{
			GuildID:  msg.GuildID,
			UserID:   msg.AuthorID,
			Username: msg.AuthorName,
			DM:       msg.IsDM(),
		})
		return cerr
	})
	if err != nil {
		incident := newIncident()
		log.Warn().Err(err).Str("incident", incident).Msg("chat failed")
		reply(ctx, FailureMessage(err, incident))
		out.Status, out.Err = Failed, err
		return out
	}

	reply(ctx, answer)
	out.Status = Succeeded
	return out
}

func (d *Dispatcher) stripSelfMention(content string) string {
	if id, _ := d.selfID.Load().(string); id != "" {
		content = strings.ReplaceAll(content, "<@"+id+">", "")
		content = strings.ReplaceAll(content, "<@!"+id+">", "")
	}
	return strings.TrimSpace(content)
}

func (d *Dispatcher) usageHint(spec *command.Spec, err error) string {
	var problem string
	var ae *command.ArgumentError
	switch {
	case errors.As(err, &ae) && ae.Missing:
		problem = fmt.Sprintf("Missing argument `%s`.", ae.Name)
	case errors.As(err, &ae):
		problem = fmt.Sprintf("Argument `%s` %s.", ae.Name, ae.Problem)
	default:
		problem = Sanitize(err)
	}
	return fmt.Sprintf("⚠️ %s\nUsage: `%s%s`", problem, d.opts.Prefix, spec.Usage)
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%ds", int(math.Ceil(d.Seconds())))
}

func newIncident() string {
	return uuid.NewString()[:8]
}
