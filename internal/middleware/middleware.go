// Package middleware provides the interceptors wrapped around command
// handlers. Each one is stateless; per-invocation state lives on the
// command.Invocation.
package middleware

import (
	"context"
	"time"

	"github.com/keshon/sentinel/internal/command"
	"github.com/keshon/sentinel/internal/dispatch"
	"github.com/keshon/sentinel/internal/history"
	"github.com/keshon/sentinel/pkg/cmd"
	"github.com/rs/zerolog"
)

// WithLogging logs every execution with its duration and result.
func WithLogging() command.Interceptor {
	return func(next command.HandlerFunc) command.HandlerFunc {
		return func(ctx context.Context, inv *command.Invocation) error {
			log := zerolog.Ctx(ctx)
			start := time.Now()
			err := next(ctx, inv)

			ev := log.Info()
			if err != nil || inv.Err != nil {
				ev = log.Warn().AnErr("contained", inv.Err).Err(err)
			}
			ev.Str("user", inv.Caller.Username).
				Strs("args", inv.Raw).
				Dur("took", time.Since(start)).
				Msg("command executed")
			return err
		}
	}
}

// WithTiming warns when a command runs longer than slow.
func WithTiming(slow time.Duration) command.Interceptor {
	return func(next command.HandlerFunc) command.HandlerFunc {
		return func(ctx context.Context, inv *command.Invocation) error {
			start := time.Now()
			defer func() {
				if took := time.Since(start); took > slow {
					zerolog.Ctx(ctx).Warn().Dur("took", took).Dur("threshold", slow).Msg("slow command")
				}
			}()
			return next(ctx, inv)
		}
	}
}

// WithGuildOnly silently skips the command outside guilds.
func WithGuildOnly() command.Interceptor {
	return func(next command.HandlerFunc) command.HandlerFunc {
		return func(ctx context.Context, inv *command.Invocation) error {
			if inv.Message.IsDM() {
				return inv.Reply(ctx, "This command only works in a server.")
			}
			return next(ctx, inv)
		}
	}
}

// WithHistory records each execution in the guild's recent command log.
func WithHistory(store *history.Store) command.Interceptor {
	return func(next command.HandlerFunc) command.HandlerFunc {
		return func(ctx context.Context, inv *command.Invocation) error {
			err := next(ctx, inv)
			if inv.Message.GuildID != "" {
				store.Add(inv.Message.GuildID, history.Record{
					ChannelID: inv.Message.ChannelID,
					UserID:    inv.Caller.UserID,
					Username:  inv.Caller.Username,
					Command:   inv.Spec.Name,
					Datetime:  time.Now(),
					Failed:    err != nil || inv.Err != nil,
				})
			}
			return err
		}
	}
}

// WithErrorContainment replies with a sanitized failure message, unless the
// handler already replied, and stops the error from propagating. The error is kept on inv.Err.
func WithErrorContainment() command.Interceptor {
	return func(next command.HandlerFunc) command.HandlerFunc {
		next = cmd.Recover[*command.Invocation]()(next)
		return func(ctx context.Context, inv *command.Invocation) (err error) {
			defer func() {
				if err == nil {
					return
				}
				incident := inv.ID
				if len(incident) > 8 {
					incident = incident[:8]
				}
				zerolog.Ctx(ctx).Error().Err(err).Str("incident", incident).Bool("replied", inv.Replied()).Msg("command failed")
				inv.Err = err
				err = nil
				if inv.Replied() {
					return
				}
				if rerr := inv.Reply(ctx, dispatch.FailureMessage(inv.Err, incident)); rerr != nil {
					zerolog.Ctx(ctx).Warn().Err(rerr).Msg("failed to send failure reply")
				}
			}()
			return next(ctx, inv)
		}
	}
}
