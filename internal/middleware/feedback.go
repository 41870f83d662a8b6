package middleware

import (
	"context"
	"time"

	"github.com/keshon/sentinel/internal/command"
	"github.com/rs/zerolog"
)

// WithTyping shows the typing indicator while the command runs.
func WithTyping() command.Interceptor {
	return func(next command.HandlerFunc) command.HandlerFunc {
		return func(ctx context.Context, inv *command.Invocation) error {
			if err := inv.Channel.Typing(ctx); err != nil {
				zerolog.Ctx(ctx).Debug().Err(err).Msg("typing indicator failed")
			}
			return next(ctx, inv)
		}
	}
}

// WithLoadingReaction reacts to the invoking message with emoji for the
// duration of the command.
func WithLoadingReaction(emoji string) command.Interceptor {
	return func(next command.HandlerFunc) command.HandlerFunc {
		return func(ctx context.Context, inv *command.Invocation) error {
			log := zerolog.Ctx(ctx)
			if err := inv.Channel.React(ctx, inv.Message.ID, emoji); err != nil {
				log.Debug().Err(err).Msg("loading reaction failed")
				return next(ctx, inv)
			}
			defer func() {
				if err := inv.Channel.Unreact(context.WithoutCancel(ctx), inv.Message.ID, emoji); err != nil {
					log.Debug().Err(err).Msg("removing loading reaction failed")
				}
			}()
			return next(ctx, inv)
		}
	}
}

// WithCleanup deletes the invoking message after a successful run, once
// delay has passed.
func WithCleanup(delay time.Duration) command.Interceptor {
	return func(next command.HandlerFunc) command.HandlerFunc {
		return func(ctx context.Context, inv *command.Invocation) error {
			err := next(ctx, inv)
			if err != nil || inv.Err != nil {
				return err
			}
			log := zerolog.Ctx(ctx)
			del := func() {
				if derr := inv.Channel.Delete(context.WithoutCancel(ctx), inv.Message.ID); derr != nil {
					log.Debug().Err(derr).Msg("cleanup failed")
				}
			}
			if delay <= 0 {
				del()
			} else {
				time.AfterFunc(delay, del)
			}
			return nil
		}
	}
}
