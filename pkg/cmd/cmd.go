// Package cmd provides a transport-agnostic execution core: a handler is a
// function of a context and an invocation payload, and middleware wraps
// handlers to add cross-cutting behaviour. Adapters (chat, CLI, HTTP) choose
// the payload type.
package cmd

import "context"

// Handler executes one invocation of type T.
type Handler[T any] func(ctx context.Context, in T) error

// Middleware wraps a handler (logging, recovery, metrics). It may run logic
// before and after calling next, or not call next at all.
type Middleware[T any] func(next Handler[T]) Handler[T]
