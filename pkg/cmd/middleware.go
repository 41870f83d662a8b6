package cmd

// Chain composes mws around h. The first middleware in the list is the
// outermost: it runs first and sees the result of everything after it.
// Nil entries are skipped.
func Chain[T any](h Handler[T], mws ...Middleware[T]) Handler[T] {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] == nil {
			continue
		}
		h = mws[i](h)
	}
	return h
}
