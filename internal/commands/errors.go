package commands

import "errors"

var (
	errNotConfirm = errors.New("must be --confirm")
	errNoGuild    = errors.New("guild operations are not available")
	errNoService  = errors.New("not configured")
)
