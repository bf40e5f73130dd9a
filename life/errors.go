package life

import "errors"

var (
	ErrScale = errors.New(`invalid scale`)
	ErrFile  = errors.New(`pattern file unavailable`)
)
