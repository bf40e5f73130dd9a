package kms

import "errors"

// Errors reported by the mode-setting layer. Syscall failures are joined
// onto one of these so callers can match the failing stage with errors.Is.
var (
	ErrDevice   = errors.New(`drm device unavailable`)
	ErrMaster   = errors.New(`drm master unavailable`)
	ErrAlloc    = errors.New(`dumb buffer allocation failed`)
	ErrMap      = errors.New(`buffer mapping failed`)
	ErrDisplay  = errors.New(`display programming failed`)
	ErrNoOutput = errors.New(`no connected output`)
)
