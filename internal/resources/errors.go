package resources

import "errors"

// Configuration-kind errors (spec §7). Fatal: the caller must not proceed.
var (
	ErrNotInitiated      = errors.New("resources: setup has not been called")
	ErrAlreadyInitiated  = errors.New("resources: setup already called")
	ErrInvalidResource   = errors.New("resources: invalid resource file")
	ErrNoPrimaryZone     = errors.New("resources: no primary zone available")
)
