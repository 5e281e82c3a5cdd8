package library

import "errors"

// Library store errors (spec §7), operation-local: surfaced to the
// caller. The sync engine aborts a run on ErrAmbiguousTree and
// ErrNotEmpty and continues past the others.
var (
	ErrAlreadyExists        = errors.New("library: path already exists")
	ErrNotEmpty             = errors.New("library: directory not empty of safe content")
	ErrParentNotFound       = errors.New("library: parent album not found")
	ErrAmbiguousTree        = errors.New("library: ambiguous parent, multiple matches")
	ErrMoveSourceMissing    = errors.New("library: move source missing")
	ErrMoveDestinationExist = errors.New("library: move destination already present")
	ErrVerificationFailed   = errors.New("library: asset verification failed")
)
