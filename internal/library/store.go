// Package library implements the Local Library Store: the sole mutator of
// the on-disk dual-path album tree and the flat, content-addressed asset
// directory (spec §3, §4.1).
package library

import (
	"path/filepath"
	"time"

	"photomirror/internal/logging"
)

const (
	// AssetDirName is the flat, content-addressed asset directory.
	AssetDirName = "_All-Photos"
	// ArchiveDirName holds orphaned archived albums and the stash.
	ArchiveDirName = "_Archive"
	// StashDirName is the staging area for archived albums mid-stash, a
	// child of ArchiveDirName.
	StashDirName = "_Stash"
	// ResourceFileName is the JSON resource file at the data dir root.
	ResourceFileName = ".photos-library.db"
)

// Clock abstracts time retrieval so writes are deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Store is the filesystem-backed Local Library Store rooted at a data
// directory. All path arithmetic for the dual-path scheme lives here; no
// other package touches the on-disk tree directly.
type Store struct {
	dataDir    string
	assetDir   string
	archiveDir string
	stashDir   string
	logger     logging.Logger
	clock      Clock
	safe       *SafeNameSet
}

// Option configures a Store at construction.
type Option func(*Store)

// WithLogger overrides the default NopLogger.
func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides the default RealClock.
func WithClock(c Clock) Option {
	return func(s *Store) { s.clock = c }
}

// NewStore creates a Store rooted at dataDir. It does not touch disk; call
// EnsureLayout to create the fixed subdirectories.
func NewStore(dataDir string, opts ...Option) *Store {
	s := &Store{
		dataDir:    dataDir,
		assetDir:   filepath.Join(dataDir, AssetDirName),
		archiveDir: filepath.Join(dataDir, ArchiveDirName),
		stashDir:   filepath.Join(dataDir, ArchiveDirName, StashDirName),
		logger:     logging.NewNopLogger(),
		clock:      RealClock{},
		safe:       DefaultSafeNames(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DataDir returns the root of the managed tree.
func (s *Store) DataDir() string { return s.dataDir }

// AssetDir returns the flat content-addressed asset directory.
func (s *Store) AssetDir() string { return s.assetDir }

// ArchiveDir returns the archive directory.
func (s *Store) ArchiveDir() string { return s.archiveDir }

// StashDir returns the stash staging directory under the archive directory.
func (s *Store) StashDir() string { return s.stashDir }
