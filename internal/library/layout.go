package library

import (
	"fmt"
	"os"
)

// EnsureLayout creates the fixed top-level subdirectories of the managed
// tree if they do not already exist: the asset directory, the archive
// directory, and the stash staging directory beneath it.
func (s *Store) EnsureLayout() error {
	for _, dir := range []string{s.dataDir, s.assetDir, s.archiveDir, s.stashDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}
