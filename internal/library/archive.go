package library

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"photomirror/internal/model"
)

// findNameSymlinkFor scans dir for the symlink whose target basename is
// the UUID directory name for uuid, returning its full path.
func findNameSymlinkFor(dir, uuid string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading directory %s: %w", dir, err)
	}
	want := uuidDirName(uuid)
	for _, e := range entries {
		info, err := e.Info()
		if err != nil || info.Mode()&os.ModeSymlink == 0 {
			continue
		}
		path := filepath.Join(dir, e.Name())
		target, err := os.Readlink(path)
		if err != nil {
			continue
		}
		if filepath.Base(target) == want {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: name symlink for %s in %s", ErrMoveSourceMissing, uuid, dir)
}

// movePathTuple moves a dual-path pair from (srcNamePath, srcUUIDPath) to
// (dstNamePath, dstUUIDPath). The UUID directory is renamed first, then
// the source symlink is unlinked, then a fresh relative symlink is
// created at the destination — the symlink is recreated, not moved,
// because its relative target basename changes with the parent (spec
// §4.1 move_path_tuple).
func movePathTuple(srcNamePath, srcUUIDPath, dstNamePath, dstUUIDPath string) error {
	if _, err := os.Lstat(srcUUIDPath); err != nil {
		return fmt.Errorf("%w: %s", ErrMoveSourceMissing, srcUUIDPath)
	}
	if _, err := os.Lstat(srcNamePath); err != nil {
		return fmt.Errorf("%w: %s", ErrMoveSourceMissing, srcNamePath)
	}
	if _, err := os.Lstat(dstUUIDPath); err == nil {
		return fmt.Errorf("%w: %s", ErrMoveDestinationExist, dstUUIDPath)
	}
	if _, err := os.Lstat(dstNamePath); err == nil {
		return fmt.Errorf("%w: %s", ErrMoveDestinationExist, dstNamePath)
	}

	if err := os.MkdirAll(filepath.Dir(dstUUIDPath), 0755); err != nil {
		return fmt.Errorf("creating destination parent: %w", err)
	}
	if err := os.Rename(srcUUIDPath, dstUUIDPath); err != nil {
		return fmt.Errorf("renaming album directory: %w", err)
	}
	if err := os.Remove(srcNamePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing source name symlink: %w", err)
	}

	target, err := relativeSymlinkTarget(dstNamePath, dstUUIDPath)
	if err != nil {
		return err
	}
	if err := os.Symlink(target, dstNamePath); err != nil {
		return fmt.Errorf("creating destination name symlink: %w", err)
	}
	return nil
}

// StashArchivedAlbum moves an archived album's dual-path pair into the
// stash staging directory, preserving it when its remote counterpart has
// disappeared (spec §4.1 stash_archived_album).
func (s *Store) StashArchivedAlbum(album *model.Album) error {
	srcNamePath, srcUUIDPath, err := s.findAlbumPaths(album)
	if err != nil {
		return err
	}
	dstUUIDPath := filepath.Join(s.stashDir, uuidDirName(album.UUID))
	dstNamePath := filepath.Join(s.stashDir, SanitizeName(album.DisplayName))
	return movePathTuple(srcNamePath, srcUUIDPath, dstNamePath, dstUUIDPath)
}

// RetrieveStashedAlbum moves an album back out of the stash to its
// current computed parent path, for when a matching remote album
// reappears within the same run (spec §4.1 retrieve_stashed_album).
func (s *Store) RetrieveStashedAlbum(album *model.Album) error {
	srcUUIDPath := filepath.Join(s.stashDir, uuidDirName(album.UUID))
	srcNamePath, err := findNameSymlinkFor(s.stashDir, album.UUID)
	if err != nil {
		return err
	}
	dstNamePath, dstUUIDPath, err := s.findAlbumPaths(album)
	if err != nil {
		return err
	}
	return movePathTuple(srcNamePath, srcUUIDPath, dstNamePath, dstUUIDPath)
}

// LoadStashedAlbums enumerates the albums currently parked in the stash
// staging directory, keyed by UUID. Unlike LoadAlbums (which skips the
// archive directory entirely), this is the query that lets a caller learn
// a UUID is sitting in the stash before a matching remote album reappears
// (spec §4.1 retrieve_stashed_album, §8 scenario 6).
func (s *Store) LoadStashedAlbums() (map[string]*model.Album, error) {
	entries, err := os.ReadDir(s.stashDir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*model.Album{}, nil
		}
		return nil, fmt.Errorf("reading stash directory: %w", err)
	}

	albums := make(map[string]*model.Album)
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			s.logger.Warn("skipping unreadable stash entry", "name", e.Name(), "err", err)
			continue
		}
		if info.Mode()&os.ModeSymlink != 0 || !strings.HasPrefix(e.Name(), ".") {
			continue // only hidden UUID directories identify a stashed album
		}

		uuid := uuidFromDirName(e.Name())
		namePath, err := findNameSymlinkFor(s.stashDir, uuid)
		if err != nil {
			s.logger.Warn("skipping stash entry with no name symlink", "uuid", uuid, "err", err)
			continue
		}
		albums[uuid] = &model.Album{
			UUID:        uuid,
			Kind:        model.KindArchived,
			DisplayName: filepath.Base(namePath),
		}
	}
	return albums, nil
}

// CleanArchivedOrphans promotes every album remaining under the stash at
// the end of a run into the archive directory, under a collision-avoiding
// name, and unlinks its stash name symlink. This flattens the stash
// (whose purpose is transient) into permanent archived entries (spec
// §4.1 clean_archived_orphans).
func (s *Store) CleanArchivedOrphans() error {
	entries, err := os.ReadDir(s.stashDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading stash directory: %w", err)
	}

	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			if os.IsNotExist(err) {
				continue // a name symlink already unlinked by an earlier promotion
			}
			return fmt.Errorf("stat stash entry: %w", err)
		}
		if info.Mode()&os.ModeSymlink != 0 || !strings.HasPrefix(e.Name(), ".") {
			continue // only hidden UUID directories are promoted
		}

		uuidPath := filepath.Join(s.stashDir, e.Name())
		uuid := uuidFromDirName(e.Name())

		namePath, err := findNameSymlinkFor(s.stashDir, uuid)
		if err != nil {
			return err
		}
		base := filepath.Base(namePath)

		dest, err := s.uniqueArchiveName(base)
		if err != nil {
			return err
		}

		if err := os.Rename(uuidPath, dest); err != nil {
			return fmt.Errorf("promoting orphan %s: %w", uuid, err)
		}
		if err := os.Remove(namePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("unlinking stash symlink for %s: %w", uuid, err)
		}
	}
	return nil
}

// uniqueArchiveName finds a collision-free destination under the archive
// directory for base, trying "<base>", "<base>-1", "<base>-2", ... This
// loop is unbounded in form but provably terminates: the local filesystem
// namespace under the archive directory is finite, and each iteration
// consumes a new, previously unused candidate name (spec §9 open question).
func (s *Store) uniqueArchiveName(base string) (string, error) {
	candidate := filepath.Join(s.archiveDir, base)
	for i := 1; ; i++ {
		if _, err := os.Lstat(candidate); os.IsNotExist(err) {
			return candidate, nil
		} else if err != nil {
			return "", fmt.Errorf("checking archive destination: %w", err)
		}
		candidate = filepath.Join(s.archiveDir, fmt.Sprintf("%s-%d", base, i))
	}
}
