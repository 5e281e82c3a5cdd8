package library

import (
	"fmt"
	"os"
	"path/filepath"

	"photomirror/internal/model"
)

// ReadAlbumKind classifies an on-disk UUID directory per spec §4.1:
// a subdirectory directly inside it makes it a folder (even if
// real files are also present — a warning is logged in that case); only
// non-safe regular files makes it archived; otherwise it's a plain album.
func (s *Store) ReadAlbumKind(uuidPath string) (model.AlbumKind, error) {
	entries, err := os.ReadDir(uuidPath)
	if err != nil {
		return model.KindAlbum, fmt.Errorf("reading album directory: %w", err)
	}

	hasSubdir := false
	hasRealFile := false
	for _, e := range entries {
		if e.IsDir() {
			hasSubdir = true
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.Mode()&os.ModeSymlink != 0 {
			continue
		}
		if !s.safe.IsSafe(e.Name()) {
			hasRealFile = true
		}
	}

	switch {
	case hasSubdir:
		if hasRealFile {
			s.logger.Warn("album directory contains both subdirectories and real files, classifying as folder", "path", uuidPath)
		}
		return model.KindFolder, nil
	case hasRealFile:
		return model.KindArchived, nil
	default:
		return model.KindAlbum, nil
	}
}

// LoadAlbums recursively walks the tree from the data directory root,
// following the dual-path scheme. Only symlinks denote named albums; the
// symlink target's basename (stripped of its leading dot) yields the
// album UUID. Recursion stops at archived albums. The stash and the
// synthetic root are never emitted (spec §4.1 load_albums).
func (s *Store) LoadAlbums() (map[string]*model.Album, error) {
	albums := make(map[string]*model.Album)
	if err := s.walkAlbums(s.dataDir, "", albums); err != nil {
		return nil, err
	}
	return albums, nil
}

func (s *Store) walkAlbums(dir, parentUUID string, out map[string]*model.Album) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if path == s.assetDir || path == s.archiveDir {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			s.logger.Warn("skipping unreadable entry", "path", path, "err", err)
			continue
		}
		if info.Mode()&os.ModeSymlink == 0 {
			continue // only symlinks represent named albums
		}

		target, err := os.Readlink(path)
		if err != nil {
			s.logger.Warn("skipping unreadable symlink", "path", path, "err", err)
			continue
		}
		uuidDirPath := filepath.Clean(filepath.Join(filepath.Dir(path), target))
		uuid := uuidFromDirName(filepath.Base(uuidDirPath))

		uuidInfo, err := os.Stat(uuidDirPath)
		if err != nil || !uuidInfo.IsDir() {
			s.logger.Warn("skipping dangling album symlink", "path", path)
			continue
		}

		kind, err := s.ReadAlbumKind(uuidDirPath)
		if err != nil {
			s.logger.Warn("skipping unreadable album directory", "path", uuidDirPath, "err", err)
			continue
		}

		album := &model.Album{
			UUID:        uuid,
			Kind:        kind,
			DisplayName: entry.Name(),
			ParentUUID:  parentUUID,
		}

		switch kind {
		case model.KindFolder:
			out[uuid] = album
			if err := s.walkAlbums(uuidDirPath, uuid, out); err != nil {
				return err
			}
		case model.KindAlbum:
			assets, err := s.readAlbumAssetLinks(uuidDirPath)
			if err != nil {
				return err
			}
			album.Assets = assets
			out[uuid] = album
		case model.KindArchived:
			out[uuid] = album
			// recursion stops here: archived contents are opaque
		}
	}
	return nil
}

// readAlbumAssetLinks enumerates the symlinks inside an album's UUID
// directory into the asset_uuid -> linked_filename mapping.
func (s *Store) readAlbumAssetLinks(uuidPath string) (map[string]string, error) {
	entries, err := os.ReadDir(uuidPath)
	if err != nil {
		return nil, fmt.Errorf("reading album assets: %w", err)
	}

	assets := make(map[string]string)
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil || info.Mode()&os.ModeSymlink == 0 {
			continue
		}
		target, err := os.Readlink(filepath.Join(uuidPath, entry.Name()))
		if err != nil {
			s.logger.Warn("skipping unreadable asset link", "path", entry.Name(), "err", err)
			continue
		}
		targetBase := filepath.Base(target)
		uuid, _, ok := splitAssetFileName(targetBase)
		if !ok {
			s.logger.Warn("skipping asset link with unrecognized target", "path", entry.Name())
			continue
		}
		assets[uuid] = entry.Name()
	}
	return assets, nil
}

// WriteAlbum creates the dual-path pair for album and, for kind=album,
// links its asset members. Fails with ErrAlreadyExists if either path
// already exists (spec §4.1 write_album).
func (s *Store) WriteAlbum(album *model.Album, assets map[string]*model.Asset) error {
	namePath, uuidPath, err := s.findAlbumPaths(album)
	if err != nil {
		return err
	}

	if _, err := os.Lstat(namePath); err == nil {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, namePath)
	}
	if _, err := os.Lstat(uuidPath); err == nil {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, uuidPath)
	}

	if err := os.MkdirAll(uuidPath, 0755); err != nil {
		return fmt.Errorf("creating album directory: %w", err)
	}

	target, err := relativeSymlinkTarget(namePath, uuidPath)
	if err != nil {
		return err
	}
	if err := os.Symlink(target, namePath); err != nil {
		return fmt.Errorf("creating name symlink: %w", err)
	}

	if album.Kind == model.KindAlbum {
		if err := s.LinkAlbumAssets(album, uuidPath, assets); err != nil {
			return err
		}
	}
	return nil
}

// LinkAlbumAssets creates, inside uuidPath, one relative symlink per
// (asset_uuid -> linked_filename) entry in album.Assets, pointing at the
// asset's file in the asset directory, and sets each symlink's own mtime
// to the asset's mtime. Per-link failures are logged and skipped so the
// album write as a whole isn't aborted, and so re-running tolerates
// pre-existing links (spec §4.1 link_album_assets).
func (s *Store) LinkAlbumAssets(album *model.Album, uuidPath string, assets map[string]*model.Asset) error {
	for assetUUID, linkedName := range album.Assets {
		asset, ok := assets[assetUUID]
		if !ok {
			s.logger.Warn("skipping album link for unknown asset", "album", album.UUID, "asset", assetUUID)
			continue
		}

		linkPath := filepath.Join(uuidPath, linkedName)
		if _, err := os.Lstat(linkPath); err == nil {
			continue // tolerate pre-existing link on re-run
		}

		target, err := relativeSymlinkTarget(linkPath, s.assetPath(asset))
		if err != nil {
			s.logger.Warn("skipping album link, cannot compute target", "album", album.UUID, "asset", assetUUID, "err", err)
			continue
		}
		if err := os.Symlink(target, linkPath); err != nil {
			s.logger.Warn("skipping album link, symlink failed", "album", album.UUID, "asset", assetUUID, "err", err)
			continue
		}
		if err := setSymlinkMtime(linkPath, asset.ModifiedTime); err != nil {
			s.logger.Warn("could not set asset link mtime", "album", album.UUID, "asset", assetUUID, "err", err)
		}
	}
	return nil
}

// RenameAlbum handles the same-UUID case of a remote rename/re-parent: it
// performs an in-place symlink swap (and, when the parent changed, an
// atomic directory move) rather than deleting and rebuilding the album
// directory. oldAlbum and newAlbum must share a UUID; this is the explicit
// swap the spec promotes over an implicit remove-then-add pair (spec §9
// open question, §8 scenario 2).
func (s *Store) RenameAlbum(oldAlbum, newAlbum *model.Album) error {
	if oldAlbum.UUID != newAlbum.UUID {
		return fmt.Errorf("library: RenameAlbum requires matching UUIDs, got %s and %s", oldAlbum.UUID, newAlbum.UUID)
	}

	oldNamePath, oldUUIDPath, err := s.findAlbumPaths(oldAlbum)
	if err != nil {
		return err
	}
	newNamePath, newUUIDPath, err := s.findAlbumPaths(newAlbum)
	if err != nil {
		return err
	}

	if oldUUIDPath == newUUIDPath {
		if oldNamePath == newNamePath {
			return nil // nothing changed
		}
		if err := os.Remove(oldNamePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing old name symlink: %w", err)
		}
		target, err := relativeSymlinkTarget(newNamePath, newUUIDPath)
		if err != nil {
			return err
		}
		if err := os.Symlink(target, newNamePath); err != nil {
			return fmt.Errorf("creating renamed name symlink: %w", err)
		}
		return nil
	}

	return movePathTuple(oldNamePath, oldUUIDPath, newNamePath, newUUIDPath)
}

// DeleteAlbum removes the dual-path pair. Fails if either path is
// missing. Before deletion, every remaining entry in the UUID directory
// must be a symlink or a safe file; any real file or subdirectory aborts
// with ErrNotEmpty, since the user has put content there and the caller
// should archive instead of delete (spec §4.1 delete_album).
func (s *Store) DeleteAlbum(album *model.Album) error {
	namePath, uuidPath, err := s.findAlbumPaths(album)
	if err != nil {
		return err
	}
	if _, err := os.Lstat(namePath); err != nil {
		return fmt.Errorf("%w: %s", ErrMoveSourceMissing, namePath)
	}
	if _, err := os.Lstat(uuidPath); err != nil {
		return fmt.Errorf("%w: %s", ErrMoveSourceMissing, uuidPath)
	}

	entries, err := os.ReadDir(uuidPath)
	if err != nil {
		return fmt.Errorf("reading album directory: %w", err)
	}
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			return fmt.Errorf("stat album entry: %w", err)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			continue
		}
		if e.IsDir() || !s.safe.IsSafe(e.Name()) {
			return fmt.Errorf("%w: %s", ErrNotEmpty, uuidPath)
		}
	}

	if err := os.RemoveAll(uuidPath); err != nil {
		return fmt.Errorf("removing album directory: %w", err)
	}
	if err := os.Remove(namePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing album symlink: %w", err)
	}
	return nil
}
