package library

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"photomirror/internal/model"
)

// LoadAssets enumerates the asset directory. Each regular file is parsed
// into (uuid, ext); a file that doesn't fit the naming convention is
// logged and skipped rather than aborting the whole enumeration. The
// result is authoritative for "what is on disk" (spec §4.1 load_assets).
func (s *Store) LoadAssets() (map[string]*model.Asset, error) {
	entries, err := os.ReadDir(s.assetDir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*model.Asset{}, nil
		}
		return nil, fmt.Errorf("reading asset directory: %w", err)
	}

	assets := make(map[string]*model.Asset, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			s.logger.Warn("skipping unreadable asset entry", "name", entry.Name(), "err", err)
			continue
		}
		if info.Mode()&os.ModeSymlink != 0 || !info.Mode().IsRegular() {
			s.logger.Warn("skipping non-regular asset entry", "name", entry.Name())
			continue
		}

		uuid, ext, ok := splitAssetFileName(entry.Name())
		if !ok {
			s.logger.Warn("skipping asset file with unrecognized name", "name", entry.Name())
			continue
		}

		assets[uuid] = &model.Asset{
			UUID:         uuid,
			Extension:    ext,
			SizeBytes:    info.Size(),
			ModifiedTime: info.ModTime().UTC(),
		}
	}
	return assets, nil
}

// splitAssetFileName splits "<uuid>.<ext>" into its parts. A name with no
// extension yields ok=false: asset files are always stored with one.
func splitAssetFileName(name string) (uuid, ext string, ok bool) {
	idx := strings.LastIndex(name, ".")
	if idx <= 0 || idx == len(name)-1 {
		return "", "", false
	}
	return name[:idx], name[idx+1:], true
}

// assetPath returns the on-disk path for an asset.
func (s *Store) assetPath(asset *model.Asset) string {
	return filepath.Join(s.assetDir, asset.FileName())
}

// WriteAsset streams r to the asset directory, verifies the write, and on
// success sets the file's modification time to asset.ModifiedTime (spec
// §4.1 write_asset). Returns ErrVerificationFailed if the post-write
// verification fails; the caller decides whether to retry.
func (s *Store) WriteAsset(asset *model.Asset, r io.Reader) error {
	destPath := s.assetPath(asset)
	if err := s.atomicWrite(destPath, r, asset.SizeBytes); err != nil {
		return fmt.Errorf("writing asset %s: %w", asset.UUID, err)
	}

	ok, err := s.VerifyAsset(asset)
	if err != nil {
		return fmt.Errorf("verifying asset %s: %w", asset.UUID, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrVerificationFailed, asset.UUID)
	}

	mtime := asset.ModifiedTime
	if mtime.IsZero() {
		mtime = s.clock.Now()
	}
	if err := os.Chtimes(destPath, mtime, mtime); err != nil {
		return fmt.Errorf("setting asset mtime %s: %w", asset.UUID, err)
	}
	return nil
}

// atomicWrite writes r to destPath via a temp file in the same directory
// followed by a rename, so a reader never observes a partial file (spec §7
// "partial files from an interrupted write are acceptable only if
// verification catches them").
func (s *Store) atomicWrite(destPath string, r io.Reader, expectedSize int64) error {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("writing data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if expectedSize > 0 && written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("renaming into place: %w", err)
	}
	success = true
	return nil
}

// VerifyAsset reports whether the on-disk file for asset exists, matches
// asset.SizeBytes, and — when asset.ContentHash is set — matches its
// SHA-256 content hash. Size mismatches and truncations are rejected
// (spec §4.1 verify_asset).
func (s *Store) VerifyAsset(asset *model.Asset) (bool, error) {
	path := s.assetPath(asset)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("opening asset for verification: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false, fmt.Errorf("stat asset for verification: %w", err)
	}
	if info.Size() != asset.SizeBytes {
		return false, nil
	}

	if asset.ContentHash == "" {
		return true, nil
	}

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return false, fmt.Errorf("hashing asset for verification: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)) == asset.ContentHash, nil
}

// DeleteAsset idempotently removes the asset file. It never touches any
// symlink pointing at it (spec §4.1 delete_asset).
func (s *Store) DeleteAsset(asset *model.Asset) error {
	if err := os.Remove(s.assetPath(asset)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting asset %s: %w", asset.UUID, err)
	}
	return nil
}
