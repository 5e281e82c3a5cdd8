package library

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"

	"photomirror/internal/model"
)

var unsafeFileChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// SanitizeName makes a remote display name safe to use as a single path
// segment: invalid characters are replaced, trailing dots/spaces trimmed,
// and repeated whitespace collapsed, mirroring the kind of sanitization
// every cross-platform file-naming layer in the corpus performs.
func SanitizeName(name string) string {
	cleaned := unsafeFileChars.ReplaceAllString(name, "_")
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	cleaned = strings.TrimRight(cleaned, " .")
	if cleaned == "" {
		cleaned = "untitled"
	}
	return cleaned
}

// uuidDirName returns the hidden UUID directory name for an album UUID.
func uuidDirName(uuid string) string {
	return "." + uuid
}

// uuidFromDirName strips the leading dot from a UUID directory basename.
func uuidFromDirName(name string) string {
	return strings.TrimPrefix(name, ".")
}

// resolveParentDir finds the directory a child album with the given parent
// UUID must live in. An empty parentUUID means the data directory root.
func (s *Store) resolveParentDir(parentUUID string) (string, error) {
	if parentUUID == "" {
		return s.dataDir, nil
	}

	target := uuidDirName(parentUUID)
	var matches []string

	err := filepath.WalkDir(s.dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path == s.assetDir {
			return filepath.SkipDir
		}
		if d.Name() == target {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("searching for parent %s: %w", parentUUID, err)
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrParentNotFound, parentUUID)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousTree, parentUUID)
	}
}

// findAlbumPaths resolves the unjoined (name_path, uuid_path) pair for an
// album rooted at its parent directory (spec §4.1 find_album_paths).
func (s *Store) findAlbumPaths(album *model.Album) (namePath, uuidPath string, err error) {
	parentDir, err := s.resolveParentDir(album.ParentUUID)
	if err != nil {
		return "", "", err
	}
	namePath = filepath.Join(parentDir, SanitizeName(album.DisplayName))
	uuidPath = filepath.Join(parentDir, uuidDirName(album.UUID))
	return namePath, uuidPath, nil
}

// relativeSymlinkTarget computes the target a symlink at linkPath should
// use to point at destPath, expressed relative to linkPath's own
// directory — required so the tree survives being moved (spec §6, §9).
func relativeSymlinkTarget(linkPath, destPath string) (string, error) {
	rel, err := filepath.Rel(filepath.Dir(linkPath), destPath)
	if err != nil {
		return "", fmt.Errorf("computing relative symlink target: %w", err)
	}
	return rel, nil
}
