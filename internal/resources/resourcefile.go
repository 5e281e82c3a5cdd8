package resources

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// CurrentLibraryVersion is written into a freshly created resource file.
const CurrentLibraryVersion = 1

// resourceFile is the on-disk shape of .photos-library.db (spec §3, §6):
// a UTF-8 JSON document with recognized keys libraryVersion and, when a
// trust token has been established, trustToken.
type resourceFile struct {
	LibraryVersion int    `json:"libraryVersion"`
	TrustToken     string `json:"trustToken,omitempty"`
}

// readResourceFile loads the resource file at path. A missing file is not
// an error: the caller gets a fresh record at CurrentLibraryVersion (spec
// §6 "Absent file is not an error").
func readResourceFile(path string) (resourceFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return resourceFile{LibraryVersion: CurrentLibraryVersion}, nil
		}
		return resourceFile{}, fmt.Errorf("reading resource file: %w", err)
	}

	var rf resourceFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return resourceFile{}, fmt.Errorf("%w: %v", ErrInvalidResource, err)
	}
	return rf, nil
}

// writeResourceFile atomically rewrites the resource file at path (spec
// §3 "Written atomically on mutation").
func writeResourceFile(path string, rf resourceFile) error {
	data, err := json.MarshalIndent(rf, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding resource file: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating resource file directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-resource-*")
	if err != nil {
		return fmt.Errorf("creating temp resource file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp resource file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp resource file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming resource file into place: %w", err)
	}
	success = true
	return nil
}
