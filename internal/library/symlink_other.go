//go:build !unix

package library

import (
	"os"
	"time"
)

// setSymlinkMtime falls back to os.Chtimes on non-POSIX builds. The spec
// requires POSIX symlinks and leaves behavior undefined where they aren't
// supported; this keeps the package buildable there without claiming the
// same precision.
func setSymlinkMtime(path string, mtime time.Time) error {
	return os.Chtimes(path, mtime, mtime)
}
