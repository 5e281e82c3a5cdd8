//go:build unix

package library

import (
	"time"

	"golang.org/x/sys/unix"
)

// setSymlinkMtime sets a symlink's own modification time without
// dereferencing it, using lutimes semantics. Plain os.Chtimes follows the
// link target, which is wrong here: album→asset symlinks need their own
// mtime set to the target asset's mtime (spec §3 "Asset linkage in
// albums").
func setSymlinkMtime(path string, mtime time.Time) error {
	ts := []unix.Timeval{
		unix.NsecToTimeval(mtime.UnixNano()),
		unix.NsecToTimeval(mtime.UnixNano()),
	}
	return unix.Lutimes(path, ts)
}
