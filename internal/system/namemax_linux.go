//go:build linux

package system

import "golang.org/x/sys/unix"

// nameMax returns the maximum filename length of the filesystem at path
func nameMax(path string) uint64 {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0
	}
	return uint64(st.Namelen)
}
