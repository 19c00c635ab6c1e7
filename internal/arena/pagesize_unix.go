//go:build linux || darwin

package arena

import "golang.org/x/sys/unix"

// defaultPageSize mirrors the host OS's VM page size, so that arena
// pages line up with the granularity the Go runtime already allocates
// memory in, avoiding a wasted partial page at the tail of every
// page's backing allocation.
func defaultPageSize() int {
	if n := unix.Getpagesize(); n > 0 {
		return n
	}
	return fallbackPageSize
}
