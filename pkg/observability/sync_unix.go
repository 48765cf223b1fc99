//go:build !windows

package observability

import (
	"errors"

	"golang.org/x/sys/unix"
)

func isIgnorableSyncError(err error) bool {
	return errors.Is(err, unix.EINVAL) || errors.Is(err, unix.ENOTTY)
}
