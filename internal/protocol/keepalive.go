package protocol

import (
	"strconv"
	"time"

	"github.com/containerd/errdefs"
	"github.com/pkg/errors"
)

// Keep-alive value meaning the server never exits for being idle.
const InfiniteKeepAlive time.Duration = -1

// Parses a keep-alive suggestion expressed in whole seconds.
//
// An empty string means no suggestion and returns ok == false. The value
// must fit in a 32-bit integer; -1 selects [InfiniteKeepAlive] and anything
// below -1 is rejected. Errors are classified as invalid arguments.
func ParseKeepAlive(s string) (d time.Duration, ok bool, err error) {
	if s == "" {
		return 0, false, nil
	}

	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, false, errors.Wrapf(errdefs.ErrInvalidArgument, "keep-alive %q is not a 32-bit integer", s)
	}

	switch {
	case n < -1:
		return 0, false, errors.Wrapf(errdefs.ErrInvalidArgument, "keep-alive %d is below -1", n)
	case n == -1:
		return InfiniteKeepAlive, true, nil
	default:
		return time.Duration(n) * time.Second, true, nil
	}
}

// Whether keep-alive a is strictly longer than b.
//
// [InfiniteKeepAlive] is longer than every finite value and not longer than
// itself.
func LongerKeepAlive(a, b time.Duration) bool {
	switch {
	case b == InfiniteKeepAlive:
		return false
	case a == InfiniteKeepAlive:
		return true
	default:
		return a > b
	}
}

// Formats a keep-alive for logs.
func FormatKeepAlive(d time.Duration) string {
	if d == InfiniteKeepAlive {
		return "infinite"
	}
	return d.String()
}
