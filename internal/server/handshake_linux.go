//go:build linux

package server

import (
	"net"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Compares the peer's credentials with the server's user.
func checkPeer(conn *net.UnixConn) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return errors.Wrap(ErrHandshake, err.Error())
	}

	var cred *unix.Ucred
	var credErr error
	if err := raw.Control(func(fd uintptr) {
		cred, credErr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	}); err != nil {
		return errors.Wrap(ErrHandshake, err.Error())
	}
	if credErr != nil {
		return errors.Wrapf(ErrHandshake, "read peer credentials: %v", credErr)
	}

	if uid := os.Getuid(); int(cred.Uid) != uid {
		return errors.Wrapf(ErrHandshake, "peer uid %d (pid %d) does not match server uid %d", cred.Uid, cred.Pid, uid)
	}
	return nil
}
