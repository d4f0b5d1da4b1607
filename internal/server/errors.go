package server

import "errors"

var (
	ErrServer    = errors.New("server error")
	ErrHandshake = errors.New("handshake failed")
	ErrPeerGone  = errors.New("client disconnected")
)
