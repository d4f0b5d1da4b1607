package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrProtocol        = errors.New("protocol error")
	ErrMalformed       = errors.New("malformed message")
	ErrMessageTooLarge = fmt.Errorf("%w: message too large", ErrMalformed)
	ErrUnknownCommand  = errors.New("unknown command")
)
