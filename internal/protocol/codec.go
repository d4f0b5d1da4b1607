package protocol

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// Upper bound on a single encoded message, newline included.
const MaxMessageSize = 16 << 20

// Wire envelope wrapping every message.
type Envelope struct {
	Command Command         `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Writes one newline-terminated envelope to w.
func WriteMessage(w io.Writer, cmd Command, payload any) error {
	env := Envelope{Command: cmd}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrapf(ErrProtocol, "encode %s payload: %v", cmd, err)
		}
		env.Payload = raw
	}

	data, err := json.Marshal(env)
	if err != nil {
		return errors.Wrapf(ErrProtocol, "encode %s envelope: %v", cmd, err)
	}
	data = append(data, '\n')

	if _, err := w.Write(data); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// Reads one newline-terminated envelope from r.
//
// I/O errors (including [io.EOF] before any byte arrives) are returned as
// is, wrapped with a stack. Syntax errors wrap [ErrMalformed].
func ReadMessage(r *bufio.Reader) (*Envelope, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}

	var env Envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return nil, errors.Wrap(ErrMalformed, err.Error())
	}
	if env.Command == "" {
		return nil, errors.Wrap(ErrMalformed, "missing command")
	}
	return &env, nil
}

// Reads bytes up to and including the next newline, bounded by [MaxMessageSize].
func readLine(r *bufio.Reader) ([]byte, error) {
	var buf bytes.Buffer
	for {
		chunk, err := r.ReadSlice('\n')
		buf.Write(chunk)
		if buf.Len() > MaxMessageSize {
			return nil, errors.WithStack(ErrMessageTooLarge)
		}
		switch {
		case err == nil:
			return bytes.TrimRight(buf.Bytes(), "\r\n"), nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF) && buf.Len() > 0:
			return nil, errors.WithStack(io.ErrUnexpectedEOF)
		default:
			return nil, errors.WithStack(err)
		}
	}
}

// Decodes a client request envelope.
//
// Returns the command and, for [CmdBuild], the decoded request. Unknown
// commands and undecodable payloads wrap [ErrMalformed].
func DecodeRequest(env *Envelope) (Command, *BuildRequest, error) {
	switch env.Command {
	case CmdBuild:
		var req BuildRequest
		if err := unmarshalPayload(env, &req); err != nil {
			return "", nil, err
		}
		return CmdBuild, &req, nil
	case CmdShutdown:
		return CmdShutdown, nil, nil
	default:
		return "", nil, errors.Wrapf(ErrMalformed, "%v: %q", ErrUnknownCommand, env.Command)
	}
}

// Decodes a server response envelope into its concrete [BuildResponse].
func DecodeResponse(env *Envelope) (BuildResponse, error) {
	switch env.Command {
	case CmdBadLanguage:
		return BadLanguage{}, nil
	case CmdBadAnalyzer:
		var r BadAnalyzer
		err := unmarshalPayload(env, &r)
		return r, err
	case CmdCompleted:
		var r Completed
		err := unmarshalPayload(env, &r)
		return r, err
	case CmdRejected:
		var r Rejected
		err := unmarshalPayload(env, &r)
		return r, err
	case CmdShutdown:
		var r Shutdown
		err := unmarshalPayload(env, &r)
		return r, err
	default:
		return nil, errors.Wrapf(ErrMalformed, "%v: %q", ErrUnknownCommand, env.Command)
	}
}

func unmarshalPayload(env *Envelope, v any) error {
	if len(env.Payload) == 0 {
		return errors.Wrapf(ErrMalformed, "%s: missing payload", env.Command)
	}
	if err := json.Unmarshal(env.Payload, v); err != nil {
		return errors.Wrapf(ErrMalformed, "%s: %v", env.Command, err)
	}
	return nil
}

// Writes a build request.
func WriteRequest(w io.Writer, req *BuildRequest) error {
	return WriteMessage(w, CmdBuild, req)
}

// Writes a shutdown request.
func WriteShutdownRequest(w io.Writer) error {
	return WriteMessage(w, CmdShutdown, nil)
}

// Writes a response.
func WriteResponse(w io.Writer, resp BuildResponse) error {
	if _, ok := resp.(BadLanguage); ok {
		return WriteMessage(w, resp.Command(), nil)
	}
	return WriteMessage(w, resp.Command(), resp)
}

// Reads and decodes one response.
func ReadResponse(r *bufio.Reader) (BuildResponse, error) {
	env, err := ReadMessage(r)
	if err != nil {
		return nil, err
	}
	return DecodeResponse(env)
}
