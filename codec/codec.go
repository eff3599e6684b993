// Package codec is the runtime contract between generated bindings and a
// protocol client.
//
// Generated command parameter structs implement Command[R] where R is the
// matching returns struct; event payload structs implement Event. A client
// encodes requests with EncodeRequest, matches responses by id and decodes
// their result with DecodeResponse, and dispatches notifications through
// DecodeEvent with the generated EventTypes table.
package codec

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// RawMessage is a raw encoded JSON value. It is used for the protocol's "any"
// and free-form "object" types.
type RawMessage = json.RawMessage

// Method is implemented by every command and event payload. It returns the
// "Domain.member" dispatch string.
type Method interface {
	Method() string
}

// Command is a request whose response decodes into R.
type Command[R any] interface {
	Method
	// Response returns a fresh value to decode the result into.
	Response() R
}

// Event is a notification payload.
type Event interface {
	Method
}

// Request is the wire envelope of a command.
type Request struct {
	ID        int64  `json:"id"`
	Method    string `json:"method"`
	Params    any    `json:"params,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

// Message is any incoming frame: a response carries ID and Result or Error,
// an event carries Method and Params.
type Message struct {
	ID        int64      `json:"id,omitempty"`
	Method    string     `json:"method,omitempty"`
	Params    RawMessage `json:"params,omitempty"`
	Result    RawMessage `json:"result,omitempty"`
	Error     *Error     `json:"error,omitempty"`
	SessionID string     `json:"sessionId,omitempty"`
}

// IsEvent reports whether the message is a notification.
func (m *Message) IsEvent() bool { return m.ID == 0 && m.Method != "" }

// Error is a protocol-level error response.
type Error struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

func (e *Error) Error() string {
	if e.Data != "" {
		return fmt.Sprintf("protocol error %d: %s (%s)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("protocol error %d: %s", e.Code, e.Message)
}

// EncodeRequest encodes cmd as a request frame with the given id.
func EncodeRequest(id int64, cmd Method) ([]byte, error) {
	return EncodeSessionRequest(id, "", cmd)
}

// EncodeSessionRequest encodes cmd for a flattened target session.
func EncodeSessionRequest(id int64, sessionID string, cmd Method) ([]byte, error) {
	if cmd == nil {
		return nil, fmt.Errorf("codec: nil command")
	}
	b, err := json.Marshal(Request{ID: id, Method: cmd.Method(), Params: cmd, SessionID: sessionID})
	if err != nil {
		return nil, fmt.Errorf("codec: encode %s: %w", cmd.Method(), err)
	}
	return b, nil
}

// DecodeMessage decodes one incoming frame.
func DecodeMessage(data []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("codec: decode message: %w", err)
	}
	return &m, nil
}

// DecodeResponse decodes the result of cmd. A protocol error in msg is
// returned as *Error.
func DecodeResponse[R any](cmd Command[R], msg *Message) (R, error) {
	r := cmd.Response()
	if msg.Error != nil {
		return r, msg.Error
	}
	if len(msg.Result) == 0 {
		return r, nil
	}
	if err := json.Unmarshal(msg.Result, r); err != nil {
		return r, fmt.Errorf("codec: decode %s result: %w", cmd.Method(), err)
	}
	return r, nil
}

// UnknownEventError is returned by DecodeEvent for a method missing from
// the table.
type UnknownEventError struct {
	Method string
}

func (e *UnknownEventError) Error() string { return "codec: unknown event " + e.Method }

// DecodeEvent decodes params into the payload registered for method.
func DecodeEvent(types map[string]func() Event, method string, params RawMessage) (Event, error) {
	factory, ok := types[method]
	if !ok {
		return nil, &UnknownEventError{Method: method}
	}
	ev := factory()
	if len(params) == 0 {
		return ev, nil
	}
	if err := json.Unmarshal(params, ev); err != nil {
		return nil, fmt.Errorf("codec: decode %s: %w", method, err)
	}
	return ev, nil
}
