package codec

import (
	"errors"
	"testing"

	json "github.com/goccy/go-json"
)

type getDocumentParams struct {
	Depth *int64 `json:"depth,omitempty"`
}

type getDocumentReturns struct {
	Root struct {
		NodeID int64 `json:"nodeId"`
	} `json:"root"`
}

func (*getDocumentParams) Method() string { return "DOM.getDocument" }

func (*getDocumentParams) Response() *getDocumentReturns { return &getDocumentReturns{} }

var _ Command[*getDocumentReturns] = (*getDocumentParams)(nil)

type documentUpdated struct{}

func (*documentUpdated) Method() string { return "DOM.documentUpdated" }

type attributeModified struct {
	NodeID int64  `json:"nodeId"`
	Name   string `json:"name"`
}

func (*attributeModified) Method() string { return "DOM.attributeModified" }

var events = map[string]func() Event{
	"DOM.documentUpdated":   func() Event { return new(documentUpdated) },
	"DOM.attributeModified": func() Event { return new(attributeModified) },
}

func TestEncodeRequest(t *testing.T) {
	depth := int64(2)
	b, err := EncodeRequest(7, &getDocumentParams{Depth: &depth})
	if err != nil {
		t.Fatalf("EncodeRequest() error = %v", err)
	}
	want := `{"id":7,"method":"DOM.getDocument","params":{"depth":2}}`
	if string(b) != want {
		t.Fatalf("got %s, want %s", b, want)
	}

	b, err = EncodeSessionRequest(8, "S1", &getDocumentParams{})
	if err != nil {
		t.Fatalf("EncodeSessionRequest() error = %v", err)
	}
	want = `{"id":8,"method":"DOM.getDocument","params":{},"sessionId":"S1"}`
	if string(b) != want {
		t.Fatalf("got %s, want %s", b, want)
	}

	if _, err := EncodeRequest(1, nil); err == nil {
		t.Fatalf("expected error for nil command")
	}
}

func TestDecodeResponse(t *testing.T) {
	msg, err := DecodeMessage([]byte(`{"id":7,"result":{"root":{"nodeId":1}}}`))
	if err != nil {
		t.Fatalf("DecodeMessage() error = %v", err)
	}
	if msg.IsEvent() {
		t.Fatalf("response classified as event")
	}
	ret, err := DecodeResponse(&getDocumentParams{}, msg)
	if err != nil {
		t.Fatalf("DecodeResponse() error = %v", err)
	}
	if ret.Root.NodeID != 1 {
		t.Fatalf("root = %+v", ret.Root)
	}

	msg, err = DecodeMessage([]byte(`{"id":8,"error":{"code":-32601,"message":"'DOM.nope' wasn't found"}}`))
	if err != nil {
		t.Fatalf("DecodeMessage() error = %v", err)
	}
	_, err = DecodeResponse(&getDocumentParams{}, msg)
	var perr *Error
	if !errors.As(err, &perr) || perr.Code != -32601 {
		t.Fatalf("error = %v", err)
	}
}

func TestDecodeEvent(t *testing.T) {
	msg, err := DecodeMessage([]byte(`{"method":"DOM.attributeModified","params":{"nodeId":3,"name":"class"}}`))
	if err != nil {
		t.Fatalf("DecodeMessage() error = %v", err)
	}
	if !msg.IsEvent() {
		t.Fatalf("event not classified as event")
	}
	ev, err := DecodeEvent(events, msg.Method, msg.Params)
	if err != nil {
		t.Fatalf("DecodeEvent() error = %v", err)
	}
	am, ok := ev.(*attributeModified)
	if !ok || am.NodeID != 3 || am.Name != "class" {
		t.Fatalf("event = %#v", ev)
	}

	if ev, err := DecodeEvent(events, "DOM.documentUpdated", nil); err != nil || ev.Method() != "DOM.documentUpdated" {
		t.Fatalf("empty params: %v, %v", ev, err)
	}

	_, err = DecodeEvent(events, "DOM.unknown", nil)
	var unknown *UnknownEventError
	if !errors.As(err, &unknown) || unknown.Method != "DOM.unknown" {
		t.Fatalf("error = %v", err)
	}
}

func TestBinary(t *testing.T) {
	type frame struct {
		Data Binary `json:"data"`
	}
	b, err := json.Marshal(frame{Data: Binary("hi!")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"data":"aGkh"}` {
		t.Fatalf("got %s", b)
	}
	var f frame
	if err := json.Unmarshal(b, &f); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(f.Data) != "hi!" {
		t.Fatalf("data = %q", f.Data)
	}
	if err := json.Unmarshal([]byte(`{"data":"***"}`), &f); err == nil {
		t.Fatalf("expected base64 error")
	}
}
