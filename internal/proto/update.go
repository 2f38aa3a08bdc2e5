package proto

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Payload kinds. Text is fully supported end-to-end. File travels through the
// data model and framing; writing it out is up to the clipboard sink. Folder
// exists so a source can report one, but it never enters the wire protocol.
const (
	PayloadText   = "text"
	PayloadFile   = "file"
	PayloadFolder = "folder"
)

const (
	UpdateEmpty = "empty"
	UpdateItem  = "item"
)

// Payload is the tagged value carried by an item update.
type Payload struct {
	Kind string `json:"kind"`
	Text string `json:"text,omitempty"`
	Name string `json:"name,omitempty"`
	Data []byte `json:"data,omitempty"`
}

func TextPayload(content string) *Payload {
	return &Payload{Kind: PayloadText, Text: content}
}

func FilePayload(name string, data []byte) *Payload {
	return &Payload{Kind: PayloadFile, Name: name, Data: data}
}

// Transferable reports whether the payload may enter the wire protocol.
func (p *Payload) Transferable() bool {
	if p == nil {
		return false
	}
	return p.Kind == PayloadText || p.Kind == PayloadFile
}

func (p *Payload) Equal(o *Payload) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.Kind == o.Kind && p.Text == o.Text && p.Name == o.Name && bytes.Equal(p.Data, o.Data)
}

// String summarizes the payload without exposing clipboard contents.
func (p *Payload) String() string {
	if p == nil {
		return "payload(nil)"
	}
	switch p.Kind {
	case PayloadText:
		return fmt.Sprintf("text(%d bytes)", len(p.Text))
	case PayloadFile:
		return fmt.Sprintf("file(%q, %d bytes)", p.Name, len(p.Data))
	default:
		return fmt.Sprintf("payload(%s)", p.Kind)
	}
}

// Update is the versioned value exchanged over the wire: either the empty
// sentinel ("no value yet") or an item carrying a logical timestamp and a
// payload.
type Update struct {
	Kind      string   `json:"kind"`
	Timestamp uint64   `json:"timestamp,omitempty"`
	Payload   *Payload `json:"payload,omitempty"`
}

func EmptyUpdate() Update {
	return Update{Kind: UpdateEmpty}
}

func NewItem(timestamp uint64, payload *Payload) Update {
	return Update{Kind: UpdateItem, Timestamp: timestamp, Payload: payload}
}

func (u Update) IsEmpty() bool {
	return u.Kind != UpdateItem
}

// Less is the single consistency rule of the system: empty sorts below every
// item, and items compare by timestamp alone. Two items with equal timestamps
// are neither less nor greater, so the first arrival wins a tie.
func (u Update) Less(o Update) bool {
	if u.IsEmpty() {
		return !o.IsEmpty()
	}
	if o.IsEmpty() {
		return false
	}
	return u.Timestamp < o.Timestamp
}

// Equal is structural. A peer counts as up to date only when its last-known
// update is value-equal to the hub's current one, not merely not-less-than.
func (u Update) Equal(o Update) bool {
	if u.IsEmpty() || o.IsEmpty() {
		return u.IsEmpty() == o.IsEmpty()
	}
	return u.Timestamp == o.Timestamp && u.Payload.Equal(o.Payload)
}

func (u Update) String() string {
	if u.IsEmpty() {
		return "update(empty)"
	}
	return fmt.Sprintf("update(t=%d, %s)", u.Timestamp, u.Payload)
}

// EncodeUpdate serializes an update to its self-describing wire form.
// Folders and unknown payload kinds are rejected before they reach the wire.
func EncodeUpdate(u Update) ([]byte, error) {
	switch u.Kind {
	case UpdateEmpty:
		return json.Marshal(Update{Kind: UpdateEmpty})
	case UpdateItem:
		if !u.Payload.Transferable() {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedPayload, u.Payload)
		}
		return json.Marshal(u)
	default:
		return nil, fmt.Errorf("%w: update kind %q", ErrUnsupportedPayload, u.Kind)
	}
}

// DecodeUpdate deserializes and validates one update body.
func DecodeUpdate(data []byte) (Update, error) {
	var u Update
	if err := json.Unmarshal(data, &u); err != nil {
		return Update{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	switch u.Kind {
	case UpdateEmpty:
		return EmptyUpdate(), nil
	case UpdateItem:
		if !u.Payload.Transferable() {
			return Update{}, fmt.Errorf("%w: item payload", ErrMalformedPayload)
		}
		return u, nil
	default:
		return Update{}, fmt.Errorf("%w: update kind %q", ErrMalformedPayload, u.Kind)
	}
}
