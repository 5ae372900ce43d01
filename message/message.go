// message/message.go
package message

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrFormat is returned for envelopes whose msg_type does not match the
// payload shape, or whose payload carries an unknown discriminant.
var ErrFormat = errors.New("malformed envelope")

// Type tags the payload variant carried by an envelope.
type Type string

const (
	TypeNone    Type = "none"
	TypeRoom    Type = "room"
	TypeInPlay  Type = "in_play"
	TypeOutPlay Type = "out_play"
)

// Status is a user's position in the room lifecycle.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusMatching Status = "matching"
	StatusPlaying  Status = "playing"
)

func validStatus(s Status) bool {
	return s == StatusWaiting || s == StatusMatching || s == StatusPlaying
}

// PlayType discriminates the play payload variants.
type PlayType string

const (
	PlayMyCards     PlayType = "my_cards"
	PlayPlayedCards PlayType = "played_cards"
	PlayIsSkipped   PlayType = "is_skipped"
)

func validPlayType(p PlayType) bool {
	return p == PlayMyCards || p == PlayPlayedCards || p == PlayIsSkipped
}

// Payload is the closed union of envelope payloads. The four variants are
// NonePayload, RoomPayload, InPlayPayload and OutPlayPayload; each reports the
// tag it must travel under.
type Payload interface {
	payloadType() Type
}

// NonePayload carries no content; used for acknowledgements and debugging.
type NonePayload struct{}

func (NonePayload) payloadType() Type { return TypeNone }

// RoomPayload requests or reports a room-lifecycle status change.
type RoomPayload struct {
	Status Status `json:"status"`
}

func (RoomPayload) payloadType() Type { return TypeRoom }

// InPlayPayload is a client-to-server play message.
type InPlayPayload struct {
	PlayType PlayType `json:"play_type"`
	Cards    []string `json:"cards"`
}

func (InPlayPayload) payloadType() Type { return TypeInPlay }

// OutPlayPayload is a server-to-client play message.
type OutPlayPayload struct {
	PlayType PlayType `json:"play_type"`
	Cards    []string `json:"cards"`
}

func (OutPlayPayload) payloadType() Type { return TypeOutPlay }

// Envelope is the tagged message exchanged between connections, rooms and the
// broker. UID addresses the sender on the inbound path and the recipient on
// the outbound path.
type Envelope struct {
	UID       uuid.UUID
	CreatedBy string
	CreatedAt time.Time
	Type      Type
	Payload   Payload
}

// New stamps an envelope for the given payload. The tag is derived from the
// payload, so a tag/payload mismatch cannot be constructed.
func New(uid uuid.UUID, createdBy string, payload Payload) *Envelope {
	return &Envelope{
		UID:       uid,
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
		Type:      payload.payloadType(),
		Payload:   payload,
	}
}

// NewNone builds an envelope with an empty payload.
func NewNone(uid uuid.UUID, createdBy string) *Envelope {
	return New(uid, createdBy, NonePayload{})
}

// NewRoomStatus builds a room-lifecycle envelope.
func NewRoomStatus(uid uuid.UUID, createdBy string, status Status) *Envelope {
	return New(uid, createdBy, RoomPayload{Status: status})
}

// NewInPlay builds a client play envelope.
func NewInPlay(uid uuid.UUID, createdBy string, playType PlayType, cards []string) *Envelope {
	return New(uid, createdBy, InPlayPayload{PlayType: playType, Cards: cards})
}

// NewOutPlay builds a server play envelope.
func NewOutPlay(uid uuid.UUID, createdBy string, playType PlayType, cards []string) *Envelope {
	return New(uid, createdBy, OutPlayPayload{PlayType: playType, Cards: cards})
}

type envelopeWire struct {
	UID       uuid.UUID       `json:"uid"`
	CreatedBy string          `json:"created_by"`
	CreatedAt time.Time       `json:"created_at"`
	Type      Type            `json:"msg_type"`
	Msg       json.RawMessage `json:"msg,omitempty"`
}

// MarshalJSON renders the wire form with the payload under "msg".
func (e *Envelope) MarshalJSON() ([]byte, error) {
	var msg json.RawMessage
	if _, ok := e.Payload.(NonePayload); !ok {
		raw, err := json.Marshal(e.Payload)
		if err != nil {
			return nil, err
		}
		msg = raw
	}
	return json.Marshal(envelopeWire{
		UID:       e.UID,
		CreatedBy: e.CreatedBy,
		CreatedAt: e.CreatedAt,
		Type:      e.Type,
		Msg:       msg,
	})
}

// UnmarshalJSON decodes the wire form, selecting the payload variant by the
// msg_type tag. A payload that does not match its tag is an ErrFormat.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var wire envelopeWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("%w: %v", ErrFormat, err)
	}
	payload, err := decodePayload(wire.Type, wire.Msg)
	if err != nil {
		return err
	}
	e.UID = wire.UID
	e.CreatedBy = wire.CreatedBy
	e.CreatedAt = wire.CreatedAt
	e.Type = wire.Type
	e.Payload = payload
	return nil
}

func decodePayload(t Type, raw json.RawMessage) (Payload, error) {
	switch t {
	case TypeNone:
		return NonePayload{}, nil
	case TypeRoom:
		var p RoomPayload
		if err := unmarshalStrict(raw, &p); err != nil {
			return nil, err
		}
		if !validStatus(p.Status) {
			return nil, fmt.Errorf("%w: unknown room status %q", ErrFormat, p.Status)
		}
		return p, nil
	case TypeInPlay:
		var p InPlayPayload
		if err := unmarshalStrict(raw, &p); err != nil {
			return nil, err
		}
		if !validPlayType(p.PlayType) {
			return nil, fmt.Errorf("%w: unknown play type %q", ErrFormat, p.PlayType)
		}
		return p, nil
	case TypeOutPlay:
		var p OutPlayPayload
		if err := unmarshalStrict(raw, &p); err != nil {
			return nil, err
		}
		if !validPlayType(p.PlayType) {
			return nil, fmt.Errorf("%w: unknown play type %q", ErrFormat, p.PlayType)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: unknown msg_type %q", ErrFormat, t)
	}
}

func unmarshalStrict(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing msg body", ErrFormat)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return nil
}
