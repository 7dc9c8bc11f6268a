package proto

import "encoding/json"

// Packet is the JSON envelope for every frame on the socket, in both
// directions: a named event plus its payload.
type Packet struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewPacket marshals payload into a Packet for event.
func NewPacket(event string, payload any) (Packet, error) {
	if payload == nil {
		return Packet{Event: event}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Packet{}, err
	}
	return Packet{Event: event, Data: data}, nil
}

// Error describes an application-level error event from the gateway. It is
// forwarded to subscribers verbatim.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Code + ": " + e.Msg
}
