package ws

import "encoding/json"

// Envelope - единый формат всех серверных сообщений
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}
