package channel

// MessageType is the closed set of channel message envelopes. Dispatch
// points switch exhaustively over these - adding a type means updating
// every switch.
type MessageType string

const (
	// TypeConnectionConfirmed is the synthetic first message after Open.
	TypeConnectionConfirmed MessageType = "connection_confirmed"

	// TypeHeartbeat is the periodic keep-alive, emitted only while Open.
	TypeHeartbeat MessageType = "heartbeat"

	// TypeProgress carries a ProgressRecord for a source sync.
	TypeProgress MessageType = "progress"

	// TypeUploadProgress and TypeRecognitionProgress are the
	// domain-specific progress subtypes.
	TypeUploadProgress      MessageType = "upload_progress"
	TypeRecognitionProgress MessageType = "recognition_progress"

	// TypeError is an application-level error delivered while the channel
	// stays Open (a protocol error, not a transport failure).
	TypeError MessageType = "error"

	// TypeConnectionClosing announces an orderly shutdown.
	TypeConnectionClosing MessageType = "connection_closing"
)

// Valid reports whether t is a known message type.
func (t MessageType) Valid() bool {
	switch t {
	case TypeConnectionConfirmed, TypeHeartbeat, TypeProgress,
		TypeUploadProgress, TypeRecognitionProgress, TypeError,
		TypeConnectionClosing:
		return true
	}
	return false
}

// Message is the JSON envelope delivered on the channel.
type Message struct {
	Type      MessageType `json:"type"`
	Data      any         `json:"data,omitempty"`
	Timestamp string      `json:"timestamp,omitempty"`

	// Seq is the logical delivery sequence number, stamped when the
	// message survives loss injection. Strictly increasing per channel.
	Seq int64 `json:"seq,omitempty"`
}

// ErrorData is the payload of a TypeError message.
type ErrorData struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ConfirmedData is the payload of a TypeConnectionConfirmed message.
type ConfirmedData struct {
	SessionID string `json:"session_id"`
}
