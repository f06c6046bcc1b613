// Package bus routes typed extension messages to their handlers. The
// message names match the wire protocol the browser extension speaks.
package bus

import (
	"context"

	"go.uber.org/zap"
)

// Message types carried on the bus.
const (
	TypeFetchContacts         = "FETCH_CONTACTS"
	TypeTranscriptionResult   = "TRANSCRIPTION_RESULT"
	TypeExtractContactInfo    = "EXTRACT_CONTACT_INFO"
	TypeStartVoiceRecognition = "START_VOICE_RECOGNITION"
	TypeStopVoiceRecognition  = "STOP_VOICE_RECOGNITION"
)

// Message is one extension request. Fields beyond Type are set per message
// type and ignored otherwise.
type Message struct {
	Type       string `json:"type"`
	Transcript string `json:"transcript,omitempty"`
	IsFinal    bool   `json:"isFinal,omitempty"`
	Text       string `json:"text,omitempty"`
}

// Handler answers one message type. Handlers are synchronous; the returned
// payload is serialized back to the extension as-is.
type Handler func(ctx context.Context, msg Message) interface{}

// StatusResponse is the generic envelope for status-only answers.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Dispatcher maps message types to handlers.
type Dispatcher struct {
	handlers map[string]Handler
	logger   *zap.Logger
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher(logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]Handler),
		logger:   logger,
	}
}

// Register installs the handler for a message type, replacing any previous
// one.
func (d *Dispatcher) Register(msgType string, handler Handler) {
	d.handlers[msgType] = handler
}

// Dispatch routes a message to its handler. Unknown message types answer
// with an unknown_command error payload.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) interface{} {
	handler, ok := d.handlers[msg.Type]
	if !ok {
		d.logger.Warn("Unknown message type", zap.String("type", msg.Type))
		return StatusResponse{Status: "error", Message: "unknown_command"}
	}
	return handler(ctx, msg)
}
