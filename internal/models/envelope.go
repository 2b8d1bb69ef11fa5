// Package models defines the newline-delimited JSON envelope exchanged with
// the accessibility bridge.
package models

import (
	"encoding/json"
	"time"
)

// Envelope types.
const (
	TypeRequest  = "request"
	TypeResponse = "response"
	TypeEvent    = "event"
)

// Event types pushed by the bridge.
const (
	EventNotification = "ax.notification"
	EventKeyPress     = "key.press"
	EventKeyRelease   = "key.release"
)

// MessageEnvelope is the top-level message structure for all communications
type MessageEnvelope struct {
	Type     string    `json:"type"` // "request", "response", or "event"
	Request  *Request  `json:"request,omitempty"`
	Response *Response `json:"response,omitempty"`
	Event    *Event    `json:"event,omitempty"`
}

// Request represents an RPC request
type Request struct {
	ID     string                 `json:"id"`
	Method string                 `json:"method"`
	Params map[string]interface{} `json:"params"`
}

// Response represents an RPC response
type Response struct {
	ID     string                 `json:"id"`
	Result map[string]interface{} `json:"result,omitempty"`
	Error  *ErrorInfo             `json:"error,omitempty"`
}

// ErrorInfo represents an error in a response
type ErrorInfo struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// Event represents an asynchronous event from the bridge
type Event struct {
	EventType string                 `json:"eventType"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewRequest creates a new request envelope
func NewRequest(id, method string, params map[string]interface{}) *MessageEnvelope {
	return &MessageEnvelope{
		Type: TypeRequest,
		Request: &Request{
			ID:     id,
			Method: method,
			Params: params,
		},
	}
}

// NewResponse creates a response envelope carrying result.
func NewResponse(id string, result map[string]interface{}) *MessageEnvelope {
	return &MessageEnvelope{
		Type:     TypeResponse,
		Response: &Response{ID: id, Result: result},
	}
}

// NewErrorResponse creates a response envelope carrying an error.
func NewErrorResponse(id string, code int, message string) *MessageEnvelope {
	return &MessageEnvelope{
		Type: TypeResponse,
		Response: &Response{
			ID:    id,
			Error: &ErrorInfo{Code: code, Message: message},
		},
	}
}

// NewEvent creates an event envelope stamped with the current time.
func NewEvent(eventType string, data map[string]interface{}) *MessageEnvelope {
	return &MessageEnvelope{
		Type: TypeEvent,
		Event: &Event{
			EventType: eventType,
			Data:      data,
			Timestamp: time.Now(),
		},
	}
}

// IsError returns true if the response contains an error
func (r *Response) IsError() bool {
	return r.Error != nil
}

// GetError returns the error message if present
func (r *Response) GetError() string {
	if r.Error != nil {
		return r.Error.Message
	}
	return ""
}

// Encode marshals the envelope followed by the newline delimiter.
func (m *MessageEnvelope) Encode() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
