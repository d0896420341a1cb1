package models

import "time"

// ResponseEnvelope is the uniform wrapper returned from every tool call.
// Exactly one of Data or Error is populated.
type ResponseEnvelope struct {
	Data      any       `json:"data,omitempty"`
	Message   string    `json:"message,omitempty"`
	Error     string    `json:"error,omitempty"`
	ErrorCode string    `json:"errorCode,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Success   bool      `json:"success"`
}

// SuccessEnvelope wraps a successful result with a fresh timestamp.
func SuccessEnvelope(data any, message string) *ResponseEnvelope {
	return &ResponseEnvelope{
		Success:   true,
		Data:      data,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// ErrorEnvelope wraps a failure with its stable error code.
func ErrorEnvelope(message, code string) *ResponseEnvelope {
	return &ResponseEnvelope{
		Success:   false,
		Error:     message,
		ErrorCode: code,
		Timestamp: time.Now().UTC(),
	}
}

// ExportPayload is the labeled result of an export operation.
type ExportPayload struct {
	Content  string `json:"content"`
	Format   string `json:"format"`
	MimeType string `json:"mimeType"`
	Filename string `json:"filename"`
	Size     int    `json:"size"`
}
