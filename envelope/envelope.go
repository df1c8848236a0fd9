// Package envelope holds the result shape every client operation returns.
package envelope

import (
	"encoding/json"
	"fmt"
)

// GenericFailure is used when a failure carries no message of its own.
const GenericFailure = "request failed"

// Result is the uniform outcome of an operation. A failed Result always has a
// Message; Status is 0 when no HTTP exchange produced it.
type Result struct {
	Success bool            `json:"success"`
	Status  int             `json:"status,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	// FileName is only set on batch upload results.
	FileName string `json:"fileName,omitempty"`
}

// OK builds a successful Result. data is marshalled to JSON unless it is
// already raw JSON or nil.
func OK(status int, data interface{}, message string) Result {
	return Result{
		Success: true,
		Status:  status,
		Data:    toRaw(data),
		Message: message,
	}
}

// Fail builds a local failure that never reached the network.
func Fail(format string, v ...interface{}) Result {
	return FailStatus(0, fmt.Sprintf(format, v...))
}

// FailStatus builds a failure with an HTTP (or synthetic) status.
func FailStatus(status int, message string) Result {
	if message == "" {
		message = GenericFailure
	}
	return Result{
		Success: false,
		Status:  status,
		Message: message,
	}
}

// Decode unmarshals Data into v.
func (r Result) Decode(v interface{}) error {
	if len(r.Data) == 0 {
		return fmt.Errorf("result has no data")
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("decode result data: %w", err)
	}
	return nil
}

// Key returns data.key, or an empty string if Data has no key field.
func (r Result) Key() string {
	var payload struct {
		Key string `json:"key"`
	}
	if err := r.Decode(&payload); err != nil {
		return ""
	}
	return payload.Key
}

// WithFileName returns a copy of r tagged with the originating file name.
func (r Result) WithFileName(name string) Result {
	r.FileName = name
	return r
}

func (r Result) String() string {
	if r.Success {
		return fmt.Sprintf("success (status %d)", r.Status)
	}
	return fmt.Sprintf("failure (status %d): %s", r.Status, r.Message)
}

func toRaw(data interface{}) json.RawMessage {
	switch d := data.(type) {
	case nil:
		return nil
	case json.RawMessage:
		return d
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	return b
}
