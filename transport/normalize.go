package transport

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/bitrise-io/go-cdnclient/envelope"
)

// ConnectionFailureStatus is reported when no response was received at all.
const ConnectionFailureStatus = http.StatusInternalServerError

// Normalize turns a response into a Result. It reads but does not close the body.
func Normalize(resp *http.Response) envelope.Result {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ConnectionFailure(fmt.Errorf("read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return envelope.FailStatus(resp.StatusCode, errorMessage(resp.StatusCode, body))
	}

	return envelope.OK(resp.StatusCode, payload(body), "")
}

// ConnectionFailure is the Result for calls that never got a response.
func ConnectionFailure(err error) envelope.Result {
	return envelope.FailStatus(ConnectionFailureStatus, fmt.Sprintf("connection failed: %s", err))
}

func payload(body []byte) json.RawMessage {
	if len(body) == 0 {
		return nil
	}
	if json.Valid(body) {
		return body
	}
	quoted, err := json.Marshal(string(body))
	if err != nil {
		return nil
	}
	return quoted
}

func errorMessage(status int, body []byte) string {
	var fields map[string]interface{}
	if err := json.Unmarshal(body, &fields); err == nil {
		for _, name := range []string{"message", "detail"} {
			switch v := fields[name].(type) {
			case nil:
			case string:
				if v != "" {
					return v
				}
			default:
				if b, err := json.Marshal(v); err == nil {
					return string(b)
				}
			}
		}
	}
	return fmt.Sprintf("request failed with status %d", status)
}
