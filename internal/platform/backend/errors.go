package backend

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// NetworkError reports that the backend could not be reached or its response
// could not be read.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("backend %s: network: %v", e.Op, e.Err)
}

// Unwrap exposes the transport error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Op      string
	Status  int
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend %s: status %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("backend %s: status %d", e.Op, e.Status)
}

// DisplayMessage is the server text to show the user: the DRF message when
// present, else the first field error of the body.
func (e *APIError) DisplayMessage() string {
	if msg := strings.TrimSpace(e.Message); msg != "" {
		return msg
	}
	return FieldMessage(e.Body)
}

// ServerMessage extracts the human readable message of a DRF style error body.
// non_field_errors wins over detail, detail over error. An empty string means
// the body carried none of them.
func ServerMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		NonFieldErrors []string        `json:"non_field_errors"`
		Detail         json.RawMessage `json:"detail"`
		Error          string          `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, msg := range payload.NonFieldErrors {
		if msg = strings.TrimSpace(msg); msg != "" {
			return msg
		}
	}
	if len(payload.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(payload.Detail, &detail); err == nil && strings.TrimSpace(detail) != "" {
			return strings.TrimSpace(detail)
		}
	}
	return strings.TrimSpace(payload.Error)
}

// FieldMessage returns the first message of a DRF field error body such as
// {"old_password":["..."]}. Fields are visited in sorted order.
func FieldMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		var list []string
		if err := json.Unmarshal(fields[k], &list); err == nil {
			for _, msg := range list {
				if msg = strings.TrimSpace(msg); msg != "" {
					return msg
				}
			}
			continue
		}
		var msg string
		if err := json.Unmarshal(fields[k], &msg); err == nil && strings.TrimSpace(msg) != "" {
			return strings.TrimSpace(msg)
		}
	}
	return ""
}
