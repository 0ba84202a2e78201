package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// The backend is inconsistent about envelopes. Some endpoints return the
// payload bare, others wrap it in one of these keys next to status fields.
var envelopeKeys = []string{"data", "result", "payload"}

var listKeys = []string{"items", "rows", "results", "records"}

var metaKeys = map[string]struct{}{
	"success":    {},
	"status":     {},
	"statusCode": {},
	"message":    {},
	"meta":       {},
	"pagination": {},
	"total":      {},
	"count":      {},
	"page":       {},
	"limit":      {},
}

// Decode unmarshals body into out after removing a response envelope.
func Decode(body []byte, out any) error {
	if err := json.Unmarshal(unwrap(body), out); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}

// DecodeList decodes a collection whatever shape it arrives in: a bare array,
// an enveloped array, an object holding the array under a list key, or an
// object with exactly one array-valued field (e.g. {"students": [...]}).
func DecodeList[T any](body []byte) ([]T, error) {
	raw := bytes.TrimSpace(unwrap(body))
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []T{}, nil
	}

	if raw[0] == '{' {
		arr, err := arrayField(raw)
		if err != nil {
			return nil, &DecodeError{Err: err}
		}
		raw = arr
	}

	items := []T{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return items, nil
}

func unwrap(body []byte) []byte {
	obj, ok := asObject(body)
	if !ok {
		return body
	}

	var payload json.RawMessage
	found := 0
	for k, v := range obj {
		if isEnvelopeKey(k) {
			payload = v
			found++
			continue
		}
		if _, meta := metaKeys[k]; !meta {
			return body
		}
	}
	if found != 1 {
		return body
	}
	return payload
}

func arrayField(raw []byte) ([]byte, error) {
	obj, ok := asObject(raw)
	if !ok {
		return nil, fmt.Errorf("expected a JSON object")
	}
	for _, k := range listKeys {
		if v, ok := obj[k]; ok {
			return v, nil
		}
	}

	var arr json.RawMessage
	for k, v := range obj {
		if _, meta := metaKeys[k]; meta {
			continue
		}
		if trimmed := bytes.TrimSpace(v); len(trimmed) > 0 && trimmed[0] == '[' {
			if arr != nil {
				return nil, fmt.Errorf("ambiguous list response: more than one array field")
			}
			arr = trimmed
		}
	}
	if arr == nil {
		return nil, fmt.Errorf("no list found in response")
	}
	return arr, nil
}

func asObject(body []byte) (map[string]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func isEnvelopeKey(k string) bool {
	for _, e := range envelopeKeys {
		if k == e {
			return true
		}
	}
	return false
}

// errorMessage extracts the backend's message from an error body. Validation
// failures arrive as an array of messages.
func errorMessage(body []byte) string {
	obj, ok := asObject(body)
	if !ok {
		return strings.TrimSpace(string(body))
	}
	for _, k := range []string{"message", "error", "msg"} {
		v, ok := obj[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s
		}
		var list []string
		if err := json.Unmarshal(v, &list); err == nil {
			return strings.Join(list, "; ")
		}
	}
	return ""
}
