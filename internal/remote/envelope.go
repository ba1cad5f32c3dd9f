package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DefaultFailureMessage is used when neither the server nor the call site
// supplies a human-readable failure message.
const DefaultFailureMessage = "Request failed"

// RequestError is the single error shape every server-signaled failure is
// normalized into. Message is always human-readable and safe to show on the
// kiosk screen.
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

// Envelope is a decoded view of one FDMS backend response body. The backend
// is inconsistent about its wrapper shape: sometimes {content, hasError,
// message, ...}, sometimes {data, isSuccess, ...}, sometimes the bare
// payload with no wrapper at all. An Envelope keeps the raw body around so
// bare payloads survive untouched.
//
// Detection is keyed solely on the presence of a top-level "hasError" or
// "isSuccess" member. A body that merely looks envelope-shaped (say, a
// payload that happens to have its own "message" field) is treated as a bare
// payload.
type Envelope struct {
	raw    json.RawMessage
	fields map[string]json.RawMessage
}

// ParseEnvelope decodes a response body. An empty or JSON-null body yields a
// nil Envelope, which the normalizer operations treat as success-by-omission.
func ParseEnvelope(body []byte) (*Envelope, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	env := &Envelope{raw: append(json.RawMessage(nil), trimmed...)}
	if trimmed[0] == '{' {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return nil, fmt.Errorf("malformed response body: %w", err)
		}
		env.fields = fields
	}
	return env, nil
}

// enveloped reports whether the body carried success/error metadata.
func (e *Envelope) enveloped() bool {
	if e.fields == nil {
		return false
	}
	_, hasError := e.fields["hasError"]
	_, isSuccess := e.fields["isSuccess"]
	return hasError || isSuccess
}

// failed reports whether an enveloped body explicitly signaled failure:
// hasError == true or isSuccess == false. A null or missing flag does not
// count as failure.
func (e *Envelope) failed() bool {
	if !e.enveloped() {
		return false
	}
	if raw, ok := e.fields["hasError"]; ok {
		var v *bool
		if json.Unmarshal(raw, &v) == nil && v != nil && *v {
			return true
		}
	}
	if raw, ok := e.fields["isSuccess"]; ok {
		var v *bool
		if json.Unmarshal(raw, &v) == nil && v != nil && !*v {
			return true
		}
	}
	return false
}

// message returns the server-supplied failure message, if any.
func (e *Envelope) message() string {
	if e.fields == nil {
		return ""
	}
	raw, ok := e.fields["message"]
	if !ok {
		return ""
	}
	var msg string
	if json.Unmarshal(raw, &msg) != nil {
		return ""
	}
	return msg
}

// EnsureSuccess fails with a *RequestError when the response explicitly
// signaled failure. A nil envelope (absent body) is treated as success. The
// error message is the server's message when present, else fallback, else
// DefaultFailureMessage.
func EnsureSuccess(env *Envelope, fallback string) error {
	if env == nil || !env.failed() {
		return nil
	}
	msg := env.message()
	if msg == "" {
		msg = fallback
	}
	if msg == "" {
		msg = DefaultFailureMessage
	}
	return &RequestError{Message: msg}
}

// Content extracts the payload of a response, transparently supporting both
// enveloped and bare-payload bodies.
//
// A nil envelope yields the fallback. A failed envelope yields the fallback
// plus a *RequestError (message: server message, else "Failed to load
// <label>" when a label is given, else DefaultFailureMessage). A successful
// envelope yields its "content" member when the key is present (a JSON null
// is a legitimate value, not a miss), else its "data" member, else the raw
// body. A bare payload is decoded as-is.
func Content[T any](env *Envelope, fallback T, label string) (T, error) {
	if env == nil {
		return fallback, nil
	}
	if env.failed() {
		msg := env.message()
		if msg == "" && label != "" {
			msg = "Failed to load " + label
		}
		if msg == "" {
			msg = DefaultFailureMessage
		}
		return fallback, &RequestError{Message: msg}
	}

	payload := env.raw
	if env.enveloped() {
		if raw, ok := env.fields["content"]; ok {
			payload = raw
		} else if raw, ok := env.fields["data"]; ok {
			payload = raw
		}
	}

	var out T
	if err := json.Unmarshal(payload, &out); err != nil {
		if label == "" {
			label = "response"
		}
		return fallback, fmt.Errorf("decode %s: %w", label, err)
	}
	return out, nil
}

// ErrorMessage returns err's message when present and non-empty, else
// fallback. It never fails and accepts a nil error.
func ErrorMessage(err error, fallback string) string {
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}
