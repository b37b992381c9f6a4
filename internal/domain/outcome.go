package domain

import (
	"encoding/json"
	"fmt"
)

type ErrorKind string

const (
	KindParse              ErrorKind = "ParseError"
	KindDNSResolution      ErrorKind = "DnsResolutionError"
	KindNetwork            ErrorKind = "NetworkError"
	KindTimeout            ErrorKind = "Timeout"
	KindUpstreamAPI        ErrorKind = "UpstreamApiError"
	KindCertificateInvalid ErrorKind = "CertificateInvalid"
	KindInternal           ErrorKind = "Internal"
)

// ErrorDetail is the report-facing description of a failed probe. It only ever
// carries a kind and a human readable message.
type ErrorDetail struct {
	Kind    ErrorKind `json:"kind" yaml:"kind"`
	Message string    `json:"message" yaml:"message"`
}

func (d ErrorDetail) String() string {
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// Outcome is the result of a single probe: either a value or an ErrorDetail.
// The zero Outcome is unresolved.
type Outcome[T any] struct {
	value  T
	detail *ErrorDetail
	ok     bool
}

func Success[T any](value T) Outcome[T] {
	return Outcome[T]{value: value, ok: true}
}

func Failure[T any](kind ErrorKind, message string) Outcome[T] {
	return Outcome[T]{detail: &ErrorDetail{Kind: kind, Message: message}}
}

func (o Outcome[T]) IsSuccess() bool {
	return o.ok
}

func (o Outcome[T]) Resolved() bool {
	return o.ok || o.detail != nil
}

func (o Outcome[T]) Value() (T, bool) {
	return o.value, o.ok
}

func (o Outcome[T]) Err() (ErrorDetail, bool) {
	if o.detail == nil {
		return ErrorDetail{}, false
	}
	return *o.detail, true
}

const (
	statusSuccess = "success"
	statusFailure = "failure"
)

type outcomeJSON[T any] struct {
	Status string       `json:"status"`
	Value  *T           `json:"value,omitempty"`
	Error  *ErrorDetail `json:"error,omitempty"`
}

func (o Outcome[T]) MarshalJSON() ([]byte, error) {
	switch {
	case o.ok:
		v := o.value
		return json.Marshal(outcomeJSON[T]{Status: statusSuccess, Value: &v})
	case o.detail != nil:
		return json.Marshal(outcomeJSON[T]{Status: statusFailure, Error: o.detail})
	default:
		return nil, fmt.Errorf("cannot marshal unresolved outcome")
	}
}

func (o *Outcome[T]) UnmarshalJSON(data []byte) error {
	var raw outcomeJSON[T]
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal outcome: %w", err)
	}

	switch raw.Status {
	case statusSuccess:
		var v T
		if raw.Value != nil {
			v = *raw.Value
		}
		*o = Success(v)
	case statusFailure:
		if raw.Error == nil {
			return fmt.Errorf("failure outcome without error detail")
		}
		*o = Failure[T](raw.Error.Kind, raw.Error.Message)
	default:
		return fmt.Errorf("unknown outcome status: %q", raw.Status)
	}
	return nil
}

// MarshalYAML mirrors the JSON shape so rendered reports look the same in both formats.
func (o Outcome[T]) MarshalYAML() (interface{}, error) {
	if o.ok {
		return map[string]interface{}{"status": statusSuccess, "value": o.value}, nil
	}
	if o.detail != nil {
		return map[string]interface{}{"status": statusFailure, "error": o.detail}, nil
	}
	return nil, fmt.Errorf("cannot marshal unresolved outcome")
}

var (
	_ json.Marshaler   = Outcome[bool]{}
	_ json.Unmarshaler = (*Outcome[bool])(nil)
)
