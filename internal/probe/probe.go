package probe

import (
	"context"
	"fmt"

	"site-checker/internal/domain"
)

// Probe determines one fact about a target. Failures are returned as *Error so
// the runner can place them in the report without exposing the cause.
type Probe[T any] interface {
	Name() domain.ProbeName
	Check(ctx context.Context, target domain.Target) (T, error)
}

// Error is a classified probe failure. Message is safe to show to users, Err is
// the underlying cause and is only logged.
type Error struct {
	Kind    domain.ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Detail() domain.ErrorDetail {
	return domain.ErrorDetail{Kind: e.Kind, Message: e.Message}
}

func NewError(kind domain.ErrorKind, message string, err error) error {
	return &Error{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Set is the collection of probes the runner executes for every URL.
// DomainAge is nil when the auxiliary check is disabled.
type Set struct {
	Transport   Probe[bool]
	Certificate Probe[domain.CertificateInfo]
	Origin      Probe[domain.GeoRecord]
	Reputation  Probe[domain.ReputationVerdict]
	DomainAge   Probe[domain.DomainAge]
}
