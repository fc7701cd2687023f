// Package apperror defines the error taxonomy shared by the services and the
// HTTP layer, and the classifier that turns backend failures into credential
// problems the UI can act on.
package apperror

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the closed set of error categories surfaced to callers.
type Kind string

const (
	KindInternal         Kind = "internal"
	KindTransport        Kind = "transport"
	KindNoResponse       Kind = "no_response"
	KindOperationFailed  Kind = "operation_failed"
	KindOperationTimeout Kind = "operation_timeout"
	KindValidation       Kind = "validation"
	KindCredential       Kind = "credential"
	KindNotFound         Kind = "not_found"
)

// Kinded is implemented by errors that know their own category.
type Kinded interface {
	Kind() Kind
}

// ValidationError is a client-side validation failure. It never reaches the backend.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Kind() Kind { return KindValidation }

// ValidationErrors collects every validation failure found in one pass.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, v := range e {
		msgs = append(msgs, v.Error())
	}
	return strings.Join(msgs, "; ")
}

func (e ValidationErrors) Kind() Kind { return KindValidation }

// OrNil returns nil for an empty collection so callers can return it directly.
func (e ValidationErrors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// CredentialError marks a failure caused by a missing, invalid or unauthorized API key.
type CredentialError struct {
	Cause error
}

func (e *CredentialError) Error() string {
	if e.Cause == nil {
		return "credential problem: no API key configured"
	}
	return "credential problem: " + e.Cause.Error()
}

func (e *CredentialError) Unwrap() error { return e.Cause }

func (e *CredentialError) Kind() Kind { return KindCredential }

// NotFoundError reports a missing local resource (job, store, document).
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

func (e *NotFoundError) Kind() Kind { return KindNotFound }

// Classify walks the error chain and returns the first category it recognises.
func Classify(err error) Kind {
	if err == nil {
		return ""
	}
	var k Kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindInternal
}
