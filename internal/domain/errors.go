package domain

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrMissingCredential  = errors.New("missing api credential")
	ErrCredentialRejected = errors.New("api credential rejected")
	ErrNoMedia            = errors.New("no media produced")
	ErrPollTimeout        = errors.New("video operation did not complete in time")
	ErrNotFound           = errors.New("not found")
	ErrBusy               = errors.New("a generation is already in progress")
)

// entityNotFoundMarker is what the upstream service answers when the selected
// credential no longer maps to a usable project.
const entityNotFoundMarker = "Requested entity was not found"

// ErrorKind classifies failures crossing the orchestrator boundary.
type ErrorKind string

const (
	ErrorKindConfiguration ErrorKind = "configuration"
	ErrorKindUpstreamAuth  ErrorKind = "upstream_auth"
	ErrorKindUpstreamEmpty ErrorKind = "upstream_empty"
	ErrorKindTimeout       ErrorKind = "timeout"
	ErrorKindTransport     ErrorKind = "transport"
)

// Reselect reports whether the caller should ask for a new credential before retrying.
func (k ErrorKind) Reselect() bool {
	return k == ErrorKindUpstreamAuth
}

// GenerationError wraps any failure of a generation request with its kind.
type GenerationError struct {
	Kind ErrorKind
	Err  error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Classify maps an arbitrary error onto the failure taxonomy.
func Classify(err error) ErrorKind {
	var genErr *GenerationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &genErr):
		return genErr.Kind
	case errors.Is(err, ErrMissingCredential):
		return ErrorKindConfiguration
	case errors.Is(err, ErrCredentialRejected), strings.Contains(err.Error(), entityNotFoundMarker):
		return ErrorKindUpstreamAuth
	case errors.Is(err, ErrNoMedia):
		return ErrorKindUpstreamEmpty
	case errors.Is(err, ErrPollTimeout), errors.Is(err, context.DeadlineExceeded):
		return ErrorKindTimeout
	default:
		return ErrorKindTransport
	}
}

// NewGenerationError classifies err and wraps it. A nil err yields nil.
func NewGenerationError(err error) error {
	if err == nil {
		return nil
	}
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return err
	}
	return &GenerationError{Kind: Classify(err), Err: err}
}
