package domain

import (
	"fmt"
	"strings"
	"time"
)

// MediaKind enumerates the artefacts the service can produce.
type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

// ParseMediaKind sanitizes free-form input. Unknown values are rejected.
func ParseMediaKind(raw string) (MediaKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "image", "photo":
		return MediaKindImage, nil
	case "video":
		return MediaKindVideo, nil
	default:
		return "", fmt.Errorf("%w: unsupported media kind %q", ErrInvalidRequest, raw)
	}
}

// Extension returns the file extension used when the artefact is downloaded.
func (k MediaKind) Extension() string {
	if k == MediaKindVideo {
		return ".mp4"
	}
	return ".png"
}

// State enumerates the lifecycle of a single generation request.
type State string

const (
	StateIdle       State = "idle"
	StateEnriching  State = "enriching"
	StateGenerating State = "generating"
	StatePolling    State = "polling"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Terminal reports whether no further transition can follow.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// SourceImage is the user's self-portrait, decoded from the uploaded data URI.
type SourceImage struct {
	Data     []byte
	MIMEType string
}

// InlineMedia is a generated artefact returned inline by the upstream service.
type InlineMedia struct {
	Data     []byte
	MIMEType string
}

// GenerationRequest is built once per submit action and never mutated afterwards.
type GenerationRequest struct {
	ID          string
	SourceImage SourceImage
	Details     CatchDetails
	MediaKind   MediaKind
}

// GenerationResult is produced exactly once per successful request. MediaKind
// always matches the originating request.
type GenerationResult struct {
	ID             string    `json:"id"`
	MediaKind      MediaKind `json:"media_kind"`
	MediaReference string    `json:"media_reference"`
	Prompt         string    `json:"-"`
}

// AsyncOperation mirrors a long-running remote video job. It is never persisted:
// losing the process loses the operation.
type AsyncOperation struct {
	Name            string
	Done            bool
	ResultReference string
}

// ProgressEvent reports one state transition of a request. Kind is set only
// when State is StateFailed; Attempt counts status queries while polling.
type ProgressEvent struct {
	RequestID string    `json:"request_id"`
	MediaKind MediaKind `json:"media_kind"`
	State     State     `json:"state"`
	Kind      ErrorKind `json:"error_kind,omitempty"`
	Attempt   int       `json:"attempt,omitempty"`
	At        time.Time `json:"at"`
}
