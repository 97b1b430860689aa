package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestParseMediaKind(t *testing.T) {
	tests := []struct {
		raw     string
		want    MediaKind
		wantErr bool
	}{
		{raw: "", want: MediaKindImage},
		{raw: "photo", want: MediaKindImage},
		{raw: " IMAGE ", want: MediaKindImage},
		{raw: "Video", want: MediaKindVideo},
		{raw: "gif", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParseMediaKind(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseMediaKind(%q) expected error", tc.raw)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("ParseMediaKind(%q) = %q, %v; want %q", tc.raw, got, err, tc.want)
		}
	}
}

func TestDownloadFilename(t *testing.T) {
	at := time.UnixMilli(1718000000123)
	if got := DownloadFilename(MediaKindImage, at); got != "peche-legendaire-1718000000123.png" {
		t.Fatalf("image filename = %q", got)
	}
	if got := DownloadFilename(MediaKindVideo, at); got != "peche-legendaire-1718000000123.mp4" {
		t.Fatalf("video filename = %q", got)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{name: "missing credential", err: fmt.Errorf("load: %w", ErrMissingCredential), want: ErrorKindConfiguration},
		{name: "entity not found", err: errors.New("Error 404, Message: Requested entity was not found., Status: NOT_FOUND"), want: ErrorKindUpstreamAuth},
		{name: "no media", err: ErrNoMedia, want: ErrorKindUpstreamEmpty},
		{name: "timeout", err: ErrPollTimeout, want: ErrorKindTimeout},
		{name: "other", err: errors.New("connection reset"), want: ErrorKindTransport},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Fatalf("Classify() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNewGenerationErrorKeepsExistingKind(t *testing.T) {
	inner := &GenerationError{Kind: ErrorKindTimeout, Err: ErrPollTimeout}
	wrapped := NewGenerationError(fmt.Errorf("poll: %w", inner))
	var genErr *GenerationError
	if !errors.As(wrapped, &genErr) || genErr.Kind != ErrorKindTimeout {
		t.Fatalf("expected timeout kind, got %v", wrapped)
	}
	if !errors.Is(wrapped, ErrPollTimeout) {
		t.Fatal("expected wrapped error to match ErrPollTimeout")
	}
	if NewGenerationError(nil) != nil {
		t.Fatal("nil error should stay nil")
	}
	if !ErrorKindUpstreamAuth.Reselect() || ErrorKindTransport.Reselect() {
		t.Fatal("only upstream auth failures ask for a new credential")
	}
}
