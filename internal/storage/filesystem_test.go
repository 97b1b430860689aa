package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"legendemer/internal/domain"
)

func TestSaveArtifactUsesDownloadName(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	at := time.UnixMilli(1718000000123)

	path, err := store.SaveArtifact(context.Background(), domain.MediaKindVideo, at, []byte("mp4"))
	if err != nil {
		t.Fatalf("SaveArtifact: %v", err)
	}
	if path != filepath.Join(dir, "peche-legendaire-1718000000123.mp4") {
		t.Fatalf("path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "mp4" {
		t.Fatalf("read back %q, %v", data, err)
	}
	if _, err := os.Stat(path + ".part"); !os.IsNotExist(err) {
		t.Fatalf("temporary file left behind: %v", err)
	}
}

func TestSaveArtifactRejectsEmptyData(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if _, err := store.SaveArtifact(context.Background(), domain.MediaKindImage, time.Now(), nil); !errors.Is(err, domain.ErrNoMedia) {
		t.Fatalf("error = %v, want ErrNoMedia", err)
	}
}

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{key: "peche.png", want: "peche.png"},
		{key: "/abs/peche.png", want: "abs/peche.png"},
		{key: `sub\peche.png`, want: "sub/peche.png"},
		{key: "a/../peche.png", want: "peche.png"},
		{key: "../escape.png", wantErr: true},
		{key: "..", wantErr: true},
		{key: "  ", wantErr: true},
	}
	for _, tc := range tests {
		got, err := sanitizeKey(tc.key)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("sanitizeKey(%q) = %q, want error", tc.key, got)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("sanitizeKey(%q) = %q, %v; want %q", tc.key, got, err, tc.want)
		}
	}
}

func TestWriteHonoursCancelledContext(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Write(ctx, "x.png", []byte("x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}
