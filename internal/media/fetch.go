package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MaxArtifactBytes bounds what Fetch will read from a remote reference.
const MaxArtifactBytes = 256 << 20

// Artifact is a materialized media reference.
type Artifact struct {
	Data     []byte
	MIMEType string
}

// Fetcher turns a media reference into bytes: inline data URIs are decoded,
// remote references are downloaded.
type Fetcher struct {
	client *http.Client
}

// NewFetcher returns a Fetcher. A nil client gets a default with a generous
// timeout since generated videos can be large.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Fetcher{client: client}
}

func (f *Fetcher) Fetch(ctx context.Context, ref string) (*Artifact, error) {
	if IsDataURI(ref) {
		img, err := ParseDataURI(ref)
		if err != nil {
			return nil, err
		}
		return &Artifact{Data: img.Data, MIMEType: img.MIMEType}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("media: build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media: fetch: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("media: fetch: unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxArtifactBytes+1))
	if err != nil {
		return nil, fmt.Errorf("media: read body: %w", err)
	}
	if len(data) > MaxArtifactBytes {
		return nil, fmt.Errorf("media: artifact exceeds %d bytes", MaxArtifactBytes)
	}
	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return &Artifact{Data: data, MIMEType: normalizeMIME(mimeType)}, nil
}
