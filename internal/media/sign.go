package media

import (
	"fmt"
	"net/url"
	"strings"
)

// SignVideoURI embeds the API key as the key query parameter so a plain
// <video> element can play the reference without extra headers.
func SignVideoURI(raw, apiKey string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("media: empty video uri")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("media: parse video uri: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("media: unsupported video uri scheme %q", u.Scheme)
	}
	if apiKey == "" {
		return u.String(), nil
	}
	q := u.Query()
	q.Set("key", apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
