package media

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"legendemer/internal/domain"
)

const dataURIPrefix = "data:"

// ParseDataURI decodes data:<mime>;base64,<payload>. A bare base64 payload is
// accepted as well and its type is sniffed from the bytes.
func ParseDataURI(raw string) (domain.SourceImage, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.SourceImage{}, fmt.Errorf("%w: image is required", domain.ErrInvalidRequest)
	}

	mimeType := ""
	payload := raw
	if strings.HasPrefix(raw, dataURIPrefix) {
		header, body, ok := strings.Cut(raw[len(dataURIPrefix):], ",")
		if !ok {
			return domain.SourceImage{}, fmt.Errorf("%w: malformed data uri", domain.ErrInvalidRequest)
		}
		params := strings.Split(header, ";")
		if params[len(params)-1] != "base64" {
			return domain.SourceImage{}, fmt.Errorf("%w: data uri must be base64 encoded", domain.ErrInvalidRequest)
		}
		mimeType = strings.ToLower(strings.TrimSpace(params[0]))
		payload = body
	}

	data, err := decodeBase64(payload)
	if err != nil {
		return domain.SourceImage{}, fmt.Errorf("%w: invalid base64 payload: %v", domain.ErrInvalidRequest, err)
	}
	if len(data) == 0 {
		return domain.SourceImage{}, fmt.Errorf("%w: image is empty", domain.ErrInvalidRequest)
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return domain.SourceImage{Data: data, MIMEType: normalizeMIME(mimeType)}, nil
}

// EncodeDataURI is the inverse of ParseDataURI.
func EncodeDataURI(mimeType string, data []byte) string {
	return dataURIPrefix + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// IsDataURI reports whether ref carries its payload inline.
func IsDataURI(ref string) bool {
	return strings.HasPrefix(ref, dataURIPrefix)
}

func decodeBase64(payload string) ([]byte, error) {
	payload = strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, payload)
	if data, err := base64.StdEncoding.DecodeString(payload); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
}

func normalizeMIME(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if mimeType == "image/jpg" {
		return "image/jpeg"
	}
	return mimeType
}
