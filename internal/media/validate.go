package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	_ "github.com/gen2brain/webp"

	"legendemer/internal/domain"
)

// MaxSourceBytes bounds an uploaded portrait.
const MaxSourceBytes = 10 << 20

var acceptedFormats = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"webp": "image/webp",
}

// ValidateSourceImage checks that the upload is a decodable png, jpeg or webp
// picture and corrects the declared MIME type from the decoded format.
func ValidateSourceImage(img *domain.SourceImage) error {
	if img == nil || len(img.Data) == 0 {
		return fmt.Errorf("%w: image is empty", domain.ErrInvalidRequest)
	}
	if len(img.Data) > MaxSourceBytes {
		return fmt.Errorf("%w: image exceeds %d bytes", domain.ErrInvalidRequest, MaxSourceBytes)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return fmt.Errorf("%w: unreadable image: %v", domain.ErrInvalidRequest, err)
	}
	mimeType, ok := acceptedFormats[format]
	if !ok {
		return fmt.Errorf("%w: unsupported image format %q", domain.ErrInvalidRequest, format)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return fmt.Errorf("%w: image has no pixels", domain.ErrInvalidRequest)
	}
	img.MIMEType = mimeType
	return nil
}
