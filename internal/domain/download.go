package domain

import (
	"fmt"
	"time"
)

// DownloadFilename names a saved artefact the way the download button does:
// peche-legendaire-<unix millis>.<png|mp4>.
func DownloadFilename(kind MediaKind, at time.Time) string {
	return fmt.Sprintf("peche-legendaire-%d%s", at.UnixMilli(), kind.Extension())
}
