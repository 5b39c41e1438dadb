package disc

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// MediaKind identifies the physical media family in the drive.
type MediaKind string

const (
	MediaCD  MediaKind = "cd"
	MediaDVD MediaKind = "dvd"
	MediaBD  MediaKind = "bd"
)

// ErrUnsupportedMedia is returned for media kinds no writer handles.
var ErrUnsupportedMedia = errors.New("unsupported media type")

// ParseMediaKind maps user input onto a MediaKind. Matching is
// case-insensitive; anything other than cd, dvd, or bd is rejected.
func ParseMediaKind(value string) (MediaKind, error) {
	kind := MediaKind(cases.Fold().String(strings.TrimSpace(value)))
	switch kind {
	case MediaCD, MediaDVD, MediaBD:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: %q (want cd, dvd, or bd)", ErrUnsupportedMedia, value)
	}
}

// Label returns a human-readable media name.
func (k MediaKind) Label() string {
	switch k {
	case MediaCD:
		return "CD"
	case MediaDVD:
		return "DVD"
	case MediaBD:
		return "Blu-ray"
	default:
		return string(k)
	}
}
