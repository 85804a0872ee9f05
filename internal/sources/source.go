package sources

import (
	"context"
	"strings"

	"github.com/medialens/medialens/internal/models"
)

// Source is one upstream provider of library data, normalized into the
// analysis model. For TV libraries LibraryFiles returns episode-level rows;
// aggregation into shows is the analysis layer's job.
type Source interface {
	Name() string
	Libraries(ctx context.Context) ([]models.Library, error)
	LibraryFiles(ctx context.Context, lib models.Library) ([]models.MediaFile, error)
}

// codecLabels maps upstream codec identifiers to display labels. Anything
// not listed is upper-cased as-is.
var codecLabels = map[string]string{
	"h264":       "H.264",
	"avc":        "H.264",
	"hevc":       "H.265",
	"h265":       "H.265",
	"av1":        "AV1",
	"vp9":        "VP9",
	"mpeg4":      "MPEG-4",
	"msmpeg4":    "MPEG-4",
	"mpeg2video": "MPEG-2",
	"mpeg2":      "MPEG-2",
	"vc1":        "VC-1",
}

func normalizeCodec(raw string) string {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return models.UnknownLabel
	}
	if label, ok := codecLabels[raw]; ok {
		return label
	}
	return strings.ToUpper(raw)
}

// normalizeResolution maps upstream resolution identifiers ("1080", "4k",
// "sd") to display labels ("1080p", "4K", "SD").
func normalizeResolution(raw string) string {
	raw = strings.TrimSpace(strings.ToLower(raw))
	switch raw {
	case "":
		return models.UnknownLabel
	case "4k", "2160", "2160p":
		return "4K"
	case "sd":
		return "SD"
	}
	if strings.HasSuffix(raw, "p") || strings.HasSuffix(raw, "i") {
		return raw
	}
	return raw + "p"
}

func orUnknown(s string) string {
	if s == "" {
		return models.UnknownLabel
	}
	return s
}
