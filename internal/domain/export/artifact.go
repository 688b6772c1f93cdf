package export

import (
	"strings"
	"unicode"
)

// Artifact is a rendered export ready for delivery.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Filename suggests a file name for an export of the named dataset.
// Characters outside ASCII letters, digits, '-', '_' and '.' become '_'.
func Filename(name string, f Format) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)),
			r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	base := strings.Trim(b.String(), "_.")
	if base == "" {
		base = "dataset"
	}
	return base + "." + f.Extension()
}

// NewArtifact wraps rendered data with its delivery metadata.
func NewArtifact(datasetName string, f Format, data []byte) Artifact {
	return Artifact{
		Filename:    Filename(datasetName, f),
		ContentType: f.ContentType(),
		Data:        data,
	}
}
