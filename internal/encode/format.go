package encode

import (
	"fmt"
	"path/filepath"
	"strings"

	"sunweather/internal/services"
)

// Format selects the encoding policy derived from the output extension.
type Format string

const (
	FormatMP4 Format = "mp4"
	FormatAVI Format = "avi"
	FormatGIF Format = "gif"
)

// ParseFormat maps an output path onto its encoding policy. Unrecognized
// extensions are a configuration error.
func ParseFormat(outputPath string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(outputPath))
	switch ext {
	case ".mp4":
		return FormatMP4, nil
	case ".avi":
		return FormatAVI, nil
	case ".gif":
		return FormatGIF, nil
	default:
		return "", services.Wrap(services.ErrConfiguration, "", "output",
			fmt.Sprintf("unsupported output extension %q (want .mp4, .avi, or .gif)", ext), nil)
	}
}
