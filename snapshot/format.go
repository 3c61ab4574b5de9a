package snapshot

import (
	"strings"
)

type Format string

const (
	FormatZip   Format = "zip"
	FormatTarGz Format = "tar.gz"
)

// DetectFormat picks the container format from the archive's filename.
//
func DetectFormat(name string) (format Format, err error) {
	switch {
	case strings.HasSuffix(name, ".zip"):
		format = FormatZip
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		format = FormatTarGz
	default:
		err = &UnsupportedFormatError{Name: name}
	}

	return
}
