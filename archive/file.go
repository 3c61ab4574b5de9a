package archive

import (
	"bytes"
	"strings"
)

const (
	// MetadataFilename is the member every snapshot must carry.
	//
	MetadataFilename = "metadata.out"

	// BinaryPlaceholder replaces the content of members whose extension is
	// not in the text allowlist.
	//
	BinaryPlaceholder = "[Binary data not displayed]"
)

// DefaultTextExtensions lists the extensions whose content is decoded as
// UTF-8 text.
//
var DefaultTextExtensions = []string{".out", ".txt", ".log", ".sh", ".json", ".md"}

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// ExtractedFile is a member of a snapshot archive, as produced by either the
// tar or the zip decoder.
//
type ExtractedFile struct {
	Filename    string `yaml:"filename"`
	Content     string `yaml:"content"`
	IsDirectory bool   `yaml:"is_directory"`
}

// CleanName removes a leading `./` and any leading slashes from a member
// name and truncates it at the first NUL.
//
func CleanName(name string) string {
	if strings.HasPrefix(name, "./") || strings.HasPrefix(name, "/") {
		name = strings.TrimPrefix(name, "./")
		name = strings.TrimLeft(name, "/")
	}

	if idx := strings.IndexByte(name, 0); idx >= 0 {
		name = name[:idx]
	}

	return name
}

// HasMetadata tells whether a `metadata.out` member exists, either at the
// root of the archive or under some directory.
//
func HasMetadata(files []ExtractedFile) bool {
	for _, file := range files {
		if file.Filename == MetadataFilename ||
			strings.HasSuffix(file.Filename, "/"+MetadataFilename) {
			return true
		}
	}

	return false
}

func isText(name string, extensions []string) bool {
	for _, ext := range extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}

	return false
}

func decodeContent(name string, content []byte, extensions []string) string {
	if !isText(name, extensions) {
		return BinaryPlaceholder
	}

	content = bytes.TrimPrefix(content, utf8BOM)

	return strings.ToValidUTF8(string(content), "\uFFFD")
}
