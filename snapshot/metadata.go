package snapshot

import (
	"strings"
)

const (
	KeyVersion   = "SNAP_VERSION"
	KeyHostname  = "SNAP_HOSTNAME"
	KeyIPAddr    = "SNAP_IPADDR"
	KeyOSName    = "SNAP_OS_NAME"
	KeyOSVersion = "SNAP_OS_VERSION"
	KeySynthetic = "SNAP_SYNTHETIC"
)

// Metadata is the set of key-value pairs found in an archive's
// `metadata.out`.
//
type Metadata map[string]string

// ParseMetadata reads `KEY=VALUE` lines.
//
// The key is whatever precedes the first `=` and must not be empty; both key
// and value are trimmed of surrounding whitespace. Lines without `=` are
// ignored and later duplicates win.
//
func ParseMetadata(content string) (metadata Metadata) {
	metadata = Metadata{}

	for _, line := range strings.Split(content, "\n") {
		idx := strings.Index(line, "=")
		if idx <= 0 {
			continue
		}

		k, v := strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:])
		metadata[k] = v
	}

	return
}

// Validate ensures that the snapshot identifies the collector version that
// produced it.
//
func (m Metadata) Validate() (err error) {
	if _, found := m[KeyVersion]; !found {
		err = &MissingVersionError{}
		return
	}

	return
}

func (m Metadata) Version() string   { return m[KeyVersion] }
func (m Metadata) Hostname() string  { return m[KeyHostname] }
func (m Metadata) IPAddr() string    { return m[KeyIPAddr] }
func (m Metadata) OSName() string    { return m[KeyOSName] }
func (m Metadata) OSVersion() string { return m[KeyOSVersion] }

// Synthetic tells whether the metadata belongs to the canned fallback set.
//
func (m Metadata) Synthetic() bool {
	return m[KeySynthetic] == "true"
}

var searchableKeys = []string{
	KeyVersion,
	KeyHostname,
	KeyIPAddr,
	KeyOSName,
	KeyOSVersion,
}

// Matches performs a case-insensitive substring search of `term` over the
// identifying keys. An empty term matches everything.
//
func (m Metadata) Matches(term string) bool {
	term = strings.ToLower(term)
	if term == "" {
		return true
	}

	for _, key := range searchableKeys {
		if strings.Contains(strings.ToLower(m[key]), term) {
			return true
		}
	}

	return false
}
