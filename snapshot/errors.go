package snapshot

import (
	"fmt"
)

// MissingMetadataError indicates an archive without a top-level
// `metadata.out` member.
//
type MissingMetadataError struct {
	Archive string
}

func (e *MissingMetadataError) Error() string {
	return fmt.Sprintf("not a valid snapshot %s: metadata.out is missing", e.Archive)
}

// MissingVersionError indicates a `metadata.out` without SNAP_VERSION.
//
type MissingVersionError struct{}

func (e *MissingVersionError) Error() string {
	return "not a valid snapshot: SNAP_VERSION is missing in metadata.out"
}

// UnsupportedFormatError indicates a filename that is neither `.zip` nor
// `.tar.gz`/`.tgz`.
//
type UnsupportedFormatError struct {
	Name string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format %s: expected .zip, .tar.gz or .tgz", e.Name)
}

// ArchiveNotFoundError indicates that no records exist for an archive name.
//
type ArchiveNotFoundError struct {
	Name string
}

func (e *ArchiveNotFoundError) Error() string {
	return fmt.Sprintf("archive %s not found", e.Name)
}
