package archive

import (
	"fmt"

	"code.cloudfoundry.org/lager"
	"github.com/pkg/errors"
)

// ChecksumPolicy decides what happens when a header's stored checksum does
// not match the one computed from its bytes.
//
type ChecksumPolicy string

const (
	// ChecksumTolerant logs mismatches larger than one and keeps decoding.
	//
	ChecksumTolerant ChecksumPolicy = "tolerant"

	// ChecksumStrict fails the decode on any mismatch.
	//
	ChecksumStrict ChecksumPolicy = "strict"
)

// ChecksumError reports a header whose checksum did not verify.
//
type ChecksumError struct {
	Offset   int
	Name     string
	Expected uint64
	Computed uint64
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch for header %q at offset %d: expected %d, computed %d",
		e.Name, e.Offset, e.Expected, e.Computed)
}

// Options tunes how archives are decoded.
//
type Options struct {
	ChecksumPolicy ChecksumPolicy

	// TextExtensions lists the member extensions decoded as text; other
	// members get BinaryPlaceholder as content.
	//
	TextExtensions []string

	// LegacyFallback substitutes the canned fallback set whenever a tar.gz
	// archive cannot be decompressed, decodes to nothing or lacks
	// `metadata.out`.
	//
	LegacyFallback bool
}

func DefaultOptions() Options {
	return Options{
		ChecksumPolicy: ChecksumTolerant,
		TextExtensions: DefaultTextExtensions,
	}
}

// DecodeTar walks an uncompressed tar stream in 512-byte blocks and returns
// its members in order.
//
// All-zero blocks are skipped rather than treated as the end of the archive,
// given that padding might precede further entries. Entries that are neither
// directories nor regular files (links, devices, pax headers, ...) are
// skipped along with their content.
//
func DecodeTar(logger lager.Logger, data []byte, opts Options) (files []ExtractedFile, err error) {
	logger = logger.Session("decode-tar", lager.Data{"size": len(data)})
	logger.Debug("start")
	defer logger.Debug("done")

	position := 0

	for position+BlockSize <= len(data) {
		block := data[position : position+BlockSize]

		if isZeroBlock(block) {
			position += BlockSize
			continue
		}

		var hdr Header

		hdr, err = ParseHeader(block)
		if err != nil {
			err = errors.Wrapf(err,
				"failed parsing header at offset %d", position)
			return
		}

		err = verifyChecksum(logger, block, hdr, position, opts.ChecksumPolicy)
		if err != nil {
			return
		}

		position += BlockSize

		if hdr.Name == "" {
			logger.Info("skip-unnamed-entry", lager.Data{"offset": position - BlockSize})
			position += BlockSize
			continue
		}

		name := CleanName(hdr.Name)

		switch {
		case hdr.IsDirectory():
			files = append(files, ExtractedFile{
				Filename:    name,
				IsDirectory: true,
			})

		case hdr.IsRegular():
			if hdr.Size == 0 {
				files = append(files, ExtractedFile{Filename: name})
				continue
			}

			available := uint64(len(data) - position)
			if hdr.Size <= available {
				content := data[position : position+int(hdr.Size)]

				files = append(files, ExtractedFile{
					Filename: name,
					Content:  decodeContent(name, content, opts.TextExtensions),
				})
			} else {
				logger.Info("content-out-of-bounds", lager.Data{
					"name":      name,
					"offset":    position,
					"size":      hdr.Size,
					"available": available,
				})
			}

			position = skipBlocks(position, hdr.ContentBlocks(), len(data))

		default:
			logger.Debug("skip-entry", lager.Data{
				"name":     name,
				"typeflag": string(hdr.TypeFlag),
				"offset":   position - BlockSize,
			})

			position = skipBlocks(position, hdr.ContentBlocks(), len(data))
		}
	}

	return
}

// skipBlocks advances position by n blocks, never past the end of the data.
//
func skipBlocks(position int, n uint64, size int) int {
	remaining := uint64(size - position)
	if n > remaining/BlockSize {
		return size
	}

	return position + int(n)*BlockSize
}

func verifyChecksum(logger lager.Logger, block []byte, hdr Header, offset int, policy ChecksumPolicy) (err error) {
	computed := ComputeChecksum(block)

	mismatch := &ChecksumError{
		Offset:   offset,
		Name:     hdr.Name,
		Expected: hdr.Checksum,
		Computed: computed,
	}

	if policy == ChecksumStrict {
		if computed != hdr.Checksum {
			err = mismatch
		}

		return
	}

	if hdr.Checksum == 0 {
		return
	}

	diff := computed - hdr.Checksum
	if hdr.Checksum > computed {
		diff = hdr.Checksum - computed
	}

	if diff > 1 {
		logger.Error("checksum-mismatch", mismatch)
	}

	return
}
