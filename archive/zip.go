package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"io/ioutil"

	"code.cloudfoundry.org/lager"
	"github.com/mholt/archiver"
	"github.com/pkg/errors"
)

// DecodeZip reads every entry of an in-memory zip container and normalizes
// it into an ExtractedFile, applying the same naming and text rules as
// DecodeTar.
//
// Entries that cannot be opened are logged and skipped.
//
func DecodeZip(logger lager.Logger, data []byte, opts Options) (files []ExtractedFile, err error) {
	logger = logger.Session("decode-zip", lager.Data{"size": len(data)})

	z := archiver.NewZip()

	err = z.Open(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		err = errors.Wrapf(err,
			"failed opening zip container")
		return
	}

	defer z.Close()

	for {
		var entry archiver.File

		entry, err = z.Read()
		if err == io.EOF {
			err = nil
			return
		}

		if err != nil {
			logger.Error("read-entry", err)
			err = nil

			if entry.ReadCloser != nil {
				entry.Close()
			}

			continue
		}

		var file ExtractedFile

		file, err = normalizeZipEntry(entry, opts)
		entry.Close()

		if err != nil {
			return
		}

		files = append(files, file)
	}
}

func normalizeZipEntry(entry archiver.File, opts Options) (file ExtractedFile, err error) {
	name := entry.Name()
	if hdr, ok := entry.Header.(zip.FileHeader); ok {
		name = hdr.Name
	}

	file.Filename = CleanName(name)

	if entry.IsDir() {
		file.IsDirectory = true
		return
	}

	content, err := ioutil.ReadAll(entry)
	if err != nil {
		err = errors.Wrapf(err,
			"failed reading zip entry %s", name)
		return
	}

	file.Content = decodeContent(file.Filename, content, opts.TextExtensions)
	return
}
