package archive

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
)

// BlockSize is the size of both header and content blocks in a tar stream.
//
const BlockSize = 512

type fieldKind int

const (
	kindString fieldKind = iota
	kindOctal
	kindChar
)

// field describes a fixed-width region of a header block.
//
type field struct {
	name   string
	offset int
	width  int
	kind   fieldKind
}

var (
	fieldName     = field{"name", 0, 100, kindString}
	fieldSize     = field{"size", 124, 12, kindOctal}
	fieldChecksum = field{"checksum", 148, 8, kindOctal}
	fieldTypeFlag = field{"typeflag", 156, 1, kindChar}
	fieldMagic    = field{"magic", 257, 6, kindString}
	fieldPrefix   = field{"prefix", 345, 155, kindString}
)

func (f field) slice(block []byte) (res []byte, err error) {
	end := f.offset + f.width
	if f.offset < 0 || f.width <= 0 || end > len(block) {
		err = errors.Errorf("field %s [%d:%d] out of bounds for a block of %d bytes",
			f.name, f.offset, end, len(block))
		return
	}

	res = block[f.offset:end]
	return
}

func (f field) check(kind fieldKind) (err error) {
	if f.kind != kind {
		err = errors.Errorf("field %s read with the wrong kind", f.name)
	}

	return
}

// text reads a NUL-terminated string.
//
func (f field) text(block []byte) (res string, err error) {
	err = f.check(kindString)
	if err != nil {
		return
	}

	raw, err := f.slice(block)
	if err != nil {
		return
	}

	if idx := bytes.IndexByte(raw, 0); idx >= 0 {
		raw = raw[:idx]
	}

	res = string(raw)
	return
}

// octal reads an ASCII octal number terminated by NUL or space. Only the
// leading run of octal digits counts; no digits at all reads as zero.
//
func (f field) octal(block []byte) (res uint64, err error) {
	err = f.check(kindOctal)
	if err != nil {
		return
	}

	raw, err := f.slice(block)
	if err != nil {
		return
	}

	for _, b := range raw {
		if b < '0' || b > '7' {
			break
		}

		res = res<<3 | uint64(b-'0')
	}

	return
}

func (f field) char(block []byte) (res byte, err error) {
	err = f.check(kindChar)
	if err != nil {
		return
	}

	raw, err := f.slice(block)
	if err != nil {
		return
	}

	res = raw[0]
	return
}

// Header holds the fields of a tar header block that the decoder needs.
//
type Header struct {
	Name     string
	Size     uint64
	TypeFlag byte
	Checksum uint64
	Magic    string
}

// IsDirectory tells whether the entry is a directory (`5` or `d`).
//
func (h Header) IsDirectory() bool {
	return h.TypeFlag == '5' || h.TypeFlag == 'd'
}

// IsRegular tells whether the entry is a regular file (`0`, NUL, `f` or `-`).
//
func (h Header) IsRegular() bool {
	switch h.TypeFlag {
	case '0', 0, 'f', '-':
		return true
	}

	return false
}

// ContentBlocks is the number of blocks the entry's content spans.
//
func (h Header) ContentBlocks() uint64 {
	return (h.Size + BlockSize - 1) / BlockSize
}

// ParseHeader decodes a single 512-byte header block.
//
func ParseHeader(block []byte) (hdr Header, err error) {
	if len(block) != BlockSize {
		err = errors.Errorf("header block must have %d bytes, got %d",
			BlockSize, len(block))
		return
	}

	hdr.Name, err = fieldName.text(block)
	if err != nil {
		return
	}

	hdr.Size, err = fieldSize.octal(block)
	if err != nil {
		return
	}

	hdr.TypeFlag, err = fieldTypeFlag.char(block)
	if err != nil {
		return
	}

	hdr.Checksum, err = fieldChecksum.octal(block)
	if err != nil {
		return
	}

	hdr.Magic, err = fieldMagic.text(block)
	if err != nil {
		return
	}

	if strings.HasPrefix(hdr.Magic, "ustar") {
		var prefix string

		prefix, err = fieldPrefix.text(block)
		if err != nil {
			return
		}

		if prefix != "" {
			hdr.Name = prefix + "/" + hdr.Name
		}
	}

	return
}

// ComputeChecksum sums every byte of the block, counting the checksum field
// itself as ASCII spaces.
//
func ComputeChecksum(block []byte) (sum uint64) {
	start, end := fieldChecksum.offset, fieldChecksum.offset+fieldChecksum.width

	for idx, b := range block {
		if idx >= start && idx < end {
			sum += ' '
			continue
		}

		sum += uint64(b)
	}

	return
}

func isZeroBlock(block []byte) bool {
	for _, b := range block {
		if b != 0 {
			return false
		}
	}

	return true
}
