package archive

import (
	"bytes"

	"github.com/mholt/archiver"
)

// DecompressionError reports a payload that could not be gunzipped.
//
type DecompressionError struct {
	Err error
}

func (e *DecompressionError) Error() string {
	return "failed decompressing gzip payload: " + e.Err.Error()
}

func (e *DecompressionError) Unwrap() error {
	return e.Err
}

// Decompress gunzips a whole payload in memory.
//
func Decompress(compressed []byte) (res []byte, err error) {
	var buf bytes.Buffer

	err = archiver.NewGz().Decompress(bytes.NewReader(compressed), &buf)
	if err != nil {
		err = &DecompressionError{Err: err}
		return
	}

	res = buf.Bytes()
	return
}
