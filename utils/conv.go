package utils

import (
	"bytes"

	"github.com/cruisechaser/havok_browser/config"

	"golang.org/x/text/transform"
)

// BytesToString decodes a zero-terminated fixed-size name field with config.NameEncoding.
// Bytes the encoding rejects are returned as is.
func BytesToString(bs []byte) string {
	raw := bs[:BytesStringLength(bs)]
	s, _, err := transform.Bytes(config.NameEncoding().NewDecoder(), raw)
	if err != nil {
		return string(raw)
	}
	return string(s)
}

func BytesStringLength(bs []byte) int {
	if l := bytes.IndexByte(bs, 0); l == -1 {
		return len(bs)
	} else {
		return l
	}
}
