package config

import (
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultNameEncoding matches the clip and skeleton names the game writes.
// Older fan-made PAP files may need shift_jis.
const DefaultNameEncoding = "utf-8"

var nameEncoding = struct {
	sync.RWMutex
	name string
	enc  encoding.Encoding
}{name: DefaultNameEncoding, enc: mustEncoding(DefaultNameEncoding)}

func mustEncoding(name string) encoding.Encoding {
	enc, err := htmlindex.Get(name)
	if err != nil {
		panic(err)
	}
	return enc
}

// SetNameEncoding selects the encoding of fixed-size name fields in PAP and SKLB headers.
// Any WHATWG label is accepted ("utf-8", "shift_jis", "windows-1252", ...).
func SetNameEncoding(label string) error {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return errors.Wrapf(err, "Unknown name encoding %q", label)
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		name = label
	}

	nameEncoding.Lock()
	nameEncoding.name, nameEncoding.enc = name, enc
	nameEncoding.Unlock()
	return nil
}

func NameEncoding() encoding.Encoding {
	nameEncoding.RLock()
	defer nameEncoding.RUnlock()
	return nameEncoding.enc
}

// NameEncodingName is the canonical label of NameEncoding.
func NameEncodingName() string {
	nameEncoding.RLock()
	defer nameEncoding.RUnlock()
	return nameEncoding.name
}
