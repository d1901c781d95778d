// Package container unwraps the game files that embed a Havok tagfile.
package container

import (
	"encoding/binary"

	"github.com/cruisechaser/havok_browser/hkx/tagfile"

	"github.com/pkg/errors"
)

type Kind int

const (
	KindTagfile Kind = iota
	KindPap
	KindSklb
)

func (k Kind) String() string {
	switch k {
	case KindTagfile:
		return "tagfile"
	case KindPap:
		return "pap"
	case KindSklb:
		return "sklb"
	}
	return "unknown"
}

var ErrUnknownContainer = errors.New("unknown container")

// File is a container with its embedded tagfile located.
type File struct {
	Kind  Kind
	Havok []byte
	Pap   *Pap
	Sklb  *Sklb
}

// Open recognises buf by its magic. A bare tagfile is returned as is.
func Open(buf []byte) (*File, error) {
	if len(buf) < 4 {
		return nil, errors.Wrapf(ErrUnknownContainer, "%d bytes", len(buf))
	}
	if len(buf) >= 8 && binary.LittleEndian.Uint64(buf) == tagfile.Magic {
		return &File{Kind: KindTagfile, Havok: buf}, nil
	}

	switch binary.LittleEndian.Uint32(buf) {
	case PapMagic:
		pap, err := ReadPap(buf)
		if err != nil {
			return nil, err
		}
		return &File{Kind: KindPap, Havok: pap.Havok, Pap: pap}, nil
	case SklbMagic:
		sklb, err := ReadSklb(buf)
		if err != nil {
			return nil, err
		}
		return &File{Kind: KindSklb, Havok: sklb.Havok, Sklb: sklb}, nil
	}
	return nil, errors.Wrapf(ErrUnknownContainer, "magic 0x%08x", binary.LittleEndian.Uint32(buf))
}
