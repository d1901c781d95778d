package container

import (
	"github.com/cruisechaser/havok_browser/readat"

	"github.com/pkg/errors"
)

const (
	SklbMagic       = 0x736b6c62
	SklbVersion0021 = 0x31323030
	SklbVersion0031 = 0x31333030
)

// Sklb is a skeleton file. Everything past HavokOffset is the tagfile.
type Sklb struct {
	Version     uint32
	Unknown0    uint32
	HavokOffset uint32
	Havok       []byte
}

func ReadSklb(buf []byte) (sklb *Sklb, err error) {
	defer func() {
		if re, ok := err.(*readat.Error); ok {
			err = errors.Wrapf(ErrUnknownContainer, "truncated sklb: %v", re)
		}
	}()
	defer readat.Recover(&err)

	r := readat.NewReader(buf, 0)
	if magic := r.U32(); magic != SklbMagic {
		return nil, errors.Wrapf(ErrUnknownContainer, "sklb magic 0x%08x", magic)
	}

	sklb = &Sklb{Version: r.U32()}
	switch sklb.Version {
	case SklbVersion0021:
		sklb.Unknown0 = uint32(r.U16())
		sklb.HavokOffset = uint32(r.U16())
	case SklbVersion0031:
		sklb.Unknown0 = r.U32()
		sklb.HavokOffset = r.U32()
	default:
		return nil, errors.Errorf("unsupported sklb version 0x%08x", sklb.Version)
	}

	if int64(sklb.HavokOffset) > int64(len(buf)) {
		return nil, errors.Errorf("sklb havok offset 0x%x outside %d bytes", sklb.HavokOffset, len(buf))
	}
	sklb.Havok = buf[sklb.HavokOffset:]
	return sklb, nil
}
