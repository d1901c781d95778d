package container

import (
	"github.com/cruisechaser/havok_browser/readat"
	"github.com/cruisechaser/havok_browser/utils"

	"github.com/pkg/errors"
)

const (
	PapMagic             = 0x20706170
	PapHeaderSize        = 0x1a
	PapAnimationSize     = 0x28
	PapAnimationNameSize = 0x20
)

type PapAnimation struct {
	Name     string
	Unknown0 int16
	Index    int32
	Unknown1 int16
}

// Pap is an animation pack: a clip table, one tagfile holding every clip and
// a trailing parameter blob.
type Pap struct {
	Animations       []PapAnimation
	HavokDataOffset  int32
	ParametersOffset int32
	Havok            []byte
	Parameters       []byte
}

func ReadPap(buf []byte) (pap *Pap, err error) {
	defer func() {
		if re, ok := err.(*readat.Error); ok {
			err = errors.Wrapf(ErrUnknownContainer, "truncated pap: %v", re)
		}
	}()
	defer readat.Recover(&err)

	r := readat.NewReader(buf, 0)
	if magic := r.U32(); magic != PapMagic {
		return nil, errors.Wrapf(ErrUnknownContainer, "pap magic 0x%08x", magic)
	}
	r.Seek(8)
	count := int(int16(r.U16()))
	r.Seek(0x12)

	pap = &Pap{
		HavokDataOffset:  r.I32(),
		ParametersOffset: r.I32(),
	}
	if count < 0 {
		return nil, errors.Errorf("pap with %d animations", count)
	}

	pap.Animations = make([]PapAnimation, count)
	for i := range pap.Animations {
		a := &pap.Animations[i]
		a.Name = utils.BytesToString(r.Bytes(PapAnimationNameSize))
		a.Unknown0 = int16(r.U16())
		a.Index = r.I32()
		a.Unknown1 = int16(r.U16())
	}

	havok, params := int(pap.HavokDataOffset), int(pap.ParametersOffset)
	if havok < 0 || havok > params || params > len(buf) {
		return nil, errors.Errorf("pap havok range 0x%x..0x%x outside %d bytes", havok, params, len(buf))
	}
	pap.Havok = buf[havok:params]
	pap.Parameters = buf[params:]
	return pap, nil
}
