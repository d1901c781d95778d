package tagfile

// Bitfield is the per-field presence mask of a node.
type Bitfield struct {
	Length int
	data   []byte
}

func NewBitfield(length int, data []byte) Bitfield {
	return Bitfield{Length: length, data: data}
}

func BitfieldSize(length int) int {
	return (length + 7) / 8
}

func (b Bitfield) Get(i int) bool {
	if i < 0 || i >= b.Length {
		return false
	}
	return b.data[i>>3]&(1<<(i&7)) != 0
}

func (b Bitfield) Count() int {
	n := 0
	for i := 0; i < b.Length; i++ {
		if b.Get(i) {
			n++
		}
	}
	return n
}
