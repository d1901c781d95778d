package tagfile

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// Writer encodes tagfile streams. It exists to build synthetic inputs for tests and tools.
//
// Values passed to Node are plain Go values: nil (omitted), byte, int, float32,
// string, Ref (a reference table index, 0 is null), []interface{} for arrays
// and for inline structs (one entry per nested field).
type Writer struct {
	buf     bytes.Buffer
	strings map[string]int
	nstr    int
	defs    map[*Definition]int
	ordered []*Definition
}

func NewWriter() *Writer {
	w := &Writer{
		strings: make(map[string]int),
		nstr:    2,
		defs:    make(map[*Definition]int),
	}
	binary.Write(&w.buf, binary.LittleEndian, uint64(Magic))
	return w
}

func (w *Writer) Int(v int) {
	mag := uint64(v)
	var first byte
	if v < 0 {
		mag = uint64(-v)
		first = 1
	}
	first |= byte(mag&0x3f) << 1
	mag >>= 6
	if mag != 0 {
		first |= 0x80
	}
	w.buf.WriteByte(first)
	for mag != 0 {
		b := byte(mag & 0x7f)
		mag >>= 7
		if mag != 0 {
			b |= 0x80
		}
		w.buf.WriteByte(b)
	}
}

func (w *Writer) Byte(b byte) {
	w.buf.WriteByte(b)
}

func (w *Writer) Float(f float32) {
	binary.Write(&w.buf, binary.LittleEndian, math.Float32bits(f))
}

func (w *Writer) Raw(data []byte) {
	w.buf.Write(data)
}

// Text writes s once and back references afterwards.
func (w *Writer) Text(s string) {
	if s == "" {
		w.Int(0)
		return
	}
	if idx, ok := w.strings[s]; ok {
		w.Int(-idx)
		return
	}
	w.Int(len(s))
	w.buf.WriteString(s)
	w.strings[s] = w.nstr
	w.nstr++
}

func (w *Writer) NullString() {
	w.Int(-1)
}

func (w *Writer) Bitfield(bits []bool) {
	data := make([]byte, BitfieldSize(len(bits)))
	for i, b := range bits {
		if b {
			data[i>>3] |= 1 << (i & 7)
		}
	}
	w.buf.Write(data)
}

func (w *Writer) Metadata(version int) {
	w.Int(TagMetadata)
	w.Int(version)
}

// Definition declares def and returns its definition index.
// The parent must be declared first.
func (w *Writer) Definition(def *Definition) int {
	parent := 0
	if def.Parent != nil {
		var ok bool
		if parent, ok = w.defs[def.Parent]; !ok {
			w.fail(errors.Errorf("parent of %v is not declared", def))
		}
	}

	w.Int(TagDefinition)
	w.Text(def.Name)
	w.Int(def.Version)
	w.Int(parent)
	w.Int(len(def.Fields))
	for _, f := range def.Fields {
		w.Text(f.Name)
		w.fieldType(f.Type)
	}

	w.ordered = append(w.ordered, def)
	w.defs[def] = len(w.ordered)
	return w.defs[def]
}

func storedKind(ft *FieldType) (int, bool) {
	switch ft.Kind {
	case KindVoid:
		return storedVoid, true
	case KindByte:
		return storedByte, true
	case KindInt:
		return storedInt, true
	case KindFloat:
		return storedFloat, true
	case KindReference:
		return storedReference, true
	case KindStruct:
		return storedStruct, true
	case KindString:
		return storedString, true
	case KindArray:
		if ft.Array == FixedLength && ft.Inner.Kind == KindFloat {
			switch ft.Length {
			case 4:
				return storedFloat4, true
			case 8:
				return storedFloat8, true
			case 12:
				return storedFloat12, true
			case 16:
				return storedFloat16, true
			}
		}
	}
	return 0, false
}

func (w *Writer) fieldType(ft *FieldType) {
	if stored, ok := storedKind(ft); ok {
		w.Int(stored)
		w.typeName(ft)
		return
	}
	if ft.Kind != KindArray {
		w.fail(errors.Errorf("cannot encode field type %v", ft))
		return
	}
	stored, ok := storedKind(ft.Inner)
	if !ok {
		w.fail(errors.Errorf("cannot encode nested array type %v", ft))
		return
	}
	if ft.Array == VariableLength {
		w.Int(stored | arrayVariable<<4)
	} else {
		w.Int(stored | arrayFixed<<4)
		w.Int(ft.Length)
	}
	w.typeName(ft.Inner)
}

func (w *Writer) typeName(ft *FieldType) {
	if ft.Kind == KindReference || ft.Kind == KindStruct {
		w.Text(ft.ReferencedName)
	}
}

// Node writes a node record. values has one entry per nested field of def.
func (w *Writer) Node(def *Definition, values ...interface{}) {
	idx, ok := w.defs[def]
	if !ok {
		w.fail(errors.Errorf("%v is not declared", def))
		return
	}
	w.Int(TagNode)
	w.Int(idx)
	w.fields(def, values)
}

func (w *Writer) fields(def *Definition, values []interface{}) {
	if len(values) != len(def.NestedFields) {
		w.fail(errors.Errorf("%v has %d fields, got %d values", def, len(def.NestedFields), len(values)))
		return
	}
	present := make([]bool, len(values))
	for i, v := range values {
		present[i] = v != nil
	}
	w.Bitfield(present)
	for i, v := range values {
		if v != nil {
			w.value(def.NestedFields[i].Type, v)
		}
	}
}

func (w *Writer) EndOfStream() {
	w.Int(TagEndOfStream)
}

func (w *Writer) value(ft *FieldType, v interface{}) {
	switch ft.Kind {
	case KindVoid:
	case KindByte:
		w.Byte(v.(byte))
	case KindInt:
		w.Int(v.(int))
	case KindFloat:
		w.Float(v.(float32))
	case KindString:
		w.Text(v.(string))
	case KindReference:
		w.Int(int(v.(Ref)))
	case KindStruct:
		w.fields(w.structDefinition(ft), v.([]interface{}))
	case KindArray:
		items := v.([]interface{})
		if ft.Array == FixedLength {
			for _, item := range items {
				w.value(ft.Inner, item)
			}
			return
		}
		w.Int(len(items))
		w.vector(ft.Inner, items)
	}
}

func (w *Writer) vector(ft *FieldType, items []interface{}) {
	switch ft.Kind {
	case KindVoid:
	case KindInt:
		w.Int(4)
		for _, item := range items {
			w.Int(item.(int))
		}
	case KindStruct:
		def := w.structDefinition(ft)
		present := make([]bool, len(def.NestedFields))
		if len(items) != 0 {
			for i, v := range items[0].([]interface{}) {
				present[i] = v != nil
			}
		}
		w.Bitfield(present)
		for i, f := range def.NestedFields {
			if !present[i] {
				continue
			}
			column := make([]interface{}, len(items))
			for j, item := range items {
				column[j] = item.([]interface{})[i]
			}
			w.vector(f.Type, column)
		}
	case KindArray:
		if ft.Length == 4 {
			inner := 4
			if len(items) != 0 {
				inner = len(items[0].([]interface{}))
			}
			w.Int(inner)
		}
		for _, item := range items {
			for _, v := range item.([]interface{}) {
				w.value(ft.Inner, v)
			}
		}
	default:
		for _, item := range items {
			w.value(ft, item)
		}
	}
}

func (w *Writer) structDefinition(ft *FieldType) *Definition {
	for _, def := range w.ordered {
		if def.Name == ft.ReferencedName {
			return def
		}
	}
	w.fail(errors.Errorf("struct %q is not declared", ft.ReferencedName))
	return nil
}

// fail panics: a malformed Writer call is a bug in the test building the stream.
func (w *Writer) fail(err error) {
	panic(err)
}

func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}
