package tagfile

import (
	"log"

	"github.com/cruisechaser/havok_browser/readat"
	"github.com/cruisechaser/havok_browser/utils"

	"github.com/pkg/errors"
)

const Magic = 0xD011FACECAB00D1E

const SupportedVersion = 3

// record tags
const (
	TagMetadata    = 1
	TagDefinition  = 2
	TagNode        = 4
	TagEndOfStream = 7
)

// stored field kinds (low nibble of the field type varint)
const (
	storedVoid = iota
	storedByte
	storedInt
	storedFloat
	storedFloat4
	storedFloat8
	storedFloat12
	storedFloat16
	storedReference
	storedStruct
	storedString
)

// array modifier (field type varint >> 4)
const (
	arrayNone     = 0
	arrayVariable = 1
	arrayFixed    = 2
)

type Options struct {
	// Definitions is reused and extended by the parse. Nil means a fresh map.
	Definitions DefinitionMap
	Log         *utils.Logger
}

// Document is the result of one parse.
type Document struct {
	Version int
	// Root is the first node of the stream
	Root  Handle
	Nodes *Arena
	// Definitions in declaration order, duplicates resolved to the interned instance.
	Definitions []*Definition
}

func (d *Document) RootNode() (*Node, error) {
	return d.Nodes.Node(d.Root)
}

type parser struct {
	*stream
	log *utils.Logger

	version     int
	definitions DefinitionMap
	// index 0 is the nil definition
	ordered []*Definition
	byName  map[string]*Definition

	nodes *Arena
	// reference index -> node handle; index 0 is the null reference
	references []Handle
	pending    map[int]Handle
}

// Parse reads one tagfile stream. The whole stream is decoded before returning.
func Parse(buf []byte, opts *Options) (doc *Document, err error) {
	if opts == nil {
		opts = &Options{}
	}
	defs := opts.Definitions
	if defs == nil {
		defs = NewDefinitionMap()
	}

	p := &parser{
		stream:      newStream(buf),
		log:         opts.Log,
		definitions: defs,
		ordered:     []*Definition{nil},
		byName:      make(map[string]*Definition),
		nodes:       &Arena{},
		references:  []Handle{NilHandle},
		pending:     make(map[int]Handle),
	}

	defer func() {
		if re, ok := err.(*readat.Error); ok {
			err = errors.Wrapf(ErrFormat, "truncated stream: %v", re)
		}
	}()
	defer readat.Recover(&err)

	if err := p.parse(); err != nil {
		return nil, err
	}

	if p.nodes.Len() == 0 {
		return nil, errors.Wrap(ErrFormat, "stream has no nodes")
	}
	if n := p.nodes.PendingCount(); n != 0 {
		log.Printf("[tagfile] %d referenced nodes never populated", n)
	}

	return &Document{
		Version:     p.version,
		Root:        0,
		Nodes:       p.nodes,
		Definitions: p.ordered[1:],
	}, nil
}

func (p *parser) parse() error {
	if magic := p.r.U64(); magic != Magic {
		return errors.Wrapf(ErrFormat, "bad magic 0x%x", magic)
	}

	for {
		offset := p.r.Offset()
		tag, err := p.readInt()
		if err != nil {
			return err
		}

		switch tag {
		case TagMetadata:
			if p.version, err = p.readInt(); err != nil {
				return err
			}
			if p.version != SupportedVersion {
				return errors.Wrapf(ErrFormat, "unsupported tagfile version %d", p.version)
			}
		case TagDefinition:
			if err := p.readDefinition(); err != nil {
				return errors.Wrapf(err, "definition at 0x%x", offset)
			}
		case TagNode:
			if err := p.readNode(); err != nil {
				return errors.Wrapf(err, "node at 0x%x", offset)
			}
		case TagEndOfStream:
			return p.resolveReferencedDefinitions()
		default:
			return errors.Wrapf(ErrFormat, "unknown tag %d at 0x%x", tag, offset)
		}
	}
}

func (p *parser) readDefinition() error {
	name, err := p.readString()
	if err != nil {
		return err
	}
	version, err := p.readInt()
	if err != nil {
		return err
	}
	parentIndex, err := p.readInt()
	if err != nil {
		return err
	}
	if parentIndex < 0 || parentIndex >= len(p.ordered) {
		return errors.Wrapf(ErrReference, "%s(v%d): parent definition %d out of range", name, version, parentIndex)
	}
	numFields, err := p.readInt()
	if err != nil {
		return err
	}
	if numFields < 0 {
		return errors.Wrapf(ErrFormat, "%s(v%d): negative field count", name, version)
	}

	fields := make([]Field, numFields)
	for i := range fields {
		if fields[i].Name, err = p.readString(); err != nil {
			return err
		}
		if fields[i].Type, err = p.readFieldType(); err != nil {
			return errors.Wrapf(err, "%s(v%d).%s", name, version, fields[i].Name)
		}
	}

	def := NewDefinition(name, version, p.ordered[parentIndex], fields)
	if existing, ok := p.definitions[def.Key()]; ok {
		def = existing
	} else {
		p.definitions[def.Key()] = def
	}
	p.ordered = append(p.ordered, def)
	if _, ok := p.byName[def.Name]; !ok {
		p.byName[def.Name] = def
	}
	p.log.Printf("definition %d: %v, %d fields", len(p.ordered)-1, def, len(def.NestedFields))
	return nil
}

func (p *parser) readFieldType() (*FieldType, error) {
	raw, err := p.readInt()
	if err != nil {
		return nil, err
	}
	stored := raw & 0xf
	array := raw >> 4

	length := 0
	if array == arrayFixed {
		if length, err = p.readInt(); err != nil {
			return nil, err
		}
		if length < 0 {
			return nil, errors.Wrapf(ErrFormat, "negative fixed array length %d", length)
		}
	}

	var ft *FieldType
	switch stored {
	case storedVoid:
		ft = ScalarType(KindVoid)
	case storedByte:
		ft = ScalarType(KindByte)
	case storedInt:
		ft = ScalarType(KindInt)
	case storedFloat:
		ft = ScalarType(KindFloat)
	case storedFloat4:
		ft = FloatTuple(4)
	case storedFloat8:
		ft = FloatTuple(8)
	case storedFloat12:
		ft = FloatTuple(12)
	case storedFloat16:
		ft = FloatTuple(16)
	case storedReference, storedStruct:
		name, err := p.readString()
		if err != nil {
			return nil, err
		}
		if stored == storedReference {
			ft = ReferenceType(name)
		} else {
			ft = StructType(name)
		}
	case storedString:
		ft = ScalarType(KindString)
	default:
		return nil, errors.Wrapf(ErrFormat, "unknown stored field type %d (raw 0x%x)", stored, raw)
	}

	switch array {
	case arrayNone:
		return ft, nil
	case arrayVariable:
		return VariableArray(ft), nil
	case arrayFixed:
		return FixedArray(ft, length), nil
	default:
		return nil, errors.Wrapf(ErrFormat, "unknown array modifier %d (raw 0x%x)", array, raw)
	}
}

// resolveReferencedDefinitions binds every reference and struct field type,
// inner array types included, to the first declared definition of that name.
func (p *parser) resolveReferencedDefinitions() error {
	seen := make(map[*FieldType]struct{})
	var remaining []*FieldType
	for _, def := range p.ordered[1:] {
		for _, f := range def.Fields {
			if _, ok := seen[f.Type]; !ok {
				seen[f.Type] = struct{}{}
				remaining = append(remaining, f.Type)
			}
		}
	}

	for len(remaining) != 0 {
		ft := remaining[len(remaining)-1]
		remaining = remaining[:len(remaining)-1]

		if ft.Inner != nil {
			if _, ok := seen[ft.Inner]; !ok {
				seen[ft.Inner] = struct{}{}
				remaining = append(remaining, ft.Inner)
			}
		}
		if ft.ReferencedName != "" {
			def, ok := p.byName[ft.ReferencedName]
			if !ok {
				return errors.Wrapf(ErrReference, "referenced definition %q was never declared", ft.ReferencedName)
			}
			ft.Definition = def
		}
	}
	return nil
}

func (p *parser) definitionByIndex(index int) (*Definition, error) {
	if index <= 0 || index >= len(p.ordered) {
		return nil, errors.Wrapf(ErrReference, "definition index %d out of range (%d declared)", index, len(p.ordered)-1)
	}
	return p.ordered[index], nil
}

func (p *parser) structDefinition(name string) (*Definition, error) {
	def, ok := p.byName[name]
	if !ok {
		return nil, errors.Wrapf(ErrReference, "struct definition %q is not declared yet", name)
	}
	return def, nil
}

func (p *parser) readNode() error {
	refIndex := len(p.references)
	h, ok := p.pending[refIndex]
	if ok {
		delete(p.pending, refIndex)
	} else {
		h = p.nodes.reserve()
	}
	p.references = append(p.references, h)

	defIndex, err := p.readInt()
	if err != nil {
		return err
	}
	def, err := p.definitionByIndex(defIndex)
	if err != nil {
		return err
	}

	values, err := p.readFields(def)
	if err != nil {
		return err
	}
	p.nodes.fill(h, &Node{Definition: def, Values: values})
	p.log.Printf("node #%d (ref %d): %v", h, refIndex, def)
	return nil
}

func (p *parser) readFields(def *Definition) ([]Value, error) {
	mask := p.readBitfield(len(def.NestedFields))
	values := make([]Value, len(def.NestedFields))
	for i, f := range def.NestedFields {
		if !mask.Get(i) {
			continue
		}
		v, err := p.readValue(f.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "%v.%s", def, f.Name)
		}
		values[i] = v
	}
	return values, nil
}

func (p *parser) readReference() (Value, error) {
	refIndex, err := p.readInt()
	if err != nil {
		return nil, err
	}
	if refIndex < 0 {
		return nil, errors.Wrapf(ErrReference, "negative reference index %d", refIndex)
	}
	if refIndex < len(p.references) {
		return Ref(p.references[refIndex]), nil
	}

	h, ok := p.pending[refIndex]
	if !ok {
		h = p.nodes.reserve()
		p.pending[refIndex] = h
	}
	return Ref(h), nil
}

func (p *parser) readStruct(name string) (Value, error) {
	def, err := p.structDefinition(name)
	if err != nil {
		return nil, err
	}
	values, err := p.readFields(def)
	if err != nil {
		return nil, err
	}
	return Ref(p.nodes.push(&Node{Definition: def, Values: values})), nil
}

func (p *parser) readValue(ft *FieldType) (Value, error) {
	switch ft.Kind {
	case KindVoid:
		return nil, nil
	case KindByte:
		return Byte(p.r.U8()), nil
	case KindInt:
		v, err := p.readInt()
		return Int(v), err
	case KindFloat:
		return Float(p.r.F32()), nil
	case KindString:
		s, _, err := p.readNullableString()
		return String(s), err
	case KindReference:
		return p.readReference()
	case KindStruct:
		return p.readStruct(ft.ReferencedName)
	case KindArray:
		if ft.Array == FixedLength {
			arr := make(Array, ft.Length)
			for i := range arr {
				v, err := p.readValue(ft.Inner)
				if err != nil {
					return nil, err
				}
				arr[i] = v
			}
			return arr, nil
		}
		count, err := p.readInt()
		if err != nil {
			return nil, err
		}
		if count < 0 {
			return nil, errors.Wrapf(ErrFormat, "negative array length %d", count)
		}
		return p.readVector(ft.Inner, count)
	default:
		return nil, errors.Wrapf(ErrFormat, "unknown field kind %v", ft.Kind)
	}
}

// readVector decodes count elements of a variable array. Elements of one
// kind are packed together; arrays of structs are stored field by field.
func (p *parser) readVector(ft *FieldType, count int) (Array, error) {
	arr := make(Array, count)
	switch ft.Kind {
	case KindVoid:
		// void elements stay nil
	case KindByte:
		for i, b := range p.r.Bytes(count) {
			arr[i] = Byte(b)
		}
	case KindInt:
		width, err := p.readInt()
		if err != nil {
			return nil, err
		}
		if width != 4 {
			return nil, errors.Wrapf(ErrFormat, "unsupported int vector element width %d", width)
		}
		for i := range arr {
			v, err := p.readInt()
			if err != nil {
				return nil, err
			}
			arr[i] = Int(v)
		}
	case KindFloat:
		for i := range arr {
			arr[i] = Float(p.r.F32())
		}
	case KindString:
		for i := range arr {
			s, _, err := p.readNullableString()
			if err != nil {
				return nil, err
			}
			arr[i] = String(s)
		}
	case KindReference:
		for i := range arr {
			v, err := p.readReference()
			if err != nil {
				return nil, err
			}
			arr[i] = v
		}
	case KindStruct:
		return p.readStructVector(ft.ReferencedName, count)
	case KindArray:
		if ft.Array != FixedLength {
			return nil, errors.Wrap(ErrFormat, "variable array nested in variable array")
		}
		inner := ft.Length
		if inner == 4 {
			n, err := p.readInt()
			if err != nil {
				return nil, err
			}
			if n < 0 {
				return nil, errors.Wrapf(ErrFormat, "negative tuple length %d", n)
			}
			inner = n
		}
		for i := range arr {
			tuple := make(Array, inner)
			for j := range tuple {
				v, err := p.readValue(ft.Inner)
				if err != nil {
					return nil, err
				}
				tuple[j] = v
			}
			arr[i] = tuple
		}
	default:
		return nil, errors.Wrapf(ErrFormat, "unknown field kind %v", ft.Kind)
	}
	return arr, nil
}

func (p *parser) readStructVector(name string, count int) (Array, error) {
	def, err := p.structDefinition(name)
	if err != nil {
		return nil, err
	}

	mask := p.readBitfield(len(def.NestedFields))
	columns := make([]Array, len(def.NestedFields))
	for i, f := range def.NestedFields {
		if !mask.Get(i) {
			continue
		}
		column, err := p.readVector(f.Type, count)
		if err != nil {
			return nil, errors.Wrapf(err, "%v.%s[]", def, f.Name)
		}
		columns[i] = column
	}

	arr := make(Array, count)
	for i := range arr {
		values := make([]Value, len(def.NestedFields))
		for j, column := range columns {
			if column != nil {
				values[j] = column[i]
			}
		}
		arr[i] = Ref(p.nodes.push(&Node{Definition: def, Values: values}))
	}
	return arr, nil
}
