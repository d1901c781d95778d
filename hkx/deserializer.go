package hkx

import (
	"log"

	"github.com/cruisechaser/havok_browser/hkx/tagfile"
	"github.com/cruisechaser/havok_browser/utils"

	"github.com/pkg/errors"
)

// Object holds a node whose type is not registered. Fields are keyed by wire name.
type Object struct {
	Definition *tagfile.Definition
	Fields     map[string]interface{}
}

type Options struct {
	Registry *Registry
	// Normalize maps wire names to registry names. Defaults to NormalizeName.
	Normalize func(string) string
	Log       *utils.Logger
}

// Deserializer turns the untyped node graph of one document into records.
// Every node maps to exactly one record, so shared and cyclic references
// keep their identity. Not safe for concurrent use.
type Deserializer struct {
	doc       *tagfile.Document
	registry  *Registry
	normalize func(string) string
	types     map[typeKey]*boundType
	log       *utils.Logger

	records map[tagfile.Handle]interface{}
	skipped map[string]struct{}
}

func NewDeserializer(doc *tagfile.Document, opts *Options) *Deserializer {
	if opts == nil {
		opts = &Options{}
	}
	d := &Deserializer{
		doc:       doc,
		registry:  opts.Registry,
		normalize: opts.Normalize,
		log:       opts.Log,
		records:   make(map[tagfile.Handle]interface{}),
		skipped:   make(map[string]struct{}),
	}
	if d.registry == nil {
		d.registry = NewRegistry()
	}
	if d.normalize == nil {
		d.normalize = NormalizeName
	}
	d.types = d.registry.bind(d.normalize)
	return d
}

// Deserialize returns the record of the document root.
func Deserialize(doc *tagfile.Document, opts *Options) (interface{}, error) {
	return NewDeserializer(doc, opts).Record(doc.Root)
}

// DeserializeAs returns the root record as T.
func DeserializeAs[T any](doc *tagfile.Document, opts *Options) (T, error) {
	var zero T
	rec, err := Deserialize(doc, opts)
	if err != nil {
		return zero, err
	}
	t, ok := rec.(T)
	if !ok {
		return zero, errors.Wrapf(ErrFieldType, "root record is %T, not %T", rec, new(T))
	}
	return t, nil
}

// Record returns the record for node h, building it on first use.
func (d *Deserializer) Record(h tagfile.Handle) (interface{}, error) {
	if rec, ok := d.records[h]; ok {
		return rec, nil
	}

	n, err := d.doc.Nodes.Node(h)
	if err != nil {
		return nil, err
	}
	def := n.Definition

	t, ok := d.lookup(def)
	if !ok {
		obj := &Object{Definition: def, Fields: make(map[string]interface{})}
		// registered before descending so cycles resolve to this record
		d.records[h] = obj
		d.log.Printf("#%d %v: not registered, keeping generic object", h, def)
		for i, f := range def.NestedFields {
			if n.Values[i] == nil {
				continue
			}
			v, err := d.unwrap(f.Type, n.Values[i])
			if err != nil {
				return nil, errors.Wrapf(err, "%v.%s", def, f.Name)
			}
			obj.Fields[f.Name] = v
		}
		return obj, nil
	}

	rec := t.New()
	d.records[h] = rec
	d.log.Printf("#%d %v -> %T", h, def, rec)
	for i, f := range def.NestedFields {
		setter, ok := t.fields[d.normalize(f.Name)]
		if !ok {
			d.skip(def, f.Name)
			continue
		}
		if n.Values[i] == nil {
			continue
		}
		v, err := d.unwrap(f.Type, n.Values[i])
		if err != nil {
			return nil, errors.Wrapf(err, "%v.%s", def, f.Name)
		}
		if err := setter(rec, v); err != nil {
			return nil, errors.Wrapf(err, "%v.%s", def, f.Name)
		}
	}
	return rec, nil
}

// lookup finds the registered shape of def or of its nearest registered ancestor.
func (d *Deserializer) lookup(def *tagfile.Definition) (*boundType, bool) {
	for p := def; p != nil; p = p.Parent {
		name := d.normalize(p.Name)
		t, ok := d.types[typeKey{name, p.Version}]
		if !ok {
			t, ok = d.types[typeKey{name, AnyVersion}]
		}
		if ok {
			if p != def {
				d.log.Printf("%v is not registered, using %v", def, p)
			}
			return t, true
		}
	}
	return nil, false
}

func (d *Deserializer) skip(def *tagfile.Definition, field string) {
	key := def.String() + "." + field
	if _, ok := d.skipped[key]; ok {
		return
	}
	d.skipped[key] = struct{}{}
	log.Printf("[hkx] Unsupported field: %s", key)
}

// unwrap converts a tagfile value into plain Go values and records:
// uint8, int32, float32, string, records, typed slices for scalar arrays
// and []interface{} for everything else.
func (d *Deserializer) unwrap(ft *tagfile.FieldType, v tagfile.Value) (interface{}, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case tagfile.Byte:
		return uint8(v), nil
	case tagfile.Int:
		return int32(v), nil
	case tagfile.Float:
		return float32(v), nil
	case tagfile.String:
		return string(v), nil
	case tagfile.Ref:
		if tagfile.Handle(v) == tagfile.NilHandle {
			return nil, nil
		}
		return d.Record(tagfile.Handle(v))
	case tagfile.Array:
		if ft.Kind != tagfile.KindArray {
			return nil, errors.Wrapf(tagfile.ErrFormat, "array value for %v field", ft)
		}
		return d.unwrapArray(ft.Inner, v)
	default:
		return nil, errors.Wrapf(tagfile.ErrFormat, "unknown value %T", v)
	}
}

func (d *Deserializer) unwrapArray(inner *tagfile.FieldType, arr tagfile.Array) (interface{}, error) {
	switch inner.Kind {
	case tagfile.KindByte:
		out := make([]byte, len(arr))
		for i, v := range arr {
			b, ok := v.(tagfile.Byte)
			if !ok {
				return nil, errors.Wrapf(tagfile.ErrFormat, "element %d is %T in byte array", i, v)
			}
			out[i] = byte(b)
		}
		return out, nil
	case tagfile.KindInt:
		out := make([]int32, len(arr))
		for i, v := range arr {
			n, ok := v.(tagfile.Int)
			if !ok {
				return nil, errors.Wrapf(tagfile.ErrFormat, "element %d is %T in int array", i, v)
			}
			out[i] = int32(n)
		}
		return out, nil
	case tagfile.KindFloat:
		out, ok := arr.Floats()
		if !ok {
			return nil, errors.Wrap(tagfile.ErrFormat, "non float element in float array")
		}
		return out, nil
	case tagfile.KindString:
		out := make([]string, len(arr))
		for i, v := range arr {
			s, ok := v.(tagfile.String)
			if !ok {
				return nil, errors.Wrapf(tagfile.ErrFormat, "element %d is %T in string array", i, v)
			}
			out[i] = string(s)
		}
		return out, nil
	default:
		out := make([]interface{}, len(arr))
		for i, v := range arr {
			u, err := d.unwrap(inner, v)
			if err != nil {
				return nil, errors.Wrapf(err, "element %d", i)
			}
			out[i] = u
		}
		return out, nil
	}
}
