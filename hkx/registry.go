package hkx

import (
	"unicode"
	"unicode/utf8"
)

// AnyVersion registers a type for every version without an exact registration.
const AnyVersion = -1

// Fields maps normalized field names to setters.
type Fields map[string]Setter

type Type struct {
	Name    string
	Version int
	New     func() interface{}
	Fields  Fields

	// names as passed to Register
	rawName   string
	rawFields Fields
}

type typeKey struct {
	name    string
	version int
}

// Registry maps (type name, version) to record factories and field setters.
// It is built once at startup and read-only afterwards.
type Registry struct {
	types map[typeKey]*Type
}

func NewRegistry() *Registry {
	return &Registry{types: make(map[typeKey]*Type)}
}

// Register adds a record shape. Field sets are merged in order, so a derived
// type lists its parent's Fields first.
func (r *Registry) Register(name string, version int, factory func() interface{}, fields ...Fields) *Type {
	t := &Type{
		Name:    NormalizeName(name),
		Version: version,
		New:     factory,
		Fields:  make(Fields),

		rawName:   name,
		rawFields: make(Fields),
	}
	for _, fs := range fields {
		for fname, setter := range fs {
			t.Fields[NormalizeName(fname)] = setter
			t.rawFields[fname] = setter
		}
	}
	r.types[typeKey{t.Name, version}] = t
	return t
}

func (r *Registry) Lookup(name string, version int) (*Type, bool) {
	name = NormalizeName(name)
	if t, ok := r.types[typeKey{name, version}]; ok {
		return t, true
	}
	t, ok := r.types[typeKey{name, AnyVersion}]
	return t, ok
}

// boundType is a Type whose field keys went through a caller supplied normalizer.
type boundType struct {
	*Type
	fields Fields
}

// bind re-keys every registered type and field with normalize, so wire names
// passed through the same function find them.
func (r *Registry) bind(normalize func(string) string) map[typeKey]*boundType {
	bound := make(map[typeKey]*boundType, len(r.types))
	for _, t := range r.types {
		bt := &boundType{Type: t, fields: make(Fields, len(t.rawFields))}
		for fname, setter := range t.rawFields {
			bt.fields[normalize(fname)] = setter
		}
		bound[typeKey{normalize(t.rawName), t.Version}] = bt
	}
	return bound
}

func (r *Registry) Types() []*Type {
	types := make([]*Type, 0, len(r.types))
	for _, t := range r.types {
		types = append(types, t)
	}
	return types
}

// NormalizeName upper-cases the first letter: hkaAnimation -> HkaAnimation.
func NormalizeName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}
