package tagfile

import (
	"fmt"
)

type DefinitionKey struct {
	Name    string
	Version int
}

type Definition struct {
	Name    string
	Version int
	Parent  *Definition
	// Fields declared by this definition only
	Fields []Field
	// NestedFields is Parent.NestedFields followed by Fields. This is the wire order.
	NestedFields []Field
}

func NewDefinition(name string, version int, parent *Definition, fields []Field) *Definition {
	d := &Definition{
		Name:    name,
		Version: version,
		Parent:  parent,
		Fields:  fields,
	}
	if parent != nil {
		d.NestedFields = make([]Field, 0, len(parent.NestedFields)+len(fields))
		d.NestedFields = append(d.NestedFields, parent.NestedFields...)
	}
	d.NestedFields = append(d.NestedFields, fields...)
	return d
}

func (d *Definition) Key() DefinitionKey {
	return DefinitionKey{Name: d.Name, Version: d.Version}
}

func (d *Definition) String() string {
	return fmt.Sprintf("%s(v%d)", d.Name, d.Version)
}

// FieldIndex returns position of field in NestedFields or -1.
func (d *Definition) FieldIndex(name string) int {
	for i, f := range d.NestedFields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// IsA reports whether d is name or inherits from it.
func (d *Definition) IsA(name string) bool {
	for ; d != nil; d = d.Parent {
		if d.Name == name {
			return true
		}
	}
	return false
}

// DefinitionMap interns definitions by (name, version).
// It may be shared by sequential parses of files with a common schema.
// It is not safe for concurrent use.
type DefinitionMap map[DefinitionKey]*Definition

func NewDefinitionMap() DefinitionMap {
	return make(DefinitionMap)
}
