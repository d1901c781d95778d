// Package hkdef holds the record shapes of the animation container graph.
// Every shape registers itself into Registry from init.
package hkdef

import (
	"github.com/cruisechaser/havok_browser/hkx"
	"github.com/cruisechaser/havok_browser/hkx/tagfile"

	"github.com/pkg/errors"
)

var Registry = hkx.NewRegistry()

type referencedObject interface {
	HkReferencedObjectBase() *HkReferencedObject
}

type HkReferencedObject struct {
	MemSizeAndFlags int32
	ReferenceCount  int32
}

func (o *HkReferencedObject) HkReferencedObjectBase() *HkReferencedObject { return o }

var referencedObjectFields = hkx.Fields{
	"memSizeAndFlags": hkx.Int(func(o referencedObject) *int32 { return &o.HkReferencedObjectBase().MemSizeAndFlags }),
	"referenceCount":  hkx.Int(func(o referencedObject) *int32 { return &o.HkReferencedObjectBase().ReferenceCount }),
}

type HkRootLevelContainerNamedVariant struct {
	Name      string
	ClassName string
	Variant   interface{}
}

type HkRootLevelContainer struct {
	NamedVariants []*HkRootLevelContainerNamedVariant
}

func init() {
	Registry.Register("hkRootLevelContainerNamedVariant", hkx.AnyVersion,
		func() interface{} { return &HkRootLevelContainerNamedVariant{} },
		hkx.Fields{
			"name":      hkx.String(func(v *HkRootLevelContainerNamedVariant) *string { return &v.Name }),
			"className": hkx.String(func(v *HkRootLevelContainerNamedVariant) *string { return &v.ClassName }),
			"variant":   hkx.Ref(func(v *HkRootLevelContainerNamedVariant) *interface{} { return &v.Variant }),
		})
	Registry.Register("hkRootLevelContainer", hkx.AnyVersion,
		func() interface{} { return &HkRootLevelContainer{} },
		hkx.Fields{
			"namedVariants": hkx.Refs(func(c *HkRootLevelContainer) *[]*HkRootLevelContainerNamedVariant { return &c.NamedVariants }),
		})
}

// Decode parses a tagfile and deserializes its root with Registry.
func Decode(buf []byte, defs tagfile.DefinitionMap) (interface{}, *tagfile.Document, error) {
	doc, err := tagfile.Parse(buf, &tagfile.Options{Definitions: defs})
	if err != nil {
		return nil, nil, err
	}
	root, err := hkx.Deserialize(doc, &hkx.Options{Registry: Registry})
	if err != nil {
		return nil, doc, err
	}
	return root, doc, nil
}

// FindAnimationContainer returns the animation container of a root record.
func FindAnimationContainer(root interface{}) (*HkaAnimationContainer, error) {
	switch r := root.(type) {
	case *HkaAnimationContainer:
		return r, nil
	case *HkRootLevelContainer:
		for _, v := range r.NamedVariants {
			if v == nil {
				continue
			}
			if c, ok := v.Variant.(*HkaAnimationContainer); ok {
				return c, nil
			}
		}
		return nil, errors.Errorf("root level container has no hkaAnimationContainer variant")
	default:
		return nil, errors.Errorf("root record %T holds no animation container", root)
	}
}
