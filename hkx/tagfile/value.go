package tagfile

import (
	"fmt"
)

// Value is one decoded field value: Byte, Int, Float, String, Ref or Array.
// A nil Value in Node.Values means the field was not serialized or is void.
type Value interface {
	isValue()
}

type (
	Byte   uint8
	Int    int32
	Float  float32
	String string
	// Ref is a handle into the node arena. Refs to structs point at inline nodes.
	Ref Handle
	// Array of element values. Arrays of fixed float tuples hold nested Arrays.
	Array []Value
)

func (Byte) isValue()   {}
func (Int) isValue()    {}
func (Float) isValue()  {}
func (String) isValue() {}
func (Ref) isValue()    {}
func (Array) isValue()  {}

func (r Ref) String() string   { return fmt.Sprintf("#%d", int(r)) }
func (a Array) String() string { return fmt.Sprintf("Array(%d items)", len(a)) }

// Floats flattens an array of Float values.
func (a Array) Floats() ([]float32, bool) {
	r := make([]float32, len(a))
	for i, v := range a {
		f, ok := v.(Float)
		if !ok {
			return nil, false
		}
		r[i] = float32(f)
	}
	return r, true
}
