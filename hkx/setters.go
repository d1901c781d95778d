package hkx

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// ErrFieldType is returned when a decoded value does not fit the registered field.
var ErrFieldType = errors.New("field type mismatch")

// Setter stores an unwrapped value into a record. obj is what Type.New returned.
type Setter func(obj interface{}, v interface{}) error

func record[T any](obj interface{}) (T, error) {
	o, ok := obj.(T)
	if !ok {
		return o, errors.Wrapf(ErrFieldType, "record %T is not %T", obj, new(T))
	}
	return o, nil
}

// Value stores v as V. Target T may be an interface implemented by derived records.
func Value[T any, V any](get func(T) *V) Setter {
	return func(obj interface{}, v interface{}) error {
		o, err := record[T](obj)
		if err != nil {
			return err
		}
		if v == nil {
			var zero V
			*get(o) = zero
			return nil
		}
		val, ok := v.(V)
		if !ok {
			return errors.Wrapf(ErrFieldType, "cannot store %T into %T", v, new(V))
		}
		*get(o) = val
		return nil
	}
}

func Byte[T any](get func(T) *uint8) Setter       { return Value(get) }
func Int[T any](get func(T) *int32) Setter        { return Value(get) }
func Float[T any](get func(T) *float32) Setter    { return Value(get) }
func String[T any](get func(T) *string) Setter    { return Value(get) }
func Bytes[T any](get func(T) *[]byte) Setter     { return Value(get) }
func Ints[T any](get func(T) *[]int32) Setter     { return Value(get) }
func Floats[T any](get func(T) *[]float32) Setter { return Value(get) }
func Strings[T any](get func(T) *[]string) Setter { return Value(get) }

// Bool stores a byte or int field as a flag.
func Bool[T any](get func(T) *bool) Setter {
	return func(obj interface{}, v interface{}) error {
		o, err := record[T](obj)
		if err != nil {
			return err
		}
		switch b := v.(type) {
		case nil:
			*get(o) = false
		case uint8:
			*get(o) = b != 0
		case int32:
			*get(o) = b != 0
		default:
			return errors.Wrapf(ErrFieldType, "cannot store %T into bool", v)
		}
		return nil
	}
}

// Ref stores a referenced or inline record. R is usually a pointer or an interface.
func Ref[T any, R any](get func(T) *R) Setter {
	return Value(get)
}

// Refs stores an array of records. Null references become zero values.
func Refs[T any, R any](get func(T) *[]R) Setter {
	return func(obj interface{}, v interface{}) error {
		o, err := record[T](obj)
		if err != nil {
			return err
		}
		if v == nil {
			*get(o) = nil
			return nil
		}
		items, ok := v.([]interface{})
		if !ok {
			return errors.Wrapf(ErrFieldType, "cannot store %T into %T", v, new([]R))
		}
		out := make([]R, len(items))
		for i, item := range items {
			if item == nil {
				continue
			}
			if out[i], ok = item.(R); !ok {
				return errors.Wrapf(ErrFieldType, "element %d: cannot store %T into %T", i, item, new(R))
			}
		}
		*get(o) = out
		return nil
	}
}

// Vec4 stores a 4 float tuple.
func Vec4[T any](get func(T) *mgl32.Vec4) Setter {
	return func(obj interface{}, v interface{}) error {
		o, err := record[T](obj)
		if err != nil {
			return err
		}
		f, ok := v.([]float32)
		if !ok || len(f) != 4 {
			return errors.Wrapf(ErrFieldType, "cannot store %T(%d) into Vec4", v, len(f))
		}
		*get(o) = mgl32.Vec4{f[0], f[1], f[2], f[3]}
		return nil
	}
}

// Transform is a decoded qsTransform: translation, rotation, scale.
type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
}

// TransformFromFloats decodes the 12 float layout: translation xyz_, rotation xyzw, scale xyz_.
func TransformFromFloats(f []float32) (Transform, bool) {
	if len(f) != 12 {
		return Transform{}, false
	}
	return Transform{
		Translation: mgl32.Vec3{f[0], f[1], f[2]},
		Rotation:    mgl32.Quat{W: f[7], V: mgl32.Vec3{f[4], f[5], f[6]}},
		Scale:       mgl32.Vec3{f[8], f[9], f[10]},
	}, true
}

// Transforms stores an array of qsTransform tuples.
func Transforms[T any](get func(T) *[]Transform) Setter {
	return func(obj interface{}, v interface{}) error {
		o, err := record[T](obj)
		if err != nil {
			return err
		}
		if v == nil {
			*get(o) = nil
			return nil
		}
		items, ok := v.([]interface{})
		if !ok {
			return errors.Wrapf(ErrFieldType, "cannot store %T into transforms", v)
		}
		out := make([]Transform, len(items))
		for i, item := range items {
			f, _ := item.([]float32)
			if out[i], ok = TransformFromFloats(f); !ok {
				return errors.Wrapf(ErrFieldType, "element %d: %T(%d) is not a qsTransform", i, item, len(f))
			}
		}
		*get(o) = out
		return nil
	}
}

// Vec4s stores an array of 4 float tuples.
func Vec4s[T any](get func(T) *[]mgl32.Vec4) Setter {
	return func(obj interface{}, v interface{}) error {
		o, err := record[T](obj)
		if err != nil {
			return err
		}
		if v == nil {
			*get(o) = nil
			return nil
		}
		items, ok := v.([]interface{})
		if !ok {
			return errors.Wrapf(ErrFieldType, "cannot store %T into []Vec4", v)
		}
		out := make([]mgl32.Vec4, len(items))
		for i, item := range items {
			f, _ := item.([]float32)
			if len(f) != 4 {
				return errors.Wrapf(ErrFieldType, "element %d: %T(%d) is not a Vec4", i, item, len(f))
			}
			out[i] = mgl32.Vec4{f[0], f[1], f[2], f[3]}
		}
		*get(o) = out
		return nil
	}
}

// Mat4 stores a 16 float tuple, column major.
func Mat4[T any](get func(T) *mgl32.Mat4) Setter {
	return func(obj interface{}, v interface{}) error {
		o, err := record[T](obj)
		if err != nil {
			return err
		}
		f, ok := v.([]float32)
		if !ok || len(f) != 16 {
			return errors.Wrapf(ErrFieldType, "cannot store %T(%d) into Mat4", v, len(f))
		}
		copy((*get(o))[:], f)
		return nil
	}
}
