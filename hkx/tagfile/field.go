package tagfile

import (
	"fmt"
)

type Kind uint8

const (
	KindVoid Kind = iota
	KindByte
	KindInt
	KindFloat
	KindReference
	KindStruct
	KindString
	KindArray
)

var kindNames = [...]string{"Void", "Byte", "Int", "Float", "Reference", "Struct", "String", "Array"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

type ArrayKind uint8

const (
	NotArray ArrayKind = iota
	VariableLength
	FixedLength
)

// FieldType is a recursive variant: a scalar kind, or an array of Inner.
type FieldType struct {
	Kind   Kind
	Array  ArrayKind
	Inner  *FieldType
	Length int

	// ReferencedName is set for references and structs.
	ReferencedName string
	// Definition is resolved by name once the whole stream is parsed.
	Definition *Definition
}

func ScalarType(kind Kind) *FieldType {
	return &FieldType{Kind: kind}
}

func ReferenceType(name string) *FieldType {
	return &FieldType{Kind: KindReference, ReferencedName: name}
}

func StructType(name string) *FieldType {
	return &FieldType{Kind: KindStruct, ReferencedName: name}
}

func VariableArray(inner *FieldType) *FieldType {
	return &FieldType{Kind: KindArray, Array: VariableLength, Inner: inner}
}

func FixedArray(inner *FieldType, length int) *FieldType {
	return &FieldType{Kind: KindArray, Array: FixedLength, Inner: inner, Length: length}
}

// FloatTuple is the stored vector/matrix kinds: 4, 8, 12 or 16 floats.
func FloatTuple(length int) *FieldType {
	return FixedArray(ScalarType(KindFloat), length)
}

func (ft *FieldType) IsArray() bool {
	return ft.Kind == KindArray
}

// Element returns the innermost non-array type.
func (ft *FieldType) Element() *FieldType {
	for ft.Kind == KindArray {
		ft = ft.Inner
	}
	return ft
}

func (ft *FieldType) String() string {
	switch ft.Kind {
	case KindArray:
		if ft.Array == VariableLength {
			return ft.Inner.String() + "[?]"
		}
		return fmt.Sprintf("%v[%d]", ft.Inner, ft.Length)
	case KindReference, KindStruct:
		return fmt.Sprintf("%v<%s>", ft.Kind, ft.ReferencedName)
	default:
		return ft.Kind.String()
	}
}

type Field struct {
	Name string
	Type *FieldType
}

func (f Field) String() string {
	return fmt.Sprintf("%s(%v)", f.Name, f.Type)
}
