package model

import "fmt"

// ScalarType tags the wire/domain type carried by a DataBucket's values.
type ScalarType uint8

const (
	ScalarUnspecified ScalarType = iota
	ScalarBool
	ScalarInt32
	ScalarInt64
	ScalarFloat32
	ScalarFloat64
	ScalarString
	ScalarImage
)

func (t ScalarType) String() string {
	switch t {
	case ScalarBool:
		return "bool"
	case ScalarInt32:
		return "int32"
	case ScalarInt64:
		return "int64"
	case ScalarFloat32:
		return "float32"
	case ScalarFloat64:
		return "float64"
	case ScalarString:
		return "string"
	case ScalarImage:
		return "image"
	default:
		return fmt.Sprintf("unspecified(%d)", uint8(t))
	}
}

// Scalar is a single typed sample. A nil Value represents a missing cell
// (§4.9: "a missing cell decodes to null"). Slots inserted by
// UniformSamplingBlock.InsertEmptyTimeSeries hold ZeroValue of the
// column's type, which is non-nil for every known type.
type Scalar struct {
	Type  ScalarType
	Value any
}

// Equal reports structural equality, used by the round-trip testable
// property (§8 property 5).
func (s Scalar) Equal(o Scalar) bool {
	if s.Type != o.Type {
		return false
	}
	if s.Type == ScalarImage {
		sb, sok := s.Value.([]byte)
		ob, ook := o.Value.([]byte)
		if sok != ook {
			return false
		}
		if !sok {
			return true
		}
		if len(sb) != len(ob) {
			return false
		}
		for i := range sb {
			if sb[i] != ob[i] {
				return false
			}
		}
		return true
	}
	return s.Value == o.Value
}

// ZeroValue returns the zero/null scalar for a given type, used by
// InsertEmptyTimeSeries.
func ZeroValue(t ScalarType) Scalar {
	switch t {
	case ScalarBool:
		return Scalar{Type: t, Value: false}
	case ScalarInt32:
		return Scalar{Type: t, Value: int32(0)}
	case ScalarInt64:
		return Scalar{Type: t, Value: int64(0)}
	case ScalarFloat32:
		return Scalar{Type: t, Value: float32(0)}
	case ScalarFloat64:
		return Scalar{Type: t, Value: float64(0)}
	case ScalarString:
		return Scalar{Type: t, Value: ""}
	case ScalarImage:
		return Scalar{Type: t, Value: []byte(nil)}
	default:
		return Scalar{Type: t, Value: nil}
	}
}
