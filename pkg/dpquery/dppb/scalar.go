// Package dppb holds the hand-maintained Go bindings for the Data
// Platform's Query service wire schema: ScalarValue, DataColumn,
// DataBucket, SamplingClock, Timestamp, DataTimestamps,
// QueryDataResponse, ExceptionalResult, DataSet, DataBlock and the
// dataset-CRUD request/response pairs. The schema is externally
// supplied; this package treats it as a fixed target and never
// evolves it.
package dppb

import "fmt"

// ScalarValue is a typed-union cell: exactly one of the Value fields is
// meaningful, selected by Type.
type ScalarValue struct {
	Type        int32
	BoolValue   bool
	Int32Value  int32
	Int64Value  int64
	FloatValue  float32
	DoubleValue float64
	StringValue string
	ImageValue  []byte
	// ValuePresent is false for a missing cell, which decodes to the
	// domain-level null (§4.9).
	ValuePresent bool
}

func (m *ScalarValue) Reset()         { *m = ScalarValue{} }
func (m *ScalarValue) String() string { return fmt.Sprintf("ScalarValue{type=%d}", m.Type) }
func (*ScalarValue) ProtoMessage()    {}

// Scalar type tags, mirroring the externally-supplied schema's enum.
const (
	ScalarTypeUnspecified int32 = iota
	ScalarTypeBool
	ScalarTypeInt32
	ScalarTypeInt64
	ScalarTypeFloat
	ScalarTypeDouble
	ScalarTypeString
	ScalarTypeImage
)

// DataColumn is a named column of typed-union cells, one per timestamp
// in the owning bucket's DataTimestamps.
type DataColumn struct {
	Name   string
	Values []*ScalarValue
}

func (m *DataColumn) Reset()         { *m = DataColumn{} }
func (m *DataColumn) String() string { return fmt.Sprintf("DataColumn{name=%s, n=%d}", m.Name, len(m.Values)) }
func (*DataColumn) ProtoMessage()    {}
