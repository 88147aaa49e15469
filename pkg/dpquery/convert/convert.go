// Package convert implements the protobuf ↔ domain conversion functions
// of §4.9: pure functions, no I/O, no state, one toDomain (and where
// round-tripped, toWire) per wire type.
package convert

import (
	"time"

	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/dperrors"
	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/dppb"
	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/model"
)

var scalarTypeToDomain = map[int32]model.ScalarType{
	dppb.ScalarTypeBool:   model.ScalarBool,
	dppb.ScalarTypeInt32:  model.ScalarInt32,
	dppb.ScalarTypeInt64:  model.ScalarInt64,
	dppb.ScalarTypeFloat:  model.ScalarFloat32,
	dppb.ScalarTypeDouble: model.ScalarFloat64,
	dppb.ScalarTypeString: model.ScalarString,
	dppb.ScalarTypeImage:  model.ScalarImage,
}

var scalarTypeToWire = map[model.ScalarType]int32{
	model.ScalarBool:    dppb.ScalarTypeBool,
	model.ScalarInt32:   dppb.ScalarTypeInt32,
	model.ScalarInt64:   dppb.ScalarTypeInt64,
	model.ScalarFloat32: dppb.ScalarTypeFloat,
	model.ScalarFloat64: dppb.ScalarTypeDouble,
	model.ScalarString:  dppb.ScalarTypeString,
	model.ScalarImage:   dppb.ScalarTypeImage,
}

// ScalarTypeToDomain maps a wire type tag to the domain ScalarType.
func ScalarTypeToDomain(wireType int32) (model.ScalarType, error) {
	t, ok := scalarTypeToDomain[wireType]
	if !ok {
		return model.ScalarUnspecified, dperrors.Newf(dperrors.KindUnsupportedType, "unsupported wire scalar type %d", wireType)
	}
	return t, nil
}

// ScalarToDomain converts one typed-union cell. A cell with
// ValuePresent == false decodes to a null scalar (§4.9).
func ScalarToDomain(v *dppb.ScalarValue, t model.ScalarType) model.Scalar {
	if v == nil || !v.ValuePresent {
		return model.Scalar{Type: t, Value: nil}
	}
	switch t {
	case model.ScalarBool:
		return model.Scalar{Type: t, Value: v.BoolValue}
	case model.ScalarInt32:
		return model.Scalar{Type: t, Value: v.Int32Value}
	case model.ScalarInt64:
		return model.Scalar{Type: t, Value: v.Int64Value}
	case model.ScalarFloat32:
		return model.Scalar{Type: t, Value: v.FloatValue}
	case model.ScalarFloat64:
		return model.Scalar{Type: t, Value: v.DoubleValue}
	case model.ScalarString:
		return model.Scalar{Type: t, Value: v.StringValue}
	case model.ScalarImage:
		return model.Scalar{Type: t, Value: v.ImageValue}
	default:
		return model.Scalar{Type: t, Value: nil}
	}
}

// ScalarToWire is the inverse of ScalarToDomain.
func ScalarToWire(s model.Scalar) *dppb.ScalarValue {
	if s.Value == nil {
		return &dppb.ScalarValue{Type: scalarTypeToWire[s.Type], ValuePresent: false}
	}
	w := &dppb.ScalarValue{Type: scalarTypeToWire[s.Type], ValuePresent: true}
	switch s.Type {
	case model.ScalarBool:
		w.BoolValue = s.Value.(bool)
	case model.ScalarInt32:
		w.Int32Value = s.Value.(int32)
	case model.ScalarInt64:
		w.Int64Value = s.Value.(int64)
	case model.ScalarFloat32:
		w.FloatValue = s.Value.(float32)
	case model.ScalarFloat64:
		w.DoubleValue = s.Value.(float64)
	case model.ScalarString:
		w.StringValue = s.Value.(string)
	case model.ScalarImage:
		w.ImageValue = s.Value.([]byte)
	}
	return w
}

// TimestampToDomain converts a wire Timestamp to a time.Time (UTC).
func TimestampToDomain(ts *dppb.Timestamp) time.Time {
	if ts == nil {
		return time.Time{}
	}
	return time.Unix(ts.EpochSeconds, ts.NanoSeconds).UTC()
}

// TimestampToWire is the inverse of TimestampToDomain.
func TimestampToWire(t time.Time) *dppb.Timestamp {
	return &dppb.Timestamp{EpochSeconds: t.Unix(), NanoSeconds: int64(t.Nanosecond())}
}

// DataTimestampsToDomain decodes the oneof per §4.9: "DataTimestamps with
// SamplingClock branch → UniformClock; with explicit list branch →
// TimestampList".
func DataTimestampsToDomain(dt *dppb.DataTimestamps) (model.TimestampDescriptor, error) {
	switch {
	case dt == nil:
		return nil, dperrors.New(dperrors.KindInvalidRequest, "DataTimestamps message is nil")
	case dt.Clock != nil:
		clock := model.UniformClock{
			Start:       TimestampToDomain(dt.Clock.StartTime),
			PeriodNanos: int64(dt.Clock.PeriodNanos),
			Count_:      int32(dt.Clock.Count),
		}
		if err := clock.Validate(); err != nil {
			return nil, err
		}
		return clock, nil
	case dt.List != nil:
		times := make([]time.Time, len(dt.List.Timestamps))
		for i, t := range dt.List.Timestamps {
			times[i] = TimestampToDomain(t)
		}
		list := model.TimestampList{Times: times}
		if err := list.Validate(); err != nil {
			return nil, err
		}
		return list, nil
	default:
		return nil, dperrors.New(dperrors.KindInvalidRequest, "DataTimestamps has neither clock nor list branch set")
	}
}

// DataTimestampsToWire is the inverse of DataTimestampsToDomain.
func DataTimestampsToWire(d model.TimestampDescriptor) *dppb.DataTimestamps {
	switch v := d.(type) {
	case model.UniformClock:
		return &dppb.DataTimestamps{Clock: &dppb.SamplingClock{
			StartTime:   TimestampToWire(v.Start),
			PeriodNanos: uint64(v.PeriodNanos),
			Count:       uint32(v.Count_),
		}}
	case model.TimestampList:
		list := make([]*dppb.Timestamp, len(v.Times))
		for i, t := range v.Times {
			list[i] = TimestampToWire(t)
		}
		return &dppb.DataTimestamps{List: &dppb.TimestampList{Timestamps: list}}
	default:
		return nil
	}
}

// DataColumnToDomain decodes a wire DataColumn into the ordered scalar
// list a DataBucket carries.
func DataColumnToDomain(col *dppb.DataColumn, t model.ScalarType) []model.Scalar {
	if col == nil {
		return nil
	}
	values := make([]model.Scalar, len(col.Values))
	for i, v := range col.Values {
		values[i] = ScalarToDomain(v, t)
	}
	return values
}

// DataColumnToWire is the inverse of DataColumnToDomain.
func DataColumnToWire(name string, values []model.Scalar) *dppb.DataColumn {
	wire := make([]*dppb.ScalarValue, len(values))
	for i, v := range values {
		wire[i] = ScalarToWire(v)
	}
	return &dppb.DataColumn{Name: name, Values: wire}
}

// BucketToDomain converts one wire DataBucket to a domain DataBucket.
// The bucket's ScalarType must be supplied by the caller (the wire
// schema doesn't repeat it per-cell at the bucket level); the assembler
// infers it from the bucket's first present cell.
func BucketToDomain(b *dppb.DataBucket, t model.ScalarType) (model.DataBucket, error) {
	if b == nil {
		return model.DataBucket{}, dperrors.New(dperrors.KindInvalidRequest, "DataBucket message is nil")
	}
	descriptor, err := DataTimestampsToDomain(b.DataTimestamps)
	if err != nil {
		return model.DataBucket{}, err
	}
	return model.DataBucket{
		SourceName: b.SourceName,
		DataType:   t,
		Values:     DataColumnToDomain(b.DataColumn, t),
		Timestamps: descriptor,
	}, nil
}

// BucketToWire is the inverse of BucketToDomain.
func BucketToWire(b model.DataBucket) *dppb.DataBucket {
	return &dppb.DataBucket{
		SourceName:     b.SourceName,
		DataColumn:     DataColumnToWire(b.SourceName, b.Values),
		DataTimestamps: DataTimestampsToWire(b.Timestamps),
	}
}

// ExceptionalResultToError surfaces an inbound ExceptionalResult as a
// ServerError, unchanged (§4.9, §7).
func ExceptionalResultToError(er *dppb.ExceptionalResult) *dperrors.Error {
	if er == nil {
		return nil
	}
	return dperrors.AsServerError(er.ExceptionalResultStatus, er.Message)
}

// DataBlockToDomain converts the dataset-CRUD DataBlock rectangle (§3).
// Out of scope for query recovery itself (Non-goals), but carried so the
// transport layer can decode every message the wire schema defines.
func DataBlockToDomain(b *dppb.DataBlock) model.DataBlock {
	if b == nil {
		return model.DataBlock{}
	}
	return model.DataBlock{
		Sources: b.Sources,
		Range:   model.TimeInterval{Begin: TimestampToDomain(b.BeginTime), End: TimestampToDomain(b.EndTime)},
	}
}

// DataBlockToWire is the inverse of DataBlockToDomain.
func DataBlockToWire(b model.DataBlock) *dppb.DataBlock {
	return &dppb.DataBlock{
		Sources:   b.Sources,
		BeginTime: TimestampToWire(b.Range.Begin),
		EndTime:   TimestampToWire(b.Range.End),
	}
}

// DataSetToDomain converts the dataset-CRUD DataSet message (§3, §6) to
// its domain representation. Out of scope for query recovery itself
// (Non-goals: "the annotation (dataset) service"), but carried for the
// same reason as DataBlockToDomain: the wire schema defines it and
// Testable Property 5 (§8) requires a round trip for every DataSet.
func DataSetToDomain(s *dppb.DataSet) model.DataSet {
	if s == nil {
		return model.DataSet{}
	}
	blocks := make([]model.DataBlock, len(s.Blocks))
	for i, b := range s.Blocks {
		blocks[i] = DataBlockToDomain(b)
	}
	return model.DataSet{ID: s.Id, Name: s.Name, Blocks: blocks}
}

// DataSetToWire is the inverse of DataSetToDomain.
func DataSetToWire(d model.DataSet) *dppb.DataSet {
	blocks := make([]*dppb.DataBlock, len(d.Blocks))
	for i, b := range d.Blocks {
		blocks[i] = DataBlockToWire(b)
	}
	return &dppb.DataSet{Id: d.ID, Name: d.Name, Blocks: blocks}
}
