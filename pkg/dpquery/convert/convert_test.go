package convert

import (
	"testing"
	"time"

	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/dperrors"
	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/dppb"
	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampRoundTrip(t *testing.T) {
	orig := time.Date(2026, 1, 1, 12, 30, 15, 123000000, time.UTC)
	wire := TimestampToWire(orig)
	back := TimestampToDomain(wire)
	assert.True(t, orig.Equal(back))
}

func TestScalarRoundTripEachType(t *testing.T) {
	cases := []model.Scalar{
		{Type: model.ScalarBool, Value: true},
		{Type: model.ScalarInt32, Value: int32(42)},
		{Type: model.ScalarInt64, Value: int64(123456789)},
		{Type: model.ScalarFloat32, Value: float32(1.5)},
		{Type: model.ScalarFloat64, Value: 3.14159},
		{Type: model.ScalarString, Value: "hello"},
		{Type: model.ScalarImage, Value: []byte{1, 2, 3}},
	}
	for _, c := range cases {
		wire := ScalarToWire(c)
		back := ScalarToDomain(wire, c.Type)
		assert.True(t, c.Equal(back), "round trip failed for %v", c.Type)
	}
}

func TestScalarNullRoundTrip(t *testing.T) {
	null := model.Scalar{Type: model.ScalarFloat64, Value: nil}
	wire := ScalarToWire(null)
	assert.False(t, wire.ValuePresent)
	back := ScalarToDomain(wire, model.ScalarFloat64)
	assert.True(t, null.Equal(back))
}

func TestDataTimestampsUniformClockRoundTrip(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := model.UniformClock{Start: start, PeriodNanos: int64(time.Second), Count_: 10}

	wire := DataTimestampsToWire(clock)
	require.NotNil(t, wire.Clock)
	back, err := DataTimestampsToDomain(wire)
	require.NoError(t, err)
	assert.True(t, clock.Equal(back))
}

func TestDataTimestampsListRoundTrip(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	list := model.TimestampList{Times: []time.Time{base, base.Add(time.Second), base.Add(3 * time.Second)}}

	wire := DataTimestampsToWire(list)
	require.NotNil(t, wire.List)
	back, err := DataTimestampsToDomain(wire)
	require.NoError(t, err)
	assert.True(t, list.Equal(back))
}

func TestDataTimestampsEmptyIsError(t *testing.T) {
	_, err := DataTimestampsToDomain(&dppb.DataTimestamps{})
	assert.Error(t, err)
	assert.True(t, dperrors.Is(err, dperrors.KindInvalidRequest))
}

func TestBucketRoundTrip(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := model.UniformClock{Start: start, PeriodNanos: int64(time.Second), Count_: 3}
	bucket := model.DataBucket{
		SourceName: "tempA",
		DataType:   model.ScalarFloat64,
		Values: []model.Scalar{
			{Type: model.ScalarFloat64, Value: 1.0},
			{Type: model.ScalarFloat64, Value: 2.0},
			{Type: model.ScalarFloat64, Value: 3.0},
		},
		Timestamps: clock,
	}

	wire := BucketToWire(bucket)
	back, err := BucketToDomain(wire, model.ScalarFloat64)
	require.NoError(t, err)

	assert.Equal(t, bucket.SourceName, back.SourceName)
	assert.True(t, bucket.Timestamps.Equal(back.Timestamps))
	require.Len(t, back.Values, 3)
	for i := range bucket.Values {
		assert.True(t, bucket.Values[i].Equal(back.Values[i]))
	}
}

func TestExceptionalResultToErrorSurfacesUnchanged(t *testing.T) {
	err := ExceptionalResultToError(&dppb.ExceptionalResult{ExceptionalResultStatus: "QUOTA_EXCEEDED", Message: "quota exceeded"})
	require.True(t, dperrors.Is(err, dperrors.KindServerError))
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestDataBlockRoundTrip(t *testing.T) {
	begin := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := begin.Add(time.Hour)
	block := model.DataBlock{Sources: []string{"tempA", "tempB"}, Range: model.TimeInterval{Begin: begin, End: end}}

	wire := DataBlockToWire(block)
	back := DataBlockToDomain(wire)
	assert.True(t, block.Equal(back))
}

func TestDataSetRoundTrip(t *testing.T) {
	begin := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	set := model.DataSet{
		ID:   "ds-1",
		Name: "calibration run",
		Blocks: []model.DataBlock{
			{Sources: []string{"tempA", "tempB"}, Range: model.TimeInterval{Begin: begin, End: begin.Add(time.Hour)}},
			{Sources: []string{"tempC"}, Range: model.TimeInterval{Begin: begin.Add(time.Hour), End: begin.Add(2 * time.Hour)}},
		},
	}

	wire := DataSetToWire(set)
	back := DataSetToDomain(wire)
	assert.True(t, set.Equal(back))
}

func TestDataSetRoundTripEmptyBlocks(t *testing.T) {
	set := model.DataSet{ID: "ds-empty", Name: "no blocks yet"}

	wire := DataSetToWire(set)
	back := DataSetToDomain(wire)
	assert.True(t, set.Equal(back))
}
