package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformSamplingBlockInsertEmptyTimeSeries(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := UniformClock{Start: base, PeriodNanos: int64(time.Second), Count_: 3}
	blk := NewUniformSamplingBlock(clock, map[string]*SampledTimeSeries{}, 0)

	blk.InsertEmptyTimeSeries("missingSensor", ScalarFloat64)

	require.Contains(t, blk.Series, "missingSensor")
	series := blk.Series["missingSensor"]
	assert.Equal(t, ScalarFloat64, series.Type)
	assert.Len(t, series.Values, 3)
	for _, v := range series.Values {
		assert.Equal(t, float64(0), v.Value)
	}
}

func TestCompareBlocksOrdersByDomainThenSequence(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clockAt := func(start time.Time) UniformClock {
		return UniformClock{Start: start, PeriodNanos: int64(time.Second), Count_: 2}
	}

	early := NewUniformSamplingBlock(clockAt(base), nil, 0)
	late := NewUniformSamplingBlock(clockAt(base.Add(time.Hour)), nil, 1)

	assert.Equal(t, -1, CompareBlocks(early, late))
	assert.Equal(t, 1, CompareBlocks(late, early))
}

func TestCompareBlocksNeverZeroForDistinctInstances(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := UniformClock{Start: base, PeriodNanos: int64(time.Second), Count_: 2}

	a := NewUniformSamplingBlock(clock, nil, 0)
	b := NewUniformSamplingBlock(clock, nil, 1)

	assert.NotEqual(t, 0, CompareBlocks(a, b))
}
