package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSampledAggregateSourceNamesAndDomain(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock1 := UniformClock{Start: base, PeriodNanos: int64(time.Second), Count_: 2}
	clock2 := UniformClock{Start: base.Add(2 * time.Second), PeriodNanos: int64(time.Second), Count_: 2}

	blk1 := NewUniformSamplingBlock(clock1, map[string]*SampledTimeSeries{
		"tempA": {Type: ScalarFloat64, Values: []Scalar{{Type: ScalarFloat64, Value: 1.0}, {Type: ScalarFloat64, Value: 2.0}}},
	}, 0)
	blk2 := NewUniformSamplingBlock(clock2, map[string]*SampledTimeSeries{
		"tempB": {Type: ScalarFloat64, Values: []Scalar{{Type: ScalarFloat64, Value: 3.0}, {Type: ScalarFloat64, Value: 4.0}}},
	}, 1)

	agg := &SampledAggregate{Blocks: []*UniformSamplingBlock{blk1, blk2}}

	assert.Equal(t, []string{"tempA", "tempB"}, agg.SourceNames())
	assert.True(t, agg.Domain().Begin.Equal(base))
	assert.True(t, agg.Domain().End.Equal(clock2.Domain().End))
}

func TestSampledAggregateDomainEmpty(t *testing.T) {
	agg := &SampledAggregate{}
	assert.Equal(t, TimeInterval{}, agg.Domain())
}
