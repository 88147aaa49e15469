package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompareOrdersByDomainThenSequence(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clockAt := func(start time.Time, n int32) UniformClock {
		return UniformClock{Start: start, PeriodNanos: int64(time.Second), Count_: n}
	}

	early := NewRawClockedData(clockAt(base, 2), map[string]DataBucket{}, nil, 0)
	late := NewRawClockedData(clockAt(base.Add(time.Hour), 2), map[string]DataBucket{}, nil, 1)
	assert.Equal(t, -1, Compare(early, late))
	assert.Equal(t, 1, Compare(late, early))

	sameStartShorter := NewRawClockedData(clockAt(base, 2), map[string]DataBucket{}, nil, 2)
	sameStartLonger := NewRawClockedData(clockAt(base, 5), map[string]DataBucket{}, nil, 3)
	assert.Equal(t, -1, Compare(sameStartShorter, sameStartLonger))
}

func TestCompareNeverZeroForDistinctInstances(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := UniformClock{Start: base, PeriodNanos: int64(time.Second), Count_: 3}

	a := NewRawClockedData(clock, map[string]DataBucket{}, nil, 0)
	b := NewRawClockedData(clock, map[string]DataBucket{}, nil, 1)

	assert.NotEqual(t, 0, Compare(a, b))
	assert.Equal(t, -1, Compare(a, b))
	assert.Equal(t, 1, Compare(b, a))
}

func TestRawCorrelatedDataAccessors(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := UniformClock{Start: base, PeriodNanos: int64(time.Second), Count_: 3}
	buckets := map[string]DataBucket{
		"tempA": {SourceName: "tempA", DataType: ScalarFloat64, Timestamps: clock},
	}

	g := NewRawClockedData(clock, buckets, []string{"tempA"}, 0)
	assert.Equal(t, clock.Domain(), g.TimeDomain())
	assert.Equal(t, []string{"tempA"}, g.SourceNames())
	assert.Contains(t, g.Buckets(), "tempA")
}
