package correlate

import (
	"testing"
	"time"

	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/dperrors"
	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clockBucket(name string, start time.Time, n int32) model.DataBucket {
	clock := model.UniformClock{Start: start, PeriodNanos: int64(time.Second), Count_: n}
	values := make([]model.Scalar, n)
	for i := range values {
		values[i] = model.Scalar{Type: model.ScalarFloat64, Value: float64(i)}
	}
	return model.DataBucket{SourceName: name, DataType: model.ScalarFloat64, Values: values, Timestamps: clock}
}

func TestCorrelatorGroupsBySharedDescriptor(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New()

	require.NoError(t, c.Add(clockBucket("A", base, 3)))
	require.NoError(t, c.Add(clockBucket("B", base, 3)))

	set := c.CorrelatedSet()
	require.Len(t, set, 1)
	assert.ElementsMatch(t, []string{"A", "B"}, set[0].SourceNames())
}

func TestCorrelatorSeparatesDistinctDescriptors(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New()

	require.NoError(t, c.Add(clockBucket("A", base, 3)))
	require.NoError(t, c.Add(clockBucket("B", base.Add(time.Hour), 3)))

	set := c.CorrelatedSet()
	require.Len(t, set, 2)
	assert.True(t, set[0].TimeDomain().Begin.Before(set[1].TimeDomain().Begin))
}

func TestCorrelatorDuplicateSourceFails(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New()
	require.NoError(t, c.Add(clockBucket("A", base, 3)))

	err := c.Add(clockBucket("A", base, 3))
	require.Error(t, err)
	assert.True(t, dperrors.Is(err, dperrors.KindDuplicateSource))
}

func TestCorrelatorEmptyColumnFailsMissingResource(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := model.UniformClock{Start: base, PeriodNanos: int64(time.Second), Count_: 3}
	bucket := model.DataBucket{SourceName: "A", DataType: model.ScalarFloat64, Timestamps: clock}

	c := New()
	err := c.Add(bucket)
	require.Error(t, err)
	assert.True(t, dperrors.Is(err, dperrors.KindMissingResource))
}

func TestCorrelatorInconsistentColumnSizeWithinGroup(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New()
	require.NoError(t, c.Add(clockBucket("A", base, 3)))

	clock := model.UniformClock{Start: base, PeriodNanos: int64(time.Second), Count_: 3}
	mismatched := model.DataBucket{
		SourceName: "B", DataType: model.ScalarFloat64,
		Values:     []model.Scalar{{Type: model.ScalarFloat64, Value: 1.0}, {Type: model.ScalarFloat64, Value: 2.0}},
		Timestamps: clock,
	}
	// mismatched's own column size (2) disagrees with the descriptor's
	// implied count (3), so this trips InconsistentColumnSize before
	// the group check even runs.
	err := c.Add(mismatched)
	require.Error(t, err)
	assert.True(t, dperrors.Is(err, dperrors.KindInconsistentColumnSize))
}

func TestCorrelatorUnsupportedTypeFails(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := model.UniformClock{Start: base, PeriodNanos: int64(time.Second), Count_: 1}
	bucket := model.DataBucket{
		SourceName: "A", DataType: model.ScalarUnspecified,
		Values:     []model.Scalar{{Type: model.ScalarUnspecified}},
		Timestamps: clock,
	}
	c := New()
	err := c.Add(bucket)
	require.Error(t, err)
	assert.True(t, dperrors.Is(err, dperrors.KindUnsupportedType))
}

func TestCorrelatorResetClearsState(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New()
	require.NoError(t, c.Add(clockBucket("A", base, 3)))
	require.Len(t, c.CorrelatedSet(), 1)

	c.Reset()
	assert.Empty(t, c.CorrelatedSet())

	require.NoError(t, c.Add(clockBucket("A", base, 3)))
	assert.Len(t, c.CorrelatedSet(), 1)
}
