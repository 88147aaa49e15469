package decompose

import (
	"testing"
	"time"

	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/dperrors"
	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseRequest() model.Request {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return model.Request{
		ID:         "req-1",
		Sources:    []string{"A", "B", "C", "D", "E"},
		Range:      model.TimeInterval{Begin: base, End: base.Add(10 * time.Minute)},
		StreamType: model.StreamServer,
	}
}

func TestDecomposeNoneReturnsSingleSubRequest(t *testing.T) {
	req := baseRequest()
	req.Decomposition = model.DecompNone
	subs, err := Decompose(req)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, req.Sources, subs[0].Sources)
	assert.Equal(t, req.Range, subs[0].Range)
}

func TestDecomposeHorizontalCoversAllSourcesExactlyOnce(t *testing.T) {
	req := baseRequest()
	req.Decomposition = model.DecompHorizontal
	req.StreamCount = 2

	subs, err := Decompose(req)
	require.NoError(t, err)
	require.Len(t, subs, 2)

	seen := map[string]bool{}
	for _, s := range subs {
		assert.Equal(t, req.Range, s.Range)
		for _, src := range s.Sources {
			assert.False(t, seen[src], "source %s assigned twice", src)
			seen[src] = true
		}
	}
	for _, src := range req.Sources {
		assert.True(t, seen[src], "source %s missing from decomposition", src)
	}
	// sizes differ by at most one
	sizes := []int{len(subs[0].Sources), len(subs[1].Sources)}
	diff := sizes[0] - sizes[1]
	assert.LessOrEqual(t, diff*diff, 1)
}

func TestDecomposeHorizontalRejectsEmptySourcesOrBadN(t *testing.T) {
	req := baseRequest()
	req.Decomposition = model.DecompHorizontal
	req.Sources = nil
	req.StreamCount = 2
	_, err := Decompose(req)
	require.Error(t, err)
	assert.True(t, dperrors.Is(err, dperrors.KindInvalidRequest))

	req2 := baseRequest()
	req2.Decomposition = model.DecompHorizontal
	req2.StreamCount = 0
	_, err = Decompose(req2)
	require.Error(t, err)
}

func TestDecomposeVerticalCoversRangeExactlyWithHalfOpenBoundaries(t *testing.T) {
	req := baseRequest()
	req.Decomposition = model.DecompVertical
	req.StreamCount = 3

	subs, err := Decompose(req)
	require.NoError(t, err)
	require.Len(t, subs, 3)

	assert.True(t, subs[0].Range.Begin.Equal(req.Range.Begin))
	assert.True(t, subs[len(subs)-1].Range.End.Equal(req.Range.End))
	for i := 1; i < len(subs); i++ {
		assert.True(t, subs[i].Range.Begin.Equal(subs[i-1].Range.End),
			"sub-interval %d should begin where %d ends", i, i-1)
	}
}

func TestDecomposeVerticalRejectsZeroWidthRange(t *testing.T) {
	req := baseRequest()
	req.Decomposition = model.DecompVertical
	req.Range.End = req.Range.Begin
	req.StreamCount = 2
	_, err := Decompose(req)
	require.Error(t, err)
	assert.True(t, dperrors.Is(err, dperrors.KindInvalidRequest))
}

func TestDecomposeGridIsCartesianProduct(t *testing.T) {
	req := baseRequest()
	req.Decomposition = model.DecompGrid
	req.Options.GridStreamsPerAxis = 2

	subs, err := Decompose(req)
	require.NoError(t, err)
	assert.Len(t, subs, 4)

	seenSources := map[string]bool{}
	for _, s := range subs {
		for _, src := range s.Sources {
			seenSources[src] = true
		}
	}
	for _, src := range req.Sources {
		assert.True(t, seenSources[src])
	}
}

func TestDecomposeSubRequestsInheritParentIDAndStreamType(t *testing.T) {
	req := baseRequest()
	req.Decomposition = model.DecompHorizontal
	req.StreamCount = 3

	subs, err := Decompose(req)
	require.NoError(t, err)
	for i, s := range subs {
		assert.Equal(t, req.ID, s.ParentID)
		assert.Equal(t, req.StreamType, s.StreamType)
		assert.Equal(t, i, s.Index)
	}
}
