// Package decompose implements the request decomposer (C2, §4.1): split
// one logical Request into an ordered list of SubRequests by horizontal
// (source) split, vertical (time) split, grid, or no split at all.
package decompose

import (
	"time"

	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/dperrors"
	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/model"
)

// Decompose splits req into sub-requests per req.Decomposition. Every
// sub-request inherits req.ID and req.StreamType and is assigned a
// monotonically increasing Index starting at 0 (§4.1).
func Decompose(req model.Request) ([]model.SubRequest, error) {
	switch req.Decomposition {
	case model.DecompNone:
		return decomposeNone(req)
	case model.DecompHorizontal:
		return decomposeHorizontal(req, req.StreamCount)
	case model.DecompVertical:
		return decomposeVertical(req, req.StreamCount)
	case model.DecompGrid:
		return decomposeGrid(req)
	default:
		return nil, invalidDecomposition("unknown decomposition %v", req.Decomposition)
	}
}

func invalidDecomposition(format string, args ...any) *dperrors.Error {
	return dperrors.Newf(dperrors.KindInvalidRequest, format, args...)
}

func decomposeNone(req model.Request) ([]model.SubRequest, error) {
	return []model.SubRequest{{
		ParentID:   req.ID,
		Index:      0,
		Sources:    req.Sources,
		Range:      req.Range,
		StreamType: req.StreamType,
	}}, nil
}

// decomposeHorizontal partitions sources into n ≈-equal-sized subsets;
// leftover sources are assigned round-robin to earlier subsets (§4.1).
func decomposeHorizontal(req model.Request, n int) ([]model.SubRequest, error) {
	if n < 1 {
		return nil, invalidDecomposition("horizontal decomposition requires N >= 1, got %d", n)
	}
	if len(req.Sources) == 0 {
		return nil, invalidDecomposition("horizontal decomposition requires a non-empty source set")
	}
	groups := splitSourcesRoundRobin(req.Sources, n)
	subs := make([]model.SubRequest, 0, len(groups))
	for i, g := range groups {
		subs = append(subs, model.SubRequest{
			ParentID:   req.ID,
			Index:      i,
			Sources:    g,
			Range:      req.Range,
			StreamType: req.StreamType,
		})
	}
	return subs, nil
}

// splitSourcesRoundRobin deals len(sources) items into at most n
// non-empty buckets round-robin, so the per-bucket size differs by at
// most one and bucket order matches first assignment order.
func splitSourcesRoundRobin(sources []string, n int) [][]string {
	if n > len(sources) {
		n = len(sources)
	}
	groups := make([][]string, n)
	for i, s := range sources {
		idx := i % n
		groups[idx] = append(groups[idx], s)
	}
	return groups
}

// decomposeVertical partitions range into n ≈-equal contiguous half-open
// sub-intervals; boundary instants belong to the later sub-interval
// (§4.1).
func decomposeVertical(req model.Request, n int) ([]model.SubRequest, error) {
	if n < 1 {
		return nil, invalidDecomposition("vertical decomposition requires N >= 1, got %d", n)
	}
	width := req.Range.Width()
	if width <= 0 {
		return nil, invalidDecomposition("vertical decomposition requires a non-zero-width range")
	}
	bounds := splitIntervalEqual(req.Range, n)
	subs := make([]model.SubRequest, 0, len(bounds))
	for i, iv := range bounds {
		subs = append(subs, model.SubRequest{
			ParentID:   req.ID,
			Index:      i,
			Sources:    req.Sources,
			Range:      iv,
			StreamType: req.StreamType,
		})
	}
	return subs, nil
}

// splitIntervalEqual divides a single interval into n contiguous
// sub-intervals of equal (or off-by-one-nanosecond, due to integer
// division) width; the boundary instant between sub-interval i and i+1
// is owned by sub-interval i+1 since these are conceptually half-open
// [begin, end).
func splitIntervalEqual(r model.TimeInterval, n int) []model.TimeInterval {
	total := r.Width()
	step := total / time.Duration(n)
	out := make([]model.TimeInterval, n)
	cursor := r.Begin
	for i := 0; i < n; i++ {
		end := cursor.Add(step)
		if i == n-1 {
			end = r.End
		}
		out[i] = model.TimeInterval{Begin: cursor, End: end}
		cursor = end
	}
	return out
}

// decomposeGrid is the Cartesian product of a horizontal split by a
// vertical split: req.Options.GridStreamsPerAxis sets the per-axis
// stream count, so the total stream count is bounded by its square
// (§4.1 "N is interpreted as stream-count along each axis with a
// bounded total").
func decomposeGrid(req model.Request) ([]model.SubRequest, error) {
	perAxis := req.Options.GridStreamsPerAxis
	if perAxis < 1 {
		return nil, invalidDecomposition("grid decomposition requires GridStreamsPerAxis >= 1, got %d", perAxis)
	}
	if len(req.Sources) == 0 {
		return nil, invalidDecomposition("grid decomposition requires a non-empty source set")
	}
	if req.Range.Width() <= 0 {
		return nil, invalidDecomposition("grid decomposition requires a non-zero-width range")
	}

	sourceGroups := splitSourcesRoundRobin(req.Sources, perAxis)
	intervals := splitIntervalEqual(req.Range, perAxis)

	subs := make([]model.SubRequest, 0, len(sourceGroups)*len(intervals))
	idx := 0
	for _, iv := range intervals {
		for _, g := range sourceGroups {
			subs = append(subs, model.SubRequest{
				ParentID:   req.ID,
				Index:      idx,
				Sources:    g,
				Range:      iv,
				StreamType: req.StreamType,
			})
			idx++
		}
	}
	return subs, nil
}
