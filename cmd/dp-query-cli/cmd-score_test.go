package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/model"
	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/scoring"
)

func TestRequestSpecToRequest(t *testing.T) {
	spec := requestSpec{
		ID:      "req-1",
		Sources: []string{"pv1", "pv2"},
		Begin:   "2026-01-01T00:00:00Z",
		End:     "2026-01-01T00:01:00Z",
		Stream:  "server",
		Decomp:  "horizontal",
		Streams: 4,
	}
	req, err := spec.toRequest()
	require.NoError(t, err)
	require.Equal(t, "req-1", req.ID)
	require.Equal(t, []string{"pv1", "pv2"}, req.Sources)
	require.Equal(t, model.StreamServer, req.StreamType)
	require.Equal(t, model.DecompHorizontal, req.Decomposition)
	require.Equal(t, 4, req.StreamCount)
	require.False(t, req.Range.Begin.After(req.Range.End))
}

func TestRequestSpecToRequestRejectsBadTimestamps(t *testing.T) {
	spec := requestSpec{ID: "bad", Begin: "not-a-time", End: "2026-01-01T00:01:00Z"}
	_, err := spec.toRequest()
	require.Error(t, err)

	spec2 := requestSpec{ID: "bad-end", Begin: "2026-01-01T00:00:00Z", End: "not-a-time"}
	_, err = spec2.toRequest()
	require.Error(t, err)
}

func TestRenderSummaryIncludesThreshold(t *testing.T) {
	summary := scoring.NewSummary(10)
	rec := scoring.NewRecord("req-1", 100, 1024*1024*5, 2, 1.0, 0.5, true, true)
	summary.Add(rec)
	configScore := &scoring.ConfigScore{Name: "localhost:50051"}
	configScore.Record(rec.DataRateMBps, rec.DataRateMBps >= 10)

	body := renderSummary([]scoring.Record{rec}, summary, configScore)
	require.True(t, strings.Contains(body, "req-1"))
	require.True(t, strings.Contains(body, "localhost:50051"))
	require.True(t, strings.Contains(body, "runs=1"))
}
