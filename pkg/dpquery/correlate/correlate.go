// Package correlate implements the correlator (C5, §4.4): groups
// DataBuckets drained from the message buffer by their canonical
// timestamp descriptor, and emits the sorted set of RawCorrelatedData
// the time-domain processor consumes.
package correlate

import (
	"sort"

	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/dperrors"
	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/model"
)

type group struct {
	descriptor  model.TimestampDescriptor
	buckets     map[string]model.DataBucket
	sourceNames []string
	seq         int
}

// Correlator is restartable (§4.4 "reset() clears state") and is
// intended for single-threaded use by the buffer's draining consumer
// (§5 "the correlator and builder are single-threaded: only the
// consumer mutates them").
type Correlator struct {
	groups map[model.DescriptorKey]*group
	seq    int
}

// New builds an empty, active correlator.
func New() *Correlator {
	c := &Correlator{}
	c.Reset()
	return c
}

// Reset clears all accumulated state so the correlator can be reused for
// a new request.
func (c *Correlator) Reset() {
	c.groups = make(map[model.DescriptorKey]*group)
	c.seq = 0
}

// Add ingests one decoded DataBucket (§4.4 steps 1-3).
func (c *Correlator) Add(bucket model.DataBucket) error {
	if len(bucket.Values) == 0 {
		return dperrors.Newf(dperrors.KindMissingResource, "bucket %q has an empty data column", bucket.SourceName)
	}
	if bucket.DataType == model.ScalarUnspecified {
		return dperrors.Newf(dperrors.KindUnsupportedType, "bucket %q has an unsupported scalar type", bucket.SourceName)
	}
	if err := bucket.Timestamps.Validate(); err != nil {
		return err
	}
	if len(bucket.Values) != bucket.Timestamps.Count() {
		return dperrors.Newf(dperrors.KindInconsistentColumnSize,
			"bucket %q has %d values but descriptor implies %d", bucket.SourceName, len(bucket.Values), bucket.Timestamps.Count())
	}

	key := bucket.Timestamps.Key()
	g, ok := c.groups[key]
	if !ok {
		g = &group{descriptor: bucket.Timestamps, buckets: make(map[string]model.DataBucket), seq: c.seq}
		c.seq++
		c.groups[key] = g
	} else if len(g.buckets) > 0 {
		// column-size consistency is checked against the group's
		// existing members, not just the incoming bucket's own
		// descriptor (§4.4 "unequal column sizes within a group").
		for _, existing := range g.buckets {
			if len(existing.Values) != len(bucket.Values) {
				return dperrors.Newf(dperrors.KindInconsistentColumnSize,
					"bucket %q column size %d disagrees with group's existing size %d",
					bucket.SourceName, len(bucket.Values), len(existing.Values))
			}
			break
		}
	}

	if _, dup := g.buckets[bucket.SourceName]; dup {
		return dperrors.Newf(dperrors.KindDuplicateSource, "source %q already present in its timestamp-descriptor group", bucket.SourceName)
	}
	g.buckets[bucket.SourceName] = bucket
	g.sourceNames = append(g.sourceNames, bucket.SourceName)
	return nil
}

// CorrelatedSet emits the accumulated groups as a sorted set of
// RawCorrelatedData, using the natural ordering of §3 (§4.4 "After
// draining, emit the sorted set using the natural ordering").
func (c *Correlator) CorrelatedSet() []model.RawCorrelatedData {
	out := make([]model.RawCorrelatedData, 0, len(c.groups))
	for _, g := range c.groups {
		switch d := g.descriptor.(type) {
		case model.UniformClock:
			out = append(out, model.NewRawClockedData(d, g.buckets, g.sourceNames, g.seq))
		case model.TimestampList:
			out = append(out, model.NewRawTmsListData(d, g.buckets, g.sourceNames, g.seq))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return model.Compare(out[i], out[j]) < 0
	})
	return out
}
