// Package sampledblock implements the sampled-block builder (C7, §4.6):
// turns one RawCorrelatedData group into a UniformSamplingBlock by
// decoding each bucket's values into a typed series zipped against the
// shared timestamp descriptor.
package sampledblock

import (
	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/model"
)

// Build converts raw into a UniformSamplingBlock. seq is the assembler's
// insertion-order counter for the resulting block (used only to break
// Compare ties, §4.6 "compareTo never returns 0 for distinct
// instances").
//
// Post-construction invariants (§4.6): Series' key-set is exactly the
// input bucket names; every series length equals the descriptor's
// count; Domain() equals [first, last] of the timestamps.
func Build(raw model.RawCorrelatedData, seq int64) *model.UniformSamplingBlock {
	buckets := raw.Buckets()
	series := make(map[string]*model.SampledTimeSeries, len(buckets))
	for name, bucket := range buckets {
		values := make([]model.Scalar, len(bucket.Values))
		copy(values, bucket.Values)
		series[name] = &model.SampledTimeSeries{Type: bucket.DataType, Values: values}
	}
	return model.NewUniformSamplingBlock(raw.Descriptor(), series, seq)
}

// UnifySourceSet pads every block in blocks with a zero-filled series for
// any source present in allSources but absent from that block, so every
// block in the resulting SampledAggregate carries identical columns
// (§4.6 "used when a cross-block source set must be unified"). typeOf
// supplies the scalar type of each padded series, and is called once
// for every (block, missing source) pair.
func UnifySourceSet(blocks []*model.UniformSamplingBlock, allSources []string, typeOf func(source string) model.ScalarType) {
	for _, blk := range blocks {
		for _, name := range allSources {
			if _, present := blk.Series[name]; !present {
				blk.InsertEmptyTimeSeries(name, typeOf(name))
			}
		}
	}
}
