package model

// SampledTimeSeries is one source's column within a UniformSamplingBlock.
type SampledTimeSeries struct {
	Type   ScalarType
	Values []Scalar
}

// UniformSamplingBlock is the time-domain processor's output unit (§4.6,
// §4.7): a single timestamp descriptor and the per-source columns sampled
// against it. The descriptor is usually a UniformClock, but a block born
// from a fused super-domain (§4.5) carries an explicit TimestampList
// instead. Every column has len(Values) == Timestamps.Count() (§3
// invariant).
type UniformSamplingBlock struct {
	Timestamps TimestampDescriptor
	Series     map[string]*SampledTimeSeries
	sequence   int64
}

// NewUniformSamplingBlock builds a block. seq is the assembler's
// insertion-order counter, used only to break Compare ties.
func NewUniformSamplingBlock(descriptor TimestampDescriptor, series map[string]*SampledTimeSeries, seq int64) *UniformSamplingBlock {
	return &UniformSamplingBlock{Timestamps: descriptor, Series: series, sequence: seq}
}

// Domain forwards to the block's clock domain.
func (b *UniformSamplingBlock) Domain() TimeInterval { return b.Timestamps.Domain() }

// InsertEmptyTimeSeries adds a zero-filled column for a source that has no
// data over this block's domain, so every block in a SampledAggregate
// has identical columns (§4.7). Each slot holds ZeroValue(t).
func (b *UniformSamplingBlock) InsertEmptyTimeSeries(name string, t ScalarType) {
	values := make([]Scalar, b.Timestamps.Count())
	zero := ZeroValue(t)
	for i := range values {
		values[i] = zero
	}
	b.Series[name] = &SampledTimeSeries{Type: t, Values: values}
}

// CompareBlocks imposes the block ordering used when assembling a
// SampledAggregate (§4.7): ascending by domain start, then end, then by
// insertion sequence so two distinct blocks never compare equal.
func CompareBlocks(a, b *UniformSamplingBlock) int {
	ad, bd := a.Domain(), b.Domain()
	if ad.Begin.Before(bd.Begin) {
		return -1
	}
	if ad.Begin.After(bd.Begin) {
		return 1
	}
	if ad.End.Before(bd.End) {
		return -1
	}
	if ad.End.After(bd.End) {
		return 1
	}
	if a.sequence < b.sequence {
		return -1
	}
	if a.sequence > b.sequence {
		return 1
	}
	return 0
}
