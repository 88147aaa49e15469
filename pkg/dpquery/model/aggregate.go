package model

// SampledAggregate is the top-level result of the assembler (§4.8): a
// sequence of disjoint, time-ordered UniformSamplingBlocks, plus an
// optional record of which sub-intervals of the request range could not
// be filled (§4.8 "partial result" policy, RequestOptions.ToleratePartial).
type SampledAggregate struct {
	Blocks           []*UniformSamplingBlock
	Partial          bool
	PartialIntervals []TimeInterval
}

// SourceNames returns the union of all source names carried by any block,
// in first-seen order.
func (a *SampledAggregate) SourceNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, blk := range a.Blocks {
		for name := range blk.Series {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// Domain returns the union of the first and last block's domain, or the
// zero TimeInterval if there are no blocks.
func (a *SampledAggregate) Domain() TimeInterval {
	if len(a.Blocks) == 0 {
		return TimeInterval{}
	}
	return TimeInterval{Begin: a.Blocks[0].Domain().Begin, End: a.Blocks[len(a.Blocks)-1].Domain().End}
}
