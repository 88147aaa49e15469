package model

// DataBlock names a rectangle of the dataset-annotation space: a set of
// sources crossed with a closed time range (§3 "DataBlock (for dataset
// requests)"). Out of scope for the query-recovery pipeline itself
// (Non-goals: "the annotation (dataset) service"), but carried as a
// domain type so the wire schema's DataSet/DataBlock messages round-trip
// through §4.9 conversion like every other inbound message.
type DataBlock struct {
	Sources []string
	Range   TimeInterval
}

// Disjoint reports whether two blocks are disjoint per §3: source-sets
// disjoint OR time ranges disjoint.
func (b DataBlock) Disjoint(o DataBlock) bool {
	if b.Range.Disjoint(o.Range) {
		return true
	}
	return !sourcesIntersect(b.Sources, o.Sources)
}

func sourcesIntersect(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	for _, s := range b {
		if _, ok := set[s]; ok {
			return true
		}
	}
	return false
}

// Equal reports structural equality of two DataBlocks (source order and
// range endpoints both significant, matching wire round-trip semantics).
func (b DataBlock) Equal(o DataBlock) bool {
	if !b.Range.Equal(o.Range) {
		return false
	}
	if len(b.Sources) != len(o.Sources) {
		return false
	}
	for i := range b.Sources {
		if b.Sources[i] != o.Sources[i] {
			return false
		}
	}
	return true
}

// DataSet names a collection of DataBlocks under a dataset identifier
// (§3, §6 "CreateDataSetRequest/Response, QueryDataSetsRequest"). Carried
// for the same reason as DataBlock: out of scope for query recovery, but
// part of the wire schema this library must still decode.
type DataSet struct {
	ID     string
	Name   string
	Blocks []DataBlock
}

// Equal reports structural equality of two DataSets.
func (d DataSet) Equal(o DataSet) bool {
	if d.ID != o.ID || d.Name != o.Name {
		return false
	}
	if len(d.Blocks) != len(o.Blocks) {
		return false
	}
	for i := range d.Blocks {
		if !d.Blocks[i].Equal(o.Blocks[i]) {
			return false
		}
	}
	return true
}
