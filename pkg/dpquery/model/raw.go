package model

// RawCorrelatedData is the output of the correlator (§4.4): one group of
// DataBuckets sharing a canonical timestamp descriptor, keyed by source
// name. The natural ordering of RawCorrelatedData never returns 0 for
// distinct instances (§4.4 invariant) — ties on time domain break on
// insertion sequence.
type RawCorrelatedData interface {
	TimeDomain() TimeInterval
	Descriptor() TimestampDescriptor
	Buckets() map[string]DataBucket
	SourceNames() []string
	seq() int
}

type rawBase struct {
	descriptor  TimestampDescriptor
	buckets     map[string]DataBucket
	sourceNames []string
	sequence    int
}

func (r *rawBase) TimeDomain() TimeInterval         { return r.descriptor.Domain() }
func (r *rawBase) Descriptor() TimestampDescriptor  { return r.descriptor }
func (r *rawBase) Buckets() map[string]DataBucket   { return r.buckets }
func (r *rawBase) SourceNames() []string            { return r.sourceNames }
func (r *rawBase) seq() int                         { return r.sequence }

// RawClockedData is correlated data whose shared descriptor is a
// UniformClock.
type RawClockedData struct {
	rawBase
}

// NewRawClockedData builds a RawClockedData group. seq is the correlator's
// insertion-order counter for this group, used only for tie-breaking.
func NewRawClockedData(clock UniformClock, buckets map[string]DataBucket, sourceNames []string, seq int) *RawClockedData {
	return &RawClockedData{rawBase{descriptor: clock, buckets: buckets, sourceNames: sourceNames, sequence: seq}}
}

// RawTmsListData is correlated data whose shared descriptor is an explicit
// TimestampList.
type RawTmsListData struct {
	rawBase
}

// NewRawTmsListData builds a RawTmsListData group.
func NewRawTmsListData(list TimestampList, buckets map[string]DataBucket, sourceNames []string, seq int) *RawTmsListData {
	return &RawTmsListData{rawBase{descriptor: list, buckets: buckets, sourceNames: sourceNames, sequence: seq}}
}

// Compare imposes the natural ordering used to sort correlated groups
// before time-domain fusion (§4.4, §4.5): ascending by domain start, then
// domain end, then — since two groups can share an identical domain only
// transiently before fusion — by insertion sequence, so Compare never
// returns 0 for two distinct instances.
func Compare(a, b RawCorrelatedData) int {
	ad, bd := a.TimeDomain(), b.TimeDomain()
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
	if a.seq() < b.seq() {
		return -1
	}
	if a.seq() > b.seq() {
		return 1
	}
	return 0
}
