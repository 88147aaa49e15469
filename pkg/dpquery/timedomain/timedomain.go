// Package timedomain implements the time-domain processor (C6, §4.5):
// verifies and, where necessary, fuses the time domains of a sorted set
// of RawCorrelatedData before block assembly.
package timedomain

import (
	"sort"
	"time"

	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/model"
)

// Status reports a verification outcome. FirstCollisionIndex is the
// index (within the checked set) of the first adjacent pair that
// violated the property, or -1 if OK.
type Status struct {
	OK                 bool
	FirstCollisionIndex int
}

func ok() Status { return Status{OK: true, FirstCollisionIndex: -1} }

// VerifyStartTimeOrdering returns ok iff start times are monotonically
// non-decreasing across the set (§4.5).
func VerifyStartTimeOrdering(set []model.RawCorrelatedData) Status {
	for i := 1; i < len(set); i++ {
		if set[i].TimeDomain().Begin.Before(set[i-1].TimeDomain().Begin) {
			return Status{OK: false, FirstCollisionIndex: i}
		}
	}
	return ok()
}

// VerifyDisjointTimeDomains returns ok iff [begin_i,end_i] ∩
// [begin_{i+1},end_{i+1}] = ∅ for every adjacent pair (§4.5); the report
// names the first collision.
func VerifyDisjointTimeDomains(set []model.RawCorrelatedData) Status {
	for i := 1; i < len(set); i++ {
		if set[i-1].TimeDomain().Overlaps(set[i].TimeDomain()) {
			return Status{OK: false, FirstCollisionIndex: i}
		}
	}
	return ok()
}

// SuperDomain is one fused run of overlapping raw blocks, carrying the
// sub-set of RawCorrelatedData that contributed to it (§4.5).
type SuperDomain struct {
	Domain  model.TimeInterval
	Members []model.RawCorrelatedData
}

// FuseSuperDomains runs the greedy sweep of §4.5: open a super-domain at
// the first block; extend while the next block's begin ≤ current end;
// close and repeat. set must already be sorted by the natural ordering
// of §3 (model.Compare).
func FuseSuperDomains(set []model.RawCorrelatedData) []SuperDomain {
	if len(set) == 0 {
		return nil
	}
	var out []SuperDomain
	cur := SuperDomain{Domain: set[0].TimeDomain(), Members: []model.RawCorrelatedData{set[0]}}
	for i := 1; i < len(set); i++ {
		d := set[i].TimeDomain()
		if !d.Begin.After(cur.Domain.End) {
			cur.Domain = cur.Domain.Union(d)
			cur.Members = append(cur.Members, set[i])
			continue
		}
		out = append(out, cur)
		cur = SuperDomain{Domain: d, Members: []model.RawCorrelatedData{set[i]}}
	}
	out = append(out, cur)
	return out
}

// MergeSuperDomain collapses one SuperDomain's members into a single
// RawCorrelatedData per §4.7 step 6: "later-sub-request wins on exact
// timestamp collisions; otherwise union by timestamp". Members are in the
// order FuseSuperDomains gives them (natural order: domain start, then
// end, then insertion sequence), and the last member in that order
// holding a given (source, instant) pair wins. The sub-request a member
// came from is not consulted.
func MergeSuperDomain(sd SuperDomain, seq int) model.RawCorrelatedData {
	type cell struct {
		value       model.Scalar
		fromMember int
	}
	perSource := make(map[string]map[int64]cell)
	typeBySource := make(map[string]model.ScalarType)
	var sourceOrder []string

	for memberIdx, member := range sd.Members {
		for name, bucket := range member.Buckets() {
			cells, ok := perSource[name]
			if !ok {
				cells = make(map[int64]cell)
				perSource[name] = cells
				typeBySource[name] = bucket.DataType
				sourceOrder = append(sourceOrder, name)
			}
			for i := 0; i < bucket.Timestamps.Count(); i++ {
				instant := bucket.Timestamps.At(i).UnixNano()
				existing, has := cells[instant]
				// a member later in sd.Members (the sweep's natural
				// order) overwrites an earlier one on an exact
				// collision.
				if !has || memberIdx >= existing.fromMember {
					cells[instant] = cell{value: bucket.Values[i], fromMember: memberIdx}
				}
			}
		}
	}

	var allInstants []int64
	seen := make(map[int64]bool)
	for _, cells := range perSource {
		for instant := range cells {
			if !seen[instant] {
				seen[instant] = true
				allInstants = append(allInstants, instant)
			}
		}
	}
	sort.Slice(allInstants, func(i, j int) bool { return allInstants[i] < allInstants[j] })

	times := make([]time.Time, len(allInstants))
	for i, ns := range allInstants {
		times[i] = time.Unix(0, ns).UTC()
	}
	list := model.TimestampList{Times: times}

	buckets := make(map[string]model.DataBucket, len(sourceOrder))
	for _, name := range sourceOrder {
		t := typeBySource[name]
		values := make([]model.Scalar, len(allInstants))
		cells := perSource[name]
		for i, ns := range allInstants {
			if c, ok := cells[ns]; ok {
				values[i] = c.value
			} else {
				values[i] = model.ZeroValue(t)
			}
		}
		buckets[name] = model.DataBucket{SourceName: name, DataType: t, Values: values, Timestamps: list}
	}

	return model.NewRawTmsListData(list, buckets, sourceOrder, seq)
}
