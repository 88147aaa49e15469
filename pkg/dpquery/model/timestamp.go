package model

import (
	"encoding/binary"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/dperrors"
)

// TimestampDescriptor is the tagged-variant timestamp description of §3:
// either a UniformClock or an explicit TimestampList.
type TimestampDescriptor interface {
	// Domain returns the closed interval [first, last].
	Domain() TimeInterval
	// Count returns the number of timestamps this descriptor implies.
	Count() int
	// At returns the i'th timestamp, 0 <= i < Count().
	At(i int) time.Time
	// Key returns the canonical, comparable key the correlator (§4.4)
	// groups buckets by: identical descriptors produce equal keys.
	Key() DescriptorKey
	// Equal reports bit-for-bit equality, required of domain-equal
	// buckets (§3).
	Equal(other TimestampDescriptor) bool
	// Validate checks the descriptor's own invariants (§3).
	Validate() error
}

// DescriptorKey is a comparable map key distinguishing UniformClock keys
// from TimestampList keys even when their underlying values collide
// numerically (they live in disjoint key spaces by construction).
type DescriptorKey interface {
	isDescriptorKey()
}

type clockKey struct {
	startUnixNanos int64
	periodNanos    int64
	count          int32
}

func (clockKey) isDescriptorKey() {}

type listKey uint64

func (listKey) isDescriptorKey() {}

// UniformClock implies timestamps start, start+P, ..., start+(count-1)*P.
type UniformClock struct {
	Start       time.Time
	PeriodNanos int64
	Count_      int32
}

func (c UniformClock) Domain() TimeInterval {
	return TimeInterval{Begin: c.Start, End: c.At(int(c.Count_) - 1)}
}

func (c UniformClock) Count() int { return int(c.Count_) }

func (c UniformClock) At(i int) time.Time {
	return c.Start.Add(time.Duration(int64(i) * c.PeriodNanos))
}

func (c UniformClock) Key() DescriptorKey {
	return clockKey{startUnixNanos: c.Start.UnixNano(), periodNanos: c.PeriodNanos, count: c.Count_}
}

func (c UniformClock) Equal(other TimestampDescriptor) bool {
	o, ok := other.(UniformClock)
	if !ok {
		return false
	}
	return c.Start.Equal(o.Start) && c.PeriodNanos == o.PeriodNanos && c.Count_ == o.Count_
}

// Validate enforces count >= 1 and periodNanos >= 1 (§3 invariants).
func (c UniformClock) Validate() error {
	if c.Count_ < 1 {
		return dperrors.Newf(dperrors.KindInvalidRequest, "uniform clock count must be >= 1, got %d", c.Count_)
	}
	if c.PeriodNanos < 1 {
		return dperrors.Newf(dperrors.KindInvalidRequest, "uniform clock periodNanos must be >= 1, got %d", c.PeriodNanos)
	}
	return nil
}

// TimestampList is an explicit, strictly increasing list of instants.
type TimestampList struct {
	Times []time.Time
}

func (l TimestampList) Domain() TimeInterval {
	return TimeInterval{Begin: l.Times[0], End: l.Times[len(l.Times)-1]}
}

func (l TimestampList) Count() int { return len(l.Times) }

func (l TimestampList) At(i int) time.Time { return l.Times[i] }

func (l TimestampList) Key() DescriptorKey {
	h := xxhash.New()
	buf := make([]byte, 8)
	for _, t := range l.Times {
		binary.LittleEndian.PutUint64(buf, uint64(t.UnixNano()))
		_, _ = h.Write(buf)
	}
	return listKey(h.Sum64())
}

func (l TimestampList) Equal(other TimestampDescriptor) bool {
	o, ok := other.(TimestampList)
	if !ok || len(l.Times) != len(o.Times) {
		return false
	}
	for i := range l.Times {
		if !l.Times[i].Equal(o.Times[i]) {
			return false
		}
	}
	return true
}

// Validate enforces len(times) >= 1 and strict monotonicity (§3 invariants).
func (l TimestampList) Validate() error {
	if len(l.Times) < 1 {
		return dperrors.New(dperrors.KindInvalidRequest, "timestamp list must have at least one entry")
	}
	for i := 1; i < len(l.Times); i++ {
		if !l.Times[i].After(l.Times[i-1]) {
			return dperrors.Newf(dperrors.KindInvalidRequest, "timestamp list not strictly increasing at index %d", i)
		}
	}
	return nil
}
