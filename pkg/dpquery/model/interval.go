package model

import "time"

// TimeInterval is a closed interval [Begin, End], the "time domain" of a
// TimestampDescriptor, RawCorrelatedData, or UniformSamplingBlock (§3).
type TimeInterval struct {
	Begin time.Time
	End   time.Time
}

// Overlaps reports whether the two closed intervals intersect, i.e. their
// disjointness test from §4.5 fails. Touching endpoints count as overlap:
// fuseSuperDomains extends "while the next block's begin ≤ current end".
func (t TimeInterval) Overlaps(o TimeInterval) bool {
	return !t.End.Before(o.Begin) && !o.End.Before(t.Begin)
}

// Disjoint is the complement of Overlaps.
func (t TimeInterval) Disjoint(o TimeInterval) bool {
	return !t.Overlaps(o)
}

// Union returns the smallest interval containing both t and o. Callers
// should only call this once Overlaps(o) (or adjacency) has been
// established by the time-domain processor.
func (t TimeInterval) Union(o TimeInterval) TimeInterval {
	begin := t.Begin
	if o.Begin.Before(begin) {
		begin = o.Begin
	}
	end := t.End
	if o.End.After(end) {
		end = o.End
	}
	return TimeInterval{Begin: begin, End: end}
}

// Equal reports bit-for-bit equality of the two interval endpoints.
func (t TimeInterval) Equal(o TimeInterval) bool {
	return t.Begin.Equal(o.Begin) && t.End.Equal(o.End)
}

// Width returns End - Begin.
func (t TimeInterval) Width() time.Duration {
	return t.End.Sub(t.Begin)
}
