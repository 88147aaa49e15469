package dppb

import "fmt"

// Timestamp is the wire instant type: seconds since epoch plus a
// nanosecond offset, matching the externally-supplied schema rather than
// google.protobuf.Timestamp so this package has no well-known-types
// dependency.
type Timestamp struct {
	EpochSeconds int64
	NanoSeconds  int64
}

func (m *Timestamp) Reset() { *m = Timestamp{} }
func (m *Timestamp) String() string {
	return fmt.Sprintf("Timestamp{%d.%09d}", m.EpochSeconds, m.NanoSeconds)
}
func (*Timestamp) ProtoMessage() {}

// SamplingClock is the uniform-clock branch of DataTimestamps.
type SamplingClock struct {
	StartTime   *Timestamp
	PeriodNanos uint64
	Count       uint32
}

func (m *SamplingClock) Reset() { *m = SamplingClock{} }
func (m *SamplingClock) String() string {
	return fmt.Sprintf("SamplingClock{period=%d, count=%d}", m.PeriodNanos, m.Count)
}
func (*SamplingClock) ProtoMessage() {}

// TimestampList is the explicit-list branch of DataTimestamps.
type TimestampList struct {
	Timestamps []*Timestamp
}

func (m *TimestampList) Reset()         { *m = TimestampList{} }
func (m *TimestampList) String() string { return fmt.Sprintf("TimestampList{n=%d}", len(m.Timestamps)) }
func (*TimestampList) ProtoMessage()    {}

// DataTimestamps is the oneof selecting between a SamplingClock and an
// explicit TimestampList (§4.9 "DataTimestamps with SamplingClock branch
// → UniformClock; with explicit list branch → TimestampList"). Exactly
// one field is non-nil on a well-formed message.
type DataTimestamps struct {
	Clock *SamplingClock
	List  *TimestampList
}

func (m *DataTimestamps) Reset() { *m = DataTimestamps{} }
func (m *DataTimestamps) String() string {
	if m.Clock != nil {
		return m.Clock.String()
	}
	if m.List != nil {
		return m.List.String()
	}
	return "DataTimestamps{empty}"
}
func (*DataTimestamps) ProtoMessage() {}
