package dppb

import "fmt"

// QueryDataRequest is the wire form of one sub-request's recovery call:
// a source set and a closed time range (§6 "Transport").
type QueryDataRequest struct {
	Sources   []string
	BeginTime *Timestamp
	EndTime   *Timestamp
}

func (m *QueryDataRequest) Reset() { *m = QueryDataRequest{} }
func (m *QueryDataRequest) String() string {
	return fmt.Sprintf("QueryDataRequest{sources=%d}", len(m.Sources))
}
func (*QueryDataRequest) ProtoMessage() {}
